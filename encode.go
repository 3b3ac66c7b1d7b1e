package geoarrow

import (
	"encoding/json"
	"sort"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Arrow field metadata keys used to tag the geometry column.
const (
	extensionNameKey     = "ARROW:extension:name"
	extensionMetadataKey = "ARROW:extension:metadata"
)

// geometryColumnName is the field name of the geometry column in every
// produced record.
const geometryColumnName = "geometry"

// Encode decodes a batch of WKB blobs, groups them by geometry type and
// assembles one GeoArrow record per non-empty group. Attribute columns are
// row-aligned to the blobs and are sliced to each group's rows.
//
// Rows whose WKB is malformed or of an unsupported type are dropped
// silently; a batch with no decodable rows yields zero results and no
// error. The only error condition is an attribute column whose length does
// not match the number of blobs. Results come back in first-appearance
// order of their geometry types, each stamped with the union bounds of
// every accepted coordinate in the batch.
func Encode(wkbs [][]byte, attrs map[string]Attribute, opts *Options) ([]Result, error) {
	geoms := make([]orb.Geometry, len(wkbs))
	for i, blob := range wkbs {
		geom, err := DecodeWKB(blob)
		if err != nil {
			continue // row dropped, slot stays nil
		}
		geoms[i] = geom
	}
	return EncodeGeometries(geoms, attrs, opts)
}

// EncodeGeometries is the pre-decoded entry point: it runs the same
// grouping and assembly as Encode on geometries the caller already holds.
// Nil entries and unsupported types are dropped like undecodable rows.
func EncodeGeometries(geoms []orb.Geometry, attrs map[string]Attribute, opts *Options) ([]Result, error) {
	for _, att := range attrs {
		if len(att.Values) != len(geoms) {
			return nil, ErrLengthMismatch
		}
	}
	o := opts.normalize()

	bounds := NewBounds()
	groups := classify(geoms, &bounds)

	results := make([]Result, 0, len(groups))
	for _, grp := range groups {
		rec := assembleRecord(grp, attrs, o)
		results = append(results, Result{
			Record:       rec,
			GeometryType: grp.typ,
			Bounds:       bounds,
		})
	}
	return results, nil
}

// EncodeFeatureCollection encodes GeoJSON features: geometries through the
// regular pipeline, properties as one attribute column per property name.
// A property missing from a feature becomes a null value in its column.
func EncodeFeatureCollection(fc *geojson.FeatureCollection, opts *Options) ([]Result, error) {
	if fc == nil {
		return nil, nil
	}

	geoms := make([]orb.Geometry, len(fc.Features))
	for i, f := range fc.Features {
		if f != nil {
			geoms[i] = f.Geometry
		}
	}

	attrs := make(map[string]Attribute)
	for _, f := range fc.Features {
		if f == nil {
			continue
		}
		for name := range f.Properties {
			if _, ok := attrs[name]; !ok {
				attrs[name] = Attribute{Values: make([]any, len(fc.Features))}
			}
		}
	}
	for name, att := range attrs {
		for i, f := range fc.Features {
			if f == nil || f.Properties == nil {
				continue
			}
			if v, ok := f.Properties[name]; ok {
				att.Values[i] = v
			}
		}
		attrs[name] = att
	}

	return EncodeGeometries(geoms, attrs, opts)
}

// assembleRecord builds the Arrow record for one group: the geometry
// column first, then the attribute columns in sorted name order so that
// repeated runs over the same input produce identical schemas.
func assembleRecord(grp group, attrs map[string]Attribute, o *Options) arrow.Record {
	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	sort.Strings(names)

	fields := make([]arrow.Field, 0, len(attrs)+1)
	cols := make([]arrow.Array, 0, len(attrs)+1)

	geomCol := buildGeometryColumn(o.Allocator, grp.typ, grp.geoms)
	fields = append(fields, arrow.Field{
		Name:     geometryColumnName,
		Type:     geomCol.DataType(),
		Metadata: geometryFieldMetadata(grp.typ, o.CRS),
	})
	cols = append(cols, geomCol)

	for _, name := range names {
		sliced := sliceValues(attrs[name].Values, grp.rows)
		col := buildAttributeColumn(o.Allocator, sliced, o.SampleSize)
		fields = append(fields, arrow.Field{Name: name, Type: col.DataType()})
		cols = append(cols, col)
	}

	schema := arrow.NewSchema(fields, nil)
	rec := array.NewRecord(schema, cols, int64(geomCol.Len()))
	for _, col := range cols {
		col.Release()
	}
	return rec
}

// geometryFieldMetadata stamps the GeoArrow extension name and a metadata
// blob declaring the CRS. The codec does not verify the CRS; it declares
// whatever the options carry, OGC:CRS84 by default.
func geometryFieldMetadata(typ GeometryType, crs string) arrow.Metadata {
	meta, _ := json.Marshal(struct {
		CRS string `json:"crs"`
	}{CRS: crs})

	return arrow.NewMetadata(
		[]string{extensionNameKey, extensionMetadataKey},
		[]string{typ.ExtensionName(), string(meta)},
	)
}
