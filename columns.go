package geoarrow

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paulmach/orb"
)

// GeoArrow stores coordinates interleaved: every point is a
// FixedSizeList(2) of Float64, and each additional nesting level of the
// geometry type adds one Int32-offset List around it.

func coordType() arrow.DataType {
	return arrow.FixedSizeListOf(2, arrow.PrimitiveTypes.Float64)
}

// geometryDataType returns the Arrow type of the geometry column for the
// given group key.
func geometryDataType(typ GeometryType) arrow.DataType {
	switch typ {
	case TypePoint:
		return coordType()
	case TypeLineString, TypeMultiPoint:
		return arrow.ListOf(coordType())
	case TypePolygon, TypeMultiLineString:
		return arrow.ListOf(arrow.ListOf(coordType()))
	case TypeMultiPolygon:
		return arrow.ListOf(arrow.ListOf(arrow.ListOf(coordType())))
	default:
		return nil
	}
}

// buildGeometryColumn assembles the geometry column for one group in a
// single pass over its geometries, in group order. A geometry of the wrong
// variant for the group (cannot happen through classify, handled
// defensively) contributes an empty slice at the outermost list level, or
// is skipped for the flat point layout, instead of panicking.
func buildGeometryColumn(mem memory.Allocator, typ GeometryType, geoms []orb.Geometry) arrow.Array {
	switch typ {
	case TypePoint:
		return buildPointColumn(mem, geoms)
	case TypeLineString, TypeMultiPoint:
		return buildPointListColumn(mem, geoms)
	case TypePolygon, TypeMultiLineString:
		return buildRingListColumn(mem, geoms)
	case TypeMultiPolygon:
		return buildPolygonListColumn(mem, geoms)
	default:
		return nil
	}
}

func appendCoord(fsl *array.FixedSizeListBuilder, coords *array.Float64Builder, p orb.Point) {
	fsl.Append(true)
	coords.Append(p[0])
	coords.Append(p[1])
}

func buildPointColumn(mem memory.Allocator, geoms []orb.Geometry) arrow.Array {
	b := array.NewFixedSizeListBuilder(mem, 2, arrow.PrimitiveTypes.Float64)
	defer b.Release()
	coords := b.ValueBuilder().(*array.Float64Builder)
	coords.Reserve(len(geoms) * 2)

	for _, g := range geoms {
		p, ok := g.(orb.Point)
		if !ok {
			continue
		}
		appendCoord(b, coords, p)
	}
	return b.NewArray()
}

// buildPointListColumn handles linestring and multipoint groups, both of
// which are a single list of coordinates per row.
func buildPointListColumn(mem memory.Allocator, geoms []orb.Geometry) arrow.Array {
	b := array.NewListBuilder(mem, coordType())
	defer b.Release()
	fsl := b.ValueBuilder().(*array.FixedSizeListBuilder)
	coords := fsl.ValueBuilder().(*array.Float64Builder)

	for _, g := range geoms {
		b.Append(true)
		switch v := g.(type) {
		case orb.LineString:
			for _, p := range v {
				appendCoord(fsl, coords, p)
			}
		case orb.MultiPoint:
			for _, p := range v {
				appendCoord(fsl, coords, p)
			}
		}
	}
	return b.NewArray()
}

// buildRingListColumn handles polygon and multilinestring groups: one list
// of rings (or linestrings) per row, each a list of coordinates.
func buildRingListColumn(mem memory.Allocator, geoms []orb.Geometry) arrow.Array {
	b := array.NewListBuilder(mem, arrow.ListOf(coordType()))
	defer b.Release()
	rings := b.ValueBuilder().(*array.ListBuilder)
	fsl := rings.ValueBuilder().(*array.FixedSizeListBuilder)
	coords := fsl.ValueBuilder().(*array.Float64Builder)

	for _, g := range geoms {
		b.Append(true)
		switch v := g.(type) {
		case orb.Polygon:
			for _, ring := range v {
				rings.Append(true)
				for _, p := range ring {
					appendCoord(fsl, coords, p)
				}
			}
		case orb.MultiLineString:
			for _, ls := range v {
				rings.Append(true)
				for _, p := range ls {
					appendCoord(fsl, coords, p)
				}
			}
		}
	}
	return b.NewArray()
}

func buildPolygonListColumn(mem memory.Allocator, geoms []orb.Geometry) arrow.Array {
	b := array.NewListBuilder(mem, arrow.ListOf(arrow.ListOf(coordType())))
	defer b.Release()
	polys := b.ValueBuilder().(*array.ListBuilder)
	rings := polys.ValueBuilder().(*array.ListBuilder)
	fsl := rings.ValueBuilder().(*array.FixedSizeListBuilder)
	coords := fsl.ValueBuilder().(*array.Float64Builder)

	for _, g := range geoms {
		b.Append(true)
		mp, ok := g.(orb.MultiPolygon)
		if !ok {
			continue
		}
		for _, poly := range mp {
			polys.Append(true)
			for _, ring := range poly {
				rings.Append(true)
				for _, p := range ring {
					appendCoord(fsl, coords, p)
				}
			}
		}
	}
	return b.NewArray()
}
