package geoarrow

import (
	"github.com/paulmach/orb"
)

// geometryTypeOf maps a decoded geometry to its GeoArrow group key. The
// second return is false for nil geometries and any type outside the six
// supported groups; such rows are excluded from every group.
func geometryTypeOf(geom orb.Geometry) (GeometryType, bool) {
	switch geom.(type) {
	case orb.Point:
		return TypePoint, true
	case orb.LineString:
		return TypeLineString, true
	case orb.Polygon:
		return TypePolygon, true
	case orb.MultiPoint:
		return TypeMultiPoint, true
	case orb.MultiLineString:
		return TypeMultiLineString, true
	case orb.MultiPolygon:
		return TypeMultiPolygon, true
	default:
		return "", false
	}
}

// group collects the geometries of one type along with their 0-based
// ordinal positions in the source batch, in original batch order.
type group struct {
	typ   GeometryType
	rows  []int
	geoms []orb.Geometry
}

// classify splits a batch into per-type groups, preserving batch order
// within each group, and extends bounds with every accepted coordinate.
// Groups come back in first-appearance order. Nil and unsupported
// geometries are dropped and do not touch the bounds.
func classify(geoms []orb.Geometry, bounds *Bounds) []group {
	byType := make(map[GeometryType]int, 6)
	var groups []group

	for row, geom := range geoms {
		typ, ok := geometryTypeOf(geom)
		if !ok {
			continue
		}

		idx, seen := byType[typ]
		if !seen {
			idx = len(groups)
			byType[typ] = idx
			groups = append(groups, group{typ: typ})
		}
		groups[idx].rows = append(groups[idx].rows, row)
		groups[idx].geoms = append(groups[idx].geoms, geom)

		extendBounds(bounds, geom)
	}

	return groups
}

// extendBounds walks every coordinate of the geometry. Coordinates are
// visited directly rather than through orb's Bound() so that empty
// sub-geometries contribute nothing.
func extendBounds(b *Bounds, geom orb.Geometry) {
	switch v := geom.(type) {
	case orb.Point:
		b.Extend(v[0], v[1])
	case orb.LineString:
		for _, p := range v {
			b.Extend(p[0], p[1])
		}
	case orb.Polygon:
		for _, ring := range v {
			for _, p := range ring {
				b.Extend(p[0], p[1])
			}
		}
	case orb.MultiPoint:
		for _, p := range v {
			b.Extend(p[0], p[1])
		}
	case orb.MultiLineString:
		for _, ls := range v {
			for _, p := range ls {
				b.Extend(p[0], p[1])
			}
		}
	case orb.MultiPolygon:
		for _, poly := range v {
			for _, ring := range poly {
				for _, p := range ring {
					b.Extend(p[0], p[1])
				}
			}
		}
	}
}
