package geoarrow

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// WKB type codes after flag stripping.
const (
	wkbPoint           = 1
	wkbLineString      = 2
	wkbPolygon         = 3
	wkbMultiPoint      = 4
	wkbMultiLineString = 5
	wkbMultiPolygon    = 6
)

// EWKB flag bits (PostGIS convention).
const (
	ewkbZ    = 0x80000000
	ewkbM    = 0x40000000
	ewkbSRID = 0x20000000
)

// Every geometry starts with a 1-byte order marker and a 4-byte type code.
const wkbHeaderSize = 5

// DecodeWKB parses one WKB geometry. It accepts plain 2D WKB, ISO WKB with
// Z/M/ZM type offsets, and PostGIS EWKB with Z/M/SRID flag bits. Z and M
// ordinates are skipped; the result is always 2D. An SRID, if present, is
// read and discarded.
//
// A truncated buffer, an invalid byte order marker, or an unsupported type
// (anything outside Point through MultiPolygon, including
// GeometryCollection) yields a nil geometry and a non-nil error. The
// decoder never returns partial data: either the whole declared structure
// fits in the buffer or the row fails.
func DecodeWKB(buf []byte) (orb.Geometry, error) {
	geom, _, err := readGeometry(buf, 0)
	if err != nil {
		return nil, err
	}
	return geom, nil
}

// readGeometry parses one full geometry starting at pos and returns it
// together with the offset of the first byte after it. Multi* elements are
// themselves full geometries with their own header, so this recurses.
func readGeometry(buf []byte, pos int) (orb.Geometry, int, error) {
	order, typ, extra, pos, err := readHeader(buf, pos)
	if err != nil {
		return nil, 0, err
	}

	switch typ {
	case wkbPoint:
		p, pos, err := readPoint(buf, pos, order, extra)
		if err != nil {
			return nil, 0, err
		}
		return p, pos, nil
	case wkbLineString:
		ls, pos, err := readLineString(buf, pos, order, extra)
		if err != nil {
			return nil, 0, err
		}
		return ls, pos, nil
	case wkbPolygon:
		poly, pos, err := readPolygon(buf, pos, order, extra)
		if err != nil {
			return nil, 0, err
		}
		return poly, pos, nil
	case wkbMultiPoint:
		return readMultiPoint(buf, pos, order)
	case wkbMultiLineString:
		return readMultiLineString(buf, pos, order)
	case wkbMultiPolygon:
		return readMultiPolygon(buf, pos, order)
	default:
		return nil, 0, fmt.Errorf("%w: code %d", ErrUnsupportedType, typ)
	}
}

// readHeader parses the byte order marker and type code, resolves the Z/M
// conventions, and skips an EWKB SRID field when present. It returns the
// byte order, the base type code, the number of extra ordinates per point,
// and the offset just past the header.
func readHeader(buf []byte, pos int) (binary.ByteOrder, uint32, int, int, error) {
	if len(buf)-pos < wkbHeaderSize {
		return nil, 0, 0, 0, ErrTruncated
	}

	var order binary.ByteOrder
	switch buf[pos] {
	case 0:
		order = binary.BigEndian
	case 1:
		order = binary.LittleEndian
	default:
		return nil, 0, 0, 0, fmt.Errorf("%w: 0x%02x", ErrBadByteOrder, buf[pos])
	}
	pos++

	typ := order.Uint32(buf[pos : pos+4])
	pos += 4

	// Z/M presence is signalled three different ways in the wild: EWKB
	// high bits, or the ISO 1000/2000/3000 type offsets. Accept all of
	// them; the ordinates themselves are skipped either way.
	extra := 0
	if typ&ewkbZ != 0 {
		extra++
	}
	if typ&ewkbM != 0 {
		extra++
	}
	hasSRID := typ&ewkbSRID != 0
	typ &^= ewkbZ | ewkbM | ewkbSRID

	switch iso := typ % 10000; {
	case iso >= 1000 && iso < 2000:
		extra++
	case iso >= 2000 && iso < 3000:
		extra++
	case iso >= 3000 && iso < 4000:
		extra += 2
	}
	typ %= 1000

	if hasSRID {
		if len(buf)-pos < 4 {
			return nil, 0, 0, 0, ErrTruncated
		}
		pos += 4 // SRID, discarded
	}

	return order, typ, extra, pos, nil
}

func readCount(buf []byte, pos int, order binary.ByteOrder) (int, int, error) {
	if len(buf)-pos < 4 {
		return 0, 0, ErrTruncated
	}
	n := int(order.Uint32(buf[pos : pos+4]))
	if n < 0 { // uint32 overflow on 32-bit int
		return 0, 0, ErrTruncated
	}
	return n, pos + 4, nil
}

func readPoint(buf []byte, pos int, order binary.ByteOrder, extra int) (orb.Point, int, error) {
	size := (2 + extra) * 8
	if len(buf)-pos < size {
		return orb.Point{}, 0, ErrTruncated
	}
	x := math.Float64frombits(order.Uint64(buf[pos : pos+8]))
	y := math.Float64frombits(order.Uint64(buf[pos+8 : pos+16]))
	return orb.Point{x, y}, pos + size, nil
}

func readLineString(buf []byte, pos int, order binary.ByteOrder, extra int) (orb.LineString, int, error) {
	n, pos, err := readCount(buf, pos, order)
	if err != nil {
		return nil, 0, err
	}
	pointSize := (2 + extra) * 8
	if n > (len(buf)-pos)/pointSize {
		return nil, 0, ErrTruncated
	}

	ls := make(orb.LineString, 0, n)
	for i := 0; i < n; i++ {
		var p orb.Point
		p, pos, err = readPoint(buf, pos, order, extra)
		if err != nil {
			return nil, 0, err
		}
		ls = append(ls, p)
	}
	return ls, pos, nil
}

func readPolygon(buf []byte, pos int, order binary.ByteOrder, extra int) (orb.Polygon, int, error) {
	n, pos, err := readCount(buf, pos, order)
	if err != nil {
		return nil, 0, err
	}
	// Each ring needs at least its own 4-byte point count.
	if n > (len(buf)-pos)/4 {
		return nil, 0, ErrTruncated
	}

	poly := make(orb.Polygon, 0, n)
	for i := 0; i < n; i++ {
		var ring orb.LineString
		ring, pos, err = readLineString(buf, pos, order, extra)
		if err != nil {
			return nil, 0, err
		}
		poly = append(poly, orb.Ring(ring))
	}
	return poly, pos, nil
}

// The Multi* readers parse each element as a complete geometry with its own
// byte order marker and type code. An element of the wrong type fails the
// whole row rather than producing partial data.

func readMultiPoint(buf []byte, pos int, order binary.ByteOrder) (orb.Geometry, int, error) {
	n, pos, err := readCount(buf, pos, order)
	if err != nil {
		return nil, 0, err
	}
	if n > (len(buf)-pos)/wkbHeaderSize {
		return nil, 0, ErrTruncated
	}

	mp := make(orb.MultiPoint, 0, n)
	for i := 0; i < n; i++ {
		var g orb.Geometry
		g, pos, err = readGeometry(buf, pos)
		if err != nil {
			return nil, 0, err
		}
		p, ok := g.(orb.Point)
		if !ok {
			return nil, 0, fmt.Errorf("%w: multipoint element is not a point", ErrUnsupportedType)
		}
		mp = append(mp, p)
	}
	return mp, pos, nil
}

func readMultiLineString(buf []byte, pos int, order binary.ByteOrder) (orb.Geometry, int, error) {
	n, pos, err := readCount(buf, pos, order)
	if err != nil {
		return nil, 0, err
	}
	if n > (len(buf)-pos)/wkbHeaderSize {
		return nil, 0, ErrTruncated
	}

	mls := make(orb.MultiLineString, 0, n)
	for i := 0; i < n; i++ {
		var g orb.Geometry
		g, pos, err = readGeometry(buf, pos)
		if err != nil {
			return nil, 0, err
		}
		ls, ok := g.(orb.LineString)
		if !ok {
			return nil, 0, fmt.Errorf("%w: multilinestring element is not a linestring", ErrUnsupportedType)
		}
		mls = append(mls, ls)
	}
	return mls, pos, nil
}

func readMultiPolygon(buf []byte, pos int, order binary.ByteOrder) (orb.Geometry, int, error) {
	n, pos, err := readCount(buf, pos, order)
	if err != nil {
		return nil, 0, err
	}
	if n > (len(buf)-pos)/wkbHeaderSize {
		return nil, 0, ErrTruncated
	}

	mp := make(orb.MultiPolygon, 0, n)
	for i := 0; i < n; i++ {
		var g orb.Geometry
		g, pos, err = readGeometry(buf, pos)
		if err != nil {
			return nil, 0, err
		}
		poly, ok := g.(orb.Polygon)
		if !ok {
			return nil, 0, fmt.Errorf("%w: multipolygon element is not a polygon", ErrUnsupportedType)
		}
		mp = append(mp, poly)
	}
	return mp, pos, nil
}
