package geoarrow

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/ewkb"
	"github.com/paulmach/orb/encoding/wkb"
)

// =============================================================================
// Hand-built WKB buffers
// =============================================================================

// wkbBuf builds little-endian WKB buffers byte by byte, so tests control
// the exact wire layout independently of any encoder.
type wkbBuf struct {
	data []byte
}

func (b *wkbBuf) marker() *wkbBuf {
	b.data = append(b.data, 1) // little-endian
	return b
}

func (b *wkbBuf) u32(v uint32) *wkbBuf {
	b.data = binary.LittleEndian.AppendUint32(b.data, v)
	return b
}

func (b *wkbBuf) f64(vs ...float64) *wkbBuf {
	for _, v := range vs {
		b.data = binary.LittleEndian.AppendUint64(b.data, math.Float64bits(v))
	}
	return b
}

func TestDecodeWKB_PointLittleEndian(t *testing.T) {
	var b wkbBuf
	b.marker().u32(wkbPoint).f64(1.5, 2.5)

	geom, err := DecodeWKB(b.data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p, ok := geom.(orb.Point)
	if !ok {
		t.Fatalf("expected orb.Point, got %T", geom)
	}
	if p[0] != 1.5 || p[1] != 2.5 {
		t.Errorf("expected (1.5, 2.5), got (%v, %v)", p[0], p[1])
	}
}

func TestDecodeWKB_PointBigEndian(t *testing.T) {
	data := []byte{0} // big-endian marker
	data = binary.BigEndian.AppendUint32(data, wkbPoint)
	data = binary.BigEndian.AppendUint64(data, math.Float64bits(-3.25))
	data = binary.BigEndian.AppendUint64(data, math.Float64bits(7.75))

	geom, err := DecodeWKB(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p := geom.(orb.Point); p != (orb.Point{-3.25, 7.75}) {
		t.Errorf("expected (-3.25, 7.75), got %v", p)
	}
}

func TestDecodeWKB_RoundTripAllTypes(t *testing.T) {
	tests := []struct {
		name string
		geom orb.Geometry
	}{
		{"Point", orb.Point{1, 2}},
		{"LineString", orb.LineString{{0, 0}, {1, 1}, {2, 2}}},
		{"Polygon", orb.Polygon{
			{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}},
			{{2, 2}, {8, 2}, {8, 8}, {2, 8}, {2, 2}},
		}},
		{"MultiPoint", orb.MultiPoint{{1, 2}, {3, 4}}},
		{"MultiLineString", orb.MultiLineString{{{0, 0}, {1, 1}}, {{2, 2}, {3, 3}}}},
		{"MultiPolygon", orb.MultiPolygon{
			{{{0, 0}, {5, 0}, {5, 5}, {0, 5}, {0, 0}}},
			{{{10, 10}, {15, 10}, {15, 15}, {10, 15}, {10, 10}}},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := wkb.Marshal(tt.geom)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}

			geom, err := DecodeWKB(data)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if !orb.Equal(geom, tt.geom) {
				t.Errorf("expected %v, got %v", tt.geom, geom)
			}
		})
	}
}

func TestDecodeWKB_BigEndianRoundTrip(t *testing.T) {
	ls := orb.LineString{{1, 2}, {3, 4}, {5, 6}}
	data, err := wkb.Marshal(ls, binary.BigEndian)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	geom, err := DecodeWKB(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !orb.Equal(geom, ls) {
		t.Errorf("expected %v, got %v", ls, geom)
	}
}

func TestDecodeWKB_EWKBWithSRID(t *testing.T) {
	point := orb.Point{12.5, -45.25}
	data, err := ewkb.Marshal(point, 4326)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	geom, err := DecodeWKB(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p := geom.(orb.Point); p != point {
		t.Errorf("expected %v, got %v", point, p)
	}

	// Same coordinates without the SRID field must decode identically.
	plain, err := wkb.Marshal(point)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	plainGeom, err := DecodeWKB(plain)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !orb.Equal(geom, plainGeom) {
		t.Errorf("SRID and non-SRID decode differ: %v vs %v", geom, plainGeom)
	}
}

func TestDecodeWKB_ExtraDimensions(t *testing.T) {
	cases := []struct {
		name  string
		typ   uint32
		extra []float64
	}{
		{"ISO Z", 1001, []float64{100}},
		{"ISO M", 2001, []float64{200}},
		{"ISO ZM", 3001, []float64{100, 200}},
		{"EWKB Z", wkbPoint | ewkbZ, []float64{100}},
		{"EWKB M", wkbPoint | ewkbM, []float64{200}},
		{"EWKB ZM", wkbPoint | ewkbZ | ewkbM, []float64{100, 200}},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			var b wkbBuf
			b.marker().u32(tt.typ).f64(1.5, 2.5).f64(tt.extra...)

			geom, err := DecodeWKB(b.data)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p := geom.(orb.Point); p != (orb.Point{1.5, 2.5}) {
				t.Errorf("expected (1.5, 2.5), got %v", p)
			}
		})
	}
}

func TestDecodeWKB_ZLineStringSkipsOrdinates(t *testing.T) {
	// Two points with Z: the skip must advance 24 bytes per point.
	var b wkbBuf
	b.marker().u32(1002).u32(2).f64(0, 0, 9).f64(1, 1, 9)

	geom, err := DecodeWKB(b.data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := orb.LineString{{0, 0}, {1, 1}}
	if !orb.Equal(geom, want) {
		t.Errorf("expected %v, got %v", want, geom)
	}
}

func TestDecodeWKB_Truncated(t *testing.T) {
	lineHeader := (&wkbBuf{}).marker().u32(wkbLineString).u32(5).f64(0, 0).data
	hugeCount := (&wkbBuf{}).marker().u32(wkbMultiPolygon).u32(0xFFFFFFFF).data
	sridCut := (&wkbBuf{}).marker().u32(wkbPoint | ewkbSRID).data

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"three bytes", []byte{0x01, 0x01, 0x00}},
		{"header only", (&wkbBuf{}).marker().u32(wkbPoint).data},
		{"half a point", (&wkbBuf{}).marker().u32(wkbPoint).f64(1.5).data},
		{"short linestring", lineHeader},
		{"hostile element count", hugeCount},
		{"srid cut off", sridCut},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			geom, err := DecodeWKB(tt.data)
			if !errors.Is(err, ErrTruncated) {
				t.Errorf("expected ErrTruncated, got %v", err)
			}
			if geom != nil {
				t.Errorf("expected nil geometry, got %v", geom)
			}
		})
	}
}

func TestDecodeWKB_BadByteOrder(t *testing.T) {
	data := []byte{0x02, 0x01, 0x00, 0x00, 0x00}
	if _, err := DecodeWKB(data); !errors.Is(err, ErrBadByteOrder) {
		t.Errorf("expected ErrBadByteOrder, got %v", err)
	}
}

func TestDecodeWKB_GeometryCollectionRejected(t *testing.T) {
	data, err := wkb.Marshal(orb.Collection{orb.Point{1, 2}})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if _, err := DecodeWKB(data); !errors.Is(err, ErrUnsupportedType) {
		t.Errorf("expected ErrUnsupportedType, got %v", err)
	}
}

func TestDecodeWKB_MultiPointWithZElements(t *testing.T) {
	// Each element carries its own header; Z flags on elements must be
	// honored independently of the container.
	var b wkbBuf
	b.marker().u32(wkbMultiPoint).u32(2)
	b.marker().u32(wkbPoint | ewkbZ).f64(1, 2, 9)
	b.marker().u32(1001).f64(3, 4, 9)

	geom, err := DecodeWKB(b.data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := orb.MultiPoint{{1, 2}, {3, 4}}
	if !orb.Equal(geom, want) {
		t.Errorf("expected %v, got %v", want, geom)
	}
}

func TestDecodeWKB_MixedMultiRejected(t *testing.T) {
	// A multipoint whose element is a linestring fails the whole row.
	var b wkbBuf
	b.marker().u32(wkbMultiPoint).u32(1)
	b.marker().u32(wkbLineString).u32(1).f64(0, 0)

	if _, err := DecodeWKB(b.data); !errors.Is(err, ErrUnsupportedType) {
		t.Errorf("expected ErrUnsupportedType, got %v", err)
	}
}
