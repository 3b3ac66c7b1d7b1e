// Package geoarrow converts batches of Well-Known Binary (WKB) geometries
// into GeoArrow-encoded Arrow records. It decodes ISO WKB and PostGIS EWKB
// variants into orb.Geometry values, groups them by geometry type, and
// assembles one Arrow record per group using the GeoArrow interleaved
// coordinate layout, together with attribute columns aligned to each group.
package geoarrow

import (
	"errors"
	"math"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// Common errors returned by this package.
var (
	ErrTruncated       = errors.New("geoarrow: truncated WKB buffer")
	ErrBadByteOrder    = errors.New("geoarrow: invalid byte order marker")
	ErrUnsupportedType = errors.New("geoarrow: unsupported geometry type")
	ErrLengthMismatch  = errors.New("geoarrow: attribute length does not match row count")
)

// GeometryType identifies one of the six supported GeoArrow geometry groups.
type GeometryType string

const (
	TypePoint           GeometryType = "point"
	TypeLineString      GeometryType = "linestring"
	TypePolygon         GeometryType = "polygon"
	TypeMultiPoint      GeometryType = "multipoint"
	TypeMultiLineString GeometryType = "multilinestring"
	TypeMultiPolygon    GeometryType = "multipolygon"
)

// ExtensionName returns the GeoArrow extension type name for the group,
// e.g. "geoarrow.point".
func (t GeometryType) ExtensionName() string {
	return "geoarrow." + string(t)
}

// Bounds is an axis-aligned bounding box [minX, minY, maxX, maxY].
// A fresh Bounds starts at the infinite sentinel and only becomes a valid
// box once at least one coordinate has been added.
type Bounds [4]float64

// NewBounds returns the empty sentinel bounds [+Inf, +Inf, -Inf, -Inf].
func NewBounds() Bounds {
	return Bounds{math.Inf(1), math.Inf(1), math.Inf(-1), math.Inf(-1)}
}

// Extend grows the bounds to cover the coordinate (x, y).
func (b *Bounds) Extend(x, y float64) {
	if x < b[0] {
		b[0] = x
	}
	if y < b[1] {
		b[1] = y
	}
	if x > b[2] {
		b[2] = x
	}
	if y > b[3] {
		b[3] = y
	}
}

// Empty reports whether the bounds are still at the sentinel, i.e. no
// coordinate was ever added. An empty Bounds is not a valid box.
func (b Bounds) Empty() bool {
	return b[0] > b[2] || b[1] > b[3]
}

// DefaultCRS is the coordinate reference system declared on every geometry
// column. The codec does not reproject; it assumes lon/lat input.
const DefaultCRS = "OGC:CRS84"

// DefaultSampleSize is the number of leading rows inspected when inferring
// whether an attribute column is numeric or text.
const DefaultSampleSize = 100

// Options configures encoding.
type Options struct {
	CRS        string           // CRS declared in extension metadata (default: OGC:CRS84)
	SampleSize int              // attribute type-inference sample size (default: 100)
	Allocator  memory.Allocator // Arrow buffer allocator (default: memory.DefaultAllocator)
}

// DefaultOptions returns the default encoding options.
func DefaultOptions() *Options {
	return &Options{
		CRS:        DefaultCRS,
		SampleSize: DefaultSampleSize,
		Allocator:  memory.DefaultAllocator,
	}
}

func (o *Options) normalize() *Options {
	out := Options{}
	if o != nil {
		out = *o
	}
	if out.CRS == "" {
		out.CRS = DefaultCRS
	}
	if out.SampleSize <= 0 {
		out.SampleSize = DefaultSampleSize
	}
	if out.Allocator == nil {
		out.Allocator = memory.DefaultAllocator
	}
	return &out
}

// Attribute is one side-channel attribute column, row-aligned to the WKB
// blobs of the same batch. Values may be numbers, strings or nil. Type is
// the producer's declared type label; it is carried for callers but does
// not influence inference, which looks only at the values.
type Attribute struct {
	Values []any
	Type   string
}

// Result is one encoded geometry-type group: an Arrow record whose geometry
// column uses the GeoArrow layout for GeometryType, plus the attribute
// columns sliced to this group's rows. Bounds is the union bounds of every
// accepted coordinate in the batch, identical across all results of one
// call. The caller owns the record and must Release it.
type Result struct {
	Record       arrow.Record
	GeometryType GeometryType
	Bounds       Bounds
}
