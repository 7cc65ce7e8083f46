// Package component defines the closed set of payload kinds a store column can hold.
//
// Every component value is one of the concrete types declared here. The set is
// sealed: Value carries an unexported method, so adding a kind means adding a
// type to this package and a constant to Kind.
package component

import (
	"fmt"
	"image/color"

	"github.com/jakecoffman/cp"
)

// Kind discriminates the payload held by a Value.
type Kind uint8

const (
	KindEmpty Kind = iota
	KindPoint
	KindF32
	KindColor
	KindU32
	KindU64
	KindUsize
	KindBool
	KindKeyCode
	KindMarker
	KindText
	KindMesh
	KindSound
)

var kindNames = [...]string{
	KindEmpty:   "Empty",
	KindPoint:   "Point",
	KindF32:     "F32",
	KindColor:   "Color",
	KindU32:     "U32",
	KindU64:     "U64",
	KindUsize:   "Usize",
	KindBool:    "Bool",
	KindKeyCode: "KeyCode",
	KindMarker:  "Marker",
	KindText:    "Text",
	KindMesh:    "Mesh",
	KindSound:   "Sound",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Value is a tagged component payload.
type Value interface {
	Kind() Kind
	value()
}

// Empty marks an unused column slot.
type Empty struct{}

// Point is a 2D position or extent.
type Point cp.Vector

// F32 is a single precision scalar.
type F32 float32

// Color is a non-premultiplied RGBA colour.
type Color color.NRGBA

// U32 is an unsigned 32-bit scalar.
type U32 uint32

// U64 is an unsigned 64-bit scalar.
type U64 uint64

// Usize is a platform sized unsigned integer. The identity component uses it.
type Usize uint

// Bool is a flag.
type Bool bool

// KeyCode is an input key identifier defined by the host's input layer.
type KeyCode uint16

// Marker is a free-form string tag.
type Marker string

// Text carries a host rendering text object. The store never inspects Payload.
type Text struct {
	Payload any
}

// Mesh carries a host rendering mesh. The store never inspects Payload.
type Mesh struct {
	Payload any
}

// Sound carries encoded audio bytes for the host's audio layer.
type Sound struct {
	Data []byte
}

func (Empty) Kind() Kind   { return KindEmpty }
func (Point) Kind() Kind   { return KindPoint }
func (F32) Kind() Kind     { return KindF32 }
func (Color) Kind() Kind   { return KindColor }
func (U32) Kind() Kind     { return KindU32 }
func (U64) Kind() Kind     { return KindU64 }
func (Usize) Kind() Kind   { return KindUsize }
func (Bool) Kind() Kind    { return KindBool }
func (KeyCode) Kind() Kind { return KindKeyCode }
func (Marker) Kind() Kind  { return KindMarker }
func (Text) Kind() Kind    { return KindText }
func (Mesh) Kind() Kind    { return KindMesh }
func (Sound) Kind() Kind   { return KindSound }

func (Empty) value()   {}
func (Point) value()   {}
func (F32) value()     {}
func (Color) value()   {}
func (U32) value()     {}
func (U64) value()     {}
func (Usize) value()   {}
func (Bool) value()    {}
func (KeyCode) value() {}
func (Marker) value()  {}
func (Text) value()    {}
func (Mesh) value()    {}
func (Sound) value()   {}

// NewPoint builds a Point from coordinates.
func NewPoint(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Vector returns the point as a chipmunk vector.
func (p Point) Vector() cp.Vector {
	return cp.Vector(p)
}

// Add returns p translated by o.
func (p Point) Add(o Point) Point {
	return Point(cp.Vector(p).Add(cp.Vector(o)))
}

// Distance returns the euclidean distance between p and o.
func (p Point) Distance(o Point) float64 {
	return cp.Vector(p).Distance(cp.Vector(o))
}

// RGBA implements color.Color.
func (c Color) RGBA() (r, g, b, a uint32) {
	return color.NRGBA(c).RGBA()
}

// KindOf reports the kind of v, treating nil as empty.
func KindOf(v Value) Kind {
	if v == nil {
		return KindEmpty
	}
	return v.Kind()
}

// IsEmpty reports whether v is nil or the Empty sentinel.
func IsEmpty(v Value) bool {
	return KindOf(v) == KindEmpty
}

var (
	_ Value       = Empty{}
	_ Value       = Point{}
	_ Value       = Sound{}
	_ color.Color = Color{}
)
