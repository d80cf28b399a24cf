package registry

import (
	"sort"
	"strings"

	"mc-bake/internal/world"

	"github.com/go-gl/mathgl/mgl32"
)

// Vertex is one model-space vertex of a block mesh. Positions are in block
// units (0..1 for a full cube), UVs are normalized.
type Vertex struct {
	Position mgl32.Vec3
	UV       mgl32.Vec2
	Normal   mgl32.Vec3
	Texture  uint32
}

// CubeModel holds the geometry of an axis-aligned full cube, one vertex list
// per face. A nil face contributes no geometry at all.
type CubeModel struct {
	Faces [world.DirectionCount][]Vertex
}

// Face returns the vertices of one face.
func (c *CubeModel) Face(d world.Direction) []Vertex {
	return c.Faces[d]
}

// FaceGroup is the geometry of one element of a complex model. The per-face
// split is kept for bookkeeping only; complex geometry is never culled.
type FaceGroup struct {
	Faces [world.DirectionCount][]Vertex
}

// complexFaceOrder is the order complex face groups are flattened in.
var complexFaceOrder = [world.DirectionCount]world.Direction{
	world.North, world.East, world.South, world.West, world.Up, world.Down,
}

// Shape is either a cube (Cube != nil) or an arbitrary complex mesh.
type Shape struct {
	Cube    *CubeModel
	Complex []FaceGroup
}

func (s Shape) IsCube() bool {
	return s.Cube != nil
}

// EachVertex calls fn for every vertex of the shape, ignoring face semantics.
// Cube faces come out north, south, up, down, west, east; complex groups in
// element order, each north, east, south, west, up, down.
func (s Shape) EachVertex(fn func(v *Vertex)) {
	if s.Cube != nil {
		for _, d := range [...]world.Direction{world.North, world.South, world.Up, world.Down, world.West, world.East} {
			face := s.Cube.Faces[d]
			for i := range face {
				fn(&face[i])
			}
		}
		return
	}
	for g := range s.Complex {
		for _, d := range complexFaceOrder {
			face := s.Complex[g].Faces[d]
			for i := range face {
				fn(&face[i])
			}
		}
	}
}

// VertexCount returns the total number of vertices in the shape.
func (s Shape) VertexCount() int {
	n := 0
	s.EachVertex(func(*Vertex) { n++ })
	return n
}

// Attributes is a block's state-attribute mapping, e.g. facing=north.
type Attributes map[string]string

// Canonical returns the attributes as a sorted "k=v,k=v" string.
func (a Attributes) Canonical() string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + a[k]
	}
	return strings.Join(parts, ",")
}

// Clone returns a copy that can be modified independently.
func (a Attributes) Clone() Attributes {
	out := make(Attributes, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// ParseAttributes parses a "k=v,k=v" variant key. "" and "normal" are empty.
func ParseAttributes(key string) Attributes {
	out := make(Attributes)
	if key == "" || key == "normal" {
		return out
	}
	for _, part := range strings.Split(key, ",") {
		k, v, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		out[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return out
}

// Predicate is a multipart condition over Attributes. The zero value always matches.
type Predicate struct {
	Any   []Predicate
	All   []Predicate
	Equal map[string][]string // attribute -> accepted values
}

// Matches reports whether attrs satisfies the predicate.
func (p Predicate) Matches(attrs Attributes) bool {
	if len(p.Any) > 0 {
		matched := false
		for _, sub := range p.Any {
			if sub.Matches(attrs) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	for _, sub := range p.All {
		if !sub.Matches(attrs) {
			return false
		}
	}
	for key, accepted := range p.Equal {
		actual, ok := attrs[key]
		if !ok {
			return false
		}
		found := false
		for _, v := range accepted {
			if v == actual {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// When builds a predicate from "key": "a|b" pairs.
func When(props map[string]string) Predicate {
	p := Predicate{Equal: make(map[string][]string, len(props))}
	for k, v := range props {
		p.Equal[k] = strings.Split(v, "|")
	}
	return p
}

// MultipartRule contributes Shape when When matches.
type MultipartRule struct {
	When  Predicate
	Shape Shape
}

// Multipart is a set of conditional rules combined per actual attributes.
type Multipart struct {
	Rules []MultipartRule
}

// Generate returns the rules that apply to attrs, in declaration order.
func (m *Multipart) Generate(attrs Attributes) []MultipartRule {
	var out []MultipartRule
	for _, rule := range m.Rules {
		if rule.When.Matches(attrs) {
			out = append(out, rule)
		}
	}
	return out
}

// Kind is the rendering kind of a block variant: a plain Shape or a Multipart.
type Kind struct {
	Shape     Shape
	Multipart *Multipart
}

func (k Kind) IsMultipart() bool {
	return k.Multipart != nil
}

// BlockVariant is the resolved rendering data for one state key.
type BlockVariant struct {
	// TransparentOrComplex is true when neighbors must render their faces
	// against this block.
	TransparentOrComplex bool
	Kind                 Kind
}

// ResolvedState pairs a state's attributes with its variant.
type ResolvedState struct {
	Attributes Attributes
	Variant    *BlockVariant
}
