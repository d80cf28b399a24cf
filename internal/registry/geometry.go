package registry

import (
	"math"

	"mc-bake/internal/world"
	"mc-bake/pkg/blockmodel"

	"github.com/go-gl/mathgl/mgl32"
)

// textureIndexer hands out atlas layer indices for texture names.
type textureIndexer func(name string) uint32

// buildShape converts a model placed by a blockstate variant into a Shape.
// A model whose elements are all unrotated full cubes becomes a CubeModel;
// anything else is complex.
func buildShape(model *blockmodel.Model, variant blockmodel.Variant, texture textureIndexer) Shape {
	isCube := true
	for _, e := range model.Elements {
		if !e.IsFullCube() {
			isCube = false
			break
		}
	}

	placement := variantMatrix(variant.X, variant.Y)
	xSteps, ySteps := variant.X/90, variant.Y/90

	if isCube {
		cube := &CubeModel{}
		for _, e := range model.Elements {
			for _, f := range elementFaces(e, texture) {
				dir := f.dir.Rotate(xSteps, ySteps)
				cube.Faces[dir] = append(cube.Faces[dir], transform(f.verts, placement)...)
			}
		}
		return Shape{Cube: cube}
	}

	groups := make([]FaceGroup, 0, len(model.Elements))
	for _, e := range model.Elements {
		m := placement.Mul4(elementMatrix(e.Rotation))
		var g FaceGroup
		for _, f := range elementFaces(e, texture) {
			dir := f.dir.Rotate(xSteps, ySteps)
			g.Faces[dir] = append(g.Faces[dir], transform(f.verts, m)...)
		}
		groups = append(groups, g)
	}
	return Shape{Complex: groups}
}

// variantMatrix rotates about the block center: x quarter turns first, then y.
// y=90 turns a north face east, x=90 turns it down.
func variantMatrix(xDeg, yDeg int) mgl32.Mat4 {
	m := mgl32.Translate3D(0.5, 0.5, 0.5)
	m = m.Mul4(mgl32.HomogRotate3DY(mgl32.DegToRad(-float32(yDeg))))
	m = m.Mul4(mgl32.HomogRotate3DX(mgl32.DegToRad(-float32(xDeg))))
	return m.Mul4(mgl32.Translate3D(-0.5, -0.5, -0.5))
}

// elementMatrix applies an element's own rotation around its origin.
func elementMatrix(r *blockmodel.Rotation) mgl32.Mat4 {
	if r == nil || r.Angle == 0 {
		return mgl32.Ident4()
	}
	ox, oy, oz := r.Origin[0]/16.0, r.Origin[1]/16.0, r.Origin[2]/16.0
	angle := mgl32.DegToRad(r.Angle)

	var rot, scale mgl32.Mat4
	s := float32(1)
	if r.Rescale {
		s = float32(1 / math.Cos(float64(angle)))
	}
	switch r.Axis {
	case "x":
		rot = mgl32.HomogRotate3DX(angle)
		scale = mgl32.Scale3D(1, s, s)
	case "y":
		rot = mgl32.HomogRotate3DY(angle)
		scale = mgl32.Scale3D(s, 1, s)
	case "z":
		rot = mgl32.HomogRotate3DZ(angle)
		scale = mgl32.Scale3D(s, s, 1)
	default:
		return mgl32.Ident4()
	}
	m := mgl32.Translate3D(ox, oy, oz)
	m = m.Mul4(scale).Mul4(rot)
	return m.Mul4(mgl32.Translate3D(-ox, -oy, -oz))
}

func transform(verts []Vertex, m mgl32.Mat4) []Vertex {
	out := make([]Vertex, len(verts))
	for i, v := range verts {
		v.Position = m.Mul4x1(v.Position.Vec4(1)).Vec3()
		v.Normal = m.Mul4x1(v.Normal.Vec4(0)).Vec3().Normalize()
		out[i] = v
	}
	return out
}

type elementFace struct {
	dir   world.Direction
	verts []Vertex
}

// elementFaces emits two triangles per declared face, counter-clockwise seen
// from outside, in a fixed direction order so output never depends on map
// iteration.
func elementFaces(e blockmodel.Element, texture textureIndexer) []elementFace {
	x0, y0, z0 := e.From[0]/16, e.From[1]/16, e.From[2]/16
	x1, y1, z1 := e.To[0]/16, e.To[1]/16, e.To[2]/16

	var out []elementFace
	for _, dir := range world.Directions {
		face, ok := e.Faces[dir.String()]
		if !ok {
			continue
		}

		// top-left, bottom-left, bottom-right, top-right as seen from outside
		var c [4]mgl32.Vec3
		switch dir {
		case world.North:
			c = [4]mgl32.Vec3{{x1, y1, z0}, {x1, y0, z0}, {x0, y0, z0}, {x0, y1, z0}}
		case world.South:
			c = [4]mgl32.Vec3{{x0, y1, z1}, {x0, y0, z1}, {x1, y0, z1}, {x1, y1, z1}}
		case world.East:
			c = [4]mgl32.Vec3{{x1, y1, z1}, {x1, y0, z1}, {x1, y0, z0}, {x1, y1, z0}}
		case world.West:
			c = [4]mgl32.Vec3{{x0, y1, z0}, {x0, y0, z0}, {x0, y0, z1}, {x0, y1, z1}}
		case world.Up:
			c = [4]mgl32.Vec3{{x0, y1, z0}, {x0, y1, z1}, {x1, y1, z1}, {x1, y1, z0}}
		case world.Down:
			c = [4]mgl32.Vec3{{x0, y0, z1}, {x0, y0, z0}, {x1, y0, z0}, {x1, y0, z1}}
		}

		uv := faceUV(e, dir, face)
		uvs := [4]mgl32.Vec2{{uv[0], uv[1]}, {uv[0], uv[3]}, {uv[2], uv[3]}, {uv[2], uv[1]}}
		shift := ((face.Rotation/90)%4 + 4) % 4
		var rotated [4]mgl32.Vec2
		for i := range uvs {
			rotated[i] = uvs[(i+shift)%4]
		}

		dx, dy, dz := dir.Offset()
		normal := mgl32.Vec3{float32(dx), float32(dy), float32(dz)}
		tex := texture(face.Texture)

		quad := [4]Vertex{}
		for i := range quad {
			quad[i] = Vertex{Position: c[i], UV: rotated[i], Normal: normal, Texture: tex}
		}
		out = append(out, elementFace{
			dir:   dir,
			verts: []Vertex{quad[0], quad[1], quad[2], quad[2], quad[3], quad[0]},
		})
	}
	return out
}

// faceUV returns (u0, v0, u1, v1) normalized to 0..1, defaulting to the
// element's extent projected onto the face.
func faceUV(e blockmodel.Element, dir world.Direction, face blockmodel.Face) [4]float32 {
	var uv [4]float32
	if face.UV != nil {
		uv = *face.UV
	} else {
		f, t := e.From, e.To
		switch dir {
		case world.Up:
			uv = [4]float32{f[0], f[2], t[0], t[2]}
		case world.Down:
			uv = [4]float32{f[0], 16 - t[2], t[0], 16 - f[2]}
		case world.North:
			uv = [4]float32{16 - t[0], 16 - t[1], 16 - f[0], 16 - f[1]}
		case world.South:
			uv = [4]float32{f[0], 16 - t[1], t[0], 16 - f[1]}
		case world.West:
			uv = [4]float32{f[2], 16 - t[1], t[2], 16 - f[1]}
		case world.East:
			uv = [4]float32{16 - t[2], 16 - t[1], 16 - f[2], 16 - f[1]}
		}
	}
	for i := range uv {
		uv[i] /= 16
	}
	return uv
}
