// Package mesh holds the static geometry the program draws: a built-in
// triangle and a tiny OBJ loader for the embedded assets.
package mesh

import (
	"embed"
	"fmt"
	"unsafe"

	"github.com/mokiat/go-data-front/decoder/obj"
	vk "github.com/vulkan-go/vulkan"
	"github.com/xlab/linmath"
)

// FS contains the mesh assets. Embedding them keeps the binary portable
// between machines.
//
//go:embed triangle.obj
var FS embed.FS

// Vertex is a single point of the mesh as laid out in the vertex buffer.
type Vertex struct {
	Pos   linmath.Vec2
	Color linmath.Vec3
}

// palette colors vertices of loaded models in order. The built-in triangle
// uses the same three colors.
var palette = []linmath.Vec3{
	{1, 0, 0},
	{0, 1, 0},
	{0, 0, 1},
}

// Triangle returns the fixed single-triangle mesh.
func Triangle() []Vertex {
	return []Vertex{
		{
			Pos:   linmath.Vec2{-0.5, -0.5},
			Color: palette[0],
		},
		{
			Pos:   linmath.Vec2{0, 0.5},
			Color: palette[1],
		},
		{
			Pos:   linmath.Vec2{0.5, -0.25},
			Color: palette[2],
		},
	}
}

// Load decodes one of the embedded OBJ assets into a triangle list. Faces
// are kept in declaration order and vertices are projected onto the XY
// plane the pipeline draws in.
func Load(name string) ([]Vertex, error) {
	file, err := FS.Open(name)
	if err != nil {
		return nil, fmt.Errorf("opening mesh asset %q: %w", name, err)
	}
	defer file.Close()

	model, err := obj.NewDecoder(obj.DefaultLimits()).Decode(file)
	if err != nil {
		return nil, fmt.Errorf("decoding mesh asset %q: %w", name, err)
	}

	var vertices []Vertex
	for _, object := range model.Objects {
		for _, objMesh := range object.Meshes {
			for _, face := range objMesh.Faces {
				if len(face.References) != 3 {
					return nil, fmt.Errorf(
						"mesh asset %q: face with %d vertices, triangles only",
						name, len(face.References),
					)
				}
				for _, ref := range face.References {
					vertex := model.GetVertexFromReference(ref)
					vertices = append(vertices, Vertex{
						Pos:   linmath.Vec2{float32(vertex.X), float32(vertex.Y)},
						Color: palette[len(vertices)%len(palette)],
					})
				}
			}
		}
	}

	if len(vertices) == 0 {
		return nil, fmt.Errorf("mesh asset %q contains no faces", name)
	}

	return vertices, nil
}

// VertexSize returns the stride of one Vertex in the vertex buffer.
func VertexSize() uint32 {
	return uint32(unsafe.Sizeof(Vertex{}))
}

// BindingDescription describes the single vertex buffer binding.
func BindingDescription() vk.VertexInputBindingDescription {
	return vk.VertexInputBindingDescription{
		Binding:   0,
		Stride:    VertexSize(),
		InputRate: vk.VertexInputRateVertex,
	}
}

// AttributeDescriptions describes the per-vertex attributes as consumed by
// the vertex shader.
func AttributeDescriptions() [2]vk.VertexInputAttributeDescription {
	return [2]vk.VertexInputAttributeDescription{
		{
			Binding:  0,
			Location: 0,
			Format:   vk.FormatR32g32Sfloat,
			Offset:   uint32(unsafe.Offsetof(Vertex{}.Pos)),
		},
		{
			Binding:  0,
			Location: 1,
			Format:   vk.FormatR32g32b32Sfloat,
			Offset:   uint32(unsafe.Offsetof(Vertex{}.Color)),
		},
	}
}
