package mesh

import (
	"testing"

	"github.com/stretchr/testify/require"
	vk "github.com/vulkan-go/vulkan"
	"github.com/xlab/linmath"
)

func TestTriangle(t *testing.T) {
	vertices := Triangle()
	require.Len(t, vertices, 3)

	require.Equal(t, linmath.Vec2{-0.5, -0.5}, vertices[0].Pos)
	require.Equal(t, linmath.Vec2{0, 0.5}, vertices[1].Pos)
	require.Equal(t, linmath.Vec2{0.5, -0.25}, vertices[2].Pos)

	// Every vertex carries a distinct color.
	require.NotEqual(t, vertices[0].Color, vertices[1].Color)
	require.NotEqual(t, vertices[1].Color, vertices[2].Color)
}

func TestLoadEmbeddedTriangle(t *testing.T) {
	vertices, err := Load("triangle.obj")
	require.NoError(t, err)

	expected := Triangle()
	require.Len(t, vertices, len(expected))
	for i := range expected {
		require.Equalf(t, expected[i].Pos, vertices[i].Pos, "vertex %d", i)
	}
}

func TestLoadMissingAsset(t *testing.T) {
	_, err := Load("no-such.obj")
	require.Error(t, err)
}

func TestVertexLayout(t *testing.T) {
	require.Equal(t, uint32(20), VertexSize(), "2 + 3 float32 components")

	binding := BindingDescription()
	require.Equal(t, uint32(0), binding.Binding)
	require.Equal(t, VertexSize(), binding.Stride)
	require.Equal(t, vk.VertexInputRateVertex, binding.InputRate)

	attrs := AttributeDescriptions()
	require.Equal(t, uint32(0), attrs[0].Offset)
	require.Equal(t, vk.FormatR32g32Sfloat, attrs[0].Format)
	require.Equal(t, uint32(8), attrs[1].Offset)
	require.Equal(t, vk.FormatR32g32b32Sfloat, attrs[1].Format)
}
