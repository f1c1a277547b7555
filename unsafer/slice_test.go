package unsafer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSliceToBytes(t *testing.T) {
	input := []uint32{0x04030201, 0x08070605}
	bytes := SliceToBytes(input)

	require.Len(t, bytes, 8)
	require.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8}, bytes)
}

func TestSliceBytesToUint32(t *testing.T) {
	data := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	words := SliceBytesToUint32(data)

	require.Equal(t, []uint32{0x04030201, 0x08070605}, words)
}
