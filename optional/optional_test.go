package optional

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOptional(t *testing.T) {
	var opt Optional[uint32]

	require.False(t, opt.HasValue())
	require.Equal(t, uint32(42), opt.GetOr(42))
	require.Panics(t, func() { opt.Get() })

	opt.Set(7)
	require.True(t, opt.HasValue())
	require.Equal(t, uint32(7), opt.Get())
	require.Equal(t, uint32(7), opt.GetOr(42))
}
