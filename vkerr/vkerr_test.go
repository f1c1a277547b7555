package vkerr

import (
	"testing"

	"github.com/stretchr/testify/require"
	vk "github.com/vulkan-go/vulkan"
)

func TestResult(t *testing.T) {
	require.NoError(t, Result(vk.Success))
	require.Error(t, Result(vk.ErrorOutOfDate))
	require.Error(t, Result(vk.ErrorDeviceLost))
}

func TestClassification(t *testing.T) {
	for _, tc := range []struct {
		name       string
		res        vk.Result
		outOfDate  bool
		suboptimal bool
		deviceLost bool
	}{
		{name: "success", res: vk.Success},
		{name: "out of date", res: vk.ErrorOutOfDate, outOfDate: true},
		{name: "suboptimal", res: vk.Suboptimal, suboptimal: true},
		{name: "device lost", res: vk.ErrorDeviceLost, deviceLost: true},
		{name: "surface lost", res: vk.ErrorSurfaceLost, deviceLost: true},
		{name: "out of memory", res: vk.ErrorOutOfDeviceMemory},
	} {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.outOfDate, IsOutOfDate(tc.res))
			require.Equal(t, tc.suboptimal, IsSuboptimal(tc.res))
			require.Equal(t, tc.deviceLost, IsDeviceLost(tc.res))
		})
	}
}
