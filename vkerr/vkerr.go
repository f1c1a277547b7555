// Package vkerr maps VkResult values into Go errors and classifies the
// handful of results the frame loop treats specially.
package vkerr

import (
	vk "github.com/vulkan-go/vulkan"
)

// Result returns nil when res is a success code and a descriptive error
// otherwise.
func Result(res vk.Result) error {
	return vk.Error(res)
}

// IsOutOfDate reports whether res means the swapchain no longer matches the
// surface and must be recreated before any further use.
func IsOutOfDate(res vk.Result) bool {
	return res == vk.ErrorOutOfDate
}

// IsSuboptimal reports whether res means the swapchain still works but no
// longer matches the surface properties exactly. Presentation succeeded and
// the image is usable; recreation should happen on the next iteration.
func IsSuboptimal(res vk.Result) bool {
	return res == vk.Suboptimal
}

// IsDeviceLost reports whether res indicates the logical or physical device
// has been lost. The loop recovers from these the same way it recovers from
// transient failures, but they are logged distinctly because a lost device
// usually does not come back.
func IsDeviceLost(res vk.Result) bool {
	return res == vk.ErrorDeviceLost || res == vk.ErrorSurfaceLost
}
