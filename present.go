package main

import (
	"fmt"
	"math"

	"vulkan-triangle/frameloop"
	"vulkan-triangle/vkerr"

	vk "github.com/vulkan-go/vulkan"
)

// fenceSignal adapts a Vulkan fence to the frameloop.Signal contract. The
// fence is signaled once the queue submission for its frame slot has
// finished executing on the device.
type fenceSignal struct {
	device vk.Device
	fence  vk.Fence
}

func (s fenceSignal) Wait() error {
	res := vk.WaitForFences(s.device, 1, []vk.Fence{s.fence}, vk.True, math.MaxUint64)
	return vkerr.Result(res)
}

func (a *TriangleApp) createSyncObjects() error {
	imageCount := len(a.swapChainImages)

	semaphoreInfo := vk.SemaphoreCreateInfo{
		SType: vk.StructureTypeSemaphoreCreateInfo,
	}

	fenceInfo := vk.FenceCreateInfo{
		SType: vk.StructureTypeFenceCreateInfo,
		Flags: vk.FenceCreateFlags(vk.FenceCreateSignaledBit),
	}

	a.imageAvailableSems = make([]vk.Semaphore, imageCount)
	a.acquireSems = make([]vk.Semaphore, imageCount)
	a.renderFinishedSems = make([]vk.Semaphore, imageCount)
	a.inFlightFences = make([]vk.Fence, imageCount)
	a.acquireCursor = 0

	for i := 0; i < imageCount; i++ {
		var imageAvailableSem vk.Semaphore
		if err := vk.Error(
			vk.CreateSemaphore(a.device, &semaphoreInfo, nil, &imageAvailableSem),
		); err != nil {
			return fmt.Errorf("failed to create image available semaphore %d: %w", i, err)
		}
		a.imageAvailableSems[i] = imageAvailableSem

		var renderFinishedSem vk.Semaphore
		if err := vk.Error(
			vk.CreateSemaphore(a.device, &semaphoreInfo, nil, &renderFinishedSem),
		); err != nil {
			return fmt.Errorf("failed to create render finished semaphore %d: %w", i, err)
		}
		a.renderFinishedSems[i] = renderFinishedSem

		var fence vk.Fence
		if err := vk.Error(
			vk.CreateFence(a.device, &fenceInfo, nil, &fence),
		); err != nil {
			return fmt.Errorf("failed to create in flight fence %d: %w", i, err)
		}
		a.inFlightFences[i] = fence
	}

	return nil
}

func (a *TriangleApp) destroySyncObjects() {
	for _, sem := range a.imageAvailableSems {
		vk.DestroySemaphore(a.device, sem, nil)
	}
	a.imageAvailableSems = nil
	a.acquireSems = nil

	for _, sem := range a.renderFinishedSems {
		vk.DestroySemaphore(a.device, sem, nil)
	}
	a.renderFinishedSems = nil

	for _, fence := range a.inFlightFences {
		vk.DestroyFence(a.device, fence, nil)
	}
	a.inFlightFences = nil
}

// ImageCount implements frameloop.Presenter.
func (a *TriangleApp) ImageCount() int {
	return len(a.swapChainImages)
}

// Acquire implements frameloop.Presenter. The acquire semaphore is taken
// from a ring because the image index is not known before the call; once it
// is, the semaphore is parked on the slot for Submit to wait on.
func (a *TriangleApp) Acquire() (int, bool, error) {
	sem := a.imageAvailableSems[a.acquireCursor]

	var imageIndex uint32
	res := vk.AcquireNextImage(
		a.device,
		a.swapChain,
		math.MaxUint64,
		sem,
		vk.Fence(vk.NullHandle),
		&imageIndex,
	)

	switch {
	case vkerr.IsOutOfDate(res):
		return 0, false, frameloop.ErrOutOfDate
	case vkerr.IsDeviceLost(res):
		return 0, false, fmt.Errorf(
			"acquiring next image: %w: %s", frameloop.ErrDeviceLost, vk.Error(res),
		)
	case res != vk.Success && !vkerr.IsSuboptimal(res):
		return 0, false, fmt.Errorf("acquiring next image: %w", vk.Error(res))
	}

	a.acquireSems[imageIndex] = sem
	a.acquireCursor = (a.acquireCursor + 1) % len(a.imageAvailableSems)

	return int(imageIndex), vkerr.IsSuboptimal(res), nil
}

// Submit implements frameloop.Presenter. Work submitted to a single Vulkan
// queue executes in submission order, so the after signal does not need a
// host-side wait here; it orders the controller's bookkeeping, the queue
// orders the GPU.
func (a *TriangleApp) Submit(slot int, after frameloop.Signal) error {
	_ = after

	fence := a.inFlightFences[slot]

	// The controller may have dropped the slot's signal after a failed
	// present while the fence is still pending. Wait it out before the
	// reset, resetting a pending fence is invalid.
	vk.WaitForFences(a.device, 1, []vk.Fence{fence}, vk.True, math.MaxUint64)
	vk.ResetFences(a.device, 1, []vk.Fence{fence})

	submitInfo := vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{a.acquireSems[slot]},
		PWaitDstStageMask: []vk.PipelineStageFlags{
			vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		},
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{a.commandBuffers[slot]},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{a.renderFinishedSems[slot]},
	}

	res := vk.QueueSubmit(a.graphicsQueue, 1, []vk.SubmitInfo{submitInfo}, fence)
	switch {
	case vkerr.IsDeviceLost(res):
		return fmt.Errorf("queue submit: %w: %s", frameloop.ErrDeviceLost, vk.Error(res))
	case res != vk.Success:
		return fmt.Errorf("queue submit: %w", vk.Error(res))
	}

	return nil
}

// Present implements frameloop.Presenter.
func (a *TriangleApp) Present(slot int) (frameloop.Signal, error) {
	presentInfo := vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{a.renderFinishedSems[slot]},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{a.swapChain},
		PImageIndices:      []uint32{uint32(slot)},
	}

	res := vk.QueuePresent(a.presentQueue, &presentInfo)
	switch {
	// A suboptimal present still showed the frame, but the swapchain should
	// be rebuilt just the same as for an out-of-date one.
	case vkerr.IsOutOfDate(res) || vkerr.IsSuboptimal(res):
		return nil, frameloop.ErrOutOfDate
	case vkerr.IsDeviceLost(res):
		return nil, fmt.Errorf(
			"queue present: %w: %s", frameloop.ErrDeviceLost, vk.Error(res),
		)
	case res != vk.Success:
		return nil, fmt.Errorf("queue present: %w", vk.Error(res))
	}

	return fenceSignal{device: a.device, fence: a.inFlightFences[slot]}, nil
}
