package main

import (
	"cmp"
	"fmt"
	"math"

	"vulkan-triangle/frameloop"

	vk "github.com/vulkan-go/vulkan"
)

// swapChainSupportDetails describes a present surface. The type is suitable
// for passing around many details of the surface between functions.
type swapChainSupportDetails struct {
	capabilities vk.SurfaceCapabilities
	formats      []vk.SurfaceFormat
	presentModes []vk.PresentMode
}

func (a *TriangleApp) createSwapChain() error {
	swapChainSupport := a.querySwapChainSupport(a.physicalDevice)

	surfaceFormat := a.chooseSwapSurfaceFormat(swapChainSupport.formats)
	presentMode := a.chooseSwapPresentMode(swapChainSupport.presentModes)
	extend := a.chooseSwapExtend(swapChainSupport.capabilities)

	imageCount := swapChainSupport.capabilities.MinImageCount + 1
	if swapChainSupport.capabilities.MaxImageCount > 0 &&
		imageCount > swapChainSupport.capabilities.MaxImageCount {
		imageCount = swapChainSupport.capabilities.MaxImageCount
	}

	createInfo := vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          a.surface,
		MinImageCount:    imageCount,
		ImageColorSpace:  surfaceFormat.ColorSpace,
		ImageFormat:      surfaceFormat.Format,
		ImageExtent:      extend,
		ImageArrayLayers: 1,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		PreTransform:     swapChainSupport.capabilities.CurrentTransform,
		CompositeAlpha:   vk.CompositeAlphaOpaqueBit,
		PresentMode:      presentMode,
		Clipped:          vk.True,
	}

	indices := a.findQueueFamilies(a.physicalDevice)
	if indices.Graphics.Get() != indices.Present.Get() {
		createInfo.ImageSharingMode = vk.SharingModeConcurrent
		createInfo.QueueFamilyIndexCount = 2
		createInfo.PQueueFamilyIndices = []uint32{
			indices.Graphics.Get(),
			indices.Present.Get(),
		}
	} else {
		createInfo.ImageSharingMode = vk.SharingModeExclusive
	}

	var swapChain vk.Swapchain
	res := vk.CreateSwapchain(a.device, &createInfo, nil, &swapChain)
	if err := vk.Error(res); err != nil {
		return fmt.Errorf("failed to create swap chain: %w", err)
	}
	a.swapChain = swapChain

	var imagesCount uint32
	vk.GetSwapchainImages(a.device, a.swapChain, &imagesCount, nil)

	images := make([]vk.Image, imagesCount)
	vk.GetSwapchainImages(a.device, a.swapChain, &imagesCount, images)

	a.swapChainImages = images

	a.swapChainImageFormat = surfaceFormat.Format
	a.swapChainExtend = extend

	return nil
}

func (a *TriangleApp) createImageViews() error {
	a.swapChainImageViews = make([]vk.ImageView, 0, len(a.swapChainImages))

	for i, swapChainImage := range a.swapChainImages {
		swapChainImage := swapChainImage
		createInfo := vk.ImageViewCreateInfo{
			SType:    vk.StructureTypeImageViewCreateInfo,
			Image:    swapChainImage,
			ViewType: vk.ImageViewType2d,
			Format:   a.swapChainImageFormat,
			Components: vk.ComponentMapping{
				R: vk.ComponentSwizzleIdentity,
				G: vk.ComponentSwizzleIdentity,
				B: vk.ComponentSwizzleIdentity,
				A: vk.ComponentSwizzleIdentity,
			},
			SubresourceRange: vk.ImageSubresourceRange{
				AspectMask:     vk.ImageAspectFlags(vk.ImageAspectColorBit),
				BaseMipLevel:   0,
				LevelCount:     1,
				BaseArrayLayer: 0,
				LayerCount:     1,
			},
		}

		var imageView vk.ImageView
		res := vk.CreateImageView(a.device, &createInfo, nil, &imageView)
		if err := vk.Error(res); err != nil {
			return fmt.Errorf("failed to create image %d: %w", i, err)
		}

		a.swapChainImageViews = append(a.swapChainImageViews, imageView)
	}

	return nil
}

func (a *TriangleApp) createFramebuffers() error {
	a.swapChainFramebuffers = make([]vk.Framebuffer, len(a.swapChainImageViews))

	for i, swapChainView := range a.swapChainImageViews {
		swapChainView := swapChainView

		attachments := []vk.ImageView{
			swapChainView,
		}

		frameBufferInfo := vk.FramebufferCreateInfo{
			SType:           vk.StructureTypeFramebufferCreateInfo,
			RenderPass:      a.renderPass,
			AttachmentCount: 1,
			PAttachments:    attachments,
			Width:           a.swapChainExtend.Width,
			Height:          a.swapChainExtend.Height,
			Layers:          1,
		}

		var frameBuffer vk.Framebuffer
		res := vk.CreateFramebuffer(a.device, &frameBufferInfo, nil, &frameBuffer)
		if err := vk.Error(res); err != nil {
			return fmt.Errorf("failed to create frame buffer %d: %w", i, err)
		}

		a.swapChainFramebuffers[i] = frameBuffer
	}

	return nil
}

// Rebuild replaces the whole swapchain generation: swapchain, image views,
// the viewport-dependent pipeline, framebuffers, prerecorded command buffers
// and sync objects. The shader modules and the vertex buffer are reused, no
// vertex data is uploaded again. Implements frameloop.Rebuilder.
func (a *TriangleApp) Rebuild() (int, error) {
	width, height := a.window.GetFramebufferSize()
	if width == 0 || height == 0 {
		// Minimized window. The previous generation stays live and the next
		// resize event will trigger another attempt.
		return 0, frameloop.ErrDegenerateExtent
	}

	vk.DeviceWaitIdle(a.device)

	a.cleanupSwapChain()

	if err := a.createSwapChain(); err != nil {
		return 0, fmt.Errorf("createSwapChain: %w", err)
	}
	if err := a.createImageViews(); err != nil {
		return 0, fmt.Errorf("createImageViews: %w", err)
	}
	if err := a.createGraphicsPipeline(); err != nil {
		return 0, fmt.Errorf("createGraphicsPipeline: %w", err)
	}
	if err := a.createFramebuffers(); err != nil {
		return 0, fmt.Errorf("createFramebuffers: %w", err)
	}
	if err := a.createCommandBuffers(); err != nil {
		return 0, fmt.Errorf("createCommandBuffers: %w", err)
	}
	if err := a.createSyncObjects(); err != nil {
		return 0, fmt.Errorf("createSyncObjects: %w", err)
	}

	return len(a.swapChainImages), nil
}

// cleanupSwapChain destroys everything Rebuild recreates. The render pass,
// shader modules, vertex buffer and command pool survive rebuilds.
func (a *TriangleApp) cleanupSwapChain() {
	a.destroySyncObjects()

	if len(a.commandBuffers) > 0 {
		vk.FreeCommandBuffers(
			a.device,
			a.commandPool,
			uint32(len(a.commandBuffers)),
			a.commandBuffers,
		)
		a.commandBuffers = nil
	}

	vk.DestroyPipeline(a.device, a.graphicsPipeline, nil)
	vk.DestroyPipelineLayout(a.device, a.pipelineLayout, nil)

	for _, frameBuffer := range a.swapChainFramebuffers {
		vk.DestroyFramebuffer(a.device, frameBuffer, nil)
	}
	a.swapChainFramebuffers = nil

	for _, imageView := range a.swapChainImageViews {
		vk.DestroyImageView(a.device, imageView, nil)
	}
	a.swapChainImageViews = nil

	if a.swapChain != vk.NullSwapchain {
		vk.DestroySwapchain(a.device, a.swapChain, nil)
		a.swapChain = vk.NullSwapchain
	}
	a.swapChainImages = nil
}

func (a *TriangleApp) querySwapChainSupport(
	device vk.PhysicalDevice,
) swapChainSupportDetails {
	details := swapChainSupportDetails{}

	var capabilities vk.SurfaceCapabilities
	res := vk.GetPhysicalDeviceSurfaceCapabilities(device, a.surface, &capabilities)
	if err := vk.Error(res); err != nil {
		panic(fmt.Sprintf("failed to query device surface capabilities: %s", err))
	}
	capabilities.Deref()
	capabilities.CurrentExtent.Deref()
	capabilities.MinImageExtent.Deref()
	capabilities.MaxImageExtent.Deref()

	details.capabilities = capabilities

	var formatCount uint32
	res = vk.GetPhysicalDeviceSurfaceFormats(device, a.surface, &formatCount, nil)
	if err := vk.Error(res); err != nil {
		panic(fmt.Sprintf("failed to query device surface formats: %s", err))
	}

	if formatCount != 0 {
		formats := make([]vk.SurfaceFormat, formatCount)
		vk.GetPhysicalDeviceSurfaceFormats(device, a.surface, &formatCount, formats)
		for _, format := range formats {
			format.Deref()
			details.formats = append(details.formats, format)
		}
	}

	var presentModeCount uint32
	res = vk.GetPhysicalDeviceSurfacePresentModes(
		device, a.surface, &presentModeCount, nil,
	)
	if err := vk.Error(res); err != nil {
		panic(fmt.Sprintf("failed to query device surface present modes: %s", err))
	}

	if presentModeCount != 0 {
		presentModes := make([]vk.PresentMode, presentModeCount)
		vk.GetPhysicalDeviceSurfacePresentModes(
			device, a.surface, &presentModeCount, presentModes,
		)
		details.presentModes = presentModes
	}

	return details
}

func (a *TriangleApp) chooseSwapSurfaceFormat(
	availableFormats []vk.SurfaceFormat,
) vk.SurfaceFormat {
	for _, format := range availableFormats {
		if format.Format == vk.FormatB8g8r8a8Srgb &&
			format.ColorSpace == vk.ColorSpaceSrgbNonlinear {
			return format
		}
	}

	return availableFormats[0]
}

func (a *TriangleApp) chooseSwapPresentMode(
	available []vk.PresentMode,
) vk.PresentMode {
	for _, mode := range available {
		if mode == vk.PresentModeMailbox {
			return mode
		}
	}

	return vk.PresentModeFifo
}

func (a *TriangleApp) chooseSwapExtend(
	capabilities vk.SurfaceCapabilities,
) vk.Extent2D {
	if capabilities.CurrentExtent.Width != math.MaxUint32 {
		return capabilities.CurrentExtent
	}

	width, height := a.window.GetFramebufferSize()

	actualExtend := vk.Extent2D{
		Width:  uint32(width),
		Height: uint32(height),
	}

	actualExtend.Width = clamp(
		actualExtend.Width,
		capabilities.MinImageExtent.Width,
		capabilities.MaxImageExtent.Width,
	)

	actualExtend.Height = clamp(
		actualExtend.Height,
		capabilities.MinImageExtent.Height,
		capabilities.MaxImageExtent.Height,
	)

	return actualExtend
}

func clamp[T cmp.Ordered](val, min, max T) T {
	if val < min {
		val = min
	}
	if val > max {
		val = max
	}
	return val
}
