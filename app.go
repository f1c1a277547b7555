package main

import (
	"fmt"
	"log"

	"vulkan-triangle/frameloop"
	"vulkan-triangle/mesh"

	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/vulkan-go/vulkan"
)

// TriangleApp owns every Vulkan handle the program creates and drives the
// frame loop over them. Creation failures here are fatal; once the loop is
// running all recoverable conditions are handled by the frameloop package.
type TriangleApp struct {
	width  int
	height int

	// validationLayers is the list of validation layers enabled when the
	// -debug flag is set.
	validationLayers       []string
	enableValidationLayers bool

	// deviceExtensions is the list of required device extensions needed by
	// this program.
	deviceExtensions []string

	window   *glfw.Window
	instance vk.Instance

	// physicalDevice is the physical device selected for this program.
	physicalDevice vk.PhysicalDevice

	// device is the logical device created for interfacing with the physical
	// device.
	device vk.Device

	graphicsQueue vk.Queue
	presentQueue  vk.Queue

	surface vk.Surface

	swapChain            vk.Swapchain
	swapChainImages      []vk.Image
	swapChainImageViews  []vk.ImageView
	swapChainImageFormat vk.Format
	swapChainExtend      vk.Extent2D

	swapChainFramebuffers []vk.Framebuffer

	renderPass     vk.RenderPass
	pipelineLayout vk.PipelineLayout

	graphicsPipeline vk.Pipeline

	// The shader modules are created once and cached across swapchain
	// rebuilds; only the viewport-dependent pipeline is recreated.
	vertShaderModule vk.ShaderModule
	fragShaderModule vk.ShaderModule

	vertices           []mesh.Vertex
	vertexBuffer       vk.Buffer
	vertexBufferMemory vk.DeviceMemory

	commandPool vk.CommandPool

	// commandBuffers holds one prerecorded command buffer per framebuffer.
	// They are recorded when the swapchain generation is built, never per
	// frame.
	commandBuffers []vk.CommandBuffer

	// imageAvailableSems is a ring of acquire semaphores; acquireSems maps a
	// frame slot to the semaphore its image was acquired with. The
	// renderFinished semaphores and in-flight fences are per frame slot.
	imageAvailableSems []vk.Semaphore
	acquireSems        []vk.Semaphore
	acquireCursor      int
	renderFinishedSems []vk.Semaphore
	inFlightFences     []vk.Fence

	loop *frameloop.Controller
}

// Run runs the vulkan program.
func (a *TriangleApp) Run() error {
	if err := a.initWindow(); err != nil {
		return fmt.Errorf("initWindow: %w", err)
	}
	defer a.cleanWindow()

	if err := a.initVulkan(); err != nil {
		return fmt.Errorf("initVulkan: %w", err)
	}
	defer a.cleanVulkan()

	if err := a.mainLoop(); err != nil {
		return fmt.Errorf("mainLoop: %w", err)
	}

	return nil
}

func (a *TriangleApp) initWindow() error {
	if err := glfw.Init(); err != nil {
		return fmt.Errorf("glfw.Init: %w", err)
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.True)

	window, err := glfw.CreateWindow(a.width, a.height, title, nil, nil)
	if err != nil {
		return fmt.Errorf("creating window: %w", err)
	}

	a.window = window
	return nil
}

func (a *TriangleApp) cleanWindow() {
	a.window.Destroy()
	glfw.Terminate()
}

func (a *TriangleApp) initVulkan() error {
	vk.SetGetInstanceProcAddr(glfw.GetVulkanGetInstanceProcAddress())

	if err := vk.Init(); err != nil {
		return fmt.Errorf("failed to init Vulkan Go: %w", err)
	}

	if err := a.createInstance(); err != nil {
		return fmt.Errorf("createInstance: %w", err)
	}

	if err := a.createSurface(); err != nil {
		return fmt.Errorf("createSurface: %w", err)
	}

	if err := a.pickPhysicalDevice(); err != nil {
		return fmt.Errorf("pickPhysicalDevice: %w", err)
	}

	if err := a.createLogicalDevice(); err != nil {
		return fmt.Errorf("createLogicalDevice: %w", err)
	}

	if err := a.createSwapChain(); err != nil {
		return fmt.Errorf("createSwapChain: %w", err)
	}

	if err := a.createImageViews(); err != nil {
		return fmt.Errorf("createImageViews: %w", err)
	}

	if err := a.createRenderPass(); err != nil {
		return fmt.Errorf("createRenderPass: %w", err)
	}

	if err := a.loadShaderModules(); err != nil {
		return fmt.Errorf("loadShaderModules: %w", err)
	}

	if err := a.createGraphicsPipeline(); err != nil {
		return fmt.Errorf("createGraphicsPipeline: %w", err)
	}

	if err := a.createFramebuffers(); err != nil {
		return fmt.Errorf("createFramebuffers: %w", err)
	}

	if err := a.createCommandPool(); err != nil {
		return fmt.Errorf("createCommandPool: %w", err)
	}

	if err := a.createVertexBuffer(); err != nil {
		return fmt.Errorf("createVertexBuffer: %w", err)
	}

	if err := a.createCommandBuffers(); err != nil {
		return fmt.Errorf("createCommandBuffers: %w", err)
	}

	if err := a.createSyncObjects(); err != nil {
		return fmt.Errorf("createSyncObjects: %w", err)
	}

	return nil
}

func (a *TriangleApp) cleanVulkan() {
	a.cleanupSwapChain()

	vk.DestroyShaderModule(a.device, a.vertShaderModule, nil)
	vk.DestroyShaderModule(a.device, a.fragShaderModule, nil)

	vk.DestroyRenderPass(a.device, a.renderPass, nil)

	vk.DestroyBuffer(a.device, a.vertexBuffer, nil)
	vk.FreeMemory(a.device, a.vertexBufferMemory, nil)

	vk.DestroyCommandPool(a.device, a.commandPool, nil)

	if a.device != vk.Device(vk.NullHandle) {
		vk.DestroyDevice(a.device, nil)
	}
	if a.surface != vk.NullSurface {
		vk.DestroySurface(a.instance, a.surface, nil)
	}
	vk.DestroyInstance(a.instance, nil)
}

func (a *TriangleApp) mainLoop() error {
	log.Printf("main loop!\n")

	a.loop = frameloop.New(a, a)
	a.window.SetFramebufferSizeCallback(func(*glfw.Window, int, int) {
		a.loop.RequestResize()
	})

	for !a.window.ShouldClose() {
		if err := a.loop.Iterate(); err != nil {
			return fmt.Errorf("error drawing a frame: %w", err)
		}

		glfw.PollEvents()
	}

	vk.DeviceWaitIdle(a.device)

	return nil
}
