package main

import (
	"flag"
	"log"
	"runtime"

	"vulkan-triangle/mesh"

	vk "github.com/vulkan-go/vulkan"
)

func init() {
	// This is needed to arrange that main() runs on main thread.
	// See documentation for functions that are only allowed to be called
	// from the main thread.
	runtime.LockOSThread()

	flag.BoolVar(&args.debug, "debug", false, "Enable Vulkan validation layers")
	flag.IntVar(&args.width, "width", 1024, "Initial window width")
	flag.IntVar(&args.height, "height", 768, "Initial window height")
	flag.StringVar(&args.mesh, "mesh", "",
		"Name of an embedded OBJ asset to draw instead of the built-in triangle")
}

var args struct {
	debug  bool
	width  int
	height int
	mesh   string
}

const title = "Vulkan Triangle"

func main() {
	flag.Parse()

	vertices := mesh.Triangle()
	if args.mesh != "" {
		loaded, err := mesh.Load(args.mesh)
		if err != nil {
			log.Fatalf("ERROR: loading mesh: %s", err)
		}
		vertices = loaded
	}

	app := &TriangleApp{
		width:                  args.width,
		height:                 args.height,
		enableValidationLayers: args.debug,
		validationLayers: []string{
			"VK_LAYER_KHRONOS_validation\x00",
		},
		deviceExtensions: []string{
			vk.KhrSwapchainExtensionName + "\x00",
		},
		vertices:       vertices,
		physicalDevice: vk.PhysicalDevice(vk.NullHandle),
		device:         vk.Device(vk.NullHandle),
		surface:        vk.NullSurface,
		swapChain:      vk.NullSwapchain,
	}
	if err := app.Run(); err != nil {
		log.Fatalf("ERROR: %s", err)
	}
}
