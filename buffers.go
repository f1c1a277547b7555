package main

import (
	"fmt"
	"unsafe"

	"vulkan-triangle/mesh"
	"vulkan-triangle/unsafer"

	vk "github.com/vulkan-go/vulkan"
)

// createVertexBuffer uploads the mesh into a device-local buffer through a
// staging buffer. This happens once at startup; swapchain rebuilds reuse the
// uploaded data.
func (a *TriangleApp) createVertexBuffer() error {
	bufferSize := vk.DeviceSize(uint32(len(a.vertices)) * mesh.VertexSize())

	var (
		stagingBuffer       vk.Buffer
		stagingBufferMemory vk.DeviceMemory
	)
	err := a.createBuffer(
		bufferSize,
		vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit)|
			vk.MemoryPropertyFlags(vk.MemoryPropertyHostCoherentBit),
		&stagingBuffer,
		&stagingBufferMemory,
	)
	if err != nil {
		return fmt.Errorf("creating the staging buffer: %w", err)
	}

	defer func() {
		vk.DestroyBuffer(a.device, stagingBuffer, nil)
		vk.FreeMemory(a.device, stagingBufferMemory, nil)
	}()

	// Copy the data from host to staging buffer
	var pData unsafe.Pointer
	vk.MapMemory(a.device, stagingBufferMemory, 0, bufferSize, 0, &pData)

	bytesSlice := unsafer.SliceToBytes(a.vertices)

	vk.Memcopy(pData, bytesSlice)
	vk.UnmapMemory(a.device, stagingBufferMemory)

	// Create the device local buffer
	var (
		vertexBuffer       vk.Buffer
		vertexBufferMemory vk.DeviceMemory
	)

	err = a.createBuffer(
		bufferSize,
		vk.BufferUsageFlags(vk.BufferUsageTransferDstBit)|
			vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit),
		&vertexBuffer,
		&vertexBufferMemory,
	)
	if err != nil {
		return fmt.Errorf("creating the vertex buffer: %w", err)
	}
	a.vertexBuffer = vertexBuffer
	a.vertexBufferMemory = vertexBufferMemory

	if err := a.copyBuffer(stagingBuffer, a.vertexBuffer, bufferSize); err != nil {
		return fmt.Errorf("failed to copy staging buffer into vertex: %w", err)
	}

	return nil
}

func (a *TriangleApp) createBuffer(
	size vk.DeviceSize,
	usage vk.BufferUsageFlags,
	properties vk.MemoryPropertyFlags,
	buffer *vk.Buffer,
	bufferMemory *vk.DeviceMemory,
) error {
	bufferInfo := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        size,
		Usage:       usage,
		SharingMode: vk.SharingModeExclusive,
	}

	res := vk.CreateBuffer(a.device, &bufferInfo, nil, buffer)
	if res != vk.Success {
		return fmt.Errorf("failed to create buffer: %w", vk.Error(res))
	}

	var memRequirements vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(a.device, *buffer, &memRequirements)
	memRequirements.Deref()

	memTypeIndex, err := a.findMemoryType(memRequirements.MemoryTypeBits, properties)
	if err != nil {
		return err
	}

	allocInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  memRequirements.Size,
		MemoryTypeIndex: memTypeIndex,
	}

	res = vk.AllocateMemory(a.device, &allocInfo, nil, bufferMemory)
	if res != vk.Success {
		return fmt.Errorf("failed to allocate buffer memory: %s", vk.Error(res))
	}

	res = vk.BindBufferMemory(a.device, *buffer, *bufferMemory, 0)
	if res != vk.Success {
		return fmt.Errorf("failed to bind buffer memory: %w", vk.Error(res))
	}

	return nil
}

func (a *TriangleApp) copyBuffer(
	srcBuffer vk.Buffer,
	dstBuffer vk.Buffer,
	size vk.DeviceSize,
) error {
	commandBuffer, err := a.beginSingleTimeCommands()
	if err != nil {
		return fmt.Errorf("failed to begin single time commands: %w", err)
	}

	copyRegion := vk.BufferCopy{
		SrcOffset: 0,
		DstOffset: 0,
		Size:      size,
	}

	vk.CmdCopyBuffer(commandBuffer, srcBuffer, dstBuffer, 1, []vk.BufferCopy{copyRegion})

	return a.endSingleTimeCommands(commandBuffer)
}

func (a *TriangleApp) findMemoryType(
	typeFilter uint32,
	properties vk.MemoryPropertyFlags,
) (uint32, error) {
	var memProperties vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(a.physicalDevice, &memProperties)
	memProperties.Deref()

	for i := uint32(0); i < memProperties.MemoryTypeCount; i++ {
		memType := memProperties.MemoryTypes[i]
		memType.Deref()

		if typeFilter&(1<<i) == 0 {
			continue
		}

		if memType.PropertyFlags&properties != properties {
			continue
		}

		return i, nil
	}

	return 0, fmt.Errorf("failed to find suitable memory type")
}
