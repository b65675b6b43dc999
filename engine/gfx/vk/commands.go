package vkbackend

import vk "github.com/goki/vulkan"

func (c *Context) createCommands() error {
	poolInfo := vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
		QueueFamilyIndex: c.gpus[c.gpu].queueFamily,
	}
	var pool vk.CommandPool
	if err := check("vkCreateCommandPool", vk.CreateCommandPool(c.device, &poolInfo, nil, &pool)); err != nil {
		return err
	}
	c.cmdPool = pool

	allocInfo := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        pool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: 1,
	}
	cmds := make([]vk.CommandBuffer, 1)
	if err := check("vkAllocateCommandBuffers", vk.AllocateCommandBuffers(c.device, &allocInfo, cmds)); err != nil {
		return err
	}
	c.cmd = cmds[0]
	return nil
}

// createSyncObjects creates the two frame semaphores and the in-flight
// fence. The fence starts signaled so the first frame does not wait.
func (c *Context) createSyncObjects() error {
	semInfo := vk.SemaphoreCreateInfo{SType: vk.StructureTypeSemaphoreCreateInfo}
	if err := check("vkCreateSemaphore", vk.CreateSemaphore(c.device, &semInfo, nil, &c.imageAvailable)); err != nil {
		return err
	}
	if err := check("vkCreateSemaphore", vk.CreateSemaphore(c.device, &semInfo, nil, &c.renderFinished)); err != nil {
		return err
	}
	fenceInfo := vk.FenceCreateInfo{
		SType: vk.StructureTypeFenceCreateInfo,
		Flags: vk.FenceCreateFlags(vk.FenceCreateSignaledBit),
	}
	return check("vkCreateFence", vk.CreateFence(c.device, &fenceInfo, nil, &c.inFlight))
}

func (c *Context) destroySyncObjects() {
	if c.inFlight != vk.Fence(vk.NullHandle) {
		vk.DestroyFence(c.device, c.inFlight, nil)
		c.inFlight = vk.Fence(vk.NullHandle)
	}
	if c.renderFinished != vk.Semaphore(vk.NullHandle) {
		vk.DestroySemaphore(c.device, c.renderFinished, nil)
		c.renderFinished = vk.Semaphore(vk.NullHandle)
	}
	if c.imageAvailable != vk.Semaphore(vk.NullHandle) {
		vk.DestroySemaphore(c.device, c.imageAvailable, nil)
		c.imageAvailable = vk.Semaphore(vk.NullHandle)
	}
}
