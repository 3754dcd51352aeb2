//go:build !nogpu

package render

import (
	_ "embed"
	"encoding/binary"
	"fmt"
	"math"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	_ "github.com/gogpu/wgpu/hal/vulkan"

	"github.com/Xterminate1818/fishbowl/internal/bowl"
)

//go:embed shaders/circles.wgsl
var circleShaderSource string

// Per-instance layout:
//
//	center (vec2<f32>) = 8 bytes  (location 1)
//	radius (f32)       = 4 bytes  (location 2)
//	color  (vec4<f32>) = 16 bytes (location 3)
const instanceStride = 28

// quadStride is one corner (vec2<f32>) at location 0.
const quadStride = 8

// uniformSize holds viewport (vec2<f32>) plus padding.
const uniformSize = 16

const targetFormat = gputypes.TextureFormatRGBA8Unorm

// quadCorners are two triangles covering [-1, 1]^2.
var quadCorners = [6][2]float32{
	{-1, -1}, {1, -1}, {-1, 1},
	{1, -1}, {1, 1}, {-1, 1},
}

// GPU draws circles as instanced quads and copies each frame back to host
// memory. The instance buffer only grows.
type GPU struct {
	device  hal.Device
	queue   hal.Queue
	adapter string
	release func()

	shader        hal.ShaderModule
	uniformLayout hal.BindGroupLayout
	pipeLayout    hal.PipelineLayout
	pipeline      hal.RenderPipeline

	quadBuf    hal.Buffer
	uniformBuf hal.Buffer
	bindGroup  hal.BindGroup

	instanceBuf hal.Buffer
	instanceCap int
	allocations int
	scratch     []byte

	target      hal.Texture
	targetView  hal.TextureView
	staging     hal.Buffer
	width       uint32
	height      uint32
	bytesPerRow uint32
}

// NewGPU opens a standalone Vulkan device. It returns an error wrapping
// bowl.ErrNoAdapter when no usable adapter exists.
func NewGPU(width, height, maxCircles int) (*GPU, error) {
	if err := validateSize(width, height); err != nil {
		return nil, err
	}

	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, fmt.Errorf("%w: vulkan backend not registered", bowl.ErrNoAdapter)
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("%w: create instance: %v", bowl.ErrNoAdapter, err)
	}

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, fmt.Errorf("%w: no adapters found", bowl.ErrNoAdapter)
	}

	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("%w: open device: %v", bowl.ErrNoAdapter, err)
	}

	g, err := newGPU(openDev.Device, openDev.Queue, selected.Info.Name, width, height, maxCircles)
	if err != nil {
		openDev.Device.Destroy()
		instance.Destroy()
		return nil, err
	}
	g.release = func() {
		openDev.Device.Destroy()
		instance.Destroy()
	}
	bowl.Logger().Info("gpu adapter selected", "adapter", selected.Info.Name)
	return g, nil
}

func newGPU(device hal.Device, queue hal.Queue, adapter string, width, height, maxCircles int) (*GPU, error) {
	g := &GPU{device: device, queue: queue, adapter: adapter}
	if err := g.createPipeline(); err != nil {
		g.destroy()
		return nil, fmt.Errorf("create pipeline: %w", err)
	}
	if err := g.createStatic(); err != nil {
		g.destroy()
		return nil, fmt.Errorf("create static buffers: %w", err)
	}
	if err := g.Resize(width, height, maxCircles); err != nil {
		g.destroy()
		return nil, err
	}
	return g, nil
}

func (g *GPU) Name() string { return "gpu (" + g.adapter + ")" }

// InstanceCapacity is the number of circles the instance buffer holds.
func (g *GPU) InstanceCapacity() int { return g.instanceCap }

// InstanceAllocations counts instance buffer (re)allocations.
func (g *GPU) InstanceAllocations() int { return g.allocations }

func (g *GPU) Resize(width, height, maxCircles int) error {
	if err := validateSize(width, height); err != nil {
		return err
	}
	if err := g.ensureTarget(uint32(width), uint32(height)); err != nil {
		return fmt.Errorf("ensure target: %w", err)
	}
	if err := g.reserve(maxCircles); err != nil {
		return fmt.Errorf("reserve instances: %w", err)
	}
	if err := g.queue.WriteBuffer(g.uniformBuf, 0, viewportUniform(g.width, g.height)); err != nil {
		return fmt.Errorf("write viewport: %w", err)
	}
	return nil
}

func (g *GPU) Draw(circles []bowl.Circle) ([]byte, error) {
	if err := g.reserve(len(circles)); err != nil {
		return nil, fmt.Errorf("reserve instances: %w", err)
	}
	if len(circles) > 0 {
		g.scratch = encodeInstances(g.scratch[:0], circles)
		if err := g.queue.WriteBuffer(g.instanceBuf, 0, g.scratch); err != nil {
			return nil, fmt.Errorf("write instances: %w", err)
		}
	}

	encoder, err := g.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "circles_encoder",
	})
	if err != nil {
		return nil, fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("circles"); err != nil {
		return nil, fmt.Errorf("begin encoding: %w", err)
	}

	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "circles_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{
			{
				View:       g.targetView,
				LoadOp:     gputypes.LoadOpClear,
				StoreOp:    gputypes.StoreOpStore,
				ClearValue: gputypes.Color{R: 0, G: 0, B: 0, A: 1},
			},
		},
	})
	if len(circles) > 0 {
		rp.SetPipeline(g.pipeline)
		rp.SetBindGroup(0, g.bindGroup, nil)
		rp.SetVertexBuffer(0, g.quadBuf, 0)
		rp.SetVertexBuffer(1, g.instanceBuf, 0)
		rp.Draw(uint32(len(quadCorners)), uint32(len(circles)), 0, 0)
	}
	rp.End()

	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: g.target,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})
	encoder.CopyTextureToBuffer(g.target, g.staging, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: g.bytesPerRow, RowsPerImage: g.height},
		TextureBase:  hal.ImageCopyTexture{Texture: g.target, MipLevel: 0},
		Size:         hal.Extent3D{Width: g.width, Height: g.height, DepthOrArrayLayers: 1},
	}})

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return nil, fmt.Errorf("end encoding: %w", err)
	}
	defer g.device.FreeCommandBuffer(cmdBuf)

	if _, err := g.queue.Submit([]hal.CommandBuffer{cmdBuf}); err != nil {
		return nil, fmt.Errorf("submit: %w", err)
	}
	// The frame blocks until the copy lands; there is no timeout.
	if err := g.device.WaitIdle(); err != nil {
		return nil, fmt.Errorf("%w: wait for gpu: %v", bowl.ErrReadback, err)
	}
	return g.readback()
}

// readback maps the staging buffer and copies the frame out without row
// padding.
func (g *GPU) readback() ([]byte, error) {
	size := uint64(g.bytesPerRow) * uint64(g.height)
	mapping, err := g.device.MapBuffer(g.staging, 0, size)
	if err != nil {
		return nil, fmt.Errorf("%w: map staging buffer: %v", bowl.ErrReadback, err)
	}
	padded := unsafe.Slice((*byte)(mapping.Ptr), size)
	frame := unpadRows(padded, int(g.width), int(g.height), int(g.bytesPerRow))
	if err := g.device.UnmapBuffer(g.staging); err != nil {
		return nil, fmt.Errorf("%w: unmap staging buffer: %v", bowl.ErrReadback, err)
	}
	return frame, nil
}

func (g *GPU) Close() {
	g.destroy()
	if g.release != nil {
		g.release()
		g.release = nil
	}
}

func (g *GPU) createPipeline() error {
	if circleShaderSource == "" {
		return fmt.Errorf("circle shader source is empty")
	}

	shader, err := g.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "circles_shader",
		Source: hal.ShaderSource{WGSL: circleShaderSource},
	})
	if err != nil {
		return fmt.Errorf("compile circle shader: %w", err)
	}
	g.shader = shader

	uniformLayout, err := g.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "circles_uniform_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create uniform layout: %w", err)
	}
	g.uniformLayout = uniformLayout

	pipeLayout, err := g.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "circles_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{g.uniformLayout},
	})
	if err != nil {
		return fmt.Errorf("create pipeline layout: %w", err)
	}
	g.pipeLayout = pipeLayout

	premulBlend := gputypes.BlendStatePremultiplied()
	pipeline, err := g.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "circles_pipeline",
		Layout: g.pipeLayout,
		Vertex: hal.VertexState{
			Module:     g.shader,
			EntryPoint: "vs_main",
			Buffers:    circleVertexLayout(),
		},
		Fragment: &hal.FragmentState{
			Module:     g.shader,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{
				{
					Format:    targetFormat,
					Blend:     &premulBlend,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("create render pipeline: %w", err)
	}
	g.pipeline = pipeline
	return nil
}

// createStatic uploads the quad and allocates the uniform buffer and its
// bind group.
func (g *GPU) createStatic() error {
	quad := make([]byte, len(quadCorners)*quadStride)
	for i, c := range quadCorners {
		putFloat32(quad[i*quadStride:], c[0])
		putFloat32(quad[i*quadStride+4:], c[1])
	}
	quadBuf, err := g.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "circles_quad",
		Size:  uint64(len(quad)),
		Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create quad buffer: %w", err)
	}
	g.quadBuf = quadBuf
	if err := g.queue.WriteBuffer(quadBuf, 0, quad); err != nil {
		return fmt.Errorf("write quad buffer: %w", err)
	}

	uniformBuf, err := g.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "circles_uniform",
		Size:  uniformSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create uniform buffer: %w", err)
	}
	g.uniformBuf = uniformBuf

	bindGroup, err := g.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "circles_bind",
		Layout: g.uniformLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{
				Buffer: uniformBuf.NativeHandle(), Offset: 0, Size: uniformSize,
			}},
		},
	})
	if err != nil {
		return fmt.Errorf("create bind group: %w", err)
	}
	g.bindGroup = bindGroup
	return nil
}

// reserve grows the instance buffer to hold at least n circles, doubling so
// a slowly growing count reallocates rarely.
func (g *GPU) reserve(n int) error {
	if n <= g.instanceCap && g.instanceBuf != nil {
		return nil
	}
	newCap := g.instanceCap * 2
	if newCap < n {
		newCap = n
	}
	if newCap < 1 {
		newCap = 1
	}

	buf, err := g.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "circles_instances",
		Size:  uint64(newCap) * instanceStride,
		Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create instance buffer: %w", err)
	}
	if g.instanceBuf != nil {
		g.device.DestroyBuffer(g.instanceBuf)
	}
	g.instanceBuf = buf
	g.instanceCap = newCap
	g.allocations++
	bowl.Logger().Debug("instance buffer allocated", "circles", newCap, "bytes", newCap*instanceStride)
	return nil
}

// ensureTarget recreates the render target and staging buffer when the
// canvas size changes.
func (g *GPU) ensureTarget(w, h uint32) error {
	if g.width == w && g.height == h && g.target != nil {
		return nil
	}
	g.destroyTarget()

	tex, err := g.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "circles_target",
		Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        targetFormat,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return fmt.Errorf("create target texture: %w", err)
	}
	g.target = tex

	view, err := g.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         "circles_target_view",
		Format:        targetFormat,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		g.destroyTarget()
		return fmt.Errorf("create target view: %w", err)
	}
	g.targetView = view

	bytesPerRow := alignedBytesPerRow(w)
	staging, err := g.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "circles_staging",
		Size:  uint64(bytesPerRow) * uint64(h),
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		g.destroyTarget()
		return fmt.Errorf("create staging buffer: %w", err)
	}
	g.staging = staging

	g.width, g.height, g.bytesPerRow = w, h, bytesPerRow
	bowl.Logger().Debug("render target allocated", "width", w, "height", h, "bytes_per_row", bytesPerRow)
	return nil
}

func (g *GPU) destroyTarget() {
	if g.staging != nil {
		g.device.DestroyBuffer(g.staging)
		g.staging = nil
	}
	if g.targetView != nil {
		g.device.DestroyTextureView(g.targetView)
		g.targetView = nil
	}
	if g.target != nil {
		g.device.DestroyTexture(g.target)
		g.target = nil
	}
	g.width, g.height, g.bytesPerRow = 0, 0, 0
}

func (g *GPU) destroy() {
	g.destroyTarget()
	if g.instanceBuf != nil {
		g.device.DestroyBuffer(g.instanceBuf)
		g.instanceBuf = nil
		g.instanceCap = 0
	}
	if g.bindGroup != nil {
		g.device.DestroyBindGroup(g.bindGroup)
		g.bindGroup = nil
	}
	if g.uniformBuf != nil {
		g.device.DestroyBuffer(g.uniformBuf)
		g.uniformBuf = nil
	}
	if g.quadBuf != nil {
		g.device.DestroyBuffer(g.quadBuf)
		g.quadBuf = nil
	}
	if g.pipeline != nil {
		g.device.DestroyRenderPipeline(g.pipeline)
		g.pipeline = nil
	}
	if g.pipeLayout != nil {
		g.device.DestroyPipelineLayout(g.pipeLayout)
		g.pipeLayout = nil
	}
	if g.uniformLayout != nil {
		g.device.DestroyBindGroupLayout(g.uniformLayout)
		g.uniformLayout = nil
	}
	if g.shader != nil {
		g.device.DestroyShaderModule(g.shader)
		g.shader = nil
	}
}

func circleVertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: quadStride,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0}, // corner
			},
		},
		{
			ArrayStride: instanceStride,
			StepMode:    gputypes.VertexStepModeInstance,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 1},  // center
				{Format: gputypes.VertexFormatFloat32, Offset: 8, ShaderLocation: 2},    // radius
				{Format: gputypes.VertexFormatFloat32x4, Offset: 12, ShaderLocation: 3}, // color
			},
		},
	}
}

// encodeInstances appends one instanceStride record per circle to dst.
func encodeInstances(dst []byte, circles []bowl.Circle) []byte {
	need := len(circles) * instanceStride
	if cap(dst) < need {
		dst = make([]byte, 0, need)
	}
	dst = dst[:need]
	for i := range circles {
		c := &circles[i]
		b := dst[i*instanceStride:]
		putFloat32(b[0:], float32(c.Position.X))
		putFloat32(b[4:], float32(c.Position.Y))
		putFloat32(b[8:], float32(c.Radius))
		putFloat32(b[12:], float32(c.Color.R)/255)
		putFloat32(b[16:], float32(c.Color.G)/255)
		putFloat32(b[20:], float32(c.Color.B)/255)
		putFloat32(b[24:], 1)
	}
	return dst
}

func viewportUniform(w, h uint32) []byte {
	buf := make([]byte, uniformSize)
	putFloat32(buf[0:], float32(w))
	putFloat32(buf[4:], float32(h))
	return buf
}

func putFloat32(b []byte, v float32) {
	binary.LittleEndian.PutUint32(b, math.Float32bits(v))
}
