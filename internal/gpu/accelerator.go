//go:build !nogpu

package gpu

import (
	_ "embed"
	"encoding/binary"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"
	"unsafe"

	"github.com/gogpu/fractal"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

//go:embed shaders/escape.wgsl
var escapeShaderSource string

const (
	// minGPUScale is the precision floor for f32 evaluation. Below this
	// scale adjacent pixels collapse to the same f32 plane coordinate,
	// so deeper frames are evaluated on the CPU in float64.
	minGPUScale = 1e-5

	// maxGPUPasses bounds the number of compute passes encoded into one
	// command buffer. Higher iteration limits fall back to the CPU.
	maxGPUPasses = 4096

	// fenceTimeout bounds the wait for a submitted frame.
	fenceTimeout = 10 * time.Second
)

// escapeParams matches the Params struct in escape.wgsl.
type escapeParams struct {
	Width    uint32
	Height   uint32
	Family   uint32
	Pad0     uint32
	CenterRe float32
	CenterIm float32
	Scale    float32
	EscapeR2 float32
	SeedRe   float32
	SeedIm   float32
	Pad1     float32
	Pad2     float32
}

// pixelState matches the PixelState struct in escape.wgsl.
type pixelState struct {
	Zr     float32
	Zi     float32
	Iter   uint32
	Status uint32
}

// EscapeAccelerator evaluates whole fractal frames on the GPU using wgpu/hal
// compute shaders. It implements the fractal.FrameAccelerator interface.
//
// A frame dispatch encodes one compute pass per iteration step over a
// per-pixel state buffer, all in a single command buffer with one submit and
// one fence wait. See shaders/escape.wgsl for the kernel.
type EscapeAccelerator struct {
	mu sync.Mutex

	instance hal.Instance
	device   hal.Device
	queue    hal.Queue

	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipeline   hal.ComputePipeline

	gpuReady       bool
	initFailed     bool
	externalDevice bool // true when using shared device (don't destroy on Close)
}

// Interface compliance checks.
var _ fractal.FrameAccelerator = (*EscapeAccelerator)(nil)
var _ fractal.DeviceProviderAware = (*EscapeAccelerator)(nil)

// Name returns the accelerator identifier.
func (a *EscapeAccelerator) Name() string { return "escape-gpu" }

// Init registers the accelerator. GPU device initialization is deferred
// until the first frame or until SetDeviceProvider is called, so importing
// the gpu package does not create a standalone Vulkan device that may
// interfere with an external device provided later.
func (a *EscapeAccelerator) Init() error {
	return nil
}

// Close releases all GPU resources held by the accelerator.
func (a *EscapeAccelerator) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.destroyPipeline()
	if !a.externalDevice {
		if a.device != nil {
			a.device.Destroy()
			a.device = nil
		}
		if a.instance != nil {
			a.instance.Destroy()
			a.instance = nil
		}
	} else {
		// Don't destroy shared resources -- we don't own them.
		a.device = nil
		a.instance = nil
	}
	a.queue = nil
	a.gpuReady = false
	a.initFailed = false
	a.externalDevice = false
}

// SetLogger sets the logger for the GPU accelerator and its internal packages.
// Called by fractal.SetLogger to propagate logging configuration.
func (a *EscapeAccelerator) SetLogger(l *slog.Logger) {
	setLogger(l)
}

// CanAccelerate reports whether this accelerator supports the given operation.
func (a *EscapeAccelerator) CanAccelerate(op fractal.AcceleratedOp) bool {
	return op&(fractal.AccelMandelbrot|fractal.AccelJulia) != 0
}

// SetDeviceProvider switches the accelerator to use a shared GPU device
// from an external provider (e.g., gogpu). The provider must implement
// HalDevice() any and HalQueue() any returning hal.Device and hal.Queue.
func (a *EscapeAccelerator) SetDeviceProvider(provider any) error {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return fmt.Errorf("escape-gpu: provider does not expose HAL types")
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return fmt.Errorf("escape-gpu: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return fmt.Errorf("escape-gpu: provider HalQueue is not hal.Queue")
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	// Destroy own resources if we created them.
	a.destroyPipeline()
	if !a.externalDevice && a.device != nil {
		a.device.Destroy()
	}
	if a.instance != nil {
		a.instance.Destroy()
		a.instance = nil
	}

	// Use provided resources.
	a.device = device
	a.queue = queue
	a.externalDevice = true
	a.initFailed = false

	if err := a.createPipeline(); err != nil {
		a.gpuReady = false
		return fmt.Errorf("escape-gpu: create pipeline with shared device: %w", err)
	}
	a.gpuReady = true
	slogger().Debug("escape-gpu: switched to shared GPU device")
	return nil
}

// EvaluateFrame evaluates every pixel of the viewport on the GPU and writes
// iteration counts and escape magnitudes into target.
//
// Frames outside the f32 precision range or beyond the pass budget return
// fractal.ErrFallbackToCPU without touching the device.
func (a *EscapeAccelerator) EvaluateFrame(target fractal.EvalTarget, viewport fractal.Viewport, eval fractal.Evaluator) error {
	if viewport.Scale < minGPUScale {
		return fractal.ErrFallbackToCPU
	}
	if eval.MaxIterations == 0 || eval.MaxIterations > maxGPUPasses {
		return fractal.ErrFallbackToCPU
	}
	w, h := viewport.PixelWidth, viewport.PixelHeight
	if w == 0 || h == 0 || target.Width != int(w) || target.Height != int(h) {
		return fmt.Errorf("escape-gpu: target %dx%d does not match viewport %dx%d",
			target.Width, target.Height, w, h)
	}
	pixels := target.Width * target.Height
	if len(target.Iterations) < pixels || len(target.MagSquared) < pixels {
		return fmt.Errorf("escape-gpu: target slices hold %d/%d values, need %d",
			len(target.Iterations), len(target.MagSquared), pixels)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.gpuReady {
		if a.initFailed {
			return fractal.ErrFallbackToCPU
		}
		if err := a.initGPU(); err != nil {
			a.initFailed = true
			slogger().Warn("escape-gpu: GPU init failed, using CPU evaluation", "error", err)
			return fractal.ErrFallbackToCPU
		}
	}
	return a.dispatchFrame(target, viewport, eval)
}

// dispatchFrame uploads the frame parameters and a zeroed state buffer,
// runs the iteration passes, and reads the final state back into target.
func (a *EscapeAccelerator) dispatchFrame(target fractal.EvalTarget, viewport fractal.Viewport, eval fractal.Evaluator) error {
	stateSize := uint64(target.Width*target.Height) * uint64(unsafe.Sizeof(pixelState{}))
	paramsBytes := makeParams(viewport, eval)
	paramSize := uint64(len(paramsBytes))

	paramsBuf, err := a.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "escape_params", Size: paramSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create params buffer: %w", err)
	}
	defer a.device.DestroyBuffer(paramsBuf)

	stateBuf, err := a.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "escape_state", Size: stateSize,
		Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopySrc | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create state buffer: %w", err)
	}
	defer a.device.DestroyBuffer(stateBuf)

	stagingBuf, err := a.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "escape_staging", Size: stateSize,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create staging buffer: %w", err)
	}
	defer a.device.DestroyBuffer(stagingBuf)

	a.queue.WriteBuffer(paramsBuf, 0, paramsBytes)
	// Zero-filled state marks every pixel unseeded; the first pass seeds z.
	a.queue.WriteBuffer(stateBuf, 0, make([]byte, stateSize))

	bindGroup, err := a.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label: "escape_bind", Layout: a.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{Buffer: paramsBuf.NativeHandle(), Offset: 0, Size: paramSize}},
			{Binding: 1, Resource: gputypes.BufferBinding{Buffer: stateBuf.NativeHandle(), Offset: 0, Size: stateSize}},
		},
	})
	if err != nil {
		return fmt.Errorf("create bind group: %w", err)
	}
	defer a.device.DestroyBindGroup(bindGroup)

	return a.encodePasses(bindGroup, stateBuf, stagingBuf, viewport.PixelWidth, viewport.PixelHeight,
		stateSize, eval.MaxIterations, target)
}

// encodePasses records one compute pass per iteration step in a single
// command encoder. Every pass runs the same pipeline and bind group; implicit
// storage buffer barriers between passes order the steps.
// This avoids naga SPIR-V bug #5 (loops only execute first iteration).
func (a *EscapeAccelerator) encodePasses(
	bindGroup hal.BindGroup, stateBuf, stagingBuf hal.Buffer,
	w, h uint32, stateSize uint64, passes uint32, target fractal.EvalTarget,
) error {
	encoder, err := a.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "escape_encoder"})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("escape_frame"); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}

	for range passes {
		computePass := encoder.BeginComputePass(&hal.ComputePassDescriptor{Label: "escape_step"})
		computePass.SetPipeline(a.pipeline)
		computePass.SetBindGroup(0, bindGroup, nil)
		computePass.Dispatch((w+7)/8, (h+7)/8, 1)
		computePass.End()
	}

	encoder.CopyBufferToBuffer(stateBuf, stagingBuf, []hal.BufferCopy{
		{SrcOffset: 0, DstOffset: 0, Size: stateSize},
	})
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer a.device.FreeCommandBuffer(cmdBuf)

	fence, err := a.device.CreateFence()
	if err != nil {
		return fmt.Errorf("create fence: %w", err)
	}
	defer a.device.DestroyFence(fence)
	if err := a.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	fenceOK, err := a.device.Wait(fence, 1, fenceTimeout)
	if err != nil || !fenceOK {
		return fmt.Errorf("wait for GPU: ok=%v err=%w", fenceOK, err)
	}

	readback := make([]byte, stateSize)
	if err := a.queue.ReadBuffer(stagingBuf, 0, readback); err != nil {
		return fmt.Errorf("readback: %w", err)
	}
	unpackState(readback, target)
	return nil
}

func (a *EscapeAccelerator) initGPU() error {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return fmt.Errorf("vulkan backend not available")
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return fmt.Errorf("create instance: %w", err)
	}
	a.instance = instance
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		return fmt.Errorf("no GPU adapters found")
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
		return fmt.Errorf("open device: %w", err)
	}
	a.device = openDev.Device
	a.queue = openDev.Queue
	if err := a.createPipeline(); err != nil {
		a.device.Destroy()
		a.device = nil
		a.queue = nil
		return fmt.Errorf("create pipeline: %w", err)
	}
	a.gpuReady = true
	slogger().Info("escape-gpu: GPU accelerator initialized", "adapter", selected.Info.Name)
	return nil
}

func (a *EscapeAccelerator) createPipeline() error {
	shader, err := a.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "escape_step",
		Source: hal.ShaderSource{WGSL: escapeShaderSource},
	})
	if err != nil {
		return fmt.Errorf("compile escape shader: %w", err)
	}
	a.shader = shader

	bindLayout, err := a.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "escape_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{Binding: 0, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform}},
			{Binding: 1, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage}},
		},
	})
	if err != nil {
		return fmt.Errorf("create bind group layout: %w", err)
	}
	a.bindLayout = bindLayout

	pipeLayout, err := a.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label: "escape_pipe_layout", BindGroupLayouts: []hal.BindGroupLayout{a.bindLayout},
	})
	if err != nil {
		return fmt.Errorf("create pipeline layout: %w", err)
	}
	a.pipeLayout = pipeLayout

	pipeline, err := a.device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label: "escape_pipeline", Layout: a.pipeLayout,
		Compute: hal.ComputeState{Module: a.shader, EntryPoint: "main"},
	})
	if err != nil {
		return fmt.Errorf("create compute pipeline: %w", err)
	}
	a.pipeline = pipeline

	return nil
}

func (a *EscapeAccelerator) destroyPipeline() {
	if a.device == nil {
		return
	}
	if a.pipeline != nil {
		a.device.DestroyComputePipeline(a.pipeline)
		a.pipeline = nil
	}
	if a.pipeLayout != nil {
		a.device.DestroyPipelineLayout(a.pipeLayout)
		a.pipeLayout = nil
	}
	if a.bindLayout != nil {
		a.device.DestroyBindGroupLayout(a.bindLayout)
		a.bindLayout = nil
	}
	if a.shader != nil {
		a.device.DestroyShaderModule(a.shader)
		a.shader = nil
	}
}

// makeParams packs the uniform block for a frame. Field order must match
// Params in escape.wgsl.
func makeParams(viewport fractal.Viewport, eval fractal.Evaluator) []byte {
	p := escapeParams{
		Width:    viewport.PixelWidth,
		Height:   viewport.PixelHeight,
		Family:   uint32(eval.Family),
		CenterRe: float32(viewport.CenterReal),
		CenterIm: float32(viewport.CenterImag),
		Scale:    float32(viewport.Scale),
		EscapeR2: float32(eval.EscapeRadiusSquared),
		SeedRe:   float32(eval.JuliaSeed.Real),
		SeedIm:   float32(eval.JuliaSeed.Imag),
	}
	return structToBytes(unsafe.Pointer(&p), unsafe.Sizeof(p)) //nolint:gosec // safe struct access
}

// unpackState decodes the final pixel states into iteration counts and
// escape magnitudes. Pixels still active after the last pass hold the
// iteration limit, which marks them interior.
func unpackState(raw []byte, target fractal.EvalTarget) {
	stateSize := int(unsafe.Sizeof(pixelState{}))
	pixels := target.Width * target.Height
	for i := 0; i < pixels; i++ {
		off := i * stateSize
		zr := math.Float32frombits(binary.LittleEndian.Uint32(raw[off:]))
		zi := math.Float32frombits(binary.LittleEndian.Uint32(raw[off+4:]))
		target.Iterations[i] = binary.LittleEndian.Uint32(raw[off+8:])
		target.MagSquared[i] = zr*zr + zi*zi
	}
}

func structToBytes(ptr unsafe.Pointer, size uintptr) []byte {
	return unsafe.Slice((*byte)(ptr), size) //nolint:gosec // safe struct serialization
}
