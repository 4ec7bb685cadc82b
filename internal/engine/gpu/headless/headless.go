// Package headless is a GPU backend that keeps every resource in CPU memory
// and records each command it is given. It drives batch runs without a
// window and lets tests assert on exactly what the compositor asked the GPU
// to do: pass ordering, pipeline choice, draw calls and buffer writes.
package headless

import (
	"fmt"
	"image"

	"github.com/Faultbox/marionette/internal/engine/gpu"
)

// Op identifies a recorded command.
type Op int

const (
	OpBeginPass Op = iota
	OpSetPipeline
	OpSetViewport
	OpSetCullMode
	OpSetVertexBuffer
	OpSetFragmentTexture
	OpDrawIndexed
	OpEndPass
	OpPresent
	OpSubmit
)

var opNames = [...]string{
	OpBeginPass:          "begin",
	OpSetPipeline:        "pipeline",
	OpSetViewport:        "viewport",
	OpSetCullMode:        "cull",
	OpSetVertexBuffer:    "vbuf",
	OpSetFragmentTexture: "texture",
	OpDrawIndexed:        "draw",
	OpEndPass:            "end",
	OpPresent:            "present",
	OpSubmit:             "submit",
}

func (o Op) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return fmt.Sprintf("op(%d)", int(o))
}

// Command is one recorded call. Fields not relevant to Op are zero.
type Command struct {
	Op   Op
	Pass int

	// BeginPass
	Target string
	Load   gpu.LoadAction

	// SetPipeline and DrawIndexed (current pipeline)
	Pipeline string

	// SetVertexBuffer / SetFragmentTexture
	Slot     int
	Resource string

	// DrawIndexed: index buffer label, count, and the state it drew with.
	IndexCount int
	Position   string
	Opacity    string
	Texture    string
	Mask       string

	Cull     gpu.CullMode
	Viewport gpu.Viewport
}

// Device is a recording gpu.Device.
type Device struct {
	commands []Command
	passes   int

	bufferWrites int
	uploads      int
	live         int

	// FailPipelines makes NewPipeline fail for the given labels.
	FailPipelines map[string]bool
	// FailTextures makes NewTexture fail.
	FailTextures bool
	// FailSequences makes NewCommandSequence return nil.
	FailSequences bool
	// FailPasses makes BeginPass return nil for targets with these labels.
	FailPasses map[string]bool
}

var _ gpu.Device = (*Device)(nil)

// New creates an empty recording device.
func New() *Device {
	return &Device{}
}

// Name implements gpu.Device.
func (d *Device) Name() string { return "headless" }

// Commands returns the recorded command log.
func (d *Device) Commands() []Command {
	return d.commands
}

// Draws returns only the DrawIndexed commands.
func (d *Device) Draws() []Command {
	var out []Command
	for _, c := range d.commands {
		if c.Op == OpDrawIndexed {
			out = append(out, c)
		}
	}
	return out
}

// BufferWrites returns how many Buffer.Write calls happened since the last Reset.
func (d *Device) BufferWrites() int { return d.bufferWrites }

// Uploads returns how many resources were created with initial contents.
func (d *Device) Uploads() int { return d.uploads }

// Live returns the number of resources created and not yet released.
func (d *Device) Live() int { return d.live }

// Reset clears the command log and counters. Live resources are kept.
func (d *Device) Reset() {
	d.commands = d.commands[:0]
	d.bufferWrites = 0
	d.uploads = 0
}

func (d *Device) record(c Command) {
	d.commands = append(d.commands, c)
}

// NewBuffer implements gpu.Device.
func (d *Device) NewBuffer(label string, kind gpu.BufferKind, data []byte) (gpu.Buffer, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("buffer %s: empty data", label)
	}
	b := &Buffer{dev: d, label: label, kind: kind, data: append([]byte(nil), data...)}
	d.live++
	d.uploads++
	return b, nil
}

// NewTexture implements gpu.Device.
func (d *Device) NewTexture(label string, img image.Image) (gpu.Texture, error) {
	if d.FailTextures {
		return nil, fmt.Errorf("texture %s: upload disabled", label)
	}
	if img == nil {
		return nil, fmt.Errorf("texture %s: nil image", label)
	}
	b := img.Bounds()
	d.live++
	d.uploads++
	return &Texture{dev: d, label: label, width: b.Dx(), height: b.Dy()}, nil
}

// NewRenderTarget implements gpu.Device.
func (d *Device) NewRenderTarget(label string, width, height int, format gpu.PixelFormat) (gpu.RenderTarget, error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("render target %s: invalid size %dx%d", label, width, height)
	}
	d.live++
	return &Target{tex: &Texture{dev: d, label: label, width: width, height: height}, format: format}, nil
}

// NewPipeline implements gpu.Device.
func (d *Device) NewPipeline(desc gpu.PipelineDescriptor) (gpu.Pipeline, error) {
	if d.FailPipelines[desc.Label] {
		return nil, fmt.Errorf("pipeline %s: link failed", desc.Label)
	}
	if desc.Vertex == "" || desc.Fragment == "" {
		return nil, fmt.Errorf("pipeline %s: missing shader stage", desc.Label)
	}
	d.live++
	return &Pipeline{dev: d, desc: desc}, nil
}

// NewCommandSequence implements gpu.Device.
func (d *Device) NewCommandSequence() gpu.CommandSequence {
	if d.FailSequences {
		return nil
	}
	return &sequence{dev: d}
}
