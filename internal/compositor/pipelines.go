package compositor

import (
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/marionette/internal/engine/gpu"
	"github.com/Faultbox/marionette/internal/model"
)

// PipelineKind enumerates the only render states the compositor uses.
type PipelineKind int

const (
	PipelineNormal PipelineKind = iota
	PipelineAdditive
	PipelineMultiplicative
	PipelineMasking

	pipelineCount
)

func (k PipelineKind) String() string {
	switch k {
	case PipelineNormal:
		return "normal"
	case PipelineAdditive:
		return "additive"
	case PipelineMultiplicative:
		return "multiplicative"
	case PipelineMasking:
		return "masking"
	default:
		return "unknown"
	}
}

// pipelineTable resolves {has mask, blend mode} to a pipeline.
var pipelineTable = [2][3]PipelineKind{
	{PipelineNormal, PipelineAdditive, PipelineMultiplicative},
	{PipelineMasking, PipelineMasking, PipelineMasking},
}

// SelectPipeline picks the pipeline for a drawable. Blend modes outside the
// known set draw as Normal.
func SelectPipeline(blend model.BlendMode, hasMask bool) PipelineKind {
	row := 0
	if hasMask {
		row = 1
	}
	col := int(blend)
	if col < 0 || col >= len(pipelineTable[row]) {
		col = int(model.BlendNormal)
	}
	return pipelineTable[row][col]
}

// VertexLayout is shared by all four pipelines: position and UV advance per
// vertex from their own buffers, opacity is one float for the whole draw.
func VertexLayout() gpu.VertexLayout {
	return gpu.VertexLayout{
		Attributes: []gpu.VertexAttribute{
			{Location: 0, Slot: gpu.SlotPosition, Format: gpu.Float2},
			{Location: 1, Slot: gpu.SlotUV, Format: gpu.Float2},
			{Location: 2, Slot: gpu.SlotOpacity, Format: gpu.Float1},
		},
		Buffers: []gpu.BufferLayout{
			{Slot: gpu.SlotPosition, Stride: 8, Step: gpu.StepPerVertex},
			{Slot: gpu.SlotUV, Stride: 8, Step: gpu.StepPerVertex},
			{Slot: gpu.SlotOpacity, Stride: 4, Step: gpu.StepConstant},
		},
	}
}

func premultipliedOver() gpu.BlendComponent {
	return gpu.BlendComponent{Op: gpu.BlendOpAdd, Src: gpu.BlendOne, Dst: gpu.BlendOneMinusSrcAlpha}
}

// PipelineDescriptors returns the descriptors of all four pipelines, indexed
// by PipelineKind.
func PipelineDescriptors(format gpu.PixelFormat) [pipelineCount]gpu.PipelineDescriptor {
	base := gpu.PipelineDescriptor{
		Vertex:      gpu.StageBasicVertex,
		Fragment:    gpu.StageBasicFragment,
		Layout:      VertexLayout(),
		ColorFormat: format,
	}

	var out [pipelineCount]gpu.PipelineDescriptor

	normal := base
	normal.Label = "normal"
	normal.Blend = gpu.BlendState{Enabled: true, Color: premultipliedOver(), Alpha: premultipliedOver()}
	out[PipelineNormal] = normal

	additive := base
	additive.Label = "additive"
	additive.Blend = gpu.BlendState{
		Enabled: true,
		Color:   gpu.BlendComponent{Op: gpu.BlendOpAdd, Src: gpu.BlendSrcAlpha, Dst: gpu.BlendOne},
		Alpha:   gpu.BlendComponent{Op: gpu.BlendOpAdd, Src: gpu.BlendOne, Dst: gpu.BlendOne},
	}
	out[PipelineAdditive] = additive

	multiplicative := base
	multiplicative.Label = "multiplicative"
	multiplicative.Blend = gpu.BlendState{
		Enabled: true,
		Color:   gpu.BlendComponent{Op: gpu.BlendOpAdd, Src: gpu.BlendDstColor, Dst: gpu.BlendOneMinusSrcAlpha},
		Alpha:   gpu.BlendComponent{Op: gpu.BlendOpAdd, Src: gpu.BlendZero, Dst: gpu.BlendOne},
	}
	out[PipelineMultiplicative] = multiplicative

	masking := base
	masking.Label = "masking"
	masking.Fragment = gpu.StageMaskFragment
	masking.Blend = gpu.BlendState{Enabled: true, Color: premultipliedOver(), Alpha: premultipliedOver()}
	out[PipelineMasking] = masking

	return out
}

// Pipelines owns the four compiled pipelines. A slot whose build failed is
// nil and draws that need it are skipped.
type Pipelines struct {
	states [pipelineCount]gpu.Pipeline
}

// BuildPipelines compiles all four pipelines on dev. Failures are logged
// and leave the slot empty; they never abort the others.
func BuildPipelines(dev gpu.Device, format gpu.PixelFormat, log *zap.Logger) *Pipelines {
	p := &Pipelines{}
	for kind, desc := range PipelineDescriptors(format) {
		state, err := dev.NewPipeline(desc)
		if err != nil {
			log.Error("pipeline build failed",
				zap.String("pipeline", desc.Label),
				zap.Error(err),
			)
			continue
		}
		p.states[kind] = state
	}
	return p
}

// Get returns the pipeline for kind, or nil if it is unavailable.
func (p *Pipelines) Get(kind PipelineKind) gpu.Pipeline {
	if p == nil || kind < 0 || kind >= pipelineCount {
		return nil
	}
	return p.states[kind]
}

// Release frees every built pipeline.
func (p *Pipelines) Release() error {
	if p == nil {
		return nil
	}
	var err error
	for i, s := range p.states {
		if s != nil {
			err = multierr.Append(err, s.Release())
			p.states[i] = nil
		}
	}
	return err
}
