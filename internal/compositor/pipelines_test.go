package compositor

import (
	"testing"

	"go.uber.org/zap"

	"github.com/Faultbox/marionette/internal/engine/gpu"
	"github.com/Faultbox/marionette/internal/engine/gpu/headless"
	"github.com/Faultbox/marionette/internal/model"
)

func TestSelectPipeline(t *testing.T) {
	tests := []struct {
		blend   model.BlendMode
		hasMask bool
		want    PipelineKind
	}{
		{model.BlendNormal, false, PipelineNormal},
		{model.BlendAdditive, false, PipelineAdditive},
		{model.BlendMultiplicative, false, PipelineMultiplicative},
		{model.BlendNormal, true, PipelineMasking},
		{model.BlendAdditive, true, PipelineMasking},
		{model.BlendMultiplicative, true, PipelineMasking},
		{model.BlendMode(-1), false, PipelineNormal},
		{model.BlendMode(9), false, PipelineNormal},
		{model.BlendMode(9), true, PipelineMasking},
	}

	for _, tt := range tests {
		if got := SelectPipeline(tt.blend, tt.hasMask); got != tt.want {
			t.Errorf("SelectPipeline(%v, %v) = %v, want %v", tt.blend, tt.hasMask, got, tt.want)
		}
	}
}

func TestPipelineDescriptorBlendTable(t *testing.T) {
	descs := PipelineDescriptors(gpu.FormatBGRA8)

	type factors struct {
		srcRGB, dstRGB, srcA, dstA gpu.BlendFactor
	}
	want := map[PipelineKind]factors{
		PipelineNormal:         {gpu.BlendOne, gpu.BlendOneMinusSrcAlpha, gpu.BlendOne, gpu.BlendOneMinusSrcAlpha},
		PipelineAdditive:       {gpu.BlendSrcAlpha, gpu.BlendOne, gpu.BlendOne, gpu.BlendOne},
		PipelineMultiplicative: {gpu.BlendDstColor, gpu.BlendOneMinusSrcAlpha, gpu.BlendZero, gpu.BlendOne},
		PipelineMasking:        {gpu.BlendOne, gpu.BlendOneMinusSrcAlpha, gpu.BlendOne, gpu.BlendOneMinusSrcAlpha},
	}

	for kind, w := range want {
		d := descs[kind]
		b := d.Blend
		got := factors{b.Color.Src, b.Color.Dst, b.Alpha.Src, b.Alpha.Dst}
		if got != w {
			t.Errorf("%v: blend factors %+v, want %+v", kind, got, w)
		}
		if b.Color.Op != gpu.BlendOpAdd || b.Alpha.Op != gpu.BlendOpAdd {
			t.Errorf("%v: blend ops should be add", kind)
		}
		if d.ColorFormat != gpu.FormatBGRA8 {
			t.Errorf("%v: color format %v", kind, d.ColorFormat)
		}
		if d.Label != kind.String() {
			t.Errorf("%v: label %q", kind, d.Label)
		}
	}

	if descs[PipelineMasking].Fragment != gpu.StageMaskFragment {
		t.Error("masking pipeline should use the mask fragment stage")
	}
	for _, k := range []PipelineKind{PipelineNormal, PipelineAdditive, PipelineMultiplicative} {
		if descs[k].Fragment != gpu.StageBasicFragment {
			t.Errorf("%v: fragment stage %q", k, descs[k].Fragment)
		}
	}
}

func TestVertexLayout(t *testing.T) {
	l := VertexLayout()
	if len(l.Attributes) != 3 {
		t.Fatalf("attributes: got %d, want 3", len(l.Attributes))
	}
	op, ok := l.Buffer(gpu.SlotOpacity)
	if !ok || op.Step != gpu.StepConstant || op.Stride != 4 {
		t.Errorf("opacity buffer layout: %+v", op)
	}
	pos, ok := l.Buffer(gpu.SlotPosition)
	if !ok || pos.Step != gpu.StepPerVertex || pos.Stride != 8 {
		t.Errorf("position buffer layout: %+v", pos)
	}
}

func TestBuildPipelinesPartialFailure(t *testing.T) {
	dev := headless.New()
	dev.FailPipelines = map[string]bool{"masking": true}

	p := BuildPipelines(dev, gpu.FormatRGBA8, zap.NewNop())
	if p.Get(PipelineMasking) != nil {
		t.Error("failed pipeline should be nil")
	}
	for _, k := range []PipelineKind{PipelineNormal, PipelineAdditive, PipelineMultiplicative} {
		if p.Get(k) == nil {
			t.Errorf("%v should have been built", k)
		}
	}
	if p.Get(PipelineKind(10)) != nil {
		t.Error("unknown kind should be nil")
	}

	if err := p.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if dev.Live() != 0 {
		t.Errorf("Live after Release: %d", dev.Live())
	}
}
