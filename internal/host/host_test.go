package host

import (
	"context"
	"errors"
	"image"
	"testing"

	"github.com/Faultbox/marionette/internal/engine/gpu"
	"github.com/Faultbox/marionette/internal/engine/gpu/headless"
	"github.com/Faultbox/marionette/internal/model"
	"github.com/Faultbox/marionette/internal/model/memory"
)

type recorder struct {
	name     string
	log      *[]string
	startErr error
	started  int
	resized  [][2]int
	dts      []float64
	vps      []gpu.Viewport
}

func (r *recorder) Start(s gpu.Surface) error {
	r.started++
	*r.log = append(*r.log, r.name+".start")
	return r.startErr
}

func (r *recorder) Resize(s gpu.Surface, w, h int) {
	r.resized = append(r.resized, [2]int{w, h})
}

func (r *recorder) Update(dt float64) {
	r.dts = append(r.dts, dt)
	*r.log = append(*r.log, r.name+".update")
}

func (r *recorder) Render(dt float64, vp gpu.Viewport, seq gpu.CommandSequence, target gpu.RenderTarget) {
	r.vps = append(r.vps, vp)
	*r.log = append(*r.log, r.name+".render")
}

func newHeadless(w, h int) (*headless.Device, *headless.Surface) {
	dev := headless.New()
	return dev, headless.NewSurface(dev, w, h, 30)
}

func TestComputeViewport(t *testing.T) {
	tests := []struct {
		name string
		w, h int
		fit  Fit
		want gpu.Viewport
	}{
		{"contain landscape", 800, 600, FitContain, gpu.Viewport{X: 100, Y: 0, Width: 600, Height: 600, ZFar: 1}},
		{"contain portrait", 600, 800, FitContain, gpu.Viewport{X: 0, Y: 100, Width: 600, Height: 600, ZFar: 1}},
		{"contain square", 400, 400, FitContain, gpu.Viewport{Width: 400, Height: 400, ZFar: 1}},
		{"cover landscape", 800, 600, FitCover, gpu.Viewport{X: 0, Y: -100, Width: 800, Height: 800, ZFar: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComputeViewport(tt.w, tt.h, tt.fit); got != tt.want {
				t.Errorf("ComputeViewport: got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseFit(t *testing.T) {
	for in, want := range map[string]Fit{"": FitContain, "contain": FitContain, " Cover ": FitCover} {
		got, err := ParseFit(in)
		if err != nil || got != want {
			t.Errorf("ParseFit(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseFit("stretch"); err == nil {
		t.Error("expected error for unknown fit")
	}
}

func TestFirstRendererLinksSurface(t *testing.T) {
	_, s := newHeadless(800, 600)
	d := NewDriver(s)
	var log []string

	a := &recorder{name: "a", log: &log}
	if err := d.AddRenderer(a); err != nil {
		t.Fatalf("AddRenderer: %v", err)
	}
	if s.Paused() {
		t.Error("surface should be running after the first renderer")
	}
	if a.started != 1 {
		t.Errorf("first renderer started %d times, want 1", a.started)
	}

	b := &recorder{name: "b", log: &log}
	if err := d.AddRenderer(b); err != nil {
		t.Fatalf("AddRenderer: %v", err)
	}
	if b.started != 1 {
		t.Error("renderer added while running should start immediately")
	}

	d.RemoveRenderer(a)
	if s.Paused() {
		t.Error("surface should keep running while a renderer remains")
	}
	d.RemoveRenderer(b)
	if !s.Paused() || s.Device() != nil {
		t.Error("removing the last renderer should unlink the surface")
	}
}

func TestFailedStartRollsBack(t *testing.T) {
	_, s := newHeadless(100, 100)
	d := NewDriver(s)
	var log []string

	r := &recorder{name: "r", log: &log, startErr: errors.New("boom")}
	if err := d.AddRenderer(r); err == nil {
		t.Fatal("expected error")
	}
	if len(d.Renderers()) != 0 {
		t.Error("failed renderer should not stay registered")
	}
	if !s.Paused() {
		t.Error("surface should be unlinked again")
	}
}

func TestTickOrder(t *testing.T) {
	dev, s := newHeadless(800, 600)
	d := NewDriver(s)
	var log []string

	a := &recorder{name: "a", log: &log}
	b := &recorder{name: "b", log: &log}
	_ = d.AddRenderer(a)
	_ = d.AddRenderer(b)
	log = nil
	dev.Reset()

	d.Tick()

	want := []string{"a.update", "b.update", "a.render", "b.render"}
	if len(log) != len(want) {
		t.Fatalf("calls: got %v, want %v", log, want)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Fatalf("calls: got %v, want %v", log, want)
		}
	}

	if a.dts[0] != 1.0/30 {
		t.Errorf("dt: got %v, want 1/30", a.dts[0])
	}
	if a.vps[0] != ComputeViewport(800, 600, FitContain) {
		t.Errorf("viewport: got %+v", a.vps[0])
	}

	cmds := dev.Commands()
	if cmds[0].Op != headless.OpBeginPass || cmds[0].Load != gpu.LoadActionClear || cmds[0].Target != "screen" {
		t.Errorf("first command should clear the screen, got %+v", cmds[0])
	}
	last := cmds[len(cmds)-1]
	if last.Op != headless.OpSubmit || cmds[len(cmds)-2].Op != headless.OpPresent {
		t.Error("frame should end with present then submit")
	}
	if s.Presented != 1 || d.Frames() != 1 {
		t.Errorf("presented %d frames %d, want 1 and 1", s.Presented, d.Frames())
	}
}

func TestTickSkipsWithoutTargetOrSequence(t *testing.T) {
	dev, s := newHeadless(100, 100)
	d := NewDriver(s)
	var log []string
	r := &recorder{name: "r", log: &log}
	_ = d.AddRenderer(r)

	s.NoTarget = true
	d.Tick()
	if len(r.vps) != 0 || d.Frames() != 0 {
		t.Error("frame without target should not render")
	}
	if len(r.dts) != 1 {
		t.Error("update should still run")
	}

	s.NoTarget = false
	dev.FailSequences = true
	d.Tick()
	if len(r.vps) != 0 || d.Frames() != 0 {
		t.Error("frame without sequence should not render")
	}
}

func TestPausedSurfaceDoesNotTick(t *testing.T) {
	_, s := newHeadless(100, 100)
	d := NewDriver(s)
	d.Tick()
	if d.Frames() != 0 {
		t.Error("paused surface should not produce frames")
	}
}

func TestResizeForwards(t *testing.T) {
	_, s := newHeadless(800, 600)
	d := NewDriver(s, WithFit(FitCover))
	var log []string
	r := &recorder{name: "r", log: &log}
	_ = d.AddRenderer(r)

	s.SetDrawableSize(400, 400)
	d.Resize(400, 400)

	if len(r.resized) != 1 || r.resized[0] != [2]int{400, 400} {
		t.Errorf("resized: got %v", r.resized)
	}
	if vp := d.Viewport(); vp.Width != 400 || vp.X != 0 {
		t.Errorf("viewport: got %+v", vp)
	}
}

func TestRunStopsAfterTicks(t *testing.T) {
	_, s := newHeadless(100, 100)
	d := NewDriver(s)
	var log []string
	_ = d.AddRenderer(&recorder{name: "r", log: &log})

	d.Run(context.Background(), nil, 5)
	if d.Frames() != 5 {
		t.Errorf("Frames: got %d, want 5", d.Frames())
	}

	pumped := 0
	d.Run(context.Background(), func() bool {
		pumped++
		return pumped < 3
	}, 0)
	if d.Frames() != 7 {
		t.Errorf("Frames after pump quit: got %d, want 7", d.Frames())
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d.Run(ctx, nil, 0)
	if d.Frames() != 7 {
		t.Error("cancelled context should not tick")
	}
}

func quad(order int) memory.Part {
	return memory.Part{
		Positions: []float32{-1, -1, 1, -1, 1, 1, -1, 1},
		UVs:       []float32{0, 0, 1, 0, 1, 1, 0, 1},
		Indices:   []uint16{0, 1, 2, 0, 2, 3},
		Opacity:   1,
		Visible:   true,
		Order:     order,
	}
}

func newModel(t *testing.T, ctx *model.Context, parts ...memory.Part) *memory.Model {
	t.Helper()
	m, err := memory.New(ctx, parts, []image.Image{image.NewRGBA(image.Rect(0, 0, 2, 2))})
	if err != nil {
		t.Fatalf("memory.New: %v", err)
	}
	return m
}

func TestStageLoadSwapsModel(t *testing.T) {
	dev, s := newHeadless(800, 600)
	d := NewDriver(s)
	stage := NewStage(d)
	ctx := model.NewContext(nil)

	first := newModel(t, ctx, quad(0), quad(1))
	if err := stage.Load(first); err != nil {
		t.Fatalf("Load: %v", err)
	}
	old := stage.Renderer()
	oldTransform := old.TransformBuffer().(*headless.Buffer)

	d.Tick()
	if got := len(dev.Draws()); got != 2 {
		t.Fatalf("draws: got %d, want 2", got)
	}

	second := newModel(t, ctx, quad(0))
	if err := stage.Load(second); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !oldTransform.Released() {
		t.Error("previous renderer resources should be released")
	}
	if len(d.Renderers()) != 1 || d.Renderers()[0] == Renderer(old) {
		t.Error("driver should hold only the new renderer")
	}

	dev.Reset()
	d.Tick()
	if got := len(dev.Draws()); got != 1 {
		t.Errorf("draws after swap: got %d, want 1", got)
	}

	stage.Unload()
	if !s.Paused() {
		t.Error("unloading the last model should unlink the surface")
	}
	if err := ctx.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestStageOriginAndScaleCarryOver(t *testing.T) {
	_, s := newHeadless(100, 100)
	d := NewDriver(s)
	stage := NewStage(d)
	stage.SetOrigin(0.25, 0)
	stage.SetScale(2)

	if err := stage.Load(newModel(t, model.NewContext(nil), quad(0))); err != nil {
		t.Fatalf("Load: %v", err)
	}
	r := stage.Renderer()
	if r.Origin().X != 0.25 || r.Scale() != 2 {
		t.Errorf("renderer origin %v scale %v", r.Origin(), r.Scale())
	}
}

func TestPointerTracking(t *testing.T) {
	_, s := newHeadless(800, 600)
	d := NewDriver(s)
	stage := NewStage(d)
	m := newModel(t, model.NewContext(nil), quad(0))
	if err := stage.Load(m); err != nil {
		t.Fatalf("Load: %v", err)
	}

	// Viewport is x 100..700, y 0..600, centered at (400, 300).
	tests := []struct {
		x, y   float64
		ax, ay float32
	}{
		{400, 300, 0, 0},
		{550, 300, 15, 0},
		{400, 150, 0, 15},
		{2000, 2000, 30, -30},
	}
	for _, tt := range tests {
		stage.PointerMoved(tt.x, tt.y)
		d.Tick()
		if got := m.Parameter(model.ParamAngleX); got != tt.ax {
			t.Errorf("pointer (%v,%v): ParamAngleX %v, want %v", tt.x, tt.y, got, tt.ax)
		}
		if got := m.Parameter(model.ParamAngleY); got != tt.ay {
			t.Errorf("pointer (%v,%v): ParamAngleY %v, want %v", tt.x, tt.y, got, tt.ay)
		}
	}
}
