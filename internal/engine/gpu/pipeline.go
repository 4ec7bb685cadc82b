package gpu

// BlendFactor is a source or destination blend weight.
type BlendFactor int

const (
	BlendZero BlendFactor = iota
	BlendOne
	BlendSrcAlpha
	BlendOneMinusSrcAlpha
	BlendDstColor
	BlendOneMinusDstColor
)

func (f BlendFactor) String() string {
	switch f {
	case BlendZero:
		return "zero"
	case BlendOne:
		return "one"
	case BlendSrcAlpha:
		return "srcAlpha"
	case BlendOneMinusSrcAlpha:
		return "oneMinusSrcAlpha"
	case BlendDstColor:
		return "dstColor"
	case BlendOneMinusDstColor:
		return "oneMinusDstColor"
	default:
		return "unknown"
	}
}

// BlendOp combines the weighted source and destination.
type BlendOp int

const (
	BlendOpAdd BlendOp = iota
	BlendOpSubtract
	BlendOpReverseSubtract
)

// BlendComponent is the blend equation for either color or alpha.
type BlendComponent struct {
	Op  BlendOp
	Src BlendFactor
	Dst BlendFactor
}

// BlendState is the full color-attachment blend configuration.
type BlendState struct {
	Enabled bool
	Color   BlendComponent
	Alpha   BlendComponent
}

// ShaderStage names a shader entry point every backend provides.
type ShaderStage string

const (
	StageBasicVertex   ShaderStage = "basic_vertex"
	StageBasicFragment ShaderStage = "basic_fragment"
	StageMaskFragment  ShaderStage = "mask_fragment"
)

// VertexFormat is the type of one vertex attribute.
type VertexFormat int

const (
	Float1 VertexFormat = iota + 1
	Float2
)

// Components returns the number of floats in the format.
func (f VertexFormat) Components() int {
	switch f {
	case Float1:
		return 1
	case Float2:
		return 2
	default:
		return 0
	}
}

// StepFunction says how often an attribute advances.
type StepFunction int

const (
	// StepPerVertex advances once per vertex.
	StepPerVertex StepFunction = iota
	// StepConstant reads element 0 for every vertex of a draw.
	StepConstant
)

// VertexAttribute maps a shader input location to a buffer slot.
type VertexAttribute struct {
	Location int
	Slot     BufferSlot
	Format   VertexFormat
	Offset   int
}

// BufferLayout describes the stride and stepping of one buffer slot.
type BufferLayout struct {
	Slot   BufferSlot
	Stride int
	Step   StepFunction
}

// VertexLayout is the full vertex input description of a pipeline.
type VertexLayout struct {
	Attributes []VertexAttribute
	Buffers    []BufferLayout
}

// Buffer returns the layout of slot and whether one exists.
func (l VertexLayout) Buffer(slot BufferSlot) (BufferLayout, bool) {
	for _, b := range l.Buffers {
		if b.Slot == slot {
			return b, true
		}
	}
	return BufferLayout{}, false
}

// PipelineDescriptor describes a render pipeline to build.
type PipelineDescriptor struct {
	Label       string
	Vertex      ShaderStage
	Fragment    ShaderStage
	Layout      VertexLayout
	ColorFormat PixelFormat
	Blend       BlendState
}
