// Package shader holds the compositor's GLSL stages and compiles them into
// OpenGL programs.
package shader

import (
	_ "embed"
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/marionette/internal/engine/gpu"
)

// BasicVertexShader transforms part vertices by the shared transform.
//
//go:embed glsl/basic.vert
var BasicVertexShader string

// BasicFragmentShader samples the part texture scaled by opacity.
//
//go:embed glsl/basic.frag
var BasicFragmentShader string

// MaskFragmentShader is BasicFragmentShader clipped by a mask target.
//
//go:embed glsl/mask.frag
var MaskFragmentShader string

var stages = map[gpu.ShaderStage]string{
	gpu.StageBasicVertex:   BasicVertexShader,
	gpu.StageBasicFragment: BasicFragmentShader,
	gpu.StageMaskFragment:  MaskFragmentShader,
}

// Source returns the GLSL source of a named stage.
func Source(stage gpu.ShaderStage) (string, error) {
	src, ok := stages[stage]
	if !ok {
		return "", fmt.Errorf("unknown shader stage %q", stage)
	}
	return src, nil
}

// CompileStages looks up two named stages and links them into a program.
func CompileStages(vertex, fragment gpu.ShaderStage) (uint32, error) {
	vs, err := Source(vertex)
	if err != nil {
		return 0, err
	}
	fs, err := Source(fragment)
	if err != nil {
		return 0, err
	}
	program, err := CompileProgram(vs, fs)
	if err != nil {
		return 0, fmt.Errorf("%s+%s: %w", vertex, fragment, err)
	}
	return program, nil
}

// CompileProgram compiles vertex and fragment shaders and links them into a program.
func CompileProgram(vertexSrc, fragmentSrc string) (uint32, error) {
	vertShader, err := compileShader(vertexSrc, gl.VERTEX_SHADER, "vertex")
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(vertShader)

	fragShader, err := compileShader(fragmentSrc, gl.FRAGMENT_SHADER, "fragment")
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(fragShader)

	program := gl.CreateProgram()
	gl.AttachShader(program, vertShader)
	gl.AttachShader(program, fragShader)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLen)
		log := make([]byte, logLen+1)
		gl.GetProgramInfoLog(program, logLen, nil, &log[0])
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("link: %s", gl.GoStr(&log[0]))
	}

	return program, nil
}

func compileShader(source string, shaderType uint32, name string) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csource, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csource, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		log := make([]byte, logLen+1)
		gl.GetShaderInfoLog(shader, logLen, nil, &log[0])
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("%s shader: %s", name, gl.GoStr(&log[0]))
	}

	return shader, nil
}

// GetUniform returns the uniform location for the given name, -1 if the
// uniform is missing or inactive.
func GetUniform(program uint32, name string) int32 {
	return gl.GetUniformLocation(program, gl.Str(name+"\x00"))
}

// BindUniformBlock attaches a named std140 block to a binding point.
func BindUniformBlock(program uint32, name string, binding uint32) bool {
	idx := gl.GetUniformBlockIndex(program, gl.Str(name+"\x00"))
	if idx == gl.INVALID_INDEX {
		return false
	}
	gl.UniformBlockBinding(program, idx, binding)
	return true
}
