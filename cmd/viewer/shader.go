package main

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// shader is a thin wrapper over a compiled+linked GL program, the same
// shape as the teacher's internal/graphics.Shader, adapted to compile
// from inline source strings rather than files — this demo has no
// asset directory of its own.
type shader struct {
	id uint32
}

func newShader(vertexSrc, fragmentSrc string) (*shader, error) {
	v, err := compileShader(vertexSrc, gl.VERTEX_SHADER)
	if err != nil {
		return nil, fmt.Errorf("vertex shader: %w", err)
	}
	f, err := compileShader(fragmentSrc, gl.FRAGMENT_SHADER)
	if err != nil {
		return nil, fmt.Errorf("fragment shader: %w", err)
	}

	program := gl.CreateProgram()
	gl.AttachShader(program, v)
	gl.AttachShader(program, f)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		log := make([]byte, logLength+1)
		gl.GetProgramInfoLog(program, logLength, nil, &log[0])
		return nil, fmt.Errorf("link: %s", string(log))
	}

	gl.DeleteShader(v)
	gl.DeleteShader(f)
	return &shader{id: program}, nil
}

func (s *shader) use() { gl.UseProgram(s.id) }

func (s *shader) setMatrix4(name string, value *float32) {
	loc := gl.GetUniformLocation(s.id, gl.Str(name+"\x00"))
	gl.UniformMatrix4fv(loc, 1, false, value)
}

func (s *shader) setVector3(name string, x, y, z float32) {
	loc := gl.GetUniformLocation(s.id, gl.Str(name+"\x00"))
	gl.Uniform3f(loc, x, y, z)
}

func compileShader(src string, kind uint32) (uint32, error) {
	sh := gl.CreateShader(kind)
	csrc, free := gl.Strs(src + "\x00")
	gl.ShaderSource(sh, 1, csrc, nil)
	free()
	gl.CompileShader(sh)

	var status int32
	gl.GetShaderiv(sh, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(sh, gl.INFO_LOG_LENGTH, &logLength)
		log := make([]byte, logLength+1)
		gl.GetShaderInfoLog(sh, logLength, nil, &log[0])
		return 0, fmt.Errorf("%s", strings.TrimRight(string(log), "\x00"))
	}
	return sh, nil
}
