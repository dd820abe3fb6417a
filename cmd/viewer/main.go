// Command viewer is a minimal demonstration that loads an archived-map
// cache file and draws its segs as a top-down wireframe. It is a
// consumer of internal/cache's output, not part of the builder itself
// — OpenGL rendering is explicitly out of this repository's core scope,
// the same way the teacher's own cmd/triangle is a standalone demo
// next to its real game loop in cmd/mini-mc.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"

	"doombsp/internal/cache"
)

const (
	windowWidth  = 900
	windowHeight = 900
	padding      = 32 // world units of margin around the map bounds
)

var vertexSrc = `#version 410 core
layout(location = 0) in vec2 position;
uniform mat4 projection;
void main() {
	gl_Position = projection * vec4(position, 0.0, 1.0);
}` + "\x00"

var fragmentSrc = `#version 410 core
uniform vec3 lineColor;
out vec4 fragColor;
void main() {
	fragColor = vec4(lineColor, 1.0);
}` + "\x00"

func init() {
	runtime.LockOSThread()
}

func main() {
	input := flag.String("input", "", "archived-map cache file to display (required)")
	flag.Parse()
	if *input == "" {
		fmt.Fprintln(os.Stderr, "usage: viewer --input map.bspcache")
		os.Exit(1)
	}

	doc, err := loadCache(*input)
	if err != nil {
		log.Fatalf("viewer: %v", err)
	}
	wf := buildWireframe(doc)

	if err := glfw.Init(); err != nil {
		log.Fatalf("viewer: glfw init: %v", err)
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	title := fmt.Sprintf("doombsp viewer - %s (%d segs)", *input, wf.lineCount())
	window, err := glfw.CreateWindow(windowWidth, windowHeight, title, nil, nil)
	if err != nil {
		log.Fatalf("viewer: create window: %v", err)
	}
	window.MakeContextCurrent()
	glfw.SwapInterval(1)

	if err := gl.Init(); err != nil {
		log.Fatalf("viewer: gl init: %v", err)
	}

	prog, err := newShader(vertexSrc, fragmentSrc)
	if err != nil {
		log.Fatalf("viewer: %v", err)
	}

	var vao, vbo uint32
	gl.GenVertexArrays(1, &vao)
	gl.BindVertexArray(vao)
	gl.GenBuffers(1, &vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(wf.verts)*4, gl.Ptr(wf.verts), gl.STATIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, 0, gl.PtrOffset(0))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)

	proj := mgl32.Ortho2D(
		float32(wf.minX)-padding, float32(wf.maxX)+padding,
		float32(wf.minY)-padding, float32(wf.maxY)+padding,
	)

	gl.ClearColor(0.05, 0.05, 0.05, 1.0)
	prog.use()
	prog.setMatrix4("projection", &proj[0])
	prog.setVector3("lineColor", 0.2, 1.0, 0.4)
	gl.BindVertexArray(vao)

	for !window.ShouldClose() {
		if window.GetKey(glfw.KeyEscape) == glfw.Press {
			window.SetShouldClose(true)
		}

		gl.Clear(gl.COLOR_BUFFER_BIT)
		gl.DrawArrays(gl.LINES, 0, wf.lineCount()*2)

		window.SwapBuffers()
		glfw.PollEvents()
	}

	gl.DeleteBuffers(1, &vbo)
	gl.DeleteVertexArrays(1, &vao)
}

func loadCache(path string) (cache.Doc, error) {
	f, err := os.Open(path)
	if err != nil {
		return cache.Doc{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return cache.Decode(f)
}
