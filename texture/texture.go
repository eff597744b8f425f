// Package texture implements the external GPU texture object and
// shader program shims spec.md §6 leaves as named interfaces: a real
// OpenGL compressed-texture upload target and the two fixed fragment
// programs the original used (a passthrough for DXT1/DXT5 and a
// YCoCg-scaled-DXT5-to-RGBA conversion for the space-saving Hap Q
// variant).
package texture

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// PixelFormat selects which GPU upload path and shader a Texture needs.
type PixelFormat int

const (
	FormatRGBDXT1 PixelFormat = iota
	FormatRGBADXT5
	FormatYCoCgDXT5
)

func (f PixelFormat) glInternalFormat() uint32 {
	switch f {
	case FormatRGBDXT1:
		return gl.COMPRESSED_RGB_S3TC_DXT1_EXT
	default:
		return gl.COMPRESSED_RGBA_S3TC_DXT5_EXT
	}
}

// vertex shader shared by both fragment programs: a fullscreen quad.
const vertexShaderSource = `#version 410 core
layout (location = 0) in vec2 in_vert;
out vec2 frag_uv;
void main() {
	frag_uv = in_vert * 0.5 + 0.5;
	gl_Position = vec4(in_vert, 0.0, 1.0);
}
`

// passthroughFragmentShader samples an already-RGB(A) compressed
// texture (DXT1, DXT5) directly.
const passthroughFragmentShader = `#version 410 core
in vec2 frag_uv;
out vec4 fragColor;
uniform sampler2D u_texture;
void main() {
	fragColor = texture(u_texture, frag_uv);
}
`

// ycocgFragmentShader converts the YCoCg-scaled-DXT5 ("Hap Q") storage
// format back to RGBA, ported from the CoCgSY decode used by the
// original player's shader.
const ycocgFragmentShader = `#version 410 core
in vec2 frag_uv;
out vec4 fragColor;
uniform sampler2D u_texture;
const vec4 offsets = vec4(-0.50196078431373, -0.50196078431373, 0.0, 0.0);
void main() {
	vec4 CoCgSY = texture(u_texture, frag_uv) + offsets;
	float scale = (CoCgSY.z * (255.0 / 8.0)) + 1.0;
	float Co = CoCgSY.x / scale;
	float Cg = CoCgSY.y / scale;
	float Y = CoCgSY.w;
	fragColor = vec4(Y + Co - Cg, Y + Cg, Y - Co - Cg, 1.0);
}
`

// Context owns an offscreen GLFW window and OpenGL context used purely
// to host a current context for texture/shader operations; no window is
// ever shown.
type Context struct {
	window *glfw.Window
}

// NewContext pins the calling goroutine to its OS thread with
// runtime.LockOSThread, creates a hidden GLFW window and makes its GL
// context current on that thread.
func NewContext() (*Context, error) {
	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("texture: glfw.Init: %w", err)
	}
	glfw.WindowHint(glfw.Visible, glfw.False)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	win, err := glfw.CreateWindow(1, 1, "gohap", nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("texture: CreateWindow: %w", err)
	}
	win.MakeContextCurrent()
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("texture: gl.Init: %w", err)
	}
	return &Context{window: win}, nil
}

// Close tears down the offscreen context.
func (c *Context) Close() {
	glfw.Terminate()
}

// Texture is a GPU-resident compressed texture, uploaded directly from
// a decoded block-compression buffer without CPU-side decompression.
type Texture struct {
	id            uint32
	width, height int
	format        PixelFormat
}

// New allocates an empty GPU texture object.
func New() *Texture {
	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_2D, id)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return &Texture{id: id}
}

// ID returns the underlying OpenGL texture name.
func (t *Texture) ID() uint32 { return t.id }

// Format reports the pixel format of the most recent Upload.
func (t *Texture) Format() PixelFormat { return t.format }

// Upload replaces the texture's contents with a compressed block
// buffer, sized width x height, in format.
func (t *Texture) Upload(width, height int, format PixelFormat, data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("texture: Upload: empty data")
	}
	gl.BindTexture(gl.TEXTURE_2D, t.id)
	gl.CompressedTexImage2D(gl.TEXTURE_2D, 0, format.glInternalFormat(),
		int32(width), int32(height), 0, int32(len(data)), gl.Ptr(data))
	gl.BindTexture(gl.TEXTURE_2D, 0)
	t.width, t.height = width, height
	t.format = format
	return nil
}

// Close releases the GPU texture object.
func (t *Texture) Close() {
	if t.id != 0 {
		gl.DeleteTextures(1, &t.id)
		t.id = 0
	}
}

// Program is a compiled GL shader program plus the uniform location
// the draw call needs to bind the source texture.
type Program struct {
	id          uint32
	textureLoc  int32
}

// Shaders compiles the two fixed fragment programs the player needs:
// one for direct RGB(A) compressed formats, one for the YCoCg-scaled
// DXT5 variant. Callers select between them per Texture.Format().
type Shaders struct {
	Passthrough *Program
	YCoCg       *Program
}

// Compile builds both fixed programs against the current GL context.
func Compile() (*Shaders, error) {
	passthrough, err := newProgram(vertexShaderSource, passthroughFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("texture: compile passthrough: %w", err)
	}
	ycocg, err := newProgram(vertexShaderSource, ycocgFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("texture: compile ycocg: %w", err)
	}
	return &Shaders{Passthrough: passthrough, YCoCg: ycocg}, nil
}

// For returns the correct compiled program for format.
func (s *Shaders) For(format PixelFormat) *Program {
	if format == FormatYCoCgDXT5 {
		return s.YCoCg
	}
	return s.Passthrough
}

// Use binds the program and samples t through its "u_texture" uniform.
func (p *Program) Use(t *Texture) {
	gl.UseProgram(p.id)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, t.id)
	gl.Uniform1i(p.textureLoc, 0)
}

func newProgram(vertexSource, fragmentSource string) (*Program, error) {
	vs, err := compileShader(vertexSource, gl.VERTEX_SHADER)
	if err != nil {
		return nil, err
	}
	fs, err := compileShader(fragmentSource, gl.FRAGMENT_SHADER)
	if err != nil {
		return nil, err
	}
	id := gl.CreateProgram()
	gl.AttachShader(id, vs)
	gl.AttachShader(id, fs)
	gl.LinkProgram(id)

	var status int32
	gl.GetProgramiv(id, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(id, gl.INFO_LOG_LENGTH, &logLength)
		logText := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(id, logLength, nil, gl.Str(logText))
		return nil, fmt.Errorf("link program: %s", logText)
	}
	gl.DeleteShader(vs)
	gl.DeleteShader(fs)

	loc := gl.GetUniformLocation(id, gl.Str("u_texture\x00"))
	return &Program{id: id, textureLoc: loc}, nil
}

func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		logText := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(logText))
		return 0, fmt.Errorf("compile shader: %s", logText)
	}
	return shader, nil
}
