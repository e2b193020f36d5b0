// Package gogl implements gles.API on top of the go-gl OpenGL ES 2 binding.
// The GL context must be current on the calling OS thread.
package gogl

import (
	"fmt"
	"strings"
	"sync"

	"fractalviewer/internal/gles"

	gl "github.com/go-gl/gl/v3.1/gles2"
)

var glInitOnce sync.Once

type API struct{}

var _ gles.API = API{}

// New loads the GL function pointers for the current context.
func New() (API, error) {
	var initErr error
	glInitOnce.Do(func() {
		initErr = gl.Init()
	})
	if initErr != nil {
		return API{}, fmt.Errorf("failed to initialize OpenGL ES: %w", initErr)
	}
	return API{}, nil
}

// Version reports the GL_VERSION string of the current context.
func (API) Version() string {
	return gl.GoStr(gl.GetString(gl.VERSION))
}

func (API) CreateShader(stage uint32) uint32 { return gl.CreateShader(stage) }

func (API) ShaderSource(shader uint32, source string) {
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
}

func (API) CompileShader(shader uint32) { gl.CompileShader(shader) }

func (API) ShaderCompiled(shader uint32) bool {
	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	return status == gl.TRUE
}

func readLog(length int32, maxLength int, read func(bufSize int32, buf *uint8)) (string, bool) {
	if length <= 1 {
		return "", false
	}
	if maxLength > 0 && int(length) > maxLength {
		length = int32(maxLength)
	}
	buf := make([]uint8, length+1)
	read(length, &buf[0])
	log := strings.TrimRight(gl.GoStr(&buf[0]), "\x00\n ")
	return log, log != ""
}

func (API) ShaderInfoLog(shader uint32, maxLength int) (string, bool) {
	var length int32
	gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &length)
	return readLog(length, maxLength, func(bufSize int32, buf *uint8) {
		gl.GetShaderInfoLog(shader, bufSize, nil, buf)
	})
}

func (API) CreateProgram() uint32 { return gl.CreateProgram() }

func (API) AttachShader(program, shader uint32) { gl.AttachShader(program, shader) }

func (API) LinkProgram(program uint32) { gl.LinkProgram(program) }

func (API) ProgramLinked(program uint32) bool {
	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	return status == gl.TRUE
}

func (API) ProgramInfoLog(program uint32, maxLength int) (string, bool) {
	var length int32
	gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &length)
	return readLog(length, maxLength, func(bufSize int32, buf *uint8) {
		gl.GetProgramInfoLog(program, bufSize, nil, buf)
	})
}

func (API) UseProgram(program uint32) { gl.UseProgram(program) }

func (API) AttribLocation(program uint32, name string) int32 {
	return gl.GetAttribLocation(program, gl.Str(name+"\x00"))
}

func (API) UniformLocation(program uint32, name string) int32 {
	return gl.GetUniformLocation(program, gl.Str(name+"\x00"))
}

func (API) Uniform1i(location int32, v int32)            { gl.Uniform1i(location, v) }
func (API) Uniform2f(location int32, x, y float32)       { gl.Uniform2f(location, x, y) }
func (API) Uniform4f(location int32, x, y, z, w float32) { gl.Uniform4f(location, x, y, z, w) }

func (API) GenTexture() uint32 {
	var id uint32
	gl.GenTextures(1, &id)
	return id
}

func (API) BindTexture(target, texture uint32) { gl.BindTexture(target, texture) }

func (API) ActiveTexture(unit uint32) { gl.ActiveTexture(unit) }

func (API) TexImage2D(target uint32, internalFormat uint32, width, height int32, format, pixelType uint32, pixels []byte) {
	var ptr = gl.Ptr(nil)
	if len(pixels) > 0 {
		ptr = gl.Ptr(pixels)
	}
	gl.TexImage2D(target, 0, int32(internalFormat), width, height, 0, format, pixelType, ptr)
}

func (API) TexParameteri(target, pname uint32, param int32) { gl.TexParameteri(target, pname, param) }

func (API) GenFramebuffer() uint32 {
	var id uint32
	gl.GenFramebuffers(1, &id)
	return id
}

func (API) BindFramebuffer(target, framebuffer uint32) { gl.BindFramebuffer(target, framebuffer) }

func (API) FramebufferTexture2D(target, attachment, texTarget, texture uint32) {
	gl.FramebufferTexture2D(target, attachment, texTarget, texture, 0)
}

func (API) CheckFramebufferStatus(target uint32) uint32 { return gl.CheckFramebufferStatus(target) }

func (API) GenBuffer() uint32 {
	var id uint32
	gl.GenBuffers(1, &id)
	return id
}

func (API) BindBuffer(target, buffer uint32) { gl.BindBuffer(target, buffer) }

func (API) BufferData(target uint32, data []float32, usage uint32) {
	gl.BufferData(target, len(data)*4, gl.Ptr(data), usage)
}

func (API) VertexAttribPointer(index uint32, size int32, componentType uint32, normalized bool, stride, offset int32) {
	gl.VertexAttribPointer(index, size, componentType, normalized, stride, gl.PtrOffset(int(offset)))
}

func (API) EnableVertexAttribArray(index uint32) { gl.EnableVertexAttribArray(index) }

func (API) Viewport(x, y, width, height int32) { gl.Viewport(x, y, width, height) }

func (API) ClearColor(r, g, b, a float32) { gl.ClearColor(r, g, b, a) }

func (API) Clear(mask uint32) { gl.Clear(mask) }

func (API) DrawArrays(mode uint32, first, count int32) { gl.DrawArrays(mode, first, count) }

func (API) Flush() { gl.Flush() }

func (API) Finish() { gl.Finish() }

func (API) GetError() uint32 { return gl.GetError() }
