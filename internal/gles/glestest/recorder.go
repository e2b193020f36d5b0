// Package glestest provides a recording gles.API for tests.
package glestest

import (
	"fmt"
	"regexp"
	"strings"

	"fractalviewer/internal/gles"
)

var declPattern = regexp.MustCompile(`(?m)^\s*(attribute|uniform)\s+[^;]*?(\w+)\s*;`)

type shaderObject struct {
	stage    uint32
	source   string
	compiled bool
	log      string
}

type programObject struct {
	shaders    []uint32
	linked     bool
	attributes map[string]int32
	uniforms   map[string]int32
}

// Recorder implements gles.API without a GPU. Every call is appended to Calls
// in a printable form. Attribute and uniform locations are derived from the
// declarations in the attached shader sources.
type Recorder struct {
	Calls []string

	// CompileErrors makes a shader fail to compile when its source contains
	// the key; the value becomes the info log.
	CompileErrors map[string]string
	// LinkError, when non-empty, makes every link fail with this log.
	LinkError string
	// Hidden names resolve to gles.NotFound even when declared.
	Hidden map[string]bool
	// Errors raises the code from GetError after the first call with the
	// given method name.
	Errors map[string]uint32
	// FramebufferStatus overrides CheckFramebufferStatus when non-zero.
	FramebufferStatus uint32

	// Uniforms holds the last values written to each location of the
	// program that was in use.
	Uniforms map[uint32]map[int32][]float32

	next     uint32
	pending  uint32
	current  uint32
	shaders  map[uint32]*shaderObject
	programs map[uint32]*programObject
}

var _ gles.API = (*Recorder)(nil)

func NewRecorder() *Recorder {
	return &Recorder{
		Hidden:   map[string]bool{},
		Errors:   map[string]uint32{},
		Uniforms: map[uint32]map[int32][]float32{},
		shaders:  map[uint32]*shaderObject{},
		programs: map[uint32]*programObject{},
	}
}

func (r *Recorder) record(name string, format string, args ...interface{}) {
	r.Calls = append(r.Calls, name+"("+fmt.Sprintf(format, args...)+")")
	if code, ok := r.Errors[name]; ok && r.pending == gles.NoError {
		r.pending = code
		delete(r.Errors, name)
	}
}

func (r *Recorder) alloc() uint32 {
	r.next++
	return r.next
}

// Count returns how many recorded calls start with prefix.
func (r *Recorder) Count(prefix string) int {
	n := 0
	for _, c := range r.Calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

// Index returns the position of the first recorded call starting with
// prefix at or after from, or -1.
func (r *Recorder) Index(prefix string, from int) int {
	for i := from; i < len(r.Calls); i++ {
		if strings.HasPrefix(r.Calls[i], prefix) {
			return i
		}
	}
	return -1
}

// Reset forgets the recorded calls but keeps all GPU objects.
func (r *Recorder) Reset() {
	r.Calls = nil
}

func (r *Recorder) CreateShader(stage uint32) uint32 {
	id := r.alloc()
	r.shaders[id] = &shaderObject{stage: stage}
	r.record("CreateShader", "0x%x", stage)
	return id
}

func (r *Recorder) ShaderSource(shader uint32, source string) {
	if s, ok := r.shaders[shader]; ok {
		s.source = source
	}
	r.record("ShaderSource", "%d", shader)
}

func (r *Recorder) CompileShader(shader uint32) {
	if s, ok := r.shaders[shader]; ok {
		s.compiled = true
		s.log = ""
		for needle, log := range r.CompileErrors {
			if strings.Contains(s.source, needle) {
				s.compiled = false
				s.log = log
			}
		}
	}
	r.record("CompileShader", "%d", shader)
}

func (r *Recorder) ShaderCompiled(shader uint32) bool {
	s, ok := r.shaders[shader]
	return ok && s.compiled
}

func truncate(log string, maxLength int) (string, bool) {
	if log == "" {
		return "", false
	}
	if maxLength > 0 && len(log) > maxLength {
		log = log[:maxLength]
	}
	return log, true
}

func (r *Recorder) ShaderInfoLog(shader uint32, maxLength int) (string, bool) {
	s, ok := r.shaders[shader]
	if !ok {
		return "", false
	}
	return truncate(s.log, maxLength)
}

func (r *Recorder) CreateProgram() uint32 {
	id := r.alloc()
	r.programs[id] = &programObject{}
	r.record("CreateProgram", "")
	return id
}

func (r *Recorder) AttachShader(program, shader uint32) {
	if p, ok := r.programs[program]; ok {
		p.shaders = append(p.shaders, shader)
	}
	r.record("AttachShader", "%d, %d", program, shader)
}

func (r *Recorder) LinkProgram(program uint32) {
	r.record("LinkProgram", "%d", program)
	p, ok := r.programs[program]
	if !ok {
		return
	}
	p.attributes = map[string]int32{}
	p.uniforms = map[string]int32{}
	p.linked = r.LinkError == ""
	for _, id := range p.shaders {
		s := r.shaders[id]
		if s == nil || !s.compiled {
			p.linked = false
			continue
		}
		for _, m := range declPattern.FindAllStringSubmatch(s.source, -1) {
			table := p.uniforms
			if m[1] == "attribute" {
				table = p.attributes
			}
			if _, seen := table[m[2]]; !seen {
				table[m[2]] = int32(len(table))
			}
		}
	}
}

func (r *Recorder) ProgramLinked(program uint32) bool {
	p, ok := r.programs[program]
	return ok && p.linked
}

func (r *Recorder) ProgramInfoLog(program uint32, maxLength int) (string, bool) {
	p, ok := r.programs[program]
	if !ok || p.linked {
		return "", false
	}
	log := r.LinkError
	if log == "" {
		log = "link failed: attached shader did not compile"
	}
	return truncate(log, maxLength)
}

func (r *Recorder) UseProgram(program uint32) {
	r.current = program
	r.record("UseProgram", "%d", program)
}

func (r *Recorder) lookup(program uint32, name string, attribute bool) int32 {
	p, ok := r.programs[program]
	if !ok || !p.linked || r.Hidden[name] {
		return gles.NotFound
	}
	table := p.uniforms
	if attribute {
		table = p.attributes
	}
	if loc, ok := table[name]; ok {
		return loc
	}
	return gles.NotFound
}

func (r *Recorder) AttribLocation(program uint32, name string) int32 {
	r.record("AttribLocation", "%d, %s", program, name)
	return r.lookup(program, name, true)
}

func (r *Recorder) UniformLocation(program uint32, name string) int32 {
	r.record("UniformLocation", "%d, %s", program, name)
	return r.lookup(program, name, false)
}

func (r *Recorder) setUniform(location int32, values ...float32) {
	if location < 0 {
		return
	}
	if r.Uniforms[r.current] == nil {
		r.Uniforms[r.current] = map[int32][]float32{}
	}
	r.Uniforms[r.current][location] = values
}

func (r *Recorder) Uniform1i(location int32, v int32) {
	r.setUniform(location, float32(v))
	r.record("Uniform1i", "%d, %d", location, v)
}

func (r *Recorder) Uniform2f(location int32, x, y float32) {
	r.setUniform(location, x, y)
	r.record("Uniform2f", "%d, %g, %g", location, x, y)
}

func (r *Recorder) Uniform4f(location int32, x, y, z, w float32) {
	r.setUniform(location, x, y, z, w)
	r.record("Uniform4f", "%d, %g, %g, %g, %g", location, x, y, z, w)
}

func (r *Recorder) GenTexture() uint32 {
	id := r.alloc()
	r.record("GenTexture", "")
	return id
}

func (r *Recorder) BindTexture(target, texture uint32) {
	r.record("BindTexture", "0x%x, %d", target, texture)
}

func (r *Recorder) ActiveTexture(unit uint32) {
	r.record("ActiveTexture", "0x%x", unit)
}

func (r *Recorder) TexImage2D(target uint32, internalFormat uint32, width, height int32, format, pixelType uint32, pixels []byte) {
	r.record("TexImage2D", "0x%x, 0x%x, %d, %d, 0x%x, 0x%x, %d", target, internalFormat, width, height, format, pixelType, len(pixels))
}

func (r *Recorder) TexParameteri(target, pname uint32, param int32) {
	r.record("TexParameteri", "0x%x, 0x%x, 0x%x", target, pname, param)
}

func (r *Recorder) GenFramebuffer() uint32 {
	id := r.alloc()
	r.record("GenFramebuffer", "")
	return id
}

func (r *Recorder) BindFramebuffer(target, framebuffer uint32) {
	r.record("BindFramebuffer", "0x%x, %d", target, framebuffer)
}

func (r *Recorder) FramebufferTexture2D(target, attachment, texTarget, texture uint32) {
	r.record("FramebufferTexture2D", "0x%x, 0x%x, 0x%x, %d", target, attachment, texTarget, texture)
}

func (r *Recorder) CheckFramebufferStatus(target uint32) uint32 {
	r.record("CheckFramebufferStatus", "0x%x", target)
	if r.FramebufferStatus != 0 {
		return r.FramebufferStatus
	}
	return gles.FramebufferComplete
}

func (r *Recorder) GenBuffer() uint32 {
	id := r.alloc()
	r.record("GenBuffer", "")
	return id
}

func (r *Recorder) BindBuffer(target, buffer uint32) {
	r.record("BindBuffer", "0x%x, %d", target, buffer)
}

func (r *Recorder) BufferData(target uint32, data []float32, usage uint32) {
	r.record("BufferData", "0x%x, %v, 0x%x", target, data, usage)
}

func (r *Recorder) VertexAttribPointer(index uint32, size int32, componentType uint32, normalized bool, stride, offset int32) {
	r.record("VertexAttribPointer", "%d, %d, 0x%x, %t, %d, %d", index, size, componentType, normalized, stride, offset)
}

func (r *Recorder) EnableVertexAttribArray(index uint32) {
	r.record("EnableVertexAttribArray", "%d", index)
}

func (r *Recorder) Viewport(x, y, width, height int32) {
	r.record("Viewport", "%d, %d, %d, %d", x, y, width, height)
}

func (r *Recorder) ClearColor(red, green, blue, alpha float32) {
	r.record("ClearColor", "%g, %g, %g, %g", red, green, blue, alpha)
}

func (r *Recorder) Clear(mask uint32) {
	r.record("Clear", "0x%x", mask)
}

func (r *Recorder) DrawArrays(mode uint32, first, count int32) {
	r.record("DrawArrays", "0x%x, %d, %d", mode, first, count)
}

func (r *Recorder) Flush() {
	r.record("Flush", "")
}

func (r *Recorder) Finish() {
	r.record("Finish", "")
}

// GetError is not recorded so that error checks do not clutter Calls.
func (r *Recorder) GetError() uint32 {
	code := r.pending
	r.pending = gles.NoError
	return code
}
