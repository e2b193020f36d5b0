// Package gles describes the subset of the OpenGL ES 2.0 API the fractal
// renderer drives. The interface keeps rendering code independent of the cgo
// binding so it can be exercised against a recording fake.
package gles

// Enum values as defined by the OpenGL ES 2.0 headers.
const (
	NoError                     uint32 = 0
	InvalidEnum                 uint32 = 0x0500
	InvalidValue                uint32 = 0x0501
	InvalidOperation            uint32 = 0x0502
	OutOfMemory                 uint32 = 0x0505
	InvalidFramebufferOperation uint32 = 0x0506

	VertexShader   uint32 = 0x8B31
	FragmentShader uint32 = 0x8B30

	Texture2D        uint32 = 0x0DE1
	Texture0         uint32 = 0x84C0
	TextureMinFilter uint32 = 0x2801
	TextureMagFilter uint32 = 0x2800
	Nearest          int32  = 0x2600

	RGB                 uint32 = 0x1907
	UnsignedShort565    uint32 = 0x8363
	Float               uint32 = 0x1406
	ArrayBuffer         uint32 = 0x8892
	StaticDraw          uint32 = 0x88E4
	Framebuffer         uint32 = 0x8D40
	ColorAttachment0    uint32 = 0x8CE0
	FramebufferComplete uint32 = 0x8CD5

	TriangleFan uint32 = 0x0006

	ColorBufferBit uint32 = 0x00004000
	DepthBufferBit uint32 = 0x00000100
)

// NotFound is returned by location lookups for names the linked program
// does not expose.
const NotFound int32 = -1

// API is the GPU collaborator. Handles are the raw GL object names; 0 means unset.
type API interface {
	CreateShader(stage uint32) uint32
	ShaderSource(shader uint32, source string)
	CompileShader(shader uint32)
	ShaderCompiled(shader uint32) bool
	// ShaderInfoLog returns at most maxLength bytes of the compile log, and
	// false when the log is empty.
	ShaderInfoLog(shader uint32, maxLength int) (string, bool)

	CreateProgram() uint32
	AttachShader(program, shader uint32)
	LinkProgram(program uint32)
	ProgramLinked(program uint32) bool
	ProgramInfoLog(program uint32, maxLength int) (string, bool)
	UseProgram(program uint32)

	AttribLocation(program uint32, name string) int32
	UniformLocation(program uint32, name string) int32
	Uniform1i(location int32, v int32)
	Uniform2f(location int32, x, y float32)
	Uniform4f(location int32, x, y, z, w float32)

	GenTexture() uint32
	BindTexture(target, texture uint32)
	ActiveTexture(unit uint32)
	TexImage2D(target uint32, internalFormat uint32, width, height int32, format, pixelType uint32, pixels []byte)
	TexParameteri(target, pname uint32, param int32)

	GenFramebuffer() uint32
	BindFramebuffer(target, framebuffer uint32)
	FramebufferTexture2D(target, attachment, texTarget, texture uint32)
	CheckFramebufferStatus(target uint32) uint32

	GenBuffer() uint32
	BindBuffer(target, buffer uint32)
	BufferData(target uint32, data []float32, usage uint32)
	VertexAttribPointer(index uint32, size int32, componentType uint32, normalized bool, stride, offset int32)
	EnableVertexAttribArray(index uint32)

	Viewport(x, y, width, height int32)
	ClearColor(r, g, b, a float32)
	Clear(mask uint32)
	DrawArrays(mode uint32, first, count int32)

	Flush()
	Finish()
	GetError() uint32
}
