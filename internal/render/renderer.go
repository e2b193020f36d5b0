// Package render draws the two fractal passes: a Mandelbrot set rendered
// once into an offscreen texture, and a Julia set redrawn every frame on
// screen that samples that texture.
package render

import (
	"fmt"

	"fractalviewer/internal/gles"
	"fractalviewer/internal/utils"
)

type Stage int

const (
	Uninitialized Stage = iota
	ShadersReady
	TexturePrerendered
	Running
)

func (s Stage) String() string {
	switch s {
	case Uninitialized:
		return "Uninitialized"
	case ShadersReady:
		return "ShadersReady"
	case TexturePrerendered:
		return "TexturePrerendered"
	case Running:
		return "Running"
	}
	return fmt.Sprintf("Stage(%d)", int(s))
}

// DefaultScale maps one screen pixel to 0.003 units of the complex plane.
const DefaultScale float32 = 0.003

// quad is a full-screen triangle fan in clip space, one vec4 per vertex.
var quad = []float32{
	-1.0, -1.0, 1.0, 1.0,
	1.0, -1.0, 1.0, 1.0,
	1.0, 1.0, 1.0, 1.0,
	-1.0, 1.0, 1.0, 1.0,
}

const (
	quadComponents = 4
	quadStride     = quadComponents * 4
	quadVertices   = 4
)

// Locations caches the inputs of one linked program. Uniforms a program does
// not use are gles.NotFound.
type Locations struct {
	Vertex uint32
	Scale  int32
	Centre int32
	Offset int32
	Tex    int32
}

// State owns every GPU handle of the pipeline. It is created once by the
// main loop and passed to each renderer call; handles are assigned once by
// Setup and never change afterwards.
type State struct {
	Width  int32
	Height int32

	VertexShader     Shader
	MandelbrotShader Shader
	JuliaShader      Shader

	Julia         Program
	Mandelbrot    Program
	JuliaLoc      Locations
	MandelbrotLoc Locations

	QuadBuffer uint32
	Target     Target

	Stage Stage
}

func NewState(width, height int32) *State {
	unset := Locations{Scale: gles.NotFound, Centre: gles.NotFound, Offset: gles.NotFound, Tex: gles.NotFound}
	return &State{
		Width:         width,
		Height:        height,
		JuliaLoc:      unset,
		MandelbrotLoc: unset,
	}
}

// Centre is the screen midpoint in pixels.
func (s *State) Centre() (float32, float32) {
	return float32(s.Width) / 2, float32(s.Height) / 2
}

type Options struct {
	Scale float32
	// Strict turns compile and link diagnostics into errors.
	Strict  bool
	Verbose bool
}

// Renderer sequences the prerender and live passes against a GPU API.
type Renderer struct {
	gl      gles.API
	shaders *ShaderManager
	sources Sources
	opts    Options
}

func New(api gles.API, sources Sources, opts Options) *Renderer {
	if opts.Scale == 0 {
		opts.Scale = DefaultScale
	}
	shaders := NewShaderManager(api)
	shaders.Verbose = opts.Verbose
	return &Renderer{
		gl:      api,
		shaders: shaders,
		sources: sources,
		opts:    opts,
	}
}

func (r *Renderer) Scale() float32 { return r.opts.Scale }

func expectStage(st *State, op string, want ...Stage) error {
	for _, w := range want {
		if st.Stage == w {
			return nil
		}
	}
	return &StageError{Op: op, Have: st.Stage, Want: want}
}

// diagnose logs a failed compile or link, or returns it in strict mode.
func (r *Renderer) diagnose(err error) error {
	if err == nil {
		return nil
	}
	if r.opts.Strict {
		return err
	}
	utils.Warn("Shader: %v", err)
	return nil
}

// Setup compiles and links both programs, resolves their inputs, uploads the
// quad and allocates the offscreen target. Uninitialized -> ShadersReady.
func (r *Renderer) Setup(st *State) error {
	if err := expectStage(st, "setup", Uninitialized); err != nil {
		return err
	}
	if st.Width <= 0 || st.Height <= 0 {
		return fmt.Errorf("render: setup: invalid screen size %dx%d", st.Width, st.Height)
	}

	r.gl.ClearColor(0.15, 0.25, 0.35, 1.0)
	r.gl.Clear(gles.ColorBufferBit)
	if err := checkError(r.gl, "clear"); err != nil {
		return err
	}

	// Build into a copy so a failed setup leaves st untouched.
	next := *st

	var err error
	if next.VertexShader, err = r.shaders.Compile("vertex", gles.VertexShader, r.sources.Vertex); err != nil {
		return err
	}
	if next.JuliaShader, err = r.shaders.Compile("julia", gles.FragmentShader, r.sources.Julia); err != nil {
		return err
	}
	if next.MandelbrotShader, err = r.shaders.Compile("mandelbrot", gles.FragmentShader, r.sources.Mandelbrot); err != nil {
		return err
	}
	for _, s := range []Shader{next.VertexShader, next.JuliaShader, next.MandelbrotShader} {
		if err := r.diagnose(s.Err()); err != nil {
			return err
		}
	}

	if next.Julia, err = r.shaders.Link("julia", next.VertexShader, next.JuliaShader); err != nil {
		return err
	}
	if err := r.diagnose(next.Julia.Err()); err != nil {
		return err
	}
	if next.Mandelbrot, err = r.shaders.Link("mandelbrot", next.VertexShader, next.MandelbrotShader); err != nil {
		return err
	}
	if err := r.diagnose(next.Mandelbrot.Err()); err != nil {
		return err
	}

	if next.JuliaLoc, err = r.locate(next.Julia, true); err != nil {
		return err
	}
	if next.MandelbrotLoc, err = r.locate(next.Mandelbrot, false); err != nil {
		return err
	}

	next.QuadBuffer = r.gl.GenBuffer()
	if err := checkError(r.gl, "allocate quad buffer"); err != nil {
		return err
	}

	if next.Target, err = NewTarget(r.gl, next.Width, next.Height); err != nil {
		return err
	}

	r.gl.Viewport(0, 0, next.Width, next.Height)
	if err := checkError(r.gl, "viewport"); err != nil {
		return err
	}

	r.gl.BindBuffer(gles.ArrayBuffer, next.QuadBuffer)
	r.gl.BufferData(gles.ArrayBuffer, quad, gles.StaticDraw)
	r.describeQuad(next.JuliaLoc.Vertex)
	r.describeQuad(next.MandelbrotLoc.Vertex)
	if err := checkError(r.gl, "upload quad"); err != nil {
		return err
	}

	next.Stage = ShadersReady
	*st = next
	utils.Debug("Render: Setup complete (julia program %d, mandelbrot program %d, target %dx%d)",
		st.Julia.ID, st.Mandelbrot.ID, st.Target.Width, st.Target.Height)
	return nil
}

func (r *Renderer) locate(p Program, sampler bool) (Locations, error) {
	loc := Locations{Offset: gles.NotFound, Tex: gles.NotFound}
	var err error
	if loc.Vertex, err = r.shaders.RequireAttrib(p, "vertex"); err != nil {
		return loc, err
	}
	if loc.Scale, err = r.shaders.RequireUniform(p, "scale"); err != nil {
		return loc, err
	}
	if loc.Centre, err = r.shaders.RequireUniform(p, "centre"); err != nil {
		return loc, err
	}
	if !sampler {
		return loc, nil
	}
	if loc.Offset, err = r.shaders.RequireUniform(p, "offset"); err != nil {
		return loc, err
	}
	if loc.Tex, err = r.shaders.RequireUniform(p, "tex"); err != nil {
		return loc, err
	}
	return loc, nil
}

func (r *Renderer) describeQuad(index uint32) {
	r.gl.VertexAttribPointer(index, quadComponents, gles.Float, false, quadStride, 0)
	r.gl.EnableVertexAttribArray(index)
}

// bindQuad re-specifies the quad attribute before a draw; the window
// toolkit issues its own vertex attribute calls between frames.
func (r *Renderer) bindQuad(st *State, index uint32) {
	r.gl.BindBuffer(gles.ArrayBuffer, st.QuadBuffer)
	r.describeQuad(index)
}

func (r *Renderer) sync(op string) error {
	r.gl.Flush()
	r.gl.Finish()
	return checkError(r.gl, op)
}

// Prerender draws the Mandelbrot set into the offscreen target and waits for
// the GPU to finish. ShadersReady -> TexturePrerendered; runs exactly once.
func (r *Renderer) Prerender(st *State) error {
	if err := expectStage(st, "prerender", ShadersReady); err != nil {
		return err
	}

	cx, cy := st.Centre()

	st.Target.Bind(r.gl)
	if err := checkError(r.gl, "bind target"); err != nil {
		return err
	}
	r.bindQuad(st, st.MandelbrotLoc.Vertex)

	r.gl.UseProgram(st.Mandelbrot.ID)
	if err := checkError(r.gl, "use mandelbrot program"); err != nil {
		return err
	}

	r.gl.Uniform2f(st.MandelbrotLoc.Scale, r.opts.Scale, r.opts.Scale)
	r.gl.Uniform2f(st.MandelbrotLoc.Centre, cx, cy)
	if err := checkError(r.gl, "set mandelbrot uniforms"); err != nil {
		return err
	}

	r.gl.DrawArrays(gles.TriangleFan, 0, quadVertices)
	if err := checkError(r.gl, "draw mandelbrot"); err != nil {
		return err
	}

	if err := r.sync("finish mandelbrot"); err != nil {
		return err
	}

	st.Stage = TexturePrerendered
	utils.Debug("Render: Mandelbrot prerendered (scale %g, centre %g,%g)", r.opts.Scale, cx, cy)
	return nil
}

// DrawJulia draws one Julia frame on screen with the pointer position as the
// offset and waits for the GPU to finish. The caller swaps buffers.
// TexturePrerendered -> Running, then Running -> Running.
func (r *Renderer) DrawJulia(st *State, x, y int) error {
	if err := expectStage(st, "draw julia", TexturePrerendered, Running); err != nil {
		return err
	}

	cx, cy := st.Centre()

	r.gl.BindFramebuffer(gles.Framebuffer, 0)
	r.gl.Viewport(0, 0, st.Width, st.Height)
	r.gl.Clear(gles.ColorBufferBit | gles.DepthBufferBit)
	if err := checkError(r.gl, "clear screen"); err != nil {
		return err
	}

	r.bindQuad(st, st.JuliaLoc.Vertex)
	if err := checkError(r.gl, "bind quad"); err != nil {
		return err
	}
	r.gl.UseProgram(st.Julia.ID)
	if err := checkError(r.gl, "use julia program"); err != nil {
		return err
	}
	r.gl.ActiveTexture(gles.Texture0)
	r.gl.BindTexture(gles.Texture2D, st.Target.Texture)
	if err := checkError(r.gl, "bind mandelbrot texture"); err != nil {
		return err
	}

	r.gl.Uniform2f(st.JuliaLoc.Scale, r.opts.Scale, r.opts.Scale)
	r.gl.Uniform2f(st.JuliaLoc.Offset, float32(x), float32(y))
	r.gl.Uniform2f(st.JuliaLoc.Centre, cx, cy)
	r.gl.Uniform1i(st.JuliaLoc.Tex, 0)
	if err := checkError(r.gl, "set julia uniforms"); err != nil {
		return err
	}

	r.gl.DrawArrays(gles.TriangleFan, 0, quadVertices)
	if err := checkError(r.gl, "draw julia"); err != nil {
		return err
	}

	r.gl.BindBuffer(gles.ArrayBuffer, 0)

	if err := r.sync("finish julia"); err != nil {
		return err
	}

	st.Stage = Running
	return nil
}
