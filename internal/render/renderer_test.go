package render

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"fractalviewer/internal/gles"
	"fractalviewer/internal/gles/glestest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRenderer(opts Options) (*Renderer, *glestest.Recorder, *State) {
	rec := glestest.NewRecorder()
	r := New(rec, DefaultSources(ProfileVC4, 0), opts)
	return r, rec, NewState(1920, 1080)
}

func ready(t *testing.T, opts Options) (*Renderer, *glestest.Recorder, *State) {
	t.Helper()
	r, rec, st := newTestRenderer(opts)
	require.NoError(t, r.Setup(st))
	require.NoError(t, r.Prerender(st))
	return r, rec, st
}

func TestSetupResolvesLocations(t *testing.T) {
	r, rec, st := newTestRenderer(Options{})
	require.NoError(t, r.Setup(st))

	assert.Equal(t, ShadersReady, st.Stage)
	for _, id := range []uint32{st.VertexShader.ID, st.JuliaShader.ID, st.MandelbrotShader.ID,
		st.Julia.ID, st.Mandelbrot.ID, st.QuadBuffer, st.Target.Texture, st.Target.Framebuffer} {
		assert.NotZero(t, id)
	}

	for _, loc := range []int32{st.JuliaLoc.Scale, st.JuliaLoc.Centre, st.JuliaLoc.Offset, st.JuliaLoc.Tex,
		st.MandelbrotLoc.Scale, st.MandelbrotLoc.Centre} {
		assert.GreaterOrEqual(t, loc, int32(0))
	}
	assert.Equal(t, gles.NotFound, st.MandelbrotLoc.Offset)
	assert.Equal(t, gles.NotFound, st.MandelbrotLoc.Tex)

	assert.Equal(t, 1, rec.Count("TexImage2D(0xde1, 0x1907, 1920, 1080, 0x1907, 0x8363, 0)"))
	assert.Equal(t, 1, rec.Count(fmt.Sprintf("FramebufferTexture2D(0x8d40, 0x8ce0, 0xde1, %d)", st.Target.Texture)))
	assert.Equal(t, 1, rec.Count("BufferData(0x8892, [-1 -1 1 1 1 -1 1 1 1 1 1 1 -1 1 1 1], 0x88e4)"))
	assert.Equal(t, 2, rec.Count("EnableVertexAttribArray("))
	assert.Equal(t, 1, rec.Count("Viewport(0, 0, 1920, 1080)"))
}

func TestSetupRejectsEmptyScreen(t *testing.T) {
	rec := glestest.NewRecorder()
	r := New(rec, DefaultSources(ProfileVC4, 0), Options{})
	st := NewState(0, 1080)

	assert.Error(t, r.Setup(st))
	assert.Equal(t, Uninitialized, st.Stage)
	assert.Empty(t, rec.Calls)
}

func TestPrerenderDrawsIntoTarget(t *testing.T) {
	r, rec, st := newTestRenderer(Options{})
	require.NoError(t, r.Setup(st))
	rec.Reset()

	require.NoError(t, r.Prerender(st))
	assert.Equal(t, TexturePrerendered, st.Stage)

	bind := rec.Index(fmt.Sprintf("BindFramebuffer(0x8d40, %d)", st.Target.Framebuffer), 0)
	use := rec.Index(fmt.Sprintf("UseProgram(%d)", st.Mandelbrot.ID), bind)
	draw := rec.Index("DrawArrays(0x6, 0, 4)", use)
	flush := rec.Index("Flush(", draw)
	finish := rec.Index("Finish(", flush)
	for _, i := range []int{bind, use, draw, flush, finish} {
		require.GreaterOrEqual(t, i, 0, rec.Calls)
	}
	assert.Equal(t, len(rec.Calls)-1, finish, "finish must be the last call of the pass")
	assert.Equal(t, 1, rec.Count("DrawArrays("))

	uniforms := rec.Uniforms[st.Mandelbrot.ID]
	assert.Equal(t, []float32{0.003, 0.003}, uniforms[st.MandelbrotLoc.Scale])
	assert.Equal(t, []float32{960, 540}, uniforms[st.MandelbrotLoc.Centre])
}

func TestDrawJuliaSamplesPrerenderedTexture(t *testing.T) {
	r, rec, st := ready(t, Options{})
	rec.Reset()

	require.NoError(t, r.DrawJulia(st, 805, 397))
	assert.Equal(t, Running, st.Stage)

	assert.Equal(t, "BindFramebuffer(0x8d40, 0)", rec.Calls[0])
	use := rec.Index(fmt.Sprintf("UseProgram(%d)", st.Julia.ID), 0)
	tex := rec.Index(fmt.Sprintf("BindTexture(0xde1, %d)", st.Target.Texture), use)
	draw := rec.Index("DrawArrays(0x6, 0, 4)", tex)
	require.True(t, use >= 0 && tex > use && draw > tex, rec.Calls)
	assert.Equal(t, "Finish()", rec.Calls[len(rec.Calls)-1])
	assert.Zero(t, rec.Count("TexImage2D("), "the prerendered texture is never written again")

	uniforms := rec.Uniforms[st.Julia.ID]
	assert.Equal(t, []float32{805, 397}, uniforms[st.JuliaLoc.Offset])
	assert.Equal(t, []float32{960, 540}, uniforms[st.JuliaLoc.Centre])
	assert.Equal(t, []float32{0.003, 0.003}, uniforms[st.JuliaLoc.Scale])
	assert.Equal(t, []float32{0}, uniforms[st.JuliaLoc.Tex])

	require.NoError(t, r.DrawJulia(st, 0, 1080))
	assert.Equal(t, []float32{0, 1080}, rec.Uniforms[st.Julia.ID][st.JuliaLoc.Offset])
}

func TestStagesOnlyMoveForward(t *testing.T) {
	r, rec, st := newTestRenderer(Options{})

	var stageErr *StageError
	require.ErrorAs(t, r.DrawJulia(st, 1, 1), &stageErr)
	assert.Equal(t, Uninitialized, stageErr.Have)
	require.ErrorAs(t, r.Prerender(st), &stageErr)
	assert.Empty(t, rec.Calls)

	require.NoError(t, r.Setup(st))
	require.ErrorAs(t, r.Setup(st), &stageErr)
	require.ErrorAs(t, r.DrawJulia(st, 1, 1), &stageErr)

	require.NoError(t, r.Prerender(st))
	require.ErrorAs(t, r.Prerender(st), &stageErr)
	assert.Equal(t, TexturePrerendered, stageErr.Have)

	require.NoError(t, r.DrawJulia(st, 1, 1))
	require.ErrorAs(t, r.Prerender(st), &stageErr)
	assert.Equal(t, Running, stageErr.Have)
	assert.Equal(t, 2, rec.Count("DrawArrays("))
}

func TestCompileFailureIsNotFatalUntilLocationsMissing(t *testing.T) {
	r, rec, st := newTestRenderer(Options{})
	rec.CompileErrors = map[string]string{"sampler2D": "0:6: 'sampler2D' : syntax error"}

	err := r.Setup(st)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRequiredLocationMissing), err.Error())

	var renderErr *Error
	require.ErrorAs(t, err, &renderErr)
	assert.Equal(t, "vertex", renderErr.Name)
	assert.Equal(t, Uninitialized, st.Stage)
	assert.Zero(t, st.Julia.ID, "failed setup must not assign handles")
}

func TestStrictModeReportsCompileLog(t *testing.T) {
	r, rec, st := newTestRenderer(Options{Strict: true})
	rec.CompileErrors = map[string]string{"MAX_ITERATIONS 18": "0:1: loop too long"}

	err := r.Setup(st)
	require.True(t, errors.Is(err, ErrCompileFailed), err)

	var renderErr *Error
	require.ErrorAs(t, err, &renderErr)
	assert.Equal(t, "mandelbrot", renderErr.Name)
	assert.Equal(t, "0:1: loop too long", renderErr.Log)
}

func TestStrictModeReportsLinkLog(t *testing.T) {
	r, rec, st := newTestRenderer(Options{Strict: true})
	rec.LinkError = "varying tcoord not written"

	err := r.Setup(st)
	require.True(t, errors.Is(err, ErrLinkFailed), err)
	assert.Contains(t, err.Error(), "varying tcoord not written")
}

func TestMissingRequiredUniform(t *testing.T) {
	r, rec, st := newTestRenderer(Options{})
	rec.Hidden["offset"] = true

	err := r.Setup(st)
	var renderErr *Error
	require.ErrorAs(t, err, &renderErr)
	assert.Equal(t, RequiredLocationMissing, renderErr.Kind)
	assert.Equal(t, "offset", renderErr.Name)
	assert.Contains(t, err.Error(), `"offset"`)
}

func TestRuntimeErrorCarriesKnownCause(t *testing.T) {
	r, rec, st := newTestRenderer(Options{})
	require.NoError(t, r.Setup(st))
	rec.Errors["DrawArrays"] = gles.OutOfMemory

	err := r.Prerender(st)
	var renderErr *Error
	require.ErrorAs(t, err, &renderErr)
	assert.Equal(t, RuntimeError, renderErr.Kind)
	assert.Equal(t, gles.OutOfMemory, renderErr.Code)
	assert.Equal(t, "draw mandelbrot", renderErr.Op)
	assert.Contains(t, err.Error(), "GL_OUT_OF_MEMORY")
	assert.Contains(t, err.Error(), "VideoCore IV")
	assert.True(t, errors.Is(err, ErrRuntime))
	assert.Equal(t, ShadersReady, st.Stage)
}

func TestRuntimeErrorUnknownCode(t *testing.T) {
	err := &Error{Kind: RuntimeError, Op: "draw julia", Code: 0x0504}
	assert.Equal(t, "render: draw julia: glGetError is non zero: 0x0504 (0x0504)", err.Error())

	err = &Error{Kind: RuntimeError, Op: "draw julia", Code: gles.InvalidOperation}
	assert.Contains(t, err.Error(), "is not legal for the parameters given to that command")
}

func TestIncompleteTarget(t *testing.T) {
	r, rec, st := newTestRenderer(Options{})
	rec.FramebufferStatus = 0x8CDD

	err := r.Setup(st)
	require.True(t, errors.Is(err, ErrIncompleteTarget), err)
	assert.Contains(t, err.Error(), "0x8cdd")
	assert.Equal(t, "BindFramebuffer(0x8d40, 0)", rec.Calls[len(rec.Calls)-1])
}

func TestPrerenderIsDeterministic(t *testing.T) {
	run := func() []string {
		r, rec, st := newTestRenderer(Options{Scale: 0.004})
		require.NoError(t, r.Setup(st))
		require.NoError(t, r.Prerender(st))
		return rec.Calls
	}
	assert.Equal(t, run(), run())
}

func TestShaderManagerBoundsInfoLog(t *testing.T) {
	rec := glestest.NewRecorder()
	rec.CompileErrors = map[string]string{"broken": strings.Repeat("e", 3000)}
	m := NewShaderManager(rec)

	s, err := m.Compile("frag", gles.FragmentShader, "broken")
	require.NoError(t, err)
	assert.NotZero(t, s.ID)
	assert.False(t, s.Compiled)
	assert.Len(t, s.Log, InfoLogLength)
	assert.True(t, errors.Is(s.Err(), ErrCompileFailed))

	ok, err := m.Compile("vert", gles.VertexShader, "attribute vec4 vertex;")
	require.NoError(t, err)
	assert.NoError(t, ok.Err())

	p, err := m.Link("prog", ok, s)
	require.NoError(t, err)
	assert.NotZero(t, p.ID)
	assert.False(t, p.Linked)
	assert.NotEmpty(t, p.Log)

	loc, err := m.AttribLocation(p, "vertex")
	require.NoError(t, err)
	assert.Equal(t, gles.NotFound, loc)
}

func TestSources(t *testing.T) {
	vc4 := DefaultSources(ProfileVC4, 0)
	assert.True(t, strings.HasPrefix(vc4.Mandelbrot, "#define MAX_ITERATIONS 18\n"))
	assert.Contains(t, vc4.Mandelbrot, "#define FRAG_COLOR vec4(float(i)")
	assert.True(t, strings.HasPrefix(vc4.Julia, "#define MAX_ITERATIONS 16\n"))
	assert.Contains(t, vc4.Julia, "texture2D(tex, t2)")
	assert.Contains(t, vc4.Vertex, "attribute mediump vec4 vertex;")

	vc6 := DefaultSources(ProfileVC6, 0)
	assert.True(t, strings.HasPrefix(vc6.Mandelbrot, "#define MAX_ITERATIONS 512\n"))
	assert.Contains(t, vc6.Mandelbrot, "hsl2rgb(vec3(float(i) / 360.0")
	assert.Equal(t, vc4.Julia, vc6.Julia)

	custom := DefaultSources(ProfileVC6, 64)
	assert.True(t, strings.HasPrefix(custom.Mandelbrot, "#define MAX_ITERATIONS 64\n"))

	p, err := ParseProfile("VC6")
	require.NoError(t, err)
	assert.Equal(t, ProfileVC6, p)
	_, err = ParseProfile("vc5")
	assert.Error(t, err)

	assert.Equal(t, vc4, vc4.WithOverrides(""))
}
