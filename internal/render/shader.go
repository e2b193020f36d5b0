package render

import (
	"fractalviewer/internal/gles"
	"fractalviewer/internal/utils"
)

// InfoLogLength bounds the compile and link logs kept for diagnostics.
const InfoLogLength = 1024

// Shader is a compiled (or failed) shader object. The handle is valid either way.
type Shader struct {
	ID       uint32
	Stage    uint32
	Name     string
	Compiled bool
	Log      string
}

// Err returns a CompileFailed error when the shader did not compile.
func (s Shader) Err() error {
	if s.Compiled {
		return nil
	}
	return &Error{Kind: CompileFailed, Op: "compile", Name: s.Name, Log: s.Log}
}

type Program struct {
	ID     uint32
	Name   string
	Linked bool
	Log    string
}

// Err returns a LinkFailed error when the program did not link.
func (p Program) Err() error {
	if p.Linked {
		return nil
	}
	return &Error{Kind: LinkFailed, Op: "link", Name: p.Name, Log: p.Log}
}

// ShaderManager compiles and links shader programs and resolves their inputs.
type ShaderManager struct {
	gl      gles.API
	Verbose bool
}

func NewShaderManager(api gles.API) *ShaderManager {
	return &ShaderManager{gl: api}
}

// Compile creates a shader object for stage and compiles source. A compile
// failure is reported through Shader.Err, not through the returned error,
// which is reserved for GL runtime errors.
func (m *ShaderManager) Compile(name string, stage uint32, source string) (Shader, error) {
	s := Shader{Stage: stage, Name: name}
	s.ID = m.gl.CreateShader(stage)
	m.gl.ShaderSource(s.ID, source)
	m.gl.CompileShader(s.ID)
	if err := checkError(m.gl, "compile "+name); err != nil {
		return s, err
	}

	s.Compiled = m.gl.ShaderCompiled(s.ID)
	if log, ok := m.gl.ShaderInfoLog(s.ID, InfoLogLength); ok {
		s.Log = log
		if m.Verbose {
			utils.Info("%d:shader:\n%s\n", s.ID, log)
		} else {
			utils.Debug("%d:shader:\n%s\n", s.ID, log)
		}
	}
	return s, nil
}

// Link attaches vertex and fragment to a new program and links it. As with
// Compile, a link failure is reported through Program.Err.
func (m *ShaderManager) Link(name string, vertex, fragment Shader) (Program, error) {
	p := Program{Name: name}
	p.ID = m.gl.CreateProgram()
	m.gl.AttachShader(p.ID, vertex.ID)
	m.gl.AttachShader(p.ID, fragment.ID)
	m.gl.LinkProgram(p.ID)
	if err := checkError(m.gl, "link "+name); err != nil {
		return p, err
	}

	p.Linked = m.gl.ProgramLinked(p.ID)
	if log, ok := m.gl.ProgramInfoLog(p.ID, InfoLogLength); ok {
		p.Log = log
		if m.Verbose {
			utils.Info("%d:program:\n%s\n", p.ID, log)
		} else {
			utils.Debug("%d:program:\n%s\n", p.ID, log)
		}
	}
	return p, nil
}

// AttribLocation returns the attribute index or gles.NotFound.
func (m *ShaderManager) AttribLocation(p Program, name string) (int32, error) {
	loc := m.gl.AttribLocation(p.ID, name)
	return loc, checkError(m.gl, "locate attribute "+name)
}

// UniformLocation returns the uniform location or gles.NotFound.
func (m *ShaderManager) UniformLocation(p Program, name string) (int32, error) {
	loc := m.gl.UniformLocation(p.ID, name)
	return loc, checkError(m.gl, "locate uniform "+name)
}

// RequireAttrib is AttribLocation for inputs rendering cannot do without.
func (m *ShaderManager) RequireAttrib(p Program, name string) (uint32, error) {
	loc, err := m.AttribLocation(p, name)
	if err != nil {
		return 0, err
	}
	if loc < 0 {
		return 0, &Error{Kind: RequiredLocationMissing, Op: "locate " + p.Name, Name: name}
	}
	return uint32(loc), nil
}

// RequireUniform is UniformLocation for inputs rendering cannot do without.
func (m *ShaderManager) RequireUniform(p Program, name string) (int32, error) {
	loc, err := m.UniformLocation(p, name)
	if err != nil {
		return gles.NotFound, err
	}
	if loc < 0 {
		return gles.NotFound, &Error{Kind: RequiredLocationMissing, Op: "locate " + p.Name, Name: name}
	}
	return loc, nil
}
