package render

import (
	"fmt"
	"strings"

	"fractalviewer/internal/utils"
)

// Profile selects the Mandelbrot iteration budget for a class of GPU.
type Profile string

const (
	// ProfileVC4 suits VideoCore IV (Raspberry Pi up to 3), which runs out of
	// memory above 18 iterations.
	ProfileVC4 Profile = "vc4"
	// ProfileVC6 suits VideoCore VI (Raspberry Pi 4+). More iterations only
	// lengthen the initial render.
	ProfileVC6 Profile = "vc6"
)

// JuliaIterations is fixed; the Julia layer is redrawn every frame.
const JuliaIterations = 16

func (p Profile) Iterations() int {
	if p == ProfileVC6 {
		return 512
	}
	return 18
}

func (p Profile) colorExpr() string {
	if p == ProfileVC6 {
		return "float(i > 0) * hsl2rgb(vec3(float(i) / 360.0, 1.0, 0.5), 1.0)"
	}
	return "vec4(float(i) * (1.0 / float(MAX_ITERATIONS)), 0, 0, 1)"
}

func ParseProfile(s string) (Profile, error) {
	switch p := Profile(strings.ToLower(s)); p {
	case ProfileVC4, ProfileVC6:
		return p, nil
	}
	return "", fmt.Errorf("unknown render profile %q (want vc4 or vc6)", s)
}

// Sources is the shader text of both programs. The vertex stage is shared.
type Sources struct {
	Vertex     string
	Mandelbrot string
	Julia      string
}

const vertexSource = `
attribute mediump vec4 vertex;
varying mediump vec2 tcoord;

void main(void) {
  mediump vec4 pos = vertex;
  gl_Position = pos;
  tcoord = vertex.xy * 0.5 + 0.5;
}
`

const mandelbrotBody = `
uniform mediump vec2 scale;
uniform mediump vec2 centre;
varying mediump vec2 tcoord;

mediump vec4 hsl2rgb(in mediump vec3 c, in mediump float a) {
  mediump vec3 rgb = clamp(
    abs(mod(c.x * 6.0 + vec3(0.0, 4.0, 2.0), 6.0) - 3.0) - 1.0, 0.0, 1.0
  );

  return vec4(c.z + c.y * (rgb - 0.5) * (1.0 - abs(2.0 * c.z - 1.0)), a);
}

void main(void) {
  mediump float cr = (gl_FragCoord.x - centre.x) * scale.x;
  mediump float ci = (gl_FragCoord.y - centre.y) * scale.y;
  mediump float ar = cr;
  mediump float ai = ci;
  mediump float tr, ti;
  mediump float p = 0.0;
  mediump int i = 0;

  for (mediump int i2 = 1; i2 < MAX_ITERATIONS; i2++) {
    tr = ar * ar - ai * ai + cr;
    ti = 2.0 * ar * ai + ci;
    p = tr * tr + ti * ti;
    ar = tr;
    ai = ti;
    if (p > 16.0) {
      i = i2;
      break;
    }
  }

  gl_FragColor = FRAG_COLOR;
}
`

const juliaBody = `
uniform mediump vec2 scale;
uniform mediump vec2 centre;
uniform mediump vec2 offset;
varying mediump vec2 tcoord;
uniform sampler2D tex;

void main(void) {
  mediump vec4 color2;
  mediump float ar = (gl_FragCoord.x - centre.x) * scale.x;
  mediump float ai = (gl_FragCoord.y - centre.y) * scale.y;
  mediump float cr = (offset.x - centre.x) * scale.x;
  mediump float ci = (offset.y - centre.y) * scale.y;
  mediump float tr, ti;
  mediump float p = 0.0;
  lowp int i = 0;
  mediump vec2 t2;
  t2.x = tcoord.x + (offset.x - centre.x) * (0.5 / centre.y);
  t2.y = tcoord.y + (offset.y - centre.y) * (0.5 / centre.x);

  for (int i2 = 1; i2 < MAX_ITERATIONS; i2++) {
    tr = ar * ar - ai * ai + cr;
    ti = 2.0 * ar * ai + ci;
    p = tr * tr + ti * ti;
    ar = tr;
    ai = ti;
    if (p > 16.0) {
      i = i2;
      break;
    }
  }
  color2 = vec4(0, float(i) * (1.0 / float(MAX_ITERATIONS)), 0, 1);
  color2 = color2 + texture2D(tex, t2);
  gl_FragColor = color2;
}
`

// buildFragment prepends the iteration and color defines to a shader body.
func buildFragment(body string, iterations int, colorExpr string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("#define MAX_ITERATIONS %d\n", iterations))
	if colorExpr != "" {
		sb.WriteString(fmt.Sprintf("#define FRAG_COLOR %s\n", colorExpr))
	}
	sb.WriteString(body)
	return sb.String()
}

// DefaultSources returns the built-in shaders for profile. A positive
// iterations value overrides the profile's Mandelbrot budget.
func DefaultSources(profile Profile, iterations int) Sources {
	if iterations <= 0 {
		iterations = profile.Iterations()
	}
	return Sources{
		Vertex:     vertexSource,
		Mandelbrot: buildFragment(mandelbrotBody, iterations, profile.colorExpr()),
		Julia:      buildFragment(juliaBody, JuliaIterations, ""),
	}
}

// WithOverrides replaces each stage with a file from dir when one exists
// (vertex.vert, mandelbrot.frag, julia.frag).
func (s Sources) WithOverrides(dir string) Sources {
	if dir == "" {
		return s
	}
	return Sources{
		Vertex:     utils.LoadShaderOverride(dir, "vertex.vert", s.Vertex),
		Mandelbrot: utils.LoadShaderOverride(dir, "mandelbrot.frag", s.Mandelbrot),
		Julia:      utils.LoadShaderOverride(dir, "julia.frag", s.Julia),
	}
}
