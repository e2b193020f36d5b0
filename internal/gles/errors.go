package gles

import "fmt"

// ErrorName returns the GL enum name of an error code.
func ErrorName(code uint32) string {
	switch code {
	case NoError:
		return "GL_NO_ERROR"
	case InvalidEnum:
		return "GL_INVALID_ENUM"
	case InvalidValue:
		return "GL_INVALID_VALUE"
	case InvalidOperation:
		return "GL_INVALID_OPERATION"
	case OutOfMemory:
		return "GL_OUT_OF_MEMORY"
	case InvalidFramebufferOperation:
		return "GL_INVALID_FRAMEBUFFER_OPERATION"
	}
	return fmt.Sprintf("0x%04x", code)
}

var knownCauses = map[uint32]string{
	InvalidEnum:  "An unacceptable value was specified for an enumerated argument.",
	InvalidValue: "A numeric argument is out of range.",
	InvalidOperation: "The set of state for a command is not legal for the parameters given to that command. " +
		"It is also given for commands where combinations of parameters define what the legal parameters are.",
	OutOfMemory: "There is not enough memory left to execute the command. On VideoCore IV this is also " +
		"reported when a fragment shader loops for more than about 18 iterations; use the vc4 profile.",
	InvalidFramebufferOperation: "The currently bound framebuffer is not framebuffer complete.",
}

// Explain returns the documented cause of an error code, if it is a known one.
func Explain(code uint32) (string, bool) {
	cause, ok := knownCauses[code]
	return cause, ok
}

// ErrorReferenceURL is printed alongside GL error diagnostics.
const ErrorReferenceURL = "https://www.khronos.org/opengl/wiki/OpenGL_Error"
