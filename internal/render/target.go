package render

import "fractalviewer/internal/gles"

// Target is a screen-sized texture with a framebuffer drawing into it.
// Nothing fences draws into the target: flush and finish before sampling
// Texture elsewhere.
type Target struct {
	Texture     uint32
	Framebuffer uint32
	Width       int32
	Height      int32
}

// NewTarget allocates the texture (packed RGB 5-6-5, nearest filtering) and
// a framebuffer with the texture as its only color attachment. The default
// framebuffer is bound again on return.
func NewTarget(api gles.API, width, height int32) (Target, error) {
	t := Target{Width: width, Height: height}

	t.Texture = api.GenTexture()
	api.BindTexture(gles.Texture2D, t.Texture)
	api.TexImage2D(gles.Texture2D, gles.RGB, width, height, gles.RGB, gles.UnsignedShort565, nil)
	if err := checkError(api, "allocate target texture"); err != nil {
		return t, err
	}
	api.TexParameteri(gles.Texture2D, gles.TextureMinFilter, gles.Nearest)
	api.TexParameteri(gles.Texture2D, gles.TextureMagFilter, gles.Nearest)
	if err := checkError(api, "configure target texture"); err != nil {
		return t, err
	}

	t.Framebuffer = api.GenFramebuffer()
	api.BindFramebuffer(gles.Framebuffer, t.Framebuffer)
	api.FramebufferTexture2D(gles.Framebuffer, gles.ColorAttachment0, gles.Texture2D, t.Texture)
	if err := checkError(api, "attach target texture"); err != nil {
		return t, err
	}
	if status := api.CheckFramebufferStatus(gles.Framebuffer); status != gles.FramebufferComplete {
		api.BindFramebuffer(gles.Framebuffer, 0)
		return t, &Error{Kind: IncompleteTarget, Op: "attach target texture", Code: status}
	}

	api.BindFramebuffer(gles.Framebuffer, 0)
	return t, checkError(api, "unbind target")
}

// Bind makes the target the draw destination and covers it with the viewport.
func (t Target) Bind(api gles.API) {
	api.BindFramebuffer(gles.Framebuffer, t.Framebuffer)
	api.Viewport(0, 0, t.Width, t.Height)
}
