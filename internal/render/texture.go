package render

import (
	"fmt"
	"image"
	"image/draw"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// ManagedTexture wraps one decoded image destined for the GPU. The GL
// texture object is created on the first Upload call.
type ManagedTexture struct {
	name   string
	img    image.Image
	mipmap bool
	glID   uint32
}

// NewManagedTexture creates a texture handle from a decoded image.
func NewManagedTexture(name string, img image.Image, mipmap bool) *ManagedTexture {
	return &ManagedTexture{
		name:   name,
		img:    img,
		mipmap: mipmap,
	}
}

// Name returns the texture name.
func (t *ManagedTexture) Name() string {
	return t.name
}

// Image returns the source image.
func (t *ManagedTexture) Image() image.Image {
	return t.img
}

// Mipmapped reports whether mipmaps are generated on upload.
func (t *ManagedTexture) Mipmapped() bool {
	return t.mipmap
}

// ID returns the GL texture name, or 0 if not yet uploaded.
func (t *ManagedTexture) ID() uint32 {
	return t.glID
}

// Upload creates the GL texture object and uploads the pixel data.
// Must be called on the GL thread. Calling it again is a no-op.
func (t *ManagedTexture) Upload() error {
	if t.glID != 0 {
		return nil
	}
	if t.img == nil {
		return fmt.Errorf("texture %s: no image data", t.name)
	}

	rgba := toRGBA(t.img)
	w, h := rgba.Rect.Dx(), rgba.Rect.Dy()

	gl.GenTextures(1, &t.glID)
	gl.BindTexture(gl.TEXTURE_2D, t.glID)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(w), int32(h), 0,
		gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(rgba.Pix))

	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	if t.mipmap {
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
		gl.GenerateMipmap(gl.TEXTURE_2D)
	} else {
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	}

	gl.BindTexture(gl.TEXTURE_2D, 0)
	return nil
}

// Bind binds the texture to the given texture unit. Must be uploaded first.
func (t *ManagedTexture) Bind(unit uint32) {
	gl.ActiveTexture(gl.TEXTURE0 + unit)
	gl.BindTexture(gl.TEXTURE_2D, t.glID)
}

// Release deletes the GL texture object. The handle can be re-uploaded.
func (t *ManagedTexture) Release() {
	if t.glID != 0 {
		gl.DeleteTextures(1, &t.glID)
		t.glID = 0
	}
}

// toRGBA converts any decoded image to tightly packed RGBA.
func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Stride == rgba.Rect.Dx()*4 {
		return rgba
	}
	rgba := image.NewRGBA(image.Rect(0, 0, img.Bounds().Dx(), img.Bounds().Dy()))
	draw.Draw(rgba, rgba.Rect, img, img.Bounds().Min, draw.Src)
	return rgba
}
