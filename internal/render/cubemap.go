package render

import (
	"fmt"
	"image"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// Cubemap face indices, matching the order faces are passed to
// NewManagedCubemap and the GL target order.
const (
	FacePosX = iota
	FaceNegX
	FacePosY
	FaceNegY
	FacePosZ
	FaceNegZ
	FaceCount
)

// ManagedCubemap wraps six decoded face images destined for one GPU
// cubemap. The GL object is created on the first Upload call.
type ManagedCubemap struct {
	name  string
	faces [FaceCount]image.Image
	glID  uint32
}

// NewManagedCubemap creates a cubemap handle from six face images ordered
// [posX, negX, posY, negY, posZ, negZ].
func NewManagedCubemap(name string, faces [FaceCount]image.Image) *ManagedCubemap {
	return &ManagedCubemap{
		name:  name,
		faces: faces,
	}
}

// Name returns the cubemap name.
func (c *ManagedCubemap) Name() string {
	return c.name
}

// Face returns the source image for one face index.
func (c *ManagedCubemap) Face(i int) image.Image {
	return c.faces[i]
}

// ID returns the GL texture name, or 0 if not yet uploaded.
func (c *ManagedCubemap) ID() uint32 {
	return c.glID
}

// Upload creates the GL cubemap and uploads all six faces. Must be called
// on the GL thread. Calling it again is a no-op.
func (c *ManagedCubemap) Upload() error {
	if c.glID != 0 {
		return nil
	}
	for i, face := range c.faces {
		if face == nil {
			return fmt.Errorf("cubemap %s: face %d missing", c.name, i)
		}
	}

	gl.GenTextures(1, &c.glID)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, c.glID)

	for i, face := range c.faces {
		rgba := toRGBA(face)
		w, h := rgba.Rect.Dx(), rgba.Rect.Dy()
		gl.TexImage2D(gl.TEXTURE_CUBE_MAP_POSITIVE_X+uint32(i), 0, gl.RGBA8,
			int32(w), int32(h), 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(rgba.Pix))
	}

	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_R, gl.CLAMP_TO_EDGE)

	gl.BindTexture(gl.TEXTURE_CUBE_MAP, 0)
	return nil
}

// Bind binds the cubemap to the given texture unit. Must be uploaded first.
func (c *ManagedCubemap) Bind(unit uint32) {
	gl.ActiveTexture(gl.TEXTURE0 + unit)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, c.glID)
}

// Release deletes the GL texture object. The handle can be re-uploaded.
func (c *ManagedCubemap) Release() {
	if c.glID != 0 {
		gl.DeleteTextures(1, &c.glID)
		c.glID = 0
	}
}
