package media

import (
	"bytes"
	"fmt"
	"image"
	"path/filepath"
	"strings"

	// Registered decoders for the formats the art pipeline exports.
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// decodeImage decodes raw asset bytes into an image. TGA has no
// stdlib decoder so it is dispatched on extension; everything else
// goes through the registered image formats.
func decodeImage(name string, data []byte) (image.Image, error) {
	if strings.EqualFold(filepath.Ext(name), ".tga") {
		img, err := DecodeTGA(data)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", name, err)
		}
		return img, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	return img, nil
}
