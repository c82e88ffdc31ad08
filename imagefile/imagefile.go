// Package imagefile decodes image files into the tightly packed RGBA pixels
// uploaded as textures.
package imagefile

import (
	"fmt"
	"image"
	"image/draw"
	"io"
	"io/fs"
	"os"

	// Formats understood by Decode.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Image is a decoded picture. Pix holds Width*Height pixels of four bytes
// each, row after row without padding.
type Image struct {
	Width    uint32
	Height   uint32
	Channels uint32
	Pix      []byte
}

// Size returns the length of Pix in bytes.
func (img *Image) Size() uint64 {
	return uint64(img.Width) * uint64(img.Height) * uint64(img.Channels)
}

// Decode reads an image in any of the registered formats and converts it to
// RGBA.
func Decode(r io.Reader) (*Image, error) {
	decoded, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	bounds := decoded.Bounds()
	if bounds.Empty() {
		return nil, fmt.Errorf("%s image has no pixels", format)
	}

	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), decoded, bounds.Min, draw.Src)

	return &Image{
		Width:    uint32(bounds.Dx()),
		Height:   uint32(bounds.Dy()),
		Channels: 4,
		Pix:      rgba.Pix,
	}, nil
}

// Open decodes the image file at path.
func Open(path string) (*Image, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening image: %w", err)
	}
	defer fh.Close()

	img, err := Decode(fh)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}

// OpenFS decodes the image file name from fsys.
func OpenFS(fsys fs.FS, name string) (*Image, error) {
	fh, err := fsys.Open(name)
	if err != nil {
		return nil, fmt.Errorf("opening image: %w", err)
	}
	defer fh.Close()

	img, err := Decode(fh)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return img, nil
}
