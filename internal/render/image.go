package render

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ImageInfo is the decoded header of an image output.
type ImageInfo struct {
	Format string
	Width  int
	Height int
	Bytes  int
}

func (i ImageInfo) String() string {
	return fmt.Sprintf("%s image, %dx%d, %d bytes", i.Format, i.Width, i.Height, i.Bytes)
}

// DecodeImageInfo reads the format and dimensions of png, jpeg, gif, bmp,
// tiff and webp data without decoding pixels.
func DecodeImageInfo(data []byte) (ImageInfo, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return ImageInfo{}, fmt.Errorf("decode image header: %w", err)
	}
	return ImageInfo{Format: format, Width: cfg.Width, Height: cfg.Height, Bytes: len(data)}, nil
}
