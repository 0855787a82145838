// Package avatar is the image codec collaborator: raw upload bytes in,
// fixed-size PNG out. The rest of the system only stores and serves the
// result.
package avatar

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"

	"golang.org/x/image/draw"
)

const sideLen = 250

// Process decodes an uploaded jpg/jpeg/png, scales it to 250x250 and
// re-encodes it as PNG.
func Process(data []byte) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	dst := image.NewRGBA(image.Rect(0, 0, sideLen, sideLen))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}

	return buf.Bytes(), nil
}
