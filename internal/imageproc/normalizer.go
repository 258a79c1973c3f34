// Package imageproc turns uploaded image bytes into the fixed-shape float32
// tensor the classifier consumes.
package imageproc

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// PixelScale maps 8-bit channel intensities into the [0,1] range the model
// was trained on. Shared contract with the classifier: changing one side
// without the other silently breaks every prediction.
const PixelScale = float32(1.0 / 255.0)

// Channels is the color depth of every tensor this package produces.
const Channels = 3

// Tensor is a height × width × channel array of normalized pixel values in
// [0,1], laid out row-major with interleaved channels (HWC). It carries no
// batch dimension; the classifier adds one internally.
type Tensor struct {
	Data   []float32
	Height int
	Width  int
}

// Len returns the number of float32 elements in the tensor.
func (t *Tensor) Len() int {
	return t.Height * t.Width * Channels
}

// ErrEmptyImage marks a zero-byte upload.
var ErrEmptyImage = errors.New("image payload is empty")

// DecodeError marks bytes that could not be decoded as a supported image.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode image: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Normalize decodes raw upload bytes, resizes to size × size with Lanczos
// interpolation (aspect ratio is not preserved; the shape contract wins),
// converts to 3-channel RGB and scales intensities into [0,1]. Alpha and
// grayscale inputs are converted, never rejected.
func Normalize(raw []byte, size int) (*Tensor, error) {
	if len(raw) == 0 {
		return nil, &DecodeError{Err: ErrEmptyImage}
	}
	if size <= 0 {
		return nil, fmt.Errorf("target size must be positive, got %d", size)
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, &DecodeError{Err: err}
	}

	// imaging.Resize returns NRGBA, which also normalizes the color model.
	resized := imaging.Resize(img, size, size, imaging.Lanczos)

	data := make([]float32, size*size*Channels)
	i := 0
	for y := 0; y < size; y++ {
		row := resized.Pix[y*resized.Stride : y*resized.Stride+size*4]
		for x := 0; x < size; x++ {
			data[i] = float32(row[x*4]) * PixelScale
			data[i+1] = float32(row[x*4+1]) * PixelScale
			data[i+2] = float32(row[x*4+2]) * PixelScale
			i += Channels
		}
	}

	return &Tensor{Data: data, Height: size, Width: size}, nil
}
