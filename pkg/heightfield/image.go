package heightfield

import (
	"fmt"
	"image"
	"image/color"
	"os"

	// Standard decoders.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	xdraw "golang.org/x/image/draw"

	// Extra height-map formats.
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// FromImage builds a field from the red channel of img. A red value of 255
// maps to maxHeight, 0 maps to zero. Alpha is ignored.
//
// If resolution > 0 and the image is larger than resolution on either axis,
// it is scaled down (keeping the aspect ratio) with a bilinear filter first.
func FromImage(img image.Image, maxHeight float64, resolution int) (*Field, error) {
	b := img.Bounds()
	if b.Dx() < 2 || b.Dy() < 2 {
		return nil, fmt.Errorf("%w: image is %dx%d", ErrDimensions, b.Dx(), b.Dy())
	}

	red := downsample(redChannel(img), resolution)
	w, h := red.Bounds().Dx(), red.Bounds().Dy()

	values := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			values[y*w+x] = float64(red.Pix[y*red.Stride+x]) / 255 * maxHeight
		}
	}

	return New(w, h, values)
}

// redChannel copies the un-premultiplied red values of img into a gray image.
func redChannel(img image.Image) *image.Gray {
	b := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			gray.Pix[y*gray.Stride+x] = c.R
		}
	}
	return gray
}

// Load decodes a height-map image file. Supported formats: jpeg, png, gif,
// bmp, tiff, webp.
func Load(path string, maxHeight float64, resolution int) (*Field, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening height map: %w", err)
	}
	defer file.Close()

	img, format, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("decoding height map %s: %w", path, err)
	}

	f, err := FromImage(img, maxHeight, resolution)
	if err != nil {
		return nil, fmt.Errorf("height map %s (%s): %w", path, format, err)
	}
	return f, nil
}

func downsample(img *image.Gray, resolution int) *image.Gray {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if resolution <= 0 || (w <= resolution && h <= resolution) {
		return img
	}

	nw, nh := resolution, resolution
	if w > h {
		nh = max(2, h*resolution/w)
	} else if h > w {
		nw = max(2, w*resolution/h)
	}

	dst := image.NewGray(image.Rect(0, 0, nw, nh))
	xdraw.BiLinear.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst
}
