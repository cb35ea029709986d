package pixel

import (
	"fmt"
	"image"
	"image/color"
)

// FromImage converts a decoded image into a pixel array with the requested channel count.
// One channel stores luminance, three store RGB and four store non-premultiplied RGBA.
func FromImage(src image.Image, channels int) (Image, error) {
	b := src.Bounds()
	shape := Shape{Height: b.Dy(), Width: b.Dx(), Channels: channels}
	if err := shape.Validate(); err != nil {
		return Image{}, err
	}

	pix := make([]uint8, 0, shape.Len())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := src.At(x, y)
			switch channels {
			case 1:
				g := color.GrayModel.Convert(c).(color.Gray)
				pix = append(pix, g.Y)
			case 3:
				n := color.NRGBAModel.Convert(c).(color.NRGBA)
				pix = append(pix, n.R, n.G, n.B)
			case 4:
				n := color.NRGBAModel.Convert(c).(color.NRGBA)
				pix = append(pix, n.R, n.G, n.B, n.A)
			}
		}
	}
	return Image{Shape: shape, Pix: pix}, nil
}

// ToImage converts the pixel array into a stdlib image suitable for encoding
func (m Image) ToImage() (image.Image, error) {
	if len(m.Pix) != m.Shape.Len() {
		return nil, &ShapeMismatchError{Shape: m.Shape, Length: len(m.Pix)}
	}
	rect := image.Rect(0, 0, m.Shape.Width, m.Shape.Height)

	switch m.Shape.Channels {
	case 1:
		img := image.NewGray(rect)
		for y := 0; y < m.Shape.Height; y++ {
			copy(img.Pix[y*img.Stride:], m.Pix[y*m.Shape.Width:(y+1)*m.Shape.Width])
		}
		return img, nil
	case 3:
		img := image.NewRGBA(rect)
		for i, j := 0, 0; i < len(m.Pix); i, j = i+3, j+4 {
			img.Pix[j] = m.Pix[i]
			img.Pix[j+1] = m.Pix[i+1]
			img.Pix[j+2] = m.Pix[i+2]
			img.Pix[j+3] = 0xff
		}
		return img, nil
	case 4:
		img := image.NewNRGBA(rect)
		copy(img.Pix, m.Pix)
		return img, nil
	default:
		return nil, fmt.Errorf("unsupported channel count %d", m.Shape.Channels)
	}
}
