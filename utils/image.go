package utils

import (
	"bytes"
	"errors"
	"image"

	"github.com/disintegration/imaging"
)

const (
	MaxPictureBytes = 100 * 1024
	maxPictureSide  = 512
)

var (
	ErrNotJPEG         = errors.New("file type not allowed")
	ErrPictureTooLarge = errors.New("file size too large")
)

// NormalizeJPEG checks that raw is a JPEG of at most MaxPictureBytes,
// applies EXIF orientation and scales it down to fit 512x512. The smaller
// of the re-encoded and the original bytes is returned.
func NormalizeJPEG(raw []byte) ([]byte, error) {
	if len(raw) > MaxPictureBytes {
		return nil, ErrPictureTooLarge
	}
	_, format, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil || format != "jpeg" {
		return nil, ErrNotJPEG
	}

	img, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return nil, ErrNotJPEG
	}
	b := img.Bounds()
	if b.Dx() > maxPictureSide || b.Dy() > maxPictureSide {
		img = imaging.Fit(img, maxPictureSide, maxPictureSide, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, err
	}
	if buf.Len() >= len(raw) {
		return raw, nil
	}
	return buf.Bytes(), nil
}
