package services

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"strings"

	"golang.org/x/image/draw"
)

const (
	defaultMaxDimension = 1024
	defaultJPEGQuality  = 70
)

// ImageNormalizer produces a deterministic base64 JPEG data URI from any
// raw image source, with the larger side clamped to MaxDimension and
// aspect ratio preserved. Camera frames and file uploads go through the
// same path.
type ImageNormalizer struct {
	MaxDimension int
	Quality      int // jpeg quality 1..100
}

func NewImageNormalizer() *ImageNormalizer {
	return &ImageNormalizer{MaxDimension: defaultMaxDimension, Quality: defaultJPEGQuality}
}

// Normalize decodes raw image bytes, scales down if needed and returns a
// "data:image/jpeg;base64," URI. Identical input yields identical output.
func (n *ImageNormalizer) Normalize(raw []byte) (string, error) {
	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return "", &EncodeError{Cause: fmt.Errorf("decode image: %w", err)}
	}

	maxDim := n.MaxDimension
	if maxDim <= 0 {
		maxDim = defaultMaxDimension
	}
	quality := n.Quality
	if quality <= 0 || quality > 100 {
		quality = defaultJPEGQuality
	}

	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 {
		return "", &EncodeError{Cause: fmt.Errorf("empty image %dx%d", w, h)}
	}

	dst := src
	if w > maxDim || h > maxDim {
		nw, nh := fitWithin(w, h, maxDim)
		scaled := image.NewRGBA(image.Rect(0, 0, nw, nh))
		// CatmullRom is deterministic for a given input
		draw.CatmullRom.Scale(scaled, scaled.Bounds(), src, bounds, draw.Over, nil)
		dst = scaled
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: quality}); err != nil {
		return "", &EncodeError{Cause: fmt.Errorf("encode jpeg: %w", err)}
	}

	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// NormalizeDataURI accepts an already base64-wrapped source (e.g. a
// browser upload) and re-normalizes it through the same path.
func (n *ImageNormalizer) NormalizeDataURI(uri string) (string, error) {
	raw, err := DecodeDataURI(uri)
	if err != nil {
		return "", &EncodeError{Cause: err}
	}
	return n.Normalize(raw)
}

// DecodeDataURI strips the "data:<mime>;base64," prefix and decodes the
// payload. Plain base64 without a prefix is accepted too.
func DecodeDataURI(uri string) ([]byte, error) {
	data := uri
	if strings.HasPrefix(uri, "data:") {
		idx := strings.Index(uri, ",")
		if idx < 0 {
			return nil, fmt.Errorf("invalid data URI")
		}
		data = uri[idx+1:]
	}
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("decode base64: %w", err)
	}
	return raw, nil
}

// fitWithin shrinks (w, h) so the larger side equals maxDim, keeping
// aspect ratio. Never returns a zero dimension.
func fitWithin(w, h, maxDim int) (int, int) {
	if w >= h {
		nh := h * maxDim / w
		if nh < 1 {
			nh = 1
		}
		return maxDim, nh
	}
	nw := w * maxDim / h
	if nw < 1 {
		nw = 1
	}
	return nw, maxDim
}
