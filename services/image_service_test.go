package services

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: uint8(x ^ y), A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func decodeNormalized(t *testing.T, dataURI string) image.Image {
	t.Helper()
	raw, err := DecodeDataURI(dataURI)
	require.NoError(t, err)
	img, err := jpeg.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	return img
}

func TestNormalize_Deterministic(t *testing.T) {
	src := makePNG(t, 1600, 900)
	n := NewImageNormalizer()

	a, err := n.Normalize(src)
	require.NoError(t, err)
	b, err := n.Normalize(src)
	require.NoError(t, err)

	assert.Equal(t, a, b, "same source must encode byte-identically")
}

func TestNormalize_ClampsLargerSide(t *testing.T) {
	tests := []struct {
		name         string
		w, h         int
		wantW, wantH int
	}{
		{"landscape", 2048, 1024, 1024, 512},
		{"portrait", 600, 3000, 204, 1024},
		{"square", 4096, 4096, 1024, 1024},
	}
	n := NewImageNormalizer()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := n.Normalize(makePNG(t, tt.w, tt.h))
			require.NoError(t, err)

			img := decodeNormalized(t, out)
			assert.Equal(t, tt.wantW, img.Bounds().Dx())
			assert.Equal(t, tt.wantH, img.Bounds().Dy())
		})
	}
}

func TestNormalize_NoUpscale(t *testing.T) {
	n := NewImageNormalizer()

	out, err := n.Normalize(makePNG(t, 640, 480))
	require.NoError(t, err)

	img := decodeNormalized(t, out)
	assert.Equal(t, 640, img.Bounds().Dx())
	assert.Equal(t, 480, img.Bounds().Dy())
}

func TestNormalize_IdempotentOnDimensions(t *testing.T) {
	n := NewImageNormalizer()

	first, err := n.Normalize(makePNG(t, 2048, 1536))
	require.NoError(t, err)
	firstImg := decodeNormalized(t, first)

	// re-encoding an already-normalized image must not change dimensions
	second, err := n.NormalizeDataURI(first)
	require.NoError(t, err)
	secondImg := decodeNormalized(t, second)

	assert.Equal(t, firstImg.Bounds(), secondImg.Bounds())
}

func TestNormalize_DecodeFailure(t *testing.T) {
	n := NewImageNormalizer()

	_, err := n.Normalize([]byte("definitely not an image"))
	require.Error(t, err)

	var encErr *EncodeError
	assert.ErrorAs(t, err, &encErr)
}

func TestNormalize_DataURIPrefix(t *testing.T) {
	n := NewImageNormalizer()

	out, err := n.Normalize(makePNG(t, 100, 100))
	require.NoError(t, err)
	assert.True(t, len(out) > len("data:image/jpeg;base64,"))
	assert.Equal(t, "data:image/jpeg;base64,", out[:len("data:image/jpeg;base64,")])
}

func TestDecodeDataURI(t *testing.T) {
	_, err := DecodeDataURI("data:image/jpeg;base64")
	assert.Error(t, err, "missing comma separator")

	_, err = DecodeDataURI("data:image/jpeg;base64,!!!not-base64!!!")
	assert.Error(t, err)
}
