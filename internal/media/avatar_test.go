package media

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"
)

func TestAvatarResizesToFixedJPEG(t *testing.T) {
	t.Parallel()

	src := image.NewRGBA(image.Rect(0, 0, 1000, 500))
	for y := 0; y < 500; y++ {
		for x := 0; x < 1000; x++ {
			src.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 120, A: 255})
		}
	}

	var encoded bytes.Buffer
	require.NoError(t, png.Encode(&encoded, src))

	out, err := Avatar(&encoded)
	require.NoError(t, err)

	decoded, format, err := image.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	require.Equal(t, "jpeg", format)
	require.Equal(t, AvatarWidth, decoded.Bounds().Dx())
	require.Equal(t, AvatarHeight, decoded.Bounds().Dy())
}

func TestAvatarRejectsNonImages(t *testing.T) {
	t.Parallel()

	_, err := Avatar(strings.NewReader("definitely not a picture"))
	require.ErrorIs(t, err, ErrNotImage)
}

func TestAvatarAcceptsSmallSources(t *testing.T) {
	t.Parallel()

	src := imaging.New(16, 16, color.White)
	var encoded bytes.Buffer
	require.NoError(t, png.Encode(&encoded, src))

	out, err := Avatar(&encoded)
	require.NoError(t, err)

	decoded, err := imaging.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, AvatarWidth, AvatarHeight), decoded.Bounds())
}
