// Package media turns uploaded pictures into the fixed-size JPEG avatars
// stored on user profiles.
package media

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"shop-backend/internal/util"
)

const (
	AvatarWidth  = 320
	AvatarHeight = 240

	avatarQuality = 85
	// MaxSourceBytes bounds one uploaded picture before decoding.
	MaxSourceBytes = 10 << 20
)

var ErrNotImage = errors.New("file is not a supported image")

// Avatar reads an uploaded picture, applies its EXIF orientation, crops it to
// fill 320x240 and re-encodes it as JPEG.
func Avatar(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxSourceBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if len(data) > MaxSourceBytes {
		return nil, fmt.Errorf("image exceeds %d bytes", MaxSourceBytes)
	}

	if !util.IsAvatarMIME(util.DetectMIME(data)) {
		return nil, ErrNotImage
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotImage, err)
	}

	resized := imaging.Fill(img, AvatarWidth, AvatarHeight, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, imaging.JPEG, imaging.JPEGQuality(avatarQuality)); err != nil {
		return nil, fmt.Errorf("encode avatar: %w", err)
	}

	return buf.Bytes(), nil
}
