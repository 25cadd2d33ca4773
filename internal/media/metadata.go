package media

import (
	"bytes"
	"fmt"
	"image/jpeg"
	"image/png"
)

const jpegQuality = 92

// StripMetadata re-encodes an image to drop EXIF, GPS, and other embedded
// metadata before it leaves the service as an email attachment. Types
// without a lossless-enough re-encode path (GIF, WebP) pass through
// unchanged.
func StripMetadata(data []byte, contentType string) ([]byte, error) {
	switch contentType {
	case "image/jpeg":
		return reencodeJPEG(data)
	case "image/png":
		return reencodePNG(data)
	default:
		return data, nil
	}
}

func reencodeJPEG(data []byte) ([]byte, error) {
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding jpeg: %w", err)
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encoding jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

func reencodePNG(data []byte) ([]byte, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding png: %w", err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding png: %w", err)
	}
	return buf.Bytes(), nil
}
