package card

import (
	"encoding/base64"
	"errors"
	"fmt"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/url"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const PNGDataURIPrefix = "data:image/png;base64,"

var ErrInvalidDataURI = errors.New("invalid data uri")

// EncodePNGDataURI wraps PNG bytes into a data URI.
func EncodePNGDataURI(png []byte) string {
	return PNGDataURIPrefix + base64.StdEncoding.EncodeToString(png)
}

// ParseDataURI splits a data URI into its media type and payload.
func ParseDataURI(ref string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(ref, "data:")
	if !ok {
		return "", nil, ErrInvalidDataURI
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, ErrInvalidDataURI
	}

	isBase64 := false
	mediaType := meta
	if m, found := strings.CutSuffix(meta, ";base64"); found {
		isBase64 = true
		mediaType = m
	}
	if i := strings.Index(mediaType, ";"); i >= 0 {
		mediaType = mediaType[:i]
	}
	if mediaType == "" {
		mediaType = "text/plain"
	}

	if isBase64 {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return "", nil, fmt.Errorf("%w: %v", ErrInvalidDataURI, err)
		}
		return mediaType, data, nil
	}
	unescaped, err := url.PathUnescape(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrInvalidDataURI, err)
	}
	return mediaType, []byte(unescaped), nil
}
