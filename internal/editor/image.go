package editor

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/park285/pubg-card-studio/internal/domain"
	"go.uber.org/zap"
)

var ErrEmptyImage = errors.New("image file is empty")

// SelectImage starts decoding a locally chosen file into an embedded data
// URI. It returns at once; the merged snapshot is emitted from a goroutine
// after the whole file has been read. The returned channel yields nil on
// success or the decode error, then closes. On failure the previous image
// is left untouched and OnImageError fires.
func (f *Form) SelectImage(filename string, r io.Reader) <-chan error {
	done := make(chan error, 1)
	go func() {
		defer close(done)
		ref, err := encodeDataURI(filename, r)
		if err != nil {
			f.logger.Warn("profile image decode failed", zap.String("file", filename), zap.Error(err))
			if f.cb.OnImageError != nil {
				f.cb.OnImageError(filename, err)
			}
			done <- err
			return
		}
		_, _ = f.apply(func(p domain.PlayerInfo) (domain.PlayerInfo, error) {
			return p.WithProfileImage(ref), nil
		})
		done <- nil
	}()
	return done
}

func encodeDataURI(filename string, r io.Reader) (string, error) {
	if r == nil {
		return "", ErrEmptyImage
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	if len(data) == 0 {
		return "", ErrEmptyImage
	}
	mimeType := sniffMIME(filename, data)
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

func sniffMIME(filename string, data []byte) string {
	detected := http.DetectContentType(data)
	if i := strings.Index(detected, ";"); i >= 0 {
		detected = detected[:i]
	}
	if strings.HasPrefix(detected, "image/") {
		return detected
	}
	if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename))); byExt != "" {
		if i := strings.Index(byExt, ";"); i >= 0 {
			byExt = byExt[:i]
		}
		return byExt
	}
	return detected
}
