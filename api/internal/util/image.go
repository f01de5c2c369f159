package util

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
)

// DecodeBase64MaybeDataURL decodes base64 image content. For a data: URI the
// MIME type from the prefix is returned as well.
func DecodeBase64MaybeDataURL(s string) ([]byte, string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, "", errors.New("image is empty")
	}
	var hintMIME string
	if strings.HasPrefix(s, "data:") {
		// data:<mime>;base64,<payload>
		idx := strings.IndexByte(s, ',')
		if idx < 0 {
			return nil, "", errors.New("malformed data URL")
		}
		meta := s[len("data:"):idx]
		if semi := strings.IndexByte(meta, ';'); semi >= 0 {
			hintMIME = meta[:semi]
		} else {
			hintMIME = meta
		}
		s = s[idx+1:]
	}
	// standard first, then URL-safe and unpadded variants
	for _, enc := range []*base64.Encoding{base64.StdEncoding, base64.URLEncoding, base64.RawStdEncoding, base64.RawURLEncoding} {
		if b, err := enc.DecodeString(s); err == nil {
			return b, hintMIME, nil
		}
	}
	_, err := base64.StdEncoding.DecodeString(s)
	return nil, "", err
}

// PickMIME prefers the explicit type, then the data URL hint, then sniffing.
func PickMIME(explicit, hint string, data []byte) string {
	if exp := strings.TrimSpace(explicit); exp != "" {
		return strings.ToLower(exp)
	}
	if h := strings.TrimSpace(hint); h != "" {
		return strings.ToLower(h)
	}
	if len(data) > 0 {
		mt := http.DetectContentType(data)
		if i := strings.IndexByte(mt, ';'); i >= 0 {
			mt = mt[:i]
		}
		return mt
	}
	return "image/jpeg"
}

// IsImageMIME reports whether mt is an image/* type.
func IsImageMIME(mt string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(mt)), "image/")
}
