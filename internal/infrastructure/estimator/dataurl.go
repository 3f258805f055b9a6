package estimator

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
)

// InlineImage is a decoded image ready to attach to a model request
type InlineImage struct {
	MIMEType string
	// Base64 is the payload as received; Data is the decoded bytes
	Base64 string
	Data   []byte
}

var errNotImageDataURL = errors.New("not a base64 image data URL")

// ParseDataURL decodes "data:image/<type>;base64,<payload>"
func ParseDataURL(s string) (*InlineImage, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(s), "data:")
	if !ok {
		return nil, errNotImageDataURL
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, errNotImageDataURL
	}
	mimeType, encoding, _ := strings.Cut(meta, ";")
	if !strings.HasPrefix(mimeType, "image/") || encoding != "base64" {
		return nil, errNotImageDataURL
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, err
	}
	return &InlineImage{MIMEType: mimeType, Base64: payload, Data: data}, nil
}

// EncodeDataURL wraps raw image bytes in a base64 data URL, sniffing the MIME
// type from the content
func EncodeDataURL(data []byte) (string, error) {
	mimeType, _, _ := strings.Cut(http.DetectContentType(data), ";")
	if !strings.HasPrefix(mimeType, "image/") {
		return "", errNotImageDataURL
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}
