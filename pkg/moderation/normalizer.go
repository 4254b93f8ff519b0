package moderation

import (
	"bytes"
	"context"
	"encoding/base64"
	"strings"

	"github.com/moderationhq/modgate/pkg/domain"
)

// Accepted image formats, identified by their leading magic bytes.
var imageSignatures = []struct {
	imageType string
	match     func(data []byte) bool
}{
	{"png", func(d []byte) bool { return bytes.HasPrefix(d, []byte("\x89PNG\r\n\x1a\n")) }},
	{"jpeg", func(d []byte) bool { return bytes.HasPrefix(d, []byte{0xFF, 0xD8, 0xFF}) }},
	{"gif", func(d []byte) bool { return bytes.HasPrefix(d, []byte("GIF87a")) || bytes.HasPrefix(d, []byte("GIF89a")) }},
	{"webp", func(d []byte) bool {
		return len(d) >= 12 && bytes.Equal(d[0:4], []byte("RIFF")) && bytes.Equal(d[8:12], []byte("WEBP"))
	}},
}

// Normalizer turns a raw analyze request into a canonical ContentItem.
// It performs no analysis; its only I/O is the optional remote fetch.
type Normalizer struct {
	fetcher       ImageFetcher
	maxImageBytes int64
}

func NewNormalizer(fetcher ImageFetcher, maxImageBytes int64) *Normalizer {
	return &Normalizer{
		fetcher:       fetcher,
		maxImageBytes: maxImageBytes,
	}
}

func (n *Normalizer) Normalize(ctx context.Context, req AnalyzeRequest) (*ContentItem, error) {
	if req.Text == "" && req.ImageURL == "" && req.ImageBase64 == "" {
		return nil, domain.NewValidationError("", domain.ErrNoContent.Error())
	}
	if req.ImageURL != "" && req.ImageBase64 != "" {
		return nil, domain.NewValidationError("image", "provide image_url or image_base64, not both")
	}

	item := &ContentItem{
		Text:       req.Text,
		StrictMode: req.StrictMode,
	}

	switch {
	case req.ImageBase64 != "":
		data, err := decodeBase64Image(req.ImageBase64)
		if err != nil {
			return nil, domain.NewValidationError("image_base64", "not valid base64 data")
		}
		imageType, err := n.checkImage(data)
		if err != nil {
			return nil, err
		}
		if err := checkFilename(req.ImageFilename, imageType); err != nil {
			return nil, err
		}
		item.ImageData = data
		item.ImageType = imageType

	case req.ImageURL != "":
		data, err := n.fetcher.Fetch(ctx, req.ImageURL)
		if err != nil {
			return nil, err
		}
		imageType, err := n.checkImage(data)
		if err != nil {
			return nil, err
		}
		item.ImageData = data
		item.ImageType = imageType
		item.SourceURL = req.ImageURL
	}

	return item, nil
}

func (n *Normalizer) checkImage(data []byte) (string, error) {
	if int64(len(data)) > n.maxImageBytes {
		return "", domain.NewValidationError("image", "image exceeds the maximum size")
	}
	imageType := detectImageType(data)
	if imageType == "" {
		return "", domain.NewValidationError("image", "unsupported image type, accepted formats are PNG, JPEG, WEBP and GIF")
	}
	return imageType, nil
}

var extensionTypes = map[string]string{
	".png":  "png",
	".jpg":  "jpeg",
	".jpeg": "jpeg",
	".gif":  "gif",
	".webp": "webp",
}

// checkFilename cross-checks an optional declared filename against the
// sniffed image type. The bytes are authoritative; a filename whose
// extension contradicts them, or names a format the pipeline does not
// accept, is rejected rather than silently ignored.
func checkFilename(filename, sniffedType string) error {
	if filename == "" {
		return nil
	}
	idx := strings.LastIndex(filename, ".")
	if idx < 0 {
		return nil
	}
	ext := strings.ToLower(filename[idx:])
	declared, ok := extensionTypes[ext]
	if !ok {
		return domain.NewValidationError("image_filename", "unsupported image type, accepted formats are PNG, JPEG, WEBP and GIF")
	}
	if declared != sniffedType {
		return domain.NewValidationError("image_filename", "filename extension does not match the image data")
	}
	return nil
}

// decodeBase64Image accepts both bare base64 payloads and data URIs.
func decodeBase64Image(payload string) ([]byte, error) {
	if strings.HasPrefix(payload, "data:") {
		if idx := strings.Index(payload, ","); idx >= 0 {
			payload = payload[idx+1:]
		}
	}
	payload = strings.TrimSpace(payload)
	return base64.StdEncoding.DecodeString(payload)
}

func detectImageType(data []byte) string {
	for _, sig := range imageSignatures {
		if sig.match(data) {
			return sig.imageType
		}
	}
	return ""
}
