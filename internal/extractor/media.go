package extractor

import (
	"mime"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const (
	MediaTypePDF  = "application/pdf"
	MediaTypePNG  = "image/png"
	MediaTypeJPEG = "image/jpeg"

	mediaTypeOctetStream = "application/octet-stream"
)

// NormalizeMediaType strips parameters and lower-cases a declared content type.
func NormalizeMediaType(declared string) string {
	declared = strings.TrimSpace(declared)
	if declared == "" {
		return ""
	}
	if mt, _, err := mime.ParseMediaType(declared); err == nil {
		return mt
	}
	if i := strings.IndexByte(declared, ';'); i >= 0 {
		declared = declared[:i]
	}
	return strings.ToLower(strings.TrimSpace(declared))
}

// ResolveMediaType trusts the declared type unless it is missing or generic,
// in which case the type is sniffed from the content.
func ResolveMediaType(declared string, data []byte) string {
	mt := NormalizeMediaType(declared)
	if mt != "" && mt != mediaTypeOctetStream {
		return mt
	}
	if len(data) == 0 {
		return mt
	}
	return NormalizeMediaType(mimetype.Detect(data).String())
}

// IsImage reports whether mt is one of the raster formats the OCR engine accepts.
func IsImage(mt string) bool {
	return mt == MediaTypePNG || mt == MediaTypeJPEG
}
