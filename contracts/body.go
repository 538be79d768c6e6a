package contracts

import (
	"bytes"
	"io"
	"strings"
)

// LengthUnknown marks a body whose length cannot be determined up front.
const LengthUnknown int64 = -1

// Body describes request or response content: an optional media type, an
// optional length, and the opaque byte stream carrying the payload.
//
// A nil *Body means "no body at all", which is distinct from a zero-length
// body. Responses returned through the chain always carry a non-nil Body.
type Body struct {
	contentType   string
	contentLength int64
	source        io.ReadCloser
}

// NewBody creates a body descriptor. contentType may be empty when unknown
// and contentLength may be LengthUnknown (any negative value is normalized
// to it). A source that is not an io.ReadCloser is wrapped with a no-op
// Close.
func NewBody(contentType string, contentLength int64, source io.Reader) *Body {
	if contentLength < 0 {
		contentLength = LengthUnknown
	}
	if source == nil {
		source = strings.NewReader("")
		contentLength = 0
	}
	rc, ok := source.(io.ReadCloser)
	if !ok {
		rc = io.NopCloser(source)
	}
	return &Body{
		contentType:   contentType,
		contentLength: contentLength,
		source:        rc,
	}
}

// StringBody creates a body over s with a known length.
func StringBody(contentType, s string) *Body {
	return NewBody(contentType, int64(len(s)), strings.NewReader(s))
}

// BytesBody creates a body over b with a known length.
func BytesBody(contentType string, b []byte) *Body {
	return NewBody(contentType, int64(len(b)), bytes.NewReader(b))
}

// EmptyBody creates a zero-length body with no declared media type.
func EmptyBody() *Body {
	return NewBody("", 0, strings.NewReader(""))
}

// ContentType returns the declared media type, or "" when unknown.
func (b *Body) ContentType() string {
	return b.contentType
}

// ContentLength returns the declared length in bytes, or LengthUnknown.
func (b *Body) ContentLength() int64 {
	return b.contentLength
}

// Source returns the byte stream carrying the payload. The stream is read
// at most once; the caller that consumes it is responsible for closing it.
func (b *Body) Source() io.ReadCloser {
	return b.source
}
