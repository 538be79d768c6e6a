package bridge

import (
	"compress/gzip"
	"io"
)

// gzipBody decompresses a gzip stream lazily: bytes are inflated only as the
// caller consumes them, and nothing is read from the underlying stream until
// the first Read. Close closes both the inflater and the wrapped stream.
type gzipBody struct {
	src io.ReadCloser
	zr  *gzip.Reader
}

func newGzipBody(src io.ReadCloser) *gzipBody {
	return &gzipBody{src: src}
}

func (g *gzipBody) Read(p []byte) (int, error) {
	if g.zr == nil {
		zr, err := gzip.NewReader(g.src)
		if err != nil {
			return 0, err
		}
		g.zr = zr
	}
	return g.zr.Read(p)
}

func (g *gzipBody) Close() error {
	if g.zr != nil {
		if err := g.zr.Close(); err != nil {
			g.src.Close()
			return err
		}
	}
	return g.src.Close()
}
