// Package codec picks a compression format from a file name.
package codec

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/DataDog/zstd"
	"github.com/golang/snappy"
	"github.com/pierrec/lz4/v4"
)

const (
	Snappy = ".sz"
	LZ4    = ".lz4"
	Zstd   = ".zst"
)

func ext(name string) string {
	return strings.ToLower(filepath.Ext(name))
}

// Compressed reports whether name carries a known compression extension.
func Compressed(name string) bool {
	switch ext(name) {
	case Snappy, LZ4, Zstd:
		return true
	}
	return false
}

// NewReader returns a reader that decompresses r according to name.
func NewReader(name string, r io.Reader) io.ReadCloser {
	switch ext(name) {
	case Snappy:
		return io.NopCloser(snappy.NewReader(r))
	case LZ4:
		return io.NopCloser(lz4.NewReader(r))
	case Zstd:
		return zstd.NewReader(r)
	}
	return io.NopCloser(r)
}

// NewWriter returns a writer that compresses into w according to name. Close
// flushes the compressor but leaves w open.
func NewWriter(name string, w io.Writer) io.WriteCloser {
	switch ext(name) {
	case Snappy:
		return snappy.NewBufferedWriter(w)
	case LZ4:
		return lz4.NewWriter(w)
	case Zstd:
		return zstd.NewWriter(w)
	}
	return nopWriteCloser{w}
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
