// Package compress handles compressed report input and compressed sink output.
//
// Input is sniffed by magic bytes, so a gzipped or zstd-compressed export is
// read transparently. Output compression is picked from the output path
// suffix (".gz" or ".zst").
//
//	data, alg, err := compress.Decompress(raw)
//	w, err := compress.NewWriter(file, compress.AlgorithmFromPath(path), compress.LevelDefault)
package compress

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Algorithm represents a compression algorithm.
type Algorithm string

const (
	// AlgorithmZSTD is the Zstandard compression algorithm.
	AlgorithmZSTD Algorithm = "zstd"

	// AlgorithmGzip is the gzip compression algorithm.
	AlgorithmGzip Algorithm = "gzip"

	// AlgorithmNone indicates no compression.
	AlgorithmNone Algorithm = "none"
)

// Level represents compression level.
type Level int

const (
	// LevelFastest prioritizes speed over compression ratio.
	LevelFastest Level = 1

	// LevelDefault is the default compression level (good balance).
	LevelDefault Level = 3

	// LevelBest provides maximum compression (slowest).
	LevelBest Level = 9
)

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// Detect identifies the compression of data by its magic bytes.
func Detect(data []byte) Algorithm {
	switch {
	case bytes.HasPrefix(data, zstdMagic):
		return AlgorithmZSTD
	case bytes.HasPrefix(data, gzipMagic):
		return AlgorithmGzip
	default:
		return AlgorithmNone
	}
}

// AlgorithmFromPath picks the output compression from a file name suffix.
func AlgorithmFromPath(path string) Algorithm {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".zst"), strings.HasSuffix(lower, ".zstd"):
		return AlgorithmZSTD
	case strings.HasSuffix(lower, ".gz"):
		return AlgorithmGzip
	default:
		return AlgorithmNone
	}
}

// zstd decoders are reusable; keep one pool for all input.
var zstdDecoderPool = sync.Pool{
	New: func() any {
		dec, _ := zstd.NewReader(nil)
		return dec
	},
}

// Decompress returns data decompressed according to its detected algorithm,
// or data itself when it isn't compressed.
func Decompress(data []byte) ([]byte, Algorithm, error) {
	alg := Detect(data)
	switch alg {
	case AlgorithmZSTD:
		out, err := decompressZSTD(data)
		return out, alg, err
	case AlgorithmGzip:
		out, err := decompressGzip(data)
		return out, alg, err
	default:
		return data, alg, nil
	}
}

func decompressZSTD(data []byte) ([]byte, error) {
	dec, ok := zstdDecoderPool.Get().(*zstd.Decoder)
	if !ok || dec == nil {
		return nil, fmt.Errorf("zstd decoder unavailable")
	}
	defer zstdDecoderPool.Put(dec)

	if err := dec.Reset(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("zstd reset error: %w", err)
	}

	result, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("zstd decompress error: %w", err)
	}

	return result, nil
}

func decompressGzip(data []byte) ([]byte, error) {
	reader, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("gzip reader error: %w", err)
	}
	defer reader.Close()

	result, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("gzip decompress error: %w", err)
	}

	return result, nil
}

// NewWriter wraps w so bytes written are compressed with alg. Closing the
// returned writer flushes the compressor but does not close w.
func NewWriter(w io.Writer, alg Algorithm, level Level) (io.WriteCloser, error) {
	switch alg {
	case AlgorithmZSTD:
		enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(int(level))))
		if err != nil {
			return nil, fmt.Errorf("zstd writer error: %w", err)
		}
		return enc, nil
	case AlgorithmGzip:
		gzLevel := gzip.DefaultCompression
		if level <= LevelFastest {
			gzLevel = gzip.BestSpeed
		} else if level >= LevelBest {
			gzLevel = gzip.BestCompression
		}
		gw, err := gzip.NewWriterLevel(w, gzLevel)
		if err != nil {
			return nil, fmt.Errorf("gzip writer error: %w", err)
		}
		return gw, nil
	case AlgorithmNone, "":
		return nopCloser{w}, nil
	default:
		return nil, fmt.Errorf("unsupported compression algorithm: %s", alg)
	}
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }
