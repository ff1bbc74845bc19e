package archive

import (
	"io"

	"github.com/DataDog/zstd"
	"github.com/pkg/errors"
)

// DefaultCompressionLevel favours ratio; backups are written once and
// rarely read.
const DefaultCompressionLevel = zstd.DefaultCompression

// Writer compresses an original into a backup. The header is written with
// a zero compressed length and patched on Close, so dst must be seekable.
type Writer struct {
	dst     io.WriteSeeker
	zWriter *zstd.Writer
	header  *Header
	start   int64
	written uint64
}

// WriterOption configures a Writer.
type WriterOption func(*writerConfig)

type writerConfig struct {
	level int
}

// WithCompressionLevel sets the zstd level.
func WithCompressionLevel(level int) WriterOption {
	return func(c *writerConfig) {
		c.level = level
	}
}

// NewWriter starts a backup at the current position of dst. length is the
// size of the original and is checked on Close.
func NewWriter(dst io.WriteSeeker, length uint64, opts ...WriterOption) (*Writer, error) {
	cfg := writerConfig{level: DefaultCompressionLevel}
	for _, opt := range opts {
		opt(&cfg)
	}

	start, err := dst.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, errors.Wrap(err, "locate backup start")
	}

	w := &Writer{
		dst:    dst,
		header: NewHeader(length, 0),
		start:  start,
	}

	var buf [HeaderSize]byte
	w.header.EncodeTo(buf[:])
	if _, err := dst.Write(buf[:]); err != nil {
		return nil, errors.Wrap(err, "write backup header")
	}

	w.zWriter = zstd.NewWriterLevel(dst, cfg.level)
	return w, nil
}

// Write compresses p into the backup.
func (w *Writer) Write(p []byte) (int, error) {
	n, err := w.zWriter.Write(p)
	w.written += uint64(n)
	return n, err
}

// Close flushes the frame and fills in the compressed length.
func (w *Writer) Close() error {
	if err := w.zWriter.Close(); err != nil {
		return errors.Wrap(err, "close compressor")
	}
	if w.written != w.header.Length {
		return errors.Errorf("backup got %d bytes, expected %d", w.written, w.header.Length)
	}

	end, err := w.dst.Seek(0, io.SeekCurrent)
	if err != nil {
		return errors.Wrap(err, "locate backup end")
	}
	w.header.CompressedLength = uint64(end - w.start - HeaderSize)

	if _, err := w.dst.Seek(w.start, io.SeekStart); err != nil {
		return errors.Wrap(err, "seek to backup header")
	}
	var buf [HeaderSize]byte
	w.header.EncodeTo(buf[:])
	if _, err := w.dst.Write(buf[:]); err != nil {
		return errors.Wrap(err, "rewrite backup header")
	}

	if _, err := w.dst.Seek(end, io.SeekStart); err != nil {
		return errors.Wrap(err, "seek to backup end")
	}
	return nil
}

// Encode writes data to dst as one compressed backup.
func Encode(dst io.WriteSeeker, data []byte, opts ...WriterOption) error {
	w, err := NewWriter(dst, uint64(len(data)), opts...)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return errors.Wrap(err, "compress original")
	}
	return w.Close()
}
