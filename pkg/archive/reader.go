package archive

import (
	"io"

	"github.com/DataDog/zstd"
	"github.com/pkg/errors"
)

// Reader streams the original bytes out of a compressed backup.
type Reader struct {
	header  Header
	zReader io.ReadCloser
}

// NewReader reads and validates the backup header from r and returns a
// reader positioned at the start of the original data.
func NewReader(r io.Reader) (*Reader, error) {
	var buf [HeaderSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return nil, errors.Wrap(err, "read backup header")
	}

	reader := &Reader{}
	if err := reader.header.UnmarshalBinary(buf[:]); err != nil {
		return nil, err
	}

	frame := io.LimitReader(r, int64(reader.header.CompressedLength))
	reader.zReader = zstd.NewReader(frame)
	return reader, nil
}

// Header returns the backup header.
func (r *Reader) Header() Header {
	return r.header
}

// Read reads decompressed data into p.
func (r *Reader) Read(p []byte) (int, error) {
	return r.zReader.Read(p)
}

// Close releases the decompressor.
func (r *Reader) Close() error {
	return r.zReader.Close()
}

// ReadAll restores the complete original from a compressed backup and
// checks it against the recorded length.
func ReadAll(r io.Reader) ([]byte, error) {
	reader, err := NewReader(r)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	data := make([]byte, reader.header.Length)
	if _, err := io.ReadFull(reader, data); err != nil {
		return nil, errors.Wrapf(err, "restore %d bytes", reader.header.Length)
	}

	// Trailing data inside the frame means the header lied about the size.
	var probe [1]byte
	if n, _ := reader.Read(probe[:]); n != 0 {
		return nil, errors.Errorf("backup holds more than the recorded %d bytes", reader.header.Length)
	}

	return data, nil
}
