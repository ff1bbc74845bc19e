// Package wesys handles the WESYS compression wrapper: a 16-byte header
// followed by a zlib stream.
//
// Header layout:
//
//	+0x00  3 bytes  00 10 01
//	+0x03  5 bytes  "WESYS"
//	+0x08  uint32   compressed payload length
//	+0x0C  uint32   uncompressed length
//
// Detection only looks at bytes 4..8 ("ESYS").
package wesys

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"

	"github.com/goopsie/ftexTools/pkg/texture"
)

// HeaderSize is the fixed binary size of a wrapper header.
const HeaderSize = 16

// Magic is the tag checked at offset 4 to detect a wrapped buffer.
var Magic = [4]byte{'E', 'S', 'Y', 'S'}

var prefix = [8]byte{0x00, 0x10, 0x01, 'W', 'E', 'S', 'Y', 'S'}

// Header is the wrapper header.
type Header struct {
	Prefix           [8]byte
	CompressedSize   uint32
	UncompressedSize uint32
}

// NewHeader creates a header for the given payload sizes.
func NewHeader(compressedSize, uncompressedSize uint32) *Header {
	return &Header{
		Prefix:           prefix,
		CompressedSize:   compressedSize,
		UncompressedSize: uncompressedSize,
	}
}

// Validate checks the magic tag.
func (h *Header) Validate() error {
	if !bytes.Equal(h.Prefix[4:8], Magic[:]) {
		return fmt.Errorf("invalid magic: expected %x, got %x", Magic, h.Prefix[4:8])
	}
	return nil
}

// MarshalBinary encodes the header.
func (h *Header) MarshalBinary() ([]byte, error) {
	buf := make([]byte, HeaderSize)
	h.EncodeTo(buf)
	return buf, nil
}

// EncodeTo writes the header to buf, which must be at least HeaderSize bytes.
func (h *Header) EncodeTo(buf []byte) {
	copy(buf[0:8], h.Prefix[:])
	binary.LittleEndian.PutUint32(buf[8:12], h.CompressedSize)
	binary.LittleEndian.PutUint32(buf[12:16], h.UncompressedSize)
}

// UnmarshalBinary decodes and validates the header.
func (h *Header) UnmarshalBinary(data []byte) error {
	if len(data) < HeaderSize {
		return fmt.Errorf("header data too short: need %d, got %d", HeaderSize, len(data))
	}
	h.DecodeFrom(data)
	return h.Validate()
}

// DecodeFrom reads the header without validating it.
func (h *Header) DecodeFrom(data []byte) {
	copy(h.Prefix[:], data[0:8])
	h.CompressedSize = binary.LittleEndian.Uint32(data[8:12])
	h.UncompressedSize = binary.LittleEndian.Uint32(data[12:16])
}

// Wrap prepends a wrapper header describing compressed and uncompressed.
func Wrap(compressed, uncompressed []byte) []byte {
	out := make([]byte, HeaderSize+len(compressed))
	NewHeader(uint32(len(compressed)), uint32(len(uncompressed))).EncodeTo(out)
	copy(out[HeaderSize:], compressed)
	return out
}

// Unwrap returns the bytes after the wrapper header. ok is false when data
// does not carry the wrapper magic; that is not an error.
func Unwrap(data []byte) (payload []byte, ok bool) {
	if len(data) < HeaderSize {
		return nil, false
	}
	var h Header
	if err := h.UnmarshalBinary(data); err != nil {
		return nil, false
	}
	return data[HeaderSize:], true
}

// IsCompressed reports whether data carries the wrapper header.
func IsCompressed(data []byte) bool {
	_, ok := Unwrap(data)
	return ok
}

// Decompress unwraps and inflates data. Unwrapped input is an error.
func Decompress(data []byte) ([]byte, error) {
	payload, ok := Unwrap(data)
	if !ok {
		return nil, texture.Decodef("missing %s wrapper", Magic[:])
	}
	return Inflate(payload)
}

// TryDecompress inflates wrapped data and returns anything else unchanged.
func TryDecompress(data []byte) ([]byte, error) {
	payload, ok := Unwrap(data)
	if !ok {
		return data, nil
	}
	return Inflate(payload)
}

// Compress deflates data and always wraps the result.
func Compress(data []byte) ([]byte, error) {
	compressed, err := Deflate(data, zlib.DefaultCompression)
	if err != nil {
		return nil, err
	}
	return Wrap(compressed, data), nil
}

// TryCompress wraps data only if that makes it smaller.
func TryCompress(data []byte) ([]byte, error) {
	compressed, err := Deflate(data, zlib.DefaultCompression)
	if err != nil {
		return nil, err
	}
	if len(compressed)+HeaderSize < len(data) {
		return Wrap(compressed, data), nil
	}
	return data, nil
}

// Inflate decodes a zlib stream. Corrupt input yields a DecodeError.
func Inflate(compressed []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, &texture.DecodeError{Reason: "decompression error", Err: err}
	}
	defer r.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, &texture.DecodeError{Reason: "decompression error", Err: err}
	}
	return out, nil
}

// Deflate encodes data as a zlib stream at the given level.
func Deflate(data []byte, level int) ([]byte, error) {
	var buf bytes.Buffer
	w, err := zlib.NewWriterLevel(&buf, level)
	if err != nil {
		return nil, fmt.Errorf("create compressor: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("compress: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close compressor: %w", err)
	}
	return buf.Bytes(), nil
}
