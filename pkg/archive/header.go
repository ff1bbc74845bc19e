// Package archive stores backup copies of textures that a conversion is
// about to overwrite, either as a plain renamed file or as a single
// zstd frame behind a small fixed header.
package archive

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// Magic bytes identifying a compressed backup.
var Magic = [4]byte{'Z', 'S', 'T', 'D'}

// HeaderSize is the fixed binary size of a backup header.
const HeaderSize = 24

// sizesLength counts the header bytes after the length field itself.
const sizesLength = 16

// Header precedes the zstd frame of a compressed backup.
type Header struct {
	Magic            [4]byte
	HeaderLength     uint32 // always 16
	Length           uint64 // size of the original file
	CompressedLength uint64 // size of the zstd frame
}

// NewHeader returns a header for a backup of the given sizes.
func NewHeader(length, compressedLength uint64) *Header {
	return &Header{
		Magic:            Magic,
		HeaderLength:     sizesLength,
		Length:           length,
		CompressedLength: compressedLength,
	}
}

// Validate checks the fixed fields. An empty original is allowed; a
// missing frame is not.
func (h *Header) Validate() error {
	if h.Magic != Magic {
		return errors.Errorf("not a backup archive: magic %q", h.Magic[:])
	}
	if h.HeaderLength != sizesLength {
		return errors.Errorf("bad backup header length %d", h.HeaderLength)
	}
	if h.CompressedLength == 0 {
		return errors.New("backup has no compressed data")
	}
	return nil
}

// Ratio is the compressed size as a fraction of the original.
func (h *Header) Ratio() float64 {
	if h.Length == 0 {
		return 0
	}
	return float64(h.CompressedLength) / float64(h.Length)
}

// MarshalBinary encodes the header.
func (h *Header) MarshalBinary() ([]byte, error) {
	buf := make([]byte, HeaderSize)
	h.EncodeTo(buf)
	return buf, nil
}

// EncodeTo writes the header into buf, which must hold HeaderSize bytes.
func (h *Header) EncodeTo(buf []byte) {
	copy(buf[0:4], h.Magic[:])
	binary.LittleEndian.PutUint32(buf[4:8], h.HeaderLength)
	binary.LittleEndian.PutUint64(buf[8:16], h.Length)
	binary.LittleEndian.PutUint64(buf[16:24], h.CompressedLength)
}

// UnmarshalBinary decodes and validates the header.
func (h *Header) UnmarshalBinary(data []byte) error {
	if len(data) < HeaderSize {
		return errors.Errorf("backup header too short: %d bytes", len(data))
	}
	h.DecodeFrom(data)
	return h.Validate()
}

// DecodeFrom reads the header from buf without validating it.
func (h *Header) DecodeFrom(buf []byte) {
	copy(h.Magic[:], buf[0:4])
	h.HeaderLength = binary.LittleEndian.Uint32(buf[4:8])
	h.Length = binary.LittleEndian.Uint64(buf[8:16])
	h.CompressedLength = binary.LittleEndian.Uint64(buf[16:24])
}
