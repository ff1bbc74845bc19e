package ftex

import (
	"fmt"
	"math"
	"strings"

	"github.com/klauspost/compress/zlib"
	"github.com/pkg/errors"

	"github.com/goopsie/ftexTools/pkg/texture"
	"github.com/goopsie/ftexTools/pkg/wesys"
)

// DefaultChunkSize is the uncompressed size of each chunk. Larger chunks
// crash the game.
const DefaultChunkSize = 1 << 14

// payloadAlignment is the boundary each encoded mipmap is padded to.
const payloadAlignment = 8

// ColorSpace selects the texture type bits written to the header.
type ColorSpace string

const (
	ColorSpaceDefault ColorSpace = ""
	ColorSpaceLinear  ColorSpace = "LINEAR"
	ColorSpaceSRGB    ColorSpace = "SRGB"
	ColorSpaceNormal  ColorSpace = "NORMAL"
)

// ParseColorSpace maps a user-supplied name to a ColorSpace.
func ParseColorSpace(name string) (ColorSpace, error) {
	switch cs := ColorSpace(strings.ToUpper(name)); cs {
	case ColorSpaceDefault, ColorSpaceLinear, ColorSpaceSRGB, ColorSpaceNormal:
		return cs, nil
	}
	return ColorSpaceDefault, fmt.Errorf("unknown color space %q", name)
}

// TextureType returns the header texture type bits for the color space.
func (cs ColorSpace) TextureType() uint32 {
	switch cs {
	case ColorSpaceLinear:
		return TextureTypeLinear
	case ColorSpaceSRGB:
		return TextureTypeSRGB
	default:
		return TextureTypeNormal
	}
}

// ColorSpaceOf recovers the color space from header texture type bits.
func ColorSpaceOf(textureType uint32) ColorSpace {
	switch textureType &^ TextureTypeCubeMap {
	case TextureTypeLinear:
		return ColorSpaceLinear
	case TextureTypeSRGB:
		return ColorSpaceSRGB
	default:
		return ColorSpaceNormal
	}
}

// Encoder writes FTEX buffers.
type Encoder struct {
	colorSpace ColorSpace
	chunkSize  int
	level      int
}

// EncoderOption configures an Encoder.
type EncoderOption func(*Encoder)

// WithColorSpace sets the color space recorded in the texture type.
func WithColorSpace(cs ColorSpace) EncoderOption {
	return func(e *Encoder) {
		e.colorSpace = cs
	}
}

// WithChunkSize sets the uncompressed chunk size.
func WithChunkSize(size int) EncoderOption {
	return func(e *Encoder) {
		e.chunkSize = size
	}
}

// WithCompressionLevel sets the zlib level used for each chunk.
func WithCompressionLevel(level int) EncoderOption {
	return func(e *Encoder) {
		e.level = level
	}
}

// NewEncoder creates an encoder with the given options.
func NewEncoder(opts ...EncoderOption) *Encoder {
	e := &Encoder{
		colorSpace: ColorSpaceDefault,
		chunkSize:  DefaultChunkSize,
		level:      zlib.BestCompression,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Encode serializes frame as an FTEX buffer.
func Encode(frame *texture.Frame, opts ...EncoderOption) ([]byte, error) {
	return NewEncoder(opts...).Encode(frame)
}

// Encode serializes frame as an FTEX buffer.
func (e *Encoder) Encode(frame *texture.Frame) ([]byte, error) {
	if e.chunkSize <= 0 || e.chunkSize > math.MaxUint16 {
		return nil, fmt.Errorf("chunk size %d out of range", e.chunkSize)
	}
	if err := frame.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid frame")
	}
	if frame.Width > math.MaxUint16 || frame.Height > math.MaxUint16 || frame.Depth > math.MaxUint16 {
		return nil, fmt.Errorf("dimensions %dx%dx%d exceed ftex limits", frame.Width, frame.Height, frame.Depth)
	}
	if frame.MipmapCount > math.MaxUint8 {
		return nil, fmt.Errorf("mipmap count %d exceeds ftex limit", frame.MipmapCount)
	}

	textureType := e.colorSpace.TextureType()
	if frame.CubeMap {
		textureType |= TextureTypeCubeMap
	}

	header := &Header{
		Magic:       Magic,
		Version:     versionFor(frame.Format),
		PixelFormat: uint16(frame.Format),
		Width:       uint16(frame.Width),
		Height:      uint16(frame.Height),
		Depth:       uint16(frame.Depth),
		MipmapCount: uint8(frame.MipmapCount),
		NRT:         producerNRT,
		Flags:       producerFlags,
		Unknown1:    producerUnknown1,
		TextureType: textureType,
	}

	entries := make([]MipmapEntry, len(frame.Payloads))
	blocks := make([][]byte, len(frame.Payloads))
	payloadBase := HeaderSize + len(entries)*MipmapEntrySize
	offset := payloadBase

	for i, payload := range frame.Payloads {
		block, chunkCount, err := e.encodeImage(payload)
		if err != nil {
			return nil, errors.Wrapf(err, "encode payload %d", i)
		}
		if uint64(offset+len(block)) > math.MaxUint32 {
			return nil, fmt.Errorf("encoded texture exceeds 4 GiB")
		}

		entries[i] = MipmapEntry{
			Offset:           uint32(offset),
			UncompressedSize: uint32(len(payload)),
			CompressedSize:   uint32(len(block)),
			Index:            uint8(i % frame.MipmapCount),
			ChunkCount:       chunkCount,
		}
		blocks[i] = block
		offset += len(block)
	}

	out := make([]byte, offset)
	header.EncodeTo(out)
	for i := range entries {
		entries[i].EncodeTo(out[HeaderSize+i*MipmapEntrySize:])
		copy(out[entries[i].Offset:], blocks[i])
	}

	return out, nil
}

// encodeImage splits data into chunks, compresses each, and returns the
// chunk table followed by the chunk bodies, padded to payloadAlignment.
// Offsets in the table are relative to the start of the returned block.
func (e *Encoder) encodeImage(data []byte) ([]byte, uint16, error) {
	count := (len(data) + e.chunkSize - 1) / e.chunkSize
	if count > math.MaxUint16 {
		return nil, 0, fmt.Errorf("payload of %d bytes needs %d chunks", len(data), count)
	}

	table := make([]byte, count*ChunkEntrySize)
	var body []byte

	for i := 0; i < count; i++ {
		chunk := data[i*e.chunkSize : min((i+1)*e.chunkSize, len(data))]

		stored, err := wesys.Deflate(chunk, e.level)
		if err != nil {
			return nil, 0, err
		}
		// Equal sizes mean "raw" to the reader, so anything that does not
		// shrink is stored as is.
		if len(stored) >= len(chunk) {
			stored = chunk
		}

		entry := ChunkEntry{
			CompressedSize:   uint16(len(stored)),
			UncompressedSize: uint16(len(chunk)),
			Offset:           uint32(len(table) + len(body)),
		}
		entry.EncodeTo(table[i*ChunkEntrySize:])
		body = append(body, stored...)
	}

	block := append(table, body...)
	if pad := len(block) % payloadAlignment; pad > 0 {
		block = append(block, make([]byte, payloadAlignment-pad)...)
	}

	return block, uint16(count), nil
}

// SetVersion returns a copy of an FTEX buffer with its version field
// replaced. The rest of the file is untouched.
func SetVersion(data []byte, version float32) ([]byte, error) {
	if _, err := ReadHeader(data); err != nil {
		return nil, err
	}
	if v := float64(version); v < minVersion || v > maxVersion {
		return nil, fmt.Errorf("unsupported ftex version %.3f", version)
	}

	out := append([]byte(nil), data...)
	h := &Header{}
	h.DecodeFrom(out)
	h.Version = version
	h.EncodeTo(out)
	return out, nil
}
