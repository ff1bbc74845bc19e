// Package ftex reads and writes FTEX texture containers.
//
// An FTEX file is a 64-byte header, then one 16-byte mipmap directory entry
// per (image, level), then the payload region. Cube maps store six images,
// everything else one. A mipmap payload is either a single block (raw or
// zlib) or a table of chunks, each compressed independently.
package ftex

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/goopsie/ftexTools/pkg/texture"
)

// Magic bytes identifying an FTEX header.
var Magic = [4]byte{'F', 'T', 'E', 'X'}

// HeaderSize is the fixed binary size of an FTEX header.
const HeaderSize = 64

// Known container versions. PES18 writes 2.03; PES19 added the extended
// format range and writes 2.04.
const (
	Version203 float32 = 2.03
	Version204 float32 = 2.04

	minVersion = 2.025
	maxVersion = 2.045
)

// Texture type bits. Bit 2 marks a cube map; the rest encode color space.
const (
	TextureTypeLinear  = 0x1
	TextureTypeSRGB    = 0x3
	TextureTypeCubeMap = 0x4
	TextureTypeNormal  = 0x9
)

// Opaque values observed in files written by the game's own tools.
const (
	producerNRT      = 0x02
	producerFlags    = 0x11
	producerUnknown1 = 1
)

// Header is the 64-byte FTEX header.
type Header struct {
	Magic       [4]byte  // +0x00
	Version     float32  // +0x04
	PixelFormat uint16   // +0x08
	Width       uint16   // +0x0A
	Height      uint16   // +0x0C
	Depth       uint16   // +0x0E
	MipmapCount uint8    // +0x10
	NRT         uint8    // +0x11: meaning unknown
	Flags       uint16   // +0x12: meaning unknown
	Unknown1    uint32   // +0x14
	Unknown2    uint32   // +0x18
	TextureType uint32   // +0x1C
	FTEXSCount  uint8    // +0x20: number of external .ftexs parts
	Unknown3    uint8    // +0x21
	Reserved    [14]byte // +0x22
	Hash1       [8]byte  // +0x30
	Hash2       [8]byte  // +0x38
}

// Format returns the pixel format.
func (h *Header) Format() texture.Format {
	return texture.Format(h.PixelFormat)
}

// CubeMap reports whether the texture type marks a cube map.
func (h *Header) CubeMap() bool {
	return h.TextureType&TextureTypeCubeMap != 0
}

// Images returns the number of images with a full mipmap chain.
func (h *Header) Images() int {
	if h.CubeMap() {
		return texture.CubeFaces
	}
	return 1
}

// Validate checks that the header describes a supported file.
func (h *Header) Validate() error {
	if h.Magic != Magic {
		return texture.Decodef("incorrect ftex signature %q", h.Magic[:])
	}
	if v := float64(h.Version); math.IsNaN(v) || v < minVersion || v > maxVersion {
		return texture.Decodef("unsupported ftex version %.3f", h.Version)
	}
	if h.FTEXSCount > 0 {
		return texture.Decodef("unsupported ftex variant: %d ftexs parts", h.FTEXSCount)
	}
	if h.MipmapCount == 0 {
		return texture.Decodef("unsupported ftex variant: zero mipmaps")
	}
	if h.CubeMap() && h.Depth > 1 {
		return texture.Decodef("unsupported ftex variant: cube map with depth %d", h.Depth)
	}
	return nil
}

// MarshalBinary encodes the header to binary format.
func (h *Header) MarshalBinary() ([]byte, error) {
	buf := make([]byte, HeaderSize)
	h.EncodeTo(buf)
	return buf, nil
}

// EncodeTo writes the header to buf, which must be at least HeaderSize bytes.
func (h *Header) EncodeTo(buf []byte) {
	copy(buf[0x00:0x04], h.Magic[:])
	binary.LittleEndian.PutUint32(buf[0x04:0x08], math.Float32bits(h.Version))
	binary.LittleEndian.PutUint16(buf[0x08:0x0A], h.PixelFormat)
	binary.LittleEndian.PutUint16(buf[0x0A:0x0C], h.Width)
	binary.LittleEndian.PutUint16(buf[0x0C:0x0E], h.Height)
	binary.LittleEndian.PutUint16(buf[0x0E:0x10], h.Depth)
	buf[0x10] = h.MipmapCount
	buf[0x11] = h.NRT
	binary.LittleEndian.PutUint16(buf[0x12:0x14], h.Flags)
	binary.LittleEndian.PutUint32(buf[0x14:0x18], h.Unknown1)
	binary.LittleEndian.PutUint32(buf[0x18:0x1C], h.Unknown2)
	binary.LittleEndian.PutUint32(buf[0x1C:0x20], h.TextureType)
	buf[0x20] = h.FTEXSCount
	buf[0x21] = h.Unknown3
	copy(buf[0x22:0x30], h.Reserved[:])
	copy(buf[0x30:0x38], h.Hash1[:])
	copy(buf[0x38:0x40], h.Hash2[:])
}

// UnmarshalBinary decodes and validates the header.
func (h *Header) UnmarshalBinary(data []byte) error {
	if len(data) < HeaderSize {
		return texture.Decodef("incomplete ftex header: need %d bytes, got %d", HeaderSize, len(data))
	}
	h.DecodeFrom(data)
	return h.Validate()
}

// DecodeFrom reads the header from buf without validating it.
func (h *Header) DecodeFrom(buf []byte) {
	copy(h.Magic[:], buf[0x00:0x04])
	h.Version = math.Float32frombits(binary.LittleEndian.Uint32(buf[0x04:0x08]))
	h.PixelFormat = binary.LittleEndian.Uint16(buf[0x08:0x0A])
	h.Width = binary.LittleEndian.Uint16(buf[0x0A:0x0C])
	h.Height = binary.LittleEndian.Uint16(buf[0x0C:0x0E])
	h.Depth = binary.LittleEndian.Uint16(buf[0x0E:0x10])
	h.MipmapCount = buf[0x10]
	h.NRT = buf[0x11]
	h.Flags = binary.LittleEndian.Uint16(buf[0x12:0x14])
	h.Unknown1 = binary.LittleEndian.Uint32(buf[0x14:0x18])
	h.Unknown2 = binary.LittleEndian.Uint32(buf[0x18:0x1C])
	h.TextureType = binary.LittleEndian.Uint32(buf[0x1C:0x20])
	h.FTEXSCount = buf[0x20]
	h.Unknown3 = buf[0x21]
	copy(h.Reserved[:], buf[0x22:0x30])
	copy(h.Hash1[:], buf[0x30:0x38])
	copy(h.Hash2[:], buf[0x38:0x40])
}

// ReadHeader parses and validates the header at the start of data.
func ReadHeader(data []byte) (*Header, error) {
	h := &Header{}
	if err := h.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	return h, nil
}

// String returns a human-readable summary.
func (h *Header) String() string {
	kind := "2D"
	switch {
	case h.CubeMap():
		kind = "cube"
	case h.Depth > 1:
		kind = "volume"
	}
	return fmt.Sprintf(
		"FTEX %.2f: %dx%dx%d %s, %d mips, format=%s, type=0x%x",
		h.Version, h.Width, h.Height, h.Depth, kind,
		h.MipmapCount, h.Format(), h.TextureType,
	)
}

// versionFor picks the container version a format has to be written with.
func versionFor(f texture.Format) float32 {
	if f.RequiresExtendedVersion() {
		return Version204
	}
	return Version203
}
