// Package dds reads and writes DirectDraw Surface containers holding
// already-encoded pixel data: plain 2D textures, cube maps and volume
// textures, with legacy fourCC or DX10 extended headers.
package dds

import (
	"bytes"
	"encoding/binary"

	"github.com/goopsie/ftexTools/pkg/texture"
)

// DDS header constants
const (
	DDS_MAGIC       = 0x20534444 // "DDS "
	DDS_HEADER_SIZE = 124

	DDS_HEADER_FLAGS_CAPS        = 0x1
	DDS_HEADER_FLAGS_HEIGHT      = 0x2
	DDS_HEADER_FLAGS_WIDTH       = 0x4
	DDS_HEADER_FLAGS_PITCH       = 0x8
	DDS_HEADER_FLAGS_PIXELFORMAT = 0x1000
	DDS_HEADER_FLAGS_MIPMAPCOUNT = 0x20000
	DDS_HEADER_FLAGS_LINEARSIZE  = 0x80000
	DDS_HEADER_FLAGS_DEPTH       = 0x800000

	DDS_SURFACE_FLAGS_COMPLEX = 0x8
	DDS_SURFACE_FLAGS_TEXTURE = 0x1000
	DDS_SURFACE_FLAGS_MIPMAP  = 0x400000

	DDS_CUBEMAP          = 0x200
	DDS_CUBEMAP_ALLFACES = 0xFE00 // DDS_CUBEMAP plus all six face bits
	DDS_VOLUME           = 0x200000

	DDS_PIXELFORMAT_SIZE = 32
	DDPF_ALPHAPIXELS     = 0x1
	DDPF_FOURCC          = 0x4
	DDPF_RGB             = 0x40

	DDS_DIMENSION_TEXTURE2D = 3
	DDS_DIMENSION_TEXTURE3D = 4
	DDS_RESOURCE_MISC_CUBE  = 0x4
)

// Bit masks of the only accepted uncompressed layout (A8R8G8B8).
const (
	rgbaBitCount = 32
	rgbaRMask    = 0x00FF0000
	rgbaGMask    = 0x0000FF00
	rgbaBMask    = 0x000000FF
	rgbaAMask    = 0xFF000000
)

// HeaderSize is the size of the magic plus the main header.
const HeaderSize = 4 + DDS_HEADER_SIZE

// DX10HeaderSize is the size of the extended header.
const DX10HeaderSize = 20

// Header is the magic and the 124-byte DDS_HEADER.
type Header struct {
	Magic             uint32
	Size              uint32
	Flags             uint32
	Height            uint32
	Width             uint32
	PitchOrLinearSize uint32
	Depth             uint32
	MipMapCount       uint32
	Reserved1         [11]uint32
	PixelFormat       PixelFormat
	Caps              uint32
	Caps2             uint32
	Caps3             uint32
	Caps4             uint32
	Reserved2         uint32
}

// PixelFormat is the embedded 32-byte DDS_PIXELFORMAT.
type PixelFormat struct {
	Size        uint32
	Flags       uint32
	FourCC      texture.FourCC
	RGBBitCount uint32
	RBitMask    uint32
	GBitMask    uint32
	BBitMask    uint32
	ABitMask    uint32
}

// DX10Header is the extended header that follows when FourCC is "DX10".
type DX10Header struct {
	DXGIFormat        uint32
	ResourceDimension uint32
	MiscFlag          uint32
	ArraySize         uint32
	MiscFlags2        uint32
}

// CubeMap reports whether the cube map capability bit is set.
func (h *Header) CubeMap() bool {
	return h.Caps2&DDS_CUBEMAP != 0
}

// Volume reports whether the volume capability bit is set.
func (h *Header) Volume() bool {
	return h.Caps2&DDS_VOLUME != 0
}

// Mipmaps returns the number of stored mipmap levels.
func (h *Header) Mipmaps() int {
	if h.Caps&DDS_SURFACE_FLAGS_MIPMAP != 0 && h.MipMapCount > 1 {
		return int(h.MipMapCount)
	}
	return 1
}

// Validate checks the magic and declared header size.
func (h *Header) Validate() error {
	if h.Magic != DDS_MAGIC {
		return texture.Decodef("incorrect dds signature 0x%08x", h.Magic)
	}
	if h.Size != DDS_HEADER_SIZE {
		return texture.Decodef("incorrect dds header size %d", h.Size)
	}
	return nil
}

// MarshalBinary encodes the header to binary format.
func (h *Header) MarshalBinary() ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, HeaderSize))
	if err := binary.Write(buf, binary.LittleEndian, h); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary decodes and validates the header.
func (h *Header) UnmarshalBinary(data []byte) error {
	if len(data) < HeaderSize {
		return texture.Decodef("incomplete dds header: need %d bytes, got %d", HeaderSize, len(data))
	}
	if err := binary.Read(bytes.NewReader(data[:HeaderSize]), binary.LittleEndian, h); err != nil {
		return &texture.DecodeError{Reason: "read dds header", Err: err}
	}
	return h.Validate()
}

// MarshalBinary encodes the extended header.
func (x *DX10Header) MarshalBinary() ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, DX10HeaderSize))
	if err := binary.Write(buf, binary.LittleEndian, x); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary decodes the extended header.
func (x *DX10Header) UnmarshalBinary(data []byte) error {
	if len(data) < DX10HeaderSize {
		return texture.Decodef("incomplete dds extension header")
	}
	if err := binary.Read(bytes.NewReader(data[:DX10HeaderSize]), binary.LittleEndian, x); err != nil {
		return &texture.DecodeError{Reason: "read dds extension header", Err: err}
	}
	return nil
}

// isRGBA reports whether the pixel format is the A8R8G8B8 bit mask layout.
func (pf *PixelFormat) isRGBA() bool {
	return pf.Flags&DDPF_RGB != 0 &&
		pf.Flags&DDPF_ALPHAPIXELS != 0 &&
		pf.RBitMask == rgbaRMask &&
		pf.GBitMask == rgbaGMask &&
		pf.BBitMask == rgbaBMask &&
		pf.ABitMask == rgbaAMask
}
