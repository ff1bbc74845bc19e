package dds

import (
	"bytes"
	"fmt"
	"math"

	"github.com/pkg/errors"

	"github.com/goopsie/ftexTools/pkg/texture"
)

// Encode serializes frame as a DDS buffer. Formats with a legacy fourCC use
// it; everything else gets a DX10 extended header.
func Encode(frame *texture.Frame) ([]byte, error) {
	if uint64(frame.Width) > math.MaxUint32 || uint64(frame.Height) > math.MaxUint32 || uint64(frame.Depth) > math.MaxUint32 {
		return nil, fmt.Errorf("dimensions %dx%dx%d exceed dds limits", frame.Width, frame.Height, frame.Depth)
	}
	if frame.Format == texture.FormatA8R8G8B8 && uint64(frame.Width) > math.MaxUint32/4 {
		return nil, fmt.Errorf("row pitch of %d pixels exceeds dds limits", frame.Width)
	}
	if err := frame.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid frame")
	}
	info, err := texture.Lookup(frame.Format)
	if err != nil {
		return nil, err
	}

	h, x := newHeader(frame, info)

	headerBytes, err := h.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("marshal header: %w", err)
	}

	size := len(headerBytes)
	for _, payload := range frame.Payloads {
		size += len(payload)
	}
	if x != nil {
		size += DX10HeaderSize
	}

	buf := bytes.NewBuffer(make([]byte, 0, size))
	buf.Write(headerBytes)
	if x != nil {
		extBytes, err := x.MarshalBinary()
		if err != nil {
			return nil, fmt.Errorf("marshal extension header: %w", err)
		}
		buf.Write(extBytes)
	}
	for _, payload := range frame.Payloads {
		buf.Write(payload)
	}

	return buf.Bytes(), nil
}

// newHeader builds the main header and, when needed, the DX10 header.
func newHeader(frame *texture.Frame, info texture.FormatInfo) (*Header, *DX10Header) {
	h := &Header{
		Magic:       DDS_MAGIC,
		Size:        DDS_HEADER_SIZE,
		Flags:       DDS_HEADER_FLAGS_CAPS | DDS_HEADER_FLAGS_HEIGHT | DDS_HEADER_FLAGS_WIDTH | DDS_HEADER_FLAGS_PIXELFORMAT | DDS_HEADER_FLAGS_MIPMAPCOUNT,
		Height:      uint32(frame.Height),
		Width:       uint32(frame.Width),
		Depth:       1,
		MipMapCount: uint32(frame.MipmapCount),
		PixelFormat: PixelFormat{Size: DDS_PIXELFORMAT_SIZE},
		Caps:        DDS_SURFACE_FLAGS_TEXTURE | DDS_SURFACE_FLAGS_COMPLEX | DDS_SURFACE_FLAGS_MIPMAP,
	}

	dimension := uint32(DDS_DIMENSION_TEXTURE2D)
	var miscFlag uint32

	switch {
	case frame.CubeMap:
		h.Caps2 |= DDS_CUBEMAP_ALLFACES
		miscFlag = DDS_RESOURCE_MISC_CUBE
	case frame.Depth > 1:
		h.Flags |= DDS_HEADER_FLAGS_DEPTH
		h.Caps2 |= DDS_VOLUME
		h.Depth = uint32(frame.Depth)
		dimension = DDS_DIMENSION_TEXTURE3D
	}

	if frame.Format == texture.FormatA8R8G8B8 {
		h.Flags |= DDS_HEADER_FLAGS_PITCH
		h.PitchOrLinearSize = uint32(4 * frame.Width)
		h.PixelFormat.Flags = DDPF_RGB | DDPF_ALPHAPIXELS
		h.PixelFormat.RGBBitCount = rgbaBitCount
		h.PixelFormat.RBitMask = rgbaRMask
		h.PixelFormat.GBitMask = rgbaGMask
		h.PixelFormat.BBitMask = rgbaBMask
		h.PixelFormat.ABitMask = rgbaAMask
		return h, nil
	}

	h.Flags |= DDS_HEADER_FLAGS_LINEARSIZE
	h.PitchOrLinearSize = uint32(len(frame.Payloads[0]))
	h.PixelFormat.Flags = DDPF_FOURCC

	if info.FourCC != texture.FourCCNone {
		h.PixelFormat.FourCC = info.FourCC
		return h, nil
	}

	h.PixelFormat.FourCC = texture.FourCCDX10
	return h, &DX10Header{
		DXGIFormat:        info.DXGIFormat,
		ResourceDimension: dimension,
		MiscFlag:          miscFlag,
		ArraySize:         1,
	}
}
