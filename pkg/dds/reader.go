package dds

import (
	"fmt"
	"math/bits"

	"github.com/pkg/errors"

	"github.com/goopsie/ftexTools/pkg/texture"
)

// Decode parses a DDS buffer into a canonical frame set.
func Decode(data []byte) (*texture.Frame, error) {
	h := &Header{}
	if err := h.UnmarshalBinary(data); err != nil {
		return nil, err
	}

	cube := false
	if h.CubeMap() {
		if h.Caps2&DDS_CUBEMAP_ALLFACES != DDS_CUBEMAP_ALLFACES {
			return nil, texture.Decodef("incomplete dds cube maps not supported (caps2 0x%x)", h.Caps2)
		}
		cube = true
	}

	depth := 1
	if h.Volume() && h.Depth > 1 {
		depth = int(h.Depth)
	}
	if cube && depth > 1 {
		return nil, texture.Decodef("invalid dds combination: cube map and volume map both set")
	}

	offset := HeaderSize
	format, extended, err := resolveFormat(h, data[offset:])
	if err != nil {
		return nil, err
	}
	if extended {
		offset += DX10HeaderSize
	}

	info, err := texture.Lookup(format)
	if err != nil {
		return nil, err
	}

	frame := &texture.Frame{
		Format:      format,
		Width:       int(h.Width),
		Height:      int(h.Height),
		Depth:       depth,
		MipmapCount: h.Mipmaps(),
		CubeMap:     cube,
	}
	if frame.Width < 1 || frame.Height < 1 {
		return nil, texture.Decodef("invalid dds dimensions %dx%d", frame.Width, frame.Height)
	}
	if _, err := info.MipmapSize(frame.Width, frame.Height, frame.Depth, 0); err != nil {
		return nil, &texture.DecodeError{
			Reason: fmt.Sprintf("dds dimensions %dx%dx%d too large", frame.Width, frame.Height, frame.Depth),
			Err:    err,
		}
	}
	// A chain halves down to 1x1x1 and stops there.
	if levels := bits.Len(uint(max(frame.Width, frame.Height, frame.Depth))); frame.MipmapCount > levels {
		return nil, texture.Decodef("dds mipmap count %d exceeds %d levels for %dx%dx%d",
			frame.MipmapCount, levels, frame.Width, frame.Height, frame.Depth)
	}

	frame.Payloads = make([][]byte, 0, frame.Faces()*frame.MipmapCount)
	for face := 0; face < frame.Faces(); face++ {
		for level := 0; level < frame.MipmapCount; level++ {
			size, err := info.MipmapSize(frame.Width, frame.Height, frame.Depth, level)
			if err != nil {
				return nil, err
			}
			if len(data)-offset < size {
				return nil, errors.Wrapf(texture.Decodef("unexpected end of dds stream"),
					"face %d mipmap %d needs %d bytes", face, level, size)
			}
			frame.Payloads = append(frame.Payloads, append([]byte(nil), data[offset:offset+size]...))
			offset += size
		}
	}

	return frame, nil
}

// resolveFormat maps the header's pixel format to a texture format. rest is
// the data after the main header; extended reports whether a DX10 header was
// consumed from it.
func resolveFormat(h *Header, rest []byte) (format texture.Format, extended bool, err error) {
	pf := &h.PixelFormat

	if pf.Flags&DDPF_FOURCC == 0 {
		if pf.isRGBA() {
			return texture.FormatA8R8G8B8, false, nil
		}
		return 0, false, &texture.UnsupportedFormatError{
			Kind:  "dds pixel format",
			Value: rgbaDescription(pf),
		}
	}

	if pf.FourCC == texture.FourCCDX10 {
		x := &DX10Header{}
		if err := x.UnmarshalBinary(rest); err != nil {
			return 0, false, err
		}
		format, err := texture.FromDXGI(x.DXGIFormat)
		if err != nil {
			return 0, false, err
		}
		return format, true, nil
	}

	format, err = texture.FromFourCC(pf.FourCC)
	return format, false, err
}

func rgbaDescription(pf *PixelFormat) string {
	return fmt.Sprintf("flags=0x%x bits=%d masks=%08x/%08x/%08x/%08x",
		pf.Flags, pf.RGBBitCount, pf.RBitMask, pf.GBitMask, pf.BBitMask, pf.ABitMask)
}
