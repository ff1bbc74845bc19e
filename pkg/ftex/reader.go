package ftex

import (
	"github.com/pkg/errors"

	"github.com/goopsie/ftexTools/pkg/texture"
)

// maxExpansion bounds how far a mipmap may grow past the file holding it.
// Deflate output never inflates by more than about 1032:1.
const maxExpansion = 1032

// Decode parses an FTEX buffer into a canonical frame set.
//
// Each mipmap is fitted to the size its format and dimensions call for:
// short payloads are zero-padded and long ones truncated. A declared size
// the file could not plausibly hold is a DecodeError.
func Decode(data []byte) (*texture.Frame, error) {
	h, err := ReadHeader(data)
	if err != nil {
		return nil, err
	}

	info, err := texture.Lookup(h.Format())
	if err != nil {
		return nil, err
	}

	depth := int(h.Depth)
	if h.CubeMap() || depth < 1 {
		depth = 1
	}

	frame := &texture.Frame{
		Format:      h.Format(),
		Width:       int(h.Width),
		Height:      int(h.Height),
		Depth:       depth,
		MipmapCount: int(h.MipmapCount),
		CubeMap:     h.CubeMap(),
	}

	entries, err := readDirectory(data, h)
	if err != nil {
		return nil, err
	}

	frame.Payloads = make([][]byte, len(entries))
	for i := range entries {
		e := &entries[i]

		src, err := e.source(data)
		if err != nil {
			return nil, errors.Wrapf(err, "image %d mipmap %d", i/frame.MipmapCount, e.Index)
		}
		payload, err := src.read(data)
		if err != nil {
			return nil, errors.Wrapf(err, "image %d mipmap %d", i/frame.MipmapCount, e.Index)
		}

		expected, err := info.MipmapSize(frame.Width, frame.Height, frame.Depth, int(e.Index))
		if err != nil {
			return nil, err
		}
		if uint64(expected) > uint64(len(data))*maxExpansion {
			return nil, texture.Decodef("mipmap %d needs %d bytes, more than a %d-byte file holds",
				e.Index, expected, len(data))
		}
		frame.Payloads[i] = texture.FitPayload(payload, expected)
	}

	return frame, nil
}

// readDirectory reads and checks the mipmap entries that follow the header.
func readDirectory(data []byte, h *Header) ([]MipmapEntry, error) {
	images := h.Images()
	levels := int(h.MipmapCount)

	table, err := section(data, HeaderSize, images*levels*MipmapEntrySize)
	if err != nil {
		return nil, texture.Decodef("incomplete mipmap header")
	}

	entries := make([]MipmapEntry, images*levels)
	for i := range entries {
		e := &entries[i]
		e.DecodeFrom(table[i*MipmapEntrySize:])

		if level := i % levels; int(e.Index) != level {
			return nil, texture.Decodef("unexpected mipmap: entry %d of image %d has index %d", level, i/levels, e.Index)
		}
		if e.FTEXSNumber != 0 {
			return nil, texture.Decodef("unsupported ftex variant: mipmap %d stored in ftexs part %d", e.Index, e.FTEXSNumber)
		}
	}

	return entries, nil
}
