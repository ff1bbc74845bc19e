package ftex

import (
	"encoding/binary"

	"github.com/goopsie/ftexTools/pkg/texture"
	"github.com/goopsie/ftexTools/pkg/wesys"
)

const (
	// MipmapEntrySize is the size of one mipmap directory entry.
	MipmapEntrySize = 16
	// ChunkEntrySize is the size of one chunk table entry.
	ChunkEntrySize = 8

	chunkOffsetFlag = 1 << 31
)

// MipmapEntry describes where one mipmap of one image is stored.
type MipmapEntry struct {
	Offset           uint32 // absolute file offset of the payload
	UncompressedSize uint32
	CompressedSize   uint32 // 0 for a raw contiguous payload
	Index            uint8  // mipmap level, must match the entry position
	FTEXSNumber      uint8  // external part holding the data, 0 = this file
	ChunkCount       uint16 // 0 = contiguous payload
}

// EncodeTo writes the entry to buf, which must be at least MipmapEntrySize bytes.
func (e *MipmapEntry) EncodeTo(buf []byte) {
	binary.LittleEndian.PutUint32(buf[0:4], e.Offset)
	binary.LittleEndian.PutUint32(buf[4:8], e.UncompressedSize)
	binary.LittleEndian.PutUint32(buf[8:12], e.CompressedSize)
	buf[12] = e.Index
	buf[13] = e.FTEXSNumber
	binary.LittleEndian.PutUint16(buf[14:16], e.ChunkCount)
}

// DecodeFrom reads the entry from buf.
func (e *MipmapEntry) DecodeFrom(buf []byte) {
	e.Offset = binary.LittleEndian.Uint32(buf[0:4])
	e.UncompressedSize = binary.LittleEndian.Uint32(buf[4:8])
	e.CompressedSize = binary.LittleEndian.Uint32(buf[8:12])
	e.Index = buf[12]
	e.FTEXSNumber = buf[13]
	e.ChunkCount = binary.LittleEndian.Uint16(buf[14:16])
}

// ChunkEntry describes one independently compressed piece of a mipmap.
type ChunkEntry struct {
	CompressedSize   uint16
	UncompressedSize uint16
	Offset           uint32 // relative to the mipmap offset; bit 31 is a flag
}

// EncodeTo writes the entry to buf, which must be at least ChunkEntrySize bytes.
func (c *ChunkEntry) EncodeTo(buf []byte) {
	binary.LittleEndian.PutUint16(buf[0:2], c.CompressedSize)
	binary.LittleEndian.PutUint16(buf[2:4], c.UncompressedSize)
	binary.LittleEndian.PutUint32(buf[4:8], c.Offset)
}

// DecodeFrom reads the entry from buf.
func (c *ChunkEntry) DecodeFrom(buf []byte) {
	c.CompressedSize = binary.LittleEndian.Uint16(buf[0:2])
	c.UncompressedSize = binary.LittleEndian.Uint16(buf[2:4])
	c.Offset = binary.LittleEndian.Uint32(buf[4:8])
}

// RelativeOffset returns the chunk offset with the flag bit cleared.
func (c *ChunkEntry) RelativeOffset() int {
	return int(c.Offset &^ chunkOffsetFlag)
}

// Compressed reports whether the chunk holds a zlib stream. Chunks whose
// sizes match are stored raw.
func (c *ChunkEntry) Compressed() bool {
	return c.CompressedSize != c.UncompressedSize
}

// payloadSource is how a single mipmap's bytes are stored: one contiguous
// block, or a table of chunks. It is resolved once per directory entry.
type payloadSource interface {
	read(data []byte) ([]byte, error)
}

type contiguousSource struct {
	offset           int
	uncompressedSize int
	compressedSize   int
}

type chunkedSource struct {
	base   int
	chunks []ChunkEntry
}

// source resolves how the entry's payload is laid out in data.
func (e *MipmapEntry) source(data []byte) (payloadSource, error) {
	base := int(e.Offset)
	if e.ChunkCount == 0 {
		return contiguousSource{
			offset:           base,
			uncompressedSize: int(e.UncompressedSize),
			compressedSize:   int(e.CompressedSize),
		}, nil
	}

	table, err := section(data, base, int(e.ChunkCount)*ChunkEntrySize)
	if err != nil {
		return nil, texture.Decodef("incomplete chunk header")
	}

	chunks := make([]ChunkEntry, e.ChunkCount)
	for i := range chunks {
		chunks[i].DecodeFrom(table[i*ChunkEntrySize:])
	}
	return chunkedSource{base: base, chunks: chunks}, nil
}

func (s contiguousSource) read(data []byte) ([]byte, error) {
	if s.compressedSize != 0 && s.compressedSize < s.uncompressedSize {
		compressed, err := section(data, s.offset, s.compressedSize)
		if err != nil {
			return nil, err
		}
		return wesys.Inflate(compressed)
	}

	raw, err := section(data, s.offset, s.uncompressedSize)
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), raw...), nil
}

func (s chunkedSource) read(data []byte) ([]byte, error) {
	var out []byte
	for i := range s.chunks {
		c := &s.chunks[i]
		piece, err := section(data, s.base+c.RelativeOffset(), int(c.CompressedSize))
		if err != nil {
			return nil, err
		}
		if c.Compressed() {
			if piece, err = wesys.Inflate(piece); err != nil {
				return nil, err
			}
		}
		out = append(out, piece...)
	}
	return out, nil
}

// section returns data[offset:offset+n] or a DecodeError if it runs past the end.
func section(data []byte, offset, n int) ([]byte, error) {
	if offset < 0 || n < 0 || offset > len(data) || len(data)-offset < n {
		return nil, texture.Decodef("unexpected end of stream at 0x%x (+%d)", offset, n)
	}
	return data[offset : offset+n], nil
}
