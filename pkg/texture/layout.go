package texture

import (
	"math"
	"math/bits"
)

// MaxMipmapSize is the largest single mipmap payload, bounded by the 32-bit
// size fields of both containers.
const MaxMipmapSize = math.MaxUint32

const sizeLimit = min(MaxMipmapSize, math.MaxInt)

// MipmapDimensions returns the size of mipmap level in pixels. Each axis is
// halved per level and never drops below 1.
func MipmapDimensions(width, height, depth, level int) (int, int, int) {
	return max(width>>level, 1), max(height>>level, 1), max(depth>>level, 1)
}

// MipmapSize returns the encoded byte size of mipmap level.
func MipmapSize(f Format, width, height, depth, level int) (int, error) {
	info, err := Lookup(f)
	if err != nil {
		return 0, err
	}
	return info.MipmapSize(width, height, depth, level)
}

// MipmapSize returns the encoded byte size of mipmap level for this format.
// Sizes above MaxMipmapSize are a DecodeError.
func (i FormatInfo) MipmapSize(width, height, depth, level int) (int, error) {
	w, h, d := MipmapDimensions(width, height, depth, level)

	blocksWide := (uint64(w) + uint64(i.BlockEdge) - 1) / uint64(i.BlockEdge)
	blocksHigh := (uint64(h) + uint64(i.BlockEdge) - 1) / uint64(i.BlockEdge)

	size := blocksWide
	for _, n := range [...]uint64{blocksHigh, uint64(d), uint64(i.BlockBytes)} {
		hi, lo := bits.Mul64(size, n)
		if hi != 0 || lo > sizeLimit {
			return 0, Decodef("mipmap %d of %dx%dx%d %s exceeds %d bytes",
				level, width, height, depth, i.Format, uint64(sizeLimit))
		}
		size = lo
	}
	return int(size), nil
}
