package texture

// CubeFaces is the number of images stored for a cube map.
const CubeFaces = 6

// Frame is the canonical decoded form of a texture: the pixel format, the
// base dimensions and every encoded mipmap payload. Payloads are ordered
// face-major, mipmap-minor: face 0 levels 0..n-1, then face 1, and so on.
type Frame struct {
	Format      Format
	Width       int
	Height      int
	Depth       int
	MipmapCount int
	CubeMap     bool
	Payloads    [][]byte
}

// Faces returns the number of images in the frame set.
func (f *Frame) Faces() int {
	if f.CubeMap {
		return CubeFaces
	}
	return 1
}

// Payload returns the encoded bytes for one face and mipmap level.
func (f *Frame) Payload(face, level int) []byte {
	return f.Payloads[face*f.MipmapCount+level]
}

// ExpectedSize returns the encoded size of level for this frame.
func (f *Frame) ExpectedSize(level int) (int, error) {
	return MipmapSize(f.Format, f.Width, f.Height, f.Depth, level)
}

// Validate checks the frame set invariants: a known format, a usable shape,
// one payload per face and level, and payload lengths matching the layout.
// Violations are reported as a DecodeError.
func (f *Frame) Validate() error {
	info, err := Lookup(f.Format)
	if err != nil {
		return err
	}
	if f.Width < 1 || f.Height < 1 || f.Depth < 1 {
		return Decodef("invalid dimensions %dx%dx%d", f.Width, f.Height, f.Depth)
	}
	if f.MipmapCount < 1 {
		return Decodef("mipmap count is zero")
	}
	if f.CubeMap && f.Depth > 1 {
		return Decodef("cube map with depth %d", f.Depth)
	}
	if want := f.Faces() * f.MipmapCount; len(f.Payloads) != want {
		return Decodef("payload count: expected %d, got %d", want, len(f.Payloads))
	}

	for i, payload := range f.Payloads {
		level := i % f.MipmapCount
		want, err := info.MipmapSize(f.Width, f.Height, f.Depth, level)
		if err != nil {
			return err
		}
		if len(payload) != want {
			return Decodef("payload %d (level %d): expected %d bytes, got %d", i, level, want, len(payload))
		}
	}

	return nil
}

// FitPayload zero-pads or truncates data to exactly size bytes.
func FitPayload(data []byte, size int) []byte {
	if len(data) == size {
		return data
	}
	if len(data) > size {
		return data[:size]
	}
	out := make([]byte, size)
	copy(out, data)
	return out
}
