package ftex

import (
	"testing"

	"github.com/klauspost/compress/zlib"

	"github.com/goopsie/ftexTools/pkg/texture"
)

func benchFrame(b *testing.B, size int) *texture.Frame {
	b.Helper()
	f := &texture.Frame{Format: texture.FormatBC3, Width: size, Height: size, Depth: 1, MipmapCount: 1}
	for size > 1 {
		size /= 2
		f.MipmapCount++
	}
	for level := 0; level < f.MipmapCount; level++ {
		size, err := f.ExpectedSize(level)
		if err != nil {
			b.Fatal(err)
		}
		payload := make([]byte, size)
		for i := range payload {
			payload[i] = byte((i / 16) % 32)
		}
		f.Payloads = append(f.Payloads, payload)
	}
	if err := f.Validate(); err != nil {
		b.Fatal(err)
	}
	return f
}

func payloadBytes(f *texture.Frame) int64 {
	var n int64
	for _, p := range f.Payloads {
		n += int64(len(p))
	}
	return n
}

func BenchmarkEncode(b *testing.B) {
	frame := benchFrame(b, 512)

	for _, level := range []struct {
		name  string
		value int
	}{
		{"BestSpeed", zlib.BestSpeed},
		{"BestCompression", zlib.BestCompression},
	} {
		b.Run(level.name, func(b *testing.B) {
			enc := NewEncoder(WithCompressionLevel(level.value))
			b.SetBytes(payloadBytes(frame))
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := enc.Encode(frame); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkDecode(b *testing.B) {
	frame := benchFrame(b, 512)
	data, err := Encode(frame)
	if err != nil {
		b.Fatal(err)
	}

	b.SetBytes(payloadBytes(frame))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Decode(data); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkHeader(b *testing.B) {
	h := baseHeader(texture.FormatBC1, 1024, 1024, 11)
	buf := make([]byte, HeaderSize)

	b.Run("EncodeTo", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			h.EncodeTo(buf)
		}
	})

	b.Run("UnmarshalBinary", func(b *testing.B) {
		h.EncodeTo(buf)
		var got Header
		for i := 0; i < b.N; i++ {
			if err := got.UnmarshalBinary(buf); err != nil {
				b.Fatal(err)
			}
		}
	})
}
