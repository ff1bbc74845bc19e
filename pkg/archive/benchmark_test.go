package archive

import (
	"bytes"
	"testing"

	"github.com/DataDog/zstd"
)

// textureLike mimics a BC1 mip chain: short repeating blocks with drift.
func textureLike(n int) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = byte((i/8)%64) ^ byte(i%8)
	}
	return data
}

func BenchmarkBackupLevels(b *testing.B) {
	data := textureLike(512 * 1024)

	for _, level := range []struct {
		name  string
		value int
	}{
		{"BestSpeed", zstd.BestSpeed},
		{"Default", zstd.DefaultCompression},
		{"BestCompression", zstd.BestCompression},
	} {
		b.Run(level.name, func(b *testing.B) {
			b.SetBytes(int64(len(data)))
			for i := 0; i < b.N; i++ {
				if err := Encode(&seekableBuffer{}, data, WithCompressionLevel(level.value)); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkRestore(b *testing.B) {
	data := textureLike(512 * 1024)
	ws := &seekableBuffer{}
	if err := Encode(ws, data); err != nil {
		b.Fatal(err)
	}

	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := ReadAll(bytes.NewReader(ws.data)); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkHeader(b *testing.B) {
	header := NewHeader(1024*1024, 512*1024)
	buf := make([]byte, HeaderSize)

	b.Run("EncodeTo", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			header.EncodeTo(buf)
		}
	})

	b.Run("UnmarshalBinary", func(b *testing.B) {
		header.EncodeTo(buf)
		h := &Header{}
		for i := 0; i < b.N; i++ {
			if err := h.UnmarshalBinary(buf); err != nil {
				b.Fatal(err)
			}
		}
	})
}
