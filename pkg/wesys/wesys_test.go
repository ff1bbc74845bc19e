package wesys

import (
	"bytes"
	"testing"

	"github.com/klauspost/compress/zlib"

	"github.com/goopsie/ftexTools/pkg/texture"
)

func TestHeader(t *testing.T) {
	t.Run("MarshalUnmarshal", func(t *testing.T) {
		original := NewHeader(512, 1024)

		data, err := original.MarshalBinary()
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if !bytes.Equal(data[0:8], []byte{0x00, 0x10, 0x01, 'W', 'E', 'S', 'Y', 'S'}) {
			t.Errorf("prefix: got %x", data[0:8])
		}

		decoded := &Header{}
		if err := decoded.UnmarshalBinary(data); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if *decoded != *original {
			t.Errorf("mismatch: got %+v, want %+v", decoded, original)
		}
	})

	t.Run("InvalidMagic", func(t *testing.T) {
		h := &Header{CompressedSize: 1, UncompressedSize: 1}
		if err := h.Validate(); err == nil {
			t.Error("expected error for invalid magic")
		}
	})

	t.Run("TooShort", func(t *testing.T) {
		if err := (&Header{}).UnmarshalBinary(make([]byte, 8)); err == nil {
			t.Error("expected error for short header")
		}
	})
}

func TestWrapUnwrap(t *testing.T) {
	original := bytes.Repeat([]byte("texture payload "), 64)

	compressed, err := Deflate(original, zlib.BestCompression)
	if err != nil {
		t.Fatalf("deflate: %v", err)
	}

	wrapped := Wrap(compressed, original)
	if len(wrapped) != HeaderSize+len(compressed) {
		t.Errorf("wrapped length: got %d, want %d", len(wrapped), HeaderSize+len(compressed))
	}

	payload, ok := Unwrap(wrapped)
	if !ok {
		t.Fatal("expected wrapped buffer to unwrap")
	}
	inflated, err := Inflate(payload)
	if err != nil {
		t.Fatalf("inflate: %v", err)
	}
	if !bytes.Equal(inflated, original) {
		t.Error("round trip mismatch")
	}

	var h Header
	if err := h.UnmarshalBinary(wrapped); err != nil {
		t.Fatalf("header: %v", err)
	}
	if int(h.UncompressedSize) != len(original) || int(h.CompressedSize) != len(compressed) {
		t.Errorf("sizes: got %d/%d, want %d/%d", h.CompressedSize, h.UncompressedSize, len(compressed), len(original))
	}
}

func TestTryDecompress(t *testing.T) {
	t.Run("Passthrough", func(t *testing.T) {
		inputs := [][]byte{
			nil,
			[]byte("DDS "),
			append([]byte("FTEX"), make([]byte, 60)...),
			[]byte("0123WESY89abcdef0123"),
		}
		for _, in := range inputs {
			out, err := TryDecompress(in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !bytes.Equal(out, in) {
				t.Errorf("input %q changed", in)
			}
			if IsCompressed(in) {
				t.Errorf("input %q reported as compressed", in)
			}
		}
	})

	t.Run("Wrapped", func(t *testing.T) {
		original := bytes.Repeat([]byte{0xAB, 0xCD}, 4096)
		wrapped, err := Compress(original)
		if err != nil {
			t.Fatalf("compress: %v", err)
		}
		if !IsCompressed(wrapped) {
			t.Fatal("expected compressed buffer")
		}
		out, err := TryDecompress(wrapped)
		if err != nil {
			t.Fatalf("decompress: %v", err)
		}
		if !bytes.Equal(out, original) {
			t.Error("round trip mismatch")
		}
	})

	t.Run("Corrupt", func(t *testing.T) {
		wrapped := Wrap([]byte{0xde, 0xad, 0xbe, 0xef}, make([]byte, 16))
		if _, err := TryDecompress(wrapped); !texture.IsDecodeError(err) {
			t.Errorf("expected DecodeError, got %v", err)
		}
	})
}

func TestDecompress(t *testing.T) {
	if _, err := Decompress([]byte("not wrapped at all")); !texture.IsDecodeError(err) {
		t.Errorf("expected DecodeError, got %v", err)
	}
}

func TestTryCompress(t *testing.T) {
	t.Run("Compressible", func(t *testing.T) {
		data := make([]byte, 4096)
		out, err := TryCompress(data)
		if err != nil {
			t.Fatalf("compress: %v", err)
		}
		if !IsCompressed(out) {
			t.Error("expected zeros to be wrapped")
		}
	})

	t.Run("Tiny", func(t *testing.T) {
		data := []byte{1, 2, 3}
		out, err := TryCompress(data)
		if err != nil {
			t.Fatalf("compress: %v", err)
		}
		if !bytes.Equal(out, data) {
			t.Error("expected tiny input to pass through")
		}
	})
}
