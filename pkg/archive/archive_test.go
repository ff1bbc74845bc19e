package archive

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestHeader(t *testing.T) {
	t.Run("MarshalUnmarshal", func(t *testing.T) {
		original := NewHeader(1024, 512)

		data, err := original.MarshalBinary()
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if len(data) != HeaderSize {
			t.Fatalf("size: got %d, want %d", len(data), HeaderSize)
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
		h := NewHeader(1024, 512)
		h.Magic = [4]byte{'F', 'T', 'E', 'X'}
		if err := h.Validate(); err == nil {
			t.Error("expected error for invalid magic")
		}
	})

	t.Run("NoFrame", func(t *testing.T) {
		if err := NewHeader(1024, 0).Validate(); err == nil {
			t.Error("expected error for zero compressed length")
		}
	})

	t.Run("EmptyOriginal", func(t *testing.T) {
		if err := NewHeader(0, 9).Validate(); err != nil {
			t.Errorf("empty original rejected: %v", err)
		}
	})

	t.Run("TooShort", func(t *testing.T) {
		if err := (&Header{}).UnmarshalBinary(make([]byte, HeaderSize-1)); err == nil {
			t.Error("expected error for short header")
		}
	})
}

func TestReadWrite(t *testing.T) {
	original := bytes.Repeat([]byte("FTEX backup payload "), 500)

	t.Run("RoundTrip", func(t *testing.T) {
		ws := &seekableBuffer{}
		if err := Encode(ws, original); err != nil {
			t.Fatalf("encode: %v", err)
		}

		h := &Header{}
		if err := h.UnmarshalBinary(ws.data); err != nil {
			t.Fatalf("header: %v", err)
		}
		if h.Length != uint64(len(original)) {
			t.Errorf("length: got %d, want %d", h.Length, len(original))
		}
		if got := uint64(len(ws.data) - HeaderSize); h.CompressedLength != got {
			t.Errorf("compressed length: got %d, want %d", h.CompressedLength, got)
		}
		if h.Ratio() >= 1 {
			t.Errorf("repetitive data did not shrink: ratio %.2f", h.Ratio())
		}

		decoded, err := ReadAll(bytes.NewReader(ws.data))
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if !bytes.Equal(decoded, original) {
			t.Error("data mismatch")
		}
	})

	t.Run("Empty", func(t *testing.T) {
		ws := &seekableBuffer{}
		if err := Encode(ws, nil); err != nil {
			t.Fatalf("encode: %v", err)
		}
		decoded, err := ReadAll(bytes.NewReader(ws.data))
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(decoded) != 0 {
			t.Errorf("got %d bytes, want 0", len(decoded))
		}
	})

	t.Run("ShortWrite", func(t *testing.T) {
		w, err := NewWriter(&seekableBuffer{}, 10)
		if err != nil {
			t.Fatalf("new writer: %v", err)
		}
		if _, err := w.Write([]byte("abc")); err != nil {
			t.Fatalf("write: %v", err)
		}
		if err := w.Close(); err == nil {
			t.Error("expected error for length mismatch")
		}
	})

	t.Run("Truncated", func(t *testing.T) {
		ws := &seekableBuffer{}
		if err := Encode(ws, original); err != nil {
			t.Fatalf("encode: %v", err)
		}
		if _, err := ReadAll(bytes.NewReader(ws.data[:len(ws.data)/2])); err == nil {
			t.Error("expected error for truncated backup")
		}
	})
}

func TestBackup(t *testing.T) {
	content := bytes.Repeat([]byte{0x46, 0x54, 0x45, 0x58}, 256)

	write := func(t *testing.T) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), "face_srm.ftex")
		if err := os.WriteFile(path, content, 0o644); err != nil {
			t.Fatalf("write original: %v", err)
		}
		return path
	}

	t.Run("Rename", func(t *testing.T) {
		path := write(t)
		dst, err := Backup(path, ModeRename)
		if err != nil {
			t.Fatalf("backup: %v", err)
		}
		if filepath.Base(dst) != "face_srm_old.ftex" {
			t.Errorf("backup name: got %s", filepath.Base(dst))
		}
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Error("original still present after rename")
		}
		restored, err := Restore(dst)
		if err != nil {
			t.Fatalf("restore: %v", err)
		}
		if !bytes.Equal(restored, content) {
			t.Error("restored content differs")
		}
	})

	t.Run("Compress", func(t *testing.T) {
		path := write(t)
		dst, err := Backup(path, ModeCompress)
		if err != nil {
			t.Fatalf("backup: %v", err)
		}
		if filepath.Base(dst) != "face_srm_old.ftex.zst" {
			t.Errorf("backup name: got %s", filepath.Base(dst))
		}
		if _, err := os.Stat(path); err != nil {
			t.Errorf("original missing after compressed backup: %v", err)
		}
		restored, err := Restore(dst)
		if err != nil {
			t.Fatalf("restore: %v", err)
		}
		if !bytes.Equal(restored, content) {
			t.Error("restored content differs")
		}
	})

	t.Run("None", func(t *testing.T) {
		path := write(t)
		dst, err := Backup(path, ModeNone)
		if err != nil || dst != "" {
			t.Errorf("got (%q, %v), want empty", dst, err)
		}
	})

	t.Run("Missing", func(t *testing.T) {
		if _, err := Backup(filepath.Join(t.TempDir(), "missing.ftex"), ModeCompress); err == nil {
			t.Error("expected error for missing original")
		}
	})
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in   string
		want Mode
	}{
		{"", ModeNone},
		{"none", ModeNone},
		{"rename", ModeRename},
		{"ZSTD", ModeCompress},
		{"compress", ModeCompress},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if err != nil {
			t.Errorf("ParseMode(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseMode(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if _, err := ParseMode("gzip"); err == nil {
		t.Error("expected error for unknown mode")
	}
}

// seekableBuffer is an in-memory io.WriteSeeker.
type seekableBuffer struct {
	data []byte
	pos  int64
}

func (s *seekableBuffer) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case 0:
		s.pos = offset
	case 1:
		s.pos += offset
	case 2:
		s.pos = int64(len(s.data)) + offset
	}
	return s.pos, nil
}

func (s *seekableBuffer) Write(p []byte) (int, error) {
	end := s.pos + int64(len(p))
	if end > int64(len(s.data)) {
		s.data = append(s.data, make([]byte, end-int64(len(s.data)))...)
	}
	copy(s.data[s.pos:], p)
	s.pos = end
	return len(p), nil
}
