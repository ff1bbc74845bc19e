package convert

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/goopsie/ftexTools/pkg/dds"
	"github.com/goopsie/ftexTools/pkg/ftex"
	"github.com/goopsie/ftexTools/pkg/texture"
	"github.com/goopsie/ftexTools/pkg/wesys"
)

// rgbaFTEX builds a single-mipmap 2x2 A8R8G8B8 FTEX with a raw payload.
func rgbaFTEX(pixels []byte) []byte {
	h := &ftex.Header{
		Magic:       ftex.Magic,
		Version:     ftex.Version203,
		PixelFormat: uint16(texture.FormatA8R8G8B8),
		Width:       2,
		Height:      2,
		Depth:       1,
		MipmapCount: 1,
		TextureType: ftex.TextureTypeSRGB,
	}
	out := make([]byte, ftex.HeaderSize+ftex.MipmapEntrySize+len(pixels))
	h.EncodeTo(out)
	e := &ftex.MipmapEntry{
		Offset:           ftex.HeaderSize + ftex.MipmapEntrySize,
		UncompressedSize: uint32(len(pixels)),
	}
	e.EncodeTo(out[ftex.HeaderSize:])
	copy(out[ftex.HeaderSize+ftex.MipmapEntrySize:], pixels)
	return out
}

func bc1Frame() *texture.Frame {
	f := &texture.Frame{Format: texture.FormatBC1, Width: 16, Height: 16, Depth: 1, MipmapCount: 4}
	for _, size := range []int{128, 32, 8, 8} {
		payload := make([]byte, size)
		for i := range payload {
			payload[i] = byte(size + i)
		}
		f.Payloads = append(f.Payloads, payload)
	}
	return f
}

func TestFTEXToDDS(t *testing.T) {
	pixels := []byte{
		0x10, 0x20, 0x30, 0xff, 0x40, 0x50, 0x60, 0xff,
		0x70, 0x80, 0x90, 0xff, 0xa0, 0xb0, 0xc0, 0xff,
	}

	out, err := FTEXToDDS(rgbaFTEX(pixels))
	if err != nil {
		t.Fatalf("convert: %v", err)
	}

	h := &dds.Header{}
	if err := h.UnmarshalBinary(out); err != nil {
		t.Fatalf("dds header: %v", err)
	}
	if h.PixelFormat.Flags&0x41 != 0x41 {
		t.Errorf("format flags: got 0x%x, want 0x41 set", h.PixelFormat.Flags)
	}
	if h.PixelFormat.RBitMask != 0x00FF0000 || h.PixelFormat.GBitMask != 0x0000FF00 ||
		h.PixelFormat.BBitMask != 0x000000FF || h.PixelFormat.ABitMask != 0xFF000000 {
		t.Errorf("masks: got %+v", h.PixelFormat)
	}
	if h.PitchOrLinearSize != 8 {
		t.Errorf("pitch: got %d, want 8", h.PitchOrLinearSize)
	}
	if !bytes.Equal(out[dds.HeaderSize:], pixels) {
		t.Errorf("payload: got %x", out[dds.HeaderSize:])
	}
}

func TestDDSToFTEX(t *testing.T) {
	original := bc1Frame()
	ddsData, err := dds.Encode(original)
	if err != nil {
		t.Fatalf("encode dds: %v", err)
	}

	out, err := DDSToFTEX(ddsData, ftex.ColorSpaceLinear)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}

	h, err := ftex.ReadHeader(out)
	if err != nil {
		t.Fatalf("ftex header: %v", err)
	}
	if h.TextureType != ftex.TextureTypeLinear {
		t.Errorf("texture type: got 0x%x, want 0x1", h.TextureType)
	}
	if h.Version != ftex.Version203 {
		t.Errorf("version: got %v, want %v", h.Version, ftex.Version203)
	}

	frame, err := ftex.Decode(out)
	if err != nil {
		t.Fatalf("decode ftex: %v", err)
	}
	for i := range original.Payloads {
		if !bytes.Equal(frame.Payloads[i], original.Payloads[i]) {
			t.Errorf("payload %d differs", i)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	original := bc1Frame()
	ddsData, err := dds.Encode(original)
	if err != nil {
		t.Fatalf("encode dds: %v", err)
	}

	ftexData, err := DDSToFTEX(ddsData, ftex.ColorSpaceDefault)
	if err != nil {
		t.Fatalf("dds to ftex: %v", err)
	}
	back, err := FTEXToDDS(ftexData)
	if err != nil {
		t.Fatalf("ftex to dds: %v", err)
	}

	if !bytes.Equal(back, ddsData) {
		t.Error("dds -> ftex -> dds is not byte-exact")
	}
}

func TestWrappedInput(t *testing.T) {
	ddsData, err := dds.Encode(bc1Frame())
	if err != nil {
		t.Fatalf("encode dds: %v", err)
	}
	wrapped, err := wesys.Compress(ddsData)
	if err != nil {
		t.Fatalf("compress: %v", err)
	}

	if !IsWrapped(wrapped) {
		t.Fatal("expected wrapped buffer")
	}
	if IsWrapped(ddsData) {
		t.Error("plain dds reported as wrapped")
	}

	plain, err := DecompressIfWrapped(wrapped)
	if err != nil {
		t.Fatalf("decompress: %v", err)
	}
	if !bytes.Equal(plain, ddsData) {
		t.Error("decompressed buffer differs")
	}

	same, err := DecompressIfWrapped(ddsData)
	if err != nil {
		t.Fatalf("passthrough: %v", err)
	}
	if !bytes.Equal(same, ddsData) {
		t.Error("passthrough changed the buffer")
	}

	if _, err := DDSToFTEX(wrapped, ftex.ColorSpaceNormal); err != nil {
		t.Errorf("wrapped dds: %v", err)
	}
}

func TestErrors(t *testing.T) {
	t.Run("BadSignature", func(t *testing.T) {
		data := rgbaFTEX(make([]byte, 16))
		data[0] = 'G'
		if _, err := FTEXToDDS(data); !texture.IsDecodeError(err) {
			t.Errorf("expected DecodeError, got %v", err)
		}
	})

	t.Run("UnknownFormat", func(t *testing.T) {
		data := rgbaFTEX(make([]byte, 16))
		binary.LittleEndian.PutUint16(data[8:], 6)
		if _, err := FTEXToDDS(data); !texture.IsUnsupportedFormat(err) {
			t.Errorf("expected UnsupportedFormatError, got %v", err)
		}
	})

	t.Run("NotDDS", func(t *testing.T) {
		if _, err := DDSToFTEX(rgbaFTEX(make([]byte, 16)), ftex.ColorSpaceDefault); !texture.IsDecodeError(err) {
			t.Errorf("expected DecodeError, got %v", err)
		}
	})
}

func TestConvertVersion(t *testing.T) {
	out, err := ConvertVersion(rgbaFTEX(make([]byte, 16)), ftex.Version204)
	if err != nil {
		t.Fatalf("convert version: %v", err)
	}
	h, err := ftex.ReadHeader(out)
	if err != nil {
		t.Fatalf("read header: %v", err)
	}
	if h.Version != ftex.Version204 {
		t.Errorf("version: got %v, want %v", h.Version, ftex.Version204)
	}
}
