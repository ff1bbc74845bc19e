// Package texture holds the container-agnostic pieces shared by the FTEX and
// DDS codecs: the pixel format table, mipmap layout math, the canonical frame
// set that bridges the two containers, and the error kinds they report.
//
// Pixel formats are identified by their FTEX numeric ID. Each ID maps to the
// DDS encoding used to represent it:
//
//	 0 -- A8R8G8B8 (RGB bit masks, no fourCC)
//	 1 -- DXGI_FORMAT_R8_UNORM
//	 2 -- BC1 ["DXT1"]
//	 3 -- BC2 ["DXT3"]
//	 4 -- BC3 ["DXT5"]
//	 8 -- DXGI_FORMAT_BC4_UNORM
//	 9 -- DXGI_FORMAT_BC5_UNORM
//	10 -- DXGI_FORMAT_BC6H_UF16
//	11 -- DXGI_FORMAT_BC7_UNORM
//	12 -- DXGI_FORMAT_R16G16B16A16_FLOAT
//	13 -- DXGI_FORMAT_R32G32B32A32_FLOAT
//	14 -- DXGI_FORMAT_R10G10B10A2_UNORM
//	15 -- DXGI_FORMAT_R11G11B10_FLOAT
//
// PES18 era files only use 0-4; PES19 adds 8-15.
package texture

import (
	"fmt"
	"strings"
)

// Format is an FTEX pixel format ID.
type Format uint16

const (
	FormatA8R8G8B8          Format = 0
	FormatR8                Format = 1
	FormatBC1               Format = 2
	FormatBC2               Format = 3
	FormatBC3               Format = 4
	FormatBC4               Format = 8
	FormatBC5               Format = 9
	FormatBC6H              Format = 10
	FormatBC7               Format = 11
	FormatR16G16B16A16Float Format = 12
	FormatR32G32B32A32Float Format = 13
	FormatR10G10B10A2       Format = 14
	FormatR11G11B10Float    Format = 15
)

// DXGI_FORMAT values used by the DX10 extension header.
const (
	DXGI_FORMAT_UNKNOWN               = 0
	DXGI_FORMAT_R32G32B32A32_TYPELESS = 1
	DXGI_FORMAT_R32G32B32A32_FLOAT    = 2
	DXGI_FORMAT_R16G16B16A16_FLOAT    = 10
	DXGI_FORMAT_R10G10B10A2_UNORM     = 24
	DXGI_FORMAT_R11G11B10_FLOAT       = 26
	DXGI_FORMAT_R8_UNORM              = 61
	DXGI_FORMAT_BC1_UNORM             = 71
	DXGI_FORMAT_BC2_UNORM             = 74
	DXGI_FORMAT_BC3_UNORM             = 77
	DXGI_FORMAT_BC4_UNORM             = 80
	DXGI_FORMAT_BC5_UNORM             = 83
	DXGI_FORMAT_BC6H_UF16             = 95
	DXGI_FORMAT_BC7_UNORM             = 98
)

// FourCC is a DDS four-character code.
type FourCC [4]byte

var (
	FourCCNone = FourCC{}
	FourCCDXT1 = FourCC{'D', 'X', 'T', '1'}
	FourCCDXT3 = FourCC{'D', 'X', 'T', '3'}
	FourCCDXT5 = FourCC{'D', 'X', 'T', '5'}
	FourCCDX10 = FourCC{'D', 'X', '1', '0'}
	FourCC8888 = FourCC{'8', '8', '8', '8'}
)

func (c FourCC) String() string {
	if c == FourCCNone {
		return "none"
	}
	return string(c[:])
}

// FormatInfo describes how a pixel format is laid out and how DDS names it.
type FormatInfo struct {
	Format     Format
	Name       string
	BlockEdge  int    // pixels per block side; 1 for non-block formats
	BlockBytes int    // bytes per encoded block
	FourCC     FourCC // legacy DDS code, FourCCNone if the DX10 path is needed
	DXGIFormat uint32 // DX10 code, 0 if the format has none
}

// Compressed reports whether the format is block compressed.
func (i FormatInfo) Compressed() bool {
	return i.BlockEdge > 1
}

var formatTable = []FormatInfo{
	{FormatA8R8G8B8, "A8R8G8B8", 1, 4, FourCCNone, DXGI_FORMAT_UNKNOWN},
	{FormatR8, "R8_UNORM", 1, 1, FourCCNone, DXGI_FORMAT_R8_UNORM},
	{FormatBC1, "BC1_UNORM", 4, 8, FourCCDXT1, DXGI_FORMAT_BC1_UNORM},
	{FormatBC2, "BC2_UNORM", 4, 16, FourCCDXT3, DXGI_FORMAT_BC2_UNORM},
	{FormatBC3, "BC3_UNORM", 4, 16, FourCCDXT5, DXGI_FORMAT_BC3_UNORM},
	{FormatBC4, "BC4_UNORM", 4, 8, FourCCNone, DXGI_FORMAT_BC4_UNORM},
	{FormatBC5, "BC5_UNORM", 4, 16, FourCCNone, DXGI_FORMAT_BC5_UNORM},
	{FormatBC6H, "BC6H_UF16", 4, 16, FourCCNone, DXGI_FORMAT_BC6H_UF16},
	{FormatBC7, "BC7_UNORM", 4, 16, FourCCNone, DXGI_FORMAT_BC7_UNORM},
	{FormatR16G16B16A16Float, "R16G16B16A16_FLOAT", 1, 8, FourCCNone, DXGI_FORMAT_R16G16B16A16_FLOAT},
	{FormatR32G32B32A32Float, "R32G32B32A32_FLOAT", 1, 16, FourCCNone, DXGI_FORMAT_R32G32B32A32_FLOAT},
	{FormatR10G10B10A2, "R10G10B10A2_UNORM", 1, 4, FourCCNone, DXGI_FORMAT_R10G10B10A2_UNORM},
	{FormatR11G11B10Float, "R11G11B10_FLOAT", 1, 4, FourCCNone, DXGI_FORMAT_R11G11B10_FLOAT},
}

var (
	byFormat = map[Format]FormatInfo{}
	byFourCC = map[FourCC]Format{}
	byDXGI   = map[uint32]Format{}
)

func init() {
	for _, info := range formatTable {
		byFormat[info.Format] = info
		if info.FourCC != FourCCNone {
			byFourCC[info.FourCC] = info.Format
		}
		if info.DXGIFormat != DXGI_FORMAT_UNKNOWN {
			byDXGI[info.DXGIFormat] = info.Format
		}
	}

	// Codes accepted on read that no format writes.
	byFourCC[FourCC8888] = FormatA8R8G8B8
	byDXGI[DXGI_FORMAT_R32G32B32A32_TYPELESS] = FormatR32G32B32A32Float
}

// Lookup returns the table entry for f.
func Lookup(f Format) (FormatInfo, error) {
	info, ok := byFormat[f]
	if !ok {
		return FormatInfo{}, &UnsupportedFormatError{Kind: "ftex format", Value: fmt.Sprintf("%d", f)}
	}
	return info, nil
}

// FromFourCC resolves a legacy DDS four-character code.
func FromFourCC(c FourCC) (Format, error) {
	f, ok := byFourCC[c]
	if !ok {
		return 0, &UnsupportedFormatError{Kind: "dds fourCC", Value: fmt.Sprintf("%q", c[:])}
	}
	return f, nil
}

// FromDXGI resolves a DX10 extension format code.
func FromDXGI(code uint32) (Format, error) {
	f, ok := byDXGI[code]
	if !ok {
		return 0, &UnsupportedFormatError{Kind: "dxgi format", Value: fmt.Sprintf("%d", code)}
	}
	return f, nil
}

// Formats returns every supported format in table order.
func Formats() []Format {
	out := make([]Format, len(formatTable))
	for i, info := range formatTable {
		out[i] = info.Format
	}
	return out
}

func (f Format) String() string {
	if info, ok := byFormat[f]; ok {
		return info.Name
	}
	return fmt.Sprintf("UNKNOWN(%d)", uint16(f))
}

// RequiresExtendedVersion reports whether the format only exists in the
// post-PES18 range and therefore needs the newer FTEX version.
func (f Format) RequiresExtendedVersion() bool {
	return f > FormatBC3
}

// ParseFormat maps a user-facing format name to a format.
// Accepts the legacy DXT names, BCn names and ARGB.
func ParseFormat(name string) (Format, error) {
	switch strings.ToUpper(name) {
	case "ARGB", "A8R8G8B8", "8888":
		return FormatA8R8G8B8, nil
	case "R8":
		return FormatR8, nil
	case "DXT1", "BC1":
		return FormatBC1, nil
	case "DXT3", "BC2":
		return FormatBC2, nil
	case "DXT5", "BC3":
		return FormatBC3, nil
	case "BC4":
		return FormatBC4, nil
	case "BC5":
		return FormatBC5, nil
	case "BC6", "BC6H":
		return FormatBC6H, nil
	case "BC7":
		return FormatBC7, nil
	}
	return 0, &UnsupportedFormatError{Kind: "format name", Value: name}
}
