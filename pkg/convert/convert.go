// Package convert is the entry point used by tools: whole-buffer conversions
// between FTEX and DDS, plus WESYS wrapper detection.
//
// Every function is a pure transformation of its input and is safe to call
// from many goroutines at once.
package convert

import (
	"github.com/pkg/errors"

	"github.com/goopsie/ftexTools/pkg/dds"
	"github.com/goopsie/ftexTools/pkg/ftex"
	"github.com/goopsie/ftexTools/pkg/wesys"
)

// FTEXToDDS converts an FTEX buffer, optionally WESYS wrapped, to DDS.
func FTEXToDDS(data []byte) ([]byte, error) {
	data, err := wesys.TryDecompress(data)
	if err != nil {
		return nil, errors.Wrap(err, "unwrap ftex")
	}

	frame, err := ftex.Decode(data)
	if err != nil {
		return nil, errors.Wrap(err, "read ftex")
	}

	out, err := dds.Encode(frame)
	if err != nil {
		return nil, errors.Wrap(err, "write dds")
	}
	return out, nil
}

// DDSToFTEX converts a DDS buffer, optionally WESYS wrapped, to FTEX. The
// color space selects the texture type bits of the result.
func DDSToFTEX(data []byte, cs ftex.ColorSpace) ([]byte, error) {
	data, err := wesys.TryDecompress(data)
	if err != nil {
		return nil, errors.Wrap(err, "unwrap dds")
	}

	frame, err := dds.Decode(data)
	if err != nil {
		return nil, errors.Wrap(err, "read dds")
	}

	out, err := ftex.Encode(frame, ftex.WithColorSpace(cs))
	if err != nil {
		return nil, errors.Wrap(err, "write ftex")
	}
	return out, nil
}

// ConvertVersion rewrites the version of an FTEX buffer without touching
// its payload.
func ConvertVersion(data []byte, version float32) ([]byte, error) {
	data, err := wesys.TryDecompress(data)
	if err != nil {
		return nil, errors.Wrap(err, "unwrap ftex")
	}
	return ftex.SetVersion(data, version)
}

// IsWrapped reports whether data starts with a WESYS compression header.
func IsWrapped(data []byte) bool {
	return wesys.IsCompressed(data)
}

// DecompressIfWrapped inflates WESYS-wrapped data and returns anything
// else unchanged.
func DecompressIfWrapped(data []byte) ([]byte, error) {
	return wesys.TryDecompress(data)
}
