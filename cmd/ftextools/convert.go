package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/goopsie/ftexTools/pkg/convert"
	"github.com/goopsie/ftexTools/pkg/ftex"
)

// outputPath returns output if set, otherwise input with its extension
// replaced.
func outputPath(input, output, ext string) string {
	if output != "" {
		return output
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + ext
}

func runToDDS(input, output string) (string, error) {
	data, err := os.ReadFile(input)
	if err != nil {
		return "", err
	}
	out, err := convert.FTEXToDDS(data)
	if err != nil {
		return "", errors.Wrap(err, input)
	}

	dst := outputPath(input, output, ".dds")
	if err := os.WriteFile(dst, out, 0o644); err != nil {
		return "", errors.Wrap(err, "write dds")
	}
	return dst, nil
}

func runToFTEX(input, output string, cs ftex.ColorSpace) (string, error) {
	data, err := os.ReadFile(input)
	if err != nil {
		return "", err
	}
	out, err := convert.DDSToFTEX(data, cs)
	if err != nil {
		return "", errors.Wrap(err, input)
	}

	dst := outputPath(input, output, ".ftex")
	if err := os.WriteFile(dst, out, 0o644); err != nil {
		return "", errors.Wrap(err, "write ftex")
	}
	return dst, nil
}
