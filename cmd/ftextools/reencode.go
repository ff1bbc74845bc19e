package main

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pkg/errors"

	"github.com/goopsie/ftexTools/pkg/texture"
)

var defaultTexconvPath = filepath.Join("bin", "texconv.exe")

// Reencoder turns a DDS into a DDS of another pixel format. Pixel work is
// left to external tools.
type Reencoder interface {
	Reencode(ctx context.Context, dds []byte, format texture.Format, name string) ([]byte, error)
}

// newReencoder picks texconv on Windows and ImageMagick elsewhere.
func newReencoder(cfg Config) Reencoder {
	if runtime.GOOS == "windows" {
		return &texconv{path: cfg.TexconvPath, keepDDS: cfg.KeepDDS}
	}
	return &imageMagick{path: "convert"}
}

// texconv runs DirectXTex texconv on a temporary file next to the source.
type texconv struct {
	path    string
	keepDDS bool
}

func texconvFormat(f texture.Format) string {
	switch f {
	case texture.FormatBC1:
		return "DXT1"
	case texture.FormatBC2:
		return "DXT3"
	case texture.FormatBC3:
		return "DXT5"
	case texture.FormatA8R8G8B8:
		return "B8G8R8A8_UNORM"
	}
	return f.String()
}

func (t *texconv) Reencode(ctx context.Context, dds []byte, format texture.Format, name string) ([]byte, error) {
	tmp := strings.TrimSuffix(name, filepath.Ext(name)) + "_tmp.dds"
	if err := os.WriteFile(tmp, dds, 0o644); err != nil {
		return nil, errors.Wrap(err, "write temporary dds")
	}
	if !t.keepDDS {
		defer os.Remove(tmp)
	}

	cmd := exec.CommandContext(ctx, t.path, "-f", texconvFormat(format), "-y", "-o", filepath.Dir(tmp), tmp)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, errors.Wrapf(err, "texconv: %s", bytes.TrimSpace(out))
	}

	data, err := os.ReadFile(tmp)
	if err != nil {
		return nil, errors.Wrap(err, "read converted dds")
	}
	return data, nil
}

// imageMagick pipes the DDS through ImageMagick's convert.
type imageMagick struct {
	path string
}

func imageMagickCompression(f texture.Format) (string, error) {
	switch f {
	case texture.FormatBC1:
		return "dxt1", nil
	case texture.FormatBC3:
		return "dxt5", nil
	case texture.FormatA8R8G8B8:
		return "none", nil
	}
	return "", &texture.UnsupportedFormatError{Kind: "imagemagick target", Value: f.String()}
}

func (m *imageMagick) Reencode(ctx context.Context, dds []byte, format texture.Format, _ string) ([]byte, error) {
	compression, err := imageMagickCompression(format)
	if err != nil {
		return nil, err
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, m.path, "dds:-", "-define", "dds:compression="+compression, "dds:-")
	cmd.Stdin = bytes.NewReader(dds)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, errors.Wrapf(err, "convert: %s", bytes.TrimSpace(stderr.Bytes()))
	}
	return stdout.Bytes(), nil
}

// checkReencoder fails early when the external tool is missing.
func checkReencoder(r Reencoder) error {
	var path string
	switch r := r.(type) {
	case *texconv:
		path = r.path
	case *imageMagick:
		path = r.path
	default:
		return nil
	}
	if _, err := exec.LookPath(path); err != nil {
		return errors.Wrapf(err, "%s not found; install it or set texconv_path", path)
	}
	return nil
}
