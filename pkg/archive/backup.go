package archive

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

const (
	backupSuffix     = "_old"
	compressedSuffix = ".zst"
)

// Mode selects how an original is kept before it is overwritten.
type Mode int

const (
	// ModeNone keeps nothing.
	ModeNone Mode = iota
	// ModeRename moves the original aside as name_old.ext.
	ModeRename
	// ModeCompress writes a zstd backup as name_old.ext.zst.
	ModeCompress
)

// BackupPath returns where the backup of path is stored in the given mode.
func BackupPath(path string, mode Mode) string {
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext) + backupSuffix + ext
	if mode == ModeCompress {
		base += compressedSuffix
	}
	return base
}

// Backup preserves the file at path and returns the backup location, or ""
// for ModeNone. In ModeRename the original no longer exists afterwards and
// the caller is expected to write its replacement.
func Backup(path string, mode Mode, opts ...WriterOption) (string, error) {
	switch mode {
	case ModeNone:
		return "", nil
	case ModeRename:
		dst := BackupPath(path, mode)
		if err := os.Rename(path, dst); err != nil {
			return "", errors.Wrap(err, "rename original")
		}
		return dst, nil
	case ModeCompress:
		return compressFile(path, BackupPath(path, mode), opts...)
	default:
		return "", errors.Errorf("unknown backup mode %d", mode)
	}
}

func compressFile(src, dst string, opts ...WriterOption) (string, error) {
	data, err := os.ReadFile(src)
	if err != nil {
		return "", errors.Wrap(err, "read original")
	}

	f, err := os.Create(dst)
	if err != nil {
		return "", errors.Wrap(err, "create backup")
	}
	if err := Encode(f, data, opts...); err != nil {
		f.Close()
		os.Remove(dst)
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(dst)
		return "", errors.Wrap(err, "close backup")
	}
	return dst, nil
}

// Restore returns the original bytes stored at a backup path produced by
// Backup. Renamed backups are read as-is.
func Restore(backupPath string) ([]byte, error) {
	data, err := os.ReadFile(backupPath)
	if err != nil {
		return nil, errors.Wrap(err, "read backup")
	}
	if !strings.HasSuffix(backupPath, compressedSuffix) {
		return data, nil
	}
	return ReadAll(bytes.NewReader(data))
}

// ParseMode maps the config spellings to a Mode.
func ParseMode(name string) (Mode, error) {
	switch strings.ToLower(name) {
	case "", "none":
		return ModeNone, nil
	case "rename":
		return ModeRename, nil
	case "zstd", "compress":
		return ModeCompress, nil
	}
	return ModeNone, errors.Errorf("unknown backup mode %q", name)
}

func (m Mode) String() string {
	switch m {
	case ModeNone:
		return "none"
	case ModeRename:
		return "rename"
	case ModeCompress:
		return "zstd"
	}
	return "unknown"
}
