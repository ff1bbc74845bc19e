package main

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"

	"github.com/goopsie/ftexTools/pkg/convert"
	"github.com/goopsie/ftexTools/pkg/ftex"
)

// runInfo prints a summary of every FTEX at path that passes the filter.
// Directories are walked recursively.
func runInfo(w io.Writer, path string, filter Filter, dump bool) error {
	st, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !st.IsDir() {
		return printInfo(w, path, filter, dump)
	}

	return filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isCandidate(p) {
			return nil
		}
		if err := printInfo(w, p, filter, dump); err != nil {
			log.Warn().Err(err).Str("path", p).Msg("unreadable texture")
		}
		return nil
	})
}

func printInfo(w io.Writer, path string, filter Filter, dump bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	data, err = convert.DecompressIfWrapped(data)
	if err != nil {
		return err
	}

	h, err := ftex.ReadHeader(data)
	if err != nil {
		return errors.Wrap(err, "read header")
	}
	if !filter.Match(h) {
		return nil
	}

	fmt.Fprintf(w, "%s\nFTEX VERSION %.2f FORMAT %s\n", path, h.Version, h.Format())
	if dump {
		fmt.Fprint(w, spew.Sdump(h))
	}
	return nil
}
