package main

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/goopsie/ftexTools/pkg/archive"
	"github.com/goopsie/ftexTools/pkg/convert"
	"github.com/goopsie/ftexTools/pkg/ftex"
	"github.com/goopsie/ftexTools/pkg/texture"
)

// action is what happened to one file.
type action int

const (
	actionSkipped action = iota
	actionVersion
	actionFormat
	actionFailed
)

// massConverter rewrites FTEX files in place.
type massConverter struct {
	filter Filter

	format     texture.Format
	withFormat bool
	version    float32 // 0 = keep
	colorSpace ftex.ColorSpace

	backup    archive.Mode
	reencoder Reencoder
	log       zerolog.Logger
}

func (c *massConverter) validate() error {
	if !c.withFormat && c.version == 0 {
		return errors.New("mass mode needs -convert-format or -convert-version")
	}
	if c.withFormat && c.version == ftex.Version203 && c.format.RequiresExtendedVersion() {
		return errors.Errorf("%s is not compatible with FTEX 2.03", c.format)
	}
	return nil
}

// massStats counts outcomes across workers.
type massStats struct {
	mu      sync.Mutex
	counts  [actionFailed + 1]int
	visited int
}

func (s *massStats) add(a action) {
	s.mu.Lock()
	s.counts[a]++
	s.visited++
	s.mu.Unlock()
}

func (s *massStats) Converted() int {
	return s.counts[actionVersion] + s.counts[actionFormat]
}

func (s *massStats) Failed() int {
	return s.counts[actionFailed]
}

func (s *massStats) Skipped() int {
	return s.counts[actionSkipped]
}

// isCandidate reports whether path is an FTEX that has not been set aside
// as a backup.
func isCandidate(path string) bool {
	if !strings.EqualFold(filepath.Ext(path), ".ftex") {
		return false
	}
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return !strings.HasSuffix(base, "_old")
}

// Run converts every candidate under root on a pool of workers. A single
// file may also be given.
func (c *massConverter) Run(ctx context.Context, root string, workers int) (*massStats, error) {
	if workers < 1 {
		workers = 1
	}

	stats := &massStats{}
	jobs := make(chan string, workers*2)
	var wg sync.WaitGroup

	worker := func() {
		defer wg.Done()
		for path := range jobs {
			a, err := c.convertFile(ctx, path)
			if err != nil {
				c.log.Error().Err(err).Str("path", path).Msg("conversion failed")
				a = actionFailed
			}
			stats.add(a)
		}
	}

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go worker()
	}

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isCandidate(path) {
			return nil
		}
		select {
		case jobs <- path:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})

	close(jobs)
	wg.Wait()

	if walkErr != nil {
		return stats, errors.Wrapf(walkErr, "walk %s", root)
	}
	return stats, nil
}

// convertFile applies the requested version and format change to one file.
func (c *massConverter) convertFile(ctx context.Context, path string) (action, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return actionFailed, errors.Wrap(err, "read")
	}
	data, err = convert.DecompressIfWrapped(data)
	if err != nil {
		return actionFailed, err
	}

	h, err := ftex.ReadHeader(data)
	if err != nil {
		return actionFailed, err
	}
	if !c.filter.Match(h) {
		c.log.Debug().Str("path", path).Stringer("format", h.Format()).Msg("filtered out")
		return actionSkipped, nil
	}

	versionChange := c.version != 0 && hundredths(h.Version) != hundredths(c.version)

	var out []byte
	var result action
	switch {
	case c.withFormat:
		out, err = c.reformat(ctx, path, data, h)
		result = actionFormat
	case versionChange:
		out, err = ftex.SetVersion(data, c.version)
		result = actionVersion
	default:
		c.log.Debug().Str("path", path).Msg("already at target version")
		return actionSkipped, nil
	}
	if err != nil {
		return actionFailed, err
	}

	if err := c.replace(path, out); err != nil {
		return actionFailed, err
	}

	c.log.Info().
		Str("path", path).
		Stringer("from", h.Format()).
		Float32("version", c.outputVersion(h)).
		Msg("converted")
	return result, nil
}

func (c *massConverter) outputVersion(h *ftex.Header) float32 {
	if c.version != 0 {
		return c.version
	}
	return h.Version
}

// reformat round-trips the texture through the external reencoder.
func (c *massConverter) reformat(ctx context.Context, path string, data []byte, h *ftex.Header) ([]byte, error) {
	dds, err := convert.FTEXToDDS(data)
	if err != nil {
		return nil, err
	}

	converted, err := c.reencoder.Reencode(ctx, dds, c.format, path)
	if err != nil {
		return nil, err
	}

	cs := c.colorSpace
	if cs == ftex.ColorSpaceDefault {
		cs = ftex.ColorSpaceOf(h.TextureType)
	}
	out, err := convert.DDSToFTEX(converted, cs)
	if err != nil {
		return nil, err
	}

	if c.version != 0 {
		return ftex.SetVersion(out, c.version)
	}
	return out, nil
}

// replace keeps a backup of path according to the backup mode, then
// writes data in its place.
func (c *massConverter) replace(path string, data []byte) error {
	info, err := os.Stat(path)
	if err != nil {
		return errors.Wrap(err, "stat original")
	}

	dst, err := archive.Backup(path, c.backup)
	if err != nil {
		return err
	}
	if dst != "" {
		c.log.Debug().Str("path", path).Str("backup", dst).Msg("original preserved")
	}

	if err := os.WriteFile(path, data, info.Mode().Perm()); err != nil {
		return errors.Wrap(err, "write converted file")
	}
	return nil
}
