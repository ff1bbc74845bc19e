package main

import (
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/goopsie/ftexTools/pkg/ftex"
	"github.com/goopsie/ftexTools/pkg/texture"
)

// Filter selects textures by format or version. A texture matches when
// any configured criterion matches; an empty filter matches everything.
type Filter struct {
	Formats []texture.Format
	Version int // hundredths, 0 = unset
}

// parseFilter builds a filter from the comma-separated format list and
// the version flag.
func parseFilter(formats, version string) (Filter, error) {
	var f Filter
	for _, name := range strings.Split(formats, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		format, err := texture.ParseFormat(name)
		if err != nil {
			return f, err
		}
		f.Formats = append(f.Formats, format)
	}

	if version != "" {
		v, err := parseVersion(version)
		if err != nil {
			return f, err
		}
		f.Version = hundredths(v)
	}
	return f, nil
}

func (f Filter) Empty() bool {
	return len(f.Formats) == 0 && f.Version == 0
}

// Match reports whether the header passes the filter.
func (f Filter) Match(h *ftex.Header) bool {
	if f.Empty() {
		return true
	}
	if f.Version != 0 && hundredths(h.Version) == f.Version {
		return true
	}
	for _, format := range f.Formats {
		if h.Format() == format {
			return true
		}
	}
	return false
}

// parseVersion accepts the two container versions tools write.
func parseVersion(s string) (float32, error) {
	v, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return 0, errors.Wrapf(err, "parse version %q", s)
	}
	switch hundredths(float32(v)) {
	case hundredths(ftex.Version203):
		return ftex.Version203, nil
	case hundredths(ftex.Version204):
		return ftex.Version204, nil
	}
	return 0, errors.Errorf("version must be 2.03 or 2.04, got %s", s)
}

func hundredths(v float32) int {
	return int(math.Round(float64(v) * 100))
}
