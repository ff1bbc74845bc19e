// Package main provides a command-line tool for inspecting and converting
// FTEX textures.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/goopsie/ftexTools/pkg/ftex"
	"github.com/goopsie/ftexTools/pkg/texture"
)

var (
	mode           string
	inputPath      string
	outputFile     string
	configPath     string
	colorSpace     string
	workers        int
	texconvPath    string
	preserve       bool
	backupArchive  bool
	keepDDS        bool
	checkFormat    string
	checkVersion   string
	convertFormat  string
	convertVersion string
	dump           bool
	verbose        bool
)

var log zerolog.Logger

func init() {
	flag.StringVar(&mode, "mode", "", "Operation mode: info, to-dds, to-ftex, mass")
	flag.StringVar(&inputPath, "input", "", "Input file, or directory for info and mass")
	flag.StringVar(&outputFile, "output", "", "Output file (default: input with the new extension)")
	flag.StringVar(&configPath, "config", "", "YAML file with default settings")
	flag.StringVar(&colorSpace, "color-space", "", "Color space for written FTEX: LINEAR, SRGB or NORMAL")
	flag.IntVar(&workers, "workers", 0, "Parallel conversions in mass mode (default: number of CPUs)")
	flag.StringVar(&texconvPath, "texconv", "", "Path to texconv.exe on Windows (default: bin/texconv.exe)")
	flag.BoolVar(&preserve, "preserve-original", true, "Keep a backup of files overwritten in mass mode")
	flag.BoolVar(&backupArchive, "backup-archive", false, "Store backups as zstd archives instead of renamed copies")
	flag.BoolVar(&keepDDS, "keep-dds", false, "Keep the intermediate DDS written for texconv")
	flag.StringVar(&checkFormat, "check-format", "", "Only handle these formats (comma separated, e.g. DXT1,BC7)")
	flag.StringVar(&checkVersion, "check-version", "", "Only handle this FTEX version: 2.03 or 2.04")
	flag.StringVar(&convertFormat, "convert-format", "", "Target pixel format in mass mode")
	flag.StringVar(&convertVersion, "convert-version", "", "Target FTEX version in mass mode: 2.03 or 2.04")
	flag.BoolVar(&dump, "dump", false, "Dump the full header in info mode")
	flag.BoolVar(&verbose, "verbose", false, "Enable debug logging")
}

func main() {
	flag.Parse()
	log = newLogger(verbose)

	if err := run(); err != nil {
		log.Error().Err(err).Msg("ftextools failed")
		os.Exit(1)
	}
}

func newLogger(debug bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		Level(level).
		With().Timestamp().Logger()
}

func run() error {
	if err := validateFlags(); err != nil {
		flag.Usage()
		return err
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	applyFlags(&cfg)
	if err := cfg.validate(); err != nil {
		return err
	}

	filter, err := parseFilter(checkFormat, checkVersion)
	if err != nil {
		return err
	}
	cs, err := ftex.ParseColorSpace(cfg.ColorSpace)
	if err != nil {
		return err
	}

	switch mode {
	case "info":
		return runInfo(os.Stdout, inputPath, filter, dump)
	case "to-dds":
		dst, err := runToDDS(inputPath, outputFile)
		if err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", dst)
	case "to-ftex":
		dst, err := runToFTEX(inputPath, outputFile, cs)
		if err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", dst)
	case "mass":
		return runMass(cfg, filter, cs)
	default:
		return fmt.Errorf("unknown mode: %s", mode)
	}
	return nil
}

func validateFlags() error {
	if mode == "" {
		return fmt.Errorf("mode is required")
	}
	if inputPath == "" {
		return fmt.Errorf("input is required")
	}

	switch mode {
	case "info", "to-dds", "to-ftex":
	case "mass":
		if convertFormat == "" && convertVersion == "" {
			return fmt.Errorf("mass mode requires -convert-format or -convert-version")
		}
	default:
		return fmt.Errorf("mode must be 'info', 'to-dds', 'to-ftex' or 'mass'")
	}
	return nil
}

// applyFlags copies explicitly set flags over the config file values.
func applyFlags(cfg *Config) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "color-space":
			cfg.ColorSpace = colorSpace
		case "workers":
			cfg.Workers = workers
		case "texconv":
			cfg.TexconvPath = texconvPath
		case "preserve-original":
			cfg.PreserveOriginal = preserve
		case "backup-archive":
			cfg.BackupArchive = backupArchive
		case "keep-dds":
			cfg.KeepDDS = keepDDS
		}
	})
}

func runMass(cfg Config, filter Filter, cs ftex.ColorSpace) error {
	c := &massConverter{
		filter:     filter,
		colorSpace: cs,
		backup:     cfg.BackupMode(),
		log:        log,
	}

	if convertFormat != "" {
		f, err := texture.ParseFormat(convertFormat)
		if err != nil {
			return err
		}
		c.format, c.withFormat = f, true
		c.reencoder = newReencoder(cfg)
		if err := checkReencoder(c.reencoder); err != nil {
			return err
		}
	}
	if convertVersion != "" {
		v, err := parseVersion(convertVersion)
		if err != nil {
			return err
		}
		c.version = v
	}
	if err := c.validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	stats, err := c.Run(ctx, inputPath, cfg.Workers)
	if err != nil {
		return err
	}

	fmt.Printf("Converted %d, skipped %d, failed %d in %s\n",
		stats.Converted(), stats.Skipped(), stats.Failed(), time.Since(start).Round(time.Millisecond))
	if stats.Failed() > 0 {
		return errors.Errorf("%d files failed", stats.Failed())
	}
	return nil
}
