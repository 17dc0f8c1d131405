package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/danmuck/pgmctl/internal/config"
	"github.com/danmuck/pgmctl/internal/observability"
	"github.com/danmuck/pgmctl/internal/pgm"
	"github.com/danmuck/pgmctl/internal/server"
	"github.com/danmuck/pgmctl/internal/service"
	"github.com/rs/zerolog/log"
)

const usage = `usage: pgmctl <command> [flags]

commands:
  info  [-config path] <input>...   print header, comments and frame count
  split [-config path] [-out dir] [-base name] [-declared-max legacy|header] [-keep-partial] <input>
  serve [-config path] [-addr addr]
  init  [-output path] [-force]      write a config template
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	observability.InitLogger("pgmctl")

	var err error
	switch os.Args[1] {
	case "info":
		err = runInfo(os.Args[2:], os.Stdout)
	case "split":
		err = runSplit(os.Args[2:], os.Stdout)
	case "serve":
		err = runServe(os.Args[2:])
	case "init":
		err = runInit(os.Args[2:])
	case "-h", "--help", "help":
		fmt.Fprint(os.Stdout, usage)
		return
	default:
		err = fmt.Errorf("unknown command %q", os.Args[1])
	}
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		log.Error().Err(err).Str("kind", pgm.Kind(err)).Msg("pgmctl failed")
		os.Exit(1)
	}
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.DefaultConfig(), nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	log.Debug().Str("path", path).Msg("loaded config")
	return cfg, nil
}

func runInfo(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("info", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to pgmctl TOML config")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("info: no input files")
	}
	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	svc := service.New(cfg, log.Logger)

	var firstErr error
	reports := make([]service.Report, 0, fs.NArg())
	for _, path := range fs.Args() {
		report, err := svc.InspectFile(path)
		if err != nil && firstErr == nil {
			firstErr = err
		}
		reports = append(reports, report)
	}
	if err := writeJSON(stdout, reports); err != nil {
		return err
	}
	return firstErr
}

func runSplit(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("split", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to pgmctl TOML config")
	out := fs.String("out", "", "output directory (overrides output_dir)")
	base := fs.String("base", "", "output base name (overrides base_name)")
	declared := fs.String("declared-max", "", "legacy|header (overrides declared_max)")
	keepPartial := fs.Bool("keep-partial", false, "write frames decoded before a truncated frame")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("split: expected exactly one input file")
	}
	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	if *out != "" {
		cfg.OutputDir = *out
	}
	if *base != "" {
		cfg.BaseName = *base
	}
	if *declared != "" {
		policy, err := pgm.ParseDeclaredMaxPolicy(*declared)
		if err != nil {
			return err
		}
		cfg.DeclaredMax = policy
	}
	if *keepPartial {
		cfg.KeepPartial = true
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	report, err := service.New(cfg, log.Logger).SplitFile(fs.Arg(0))
	if werr := writeJSON(stdout, report); werr != nil && err == nil {
		err = werr
	}
	return err
}

func runServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to pgmctl TOML config")
	addr := fs.String("addr", "", "listen address (overrides http_addr)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	if *addr != "" {
		cfg.HTTPAddr = *addr
	}
	return server.Appear(service.New(cfg, log.Logger)).Serve()
}

func runInit(args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	output := fs.String("output", "pgmctl.toml", "output path for config template")
	force := fs.Bool("force", false, "overwrite existing config file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := config.WriteTemplate(*output, *force); err != nil {
		return err
	}
	log.Info().Str("path", *output).Msg("wrote config template")
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
