package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"scour/config"
	"scour/search"
)

var version = "0.3.0"

// Process exit codes
const (
	ExitMatches   = 0
	ExitNoMatches = 1
	ExitFatal     = 2
)

// Run parses CLI arguments, runs the search and returns a process exit code.
func Run(args []string) int {
	return run(args, os.Stdout, os.Stderr)
}

func run(args []string, stdout, stderr io.Writer) int {
	code := ExitMatches
	app := newApp(stdout, stderr, &code)
	if err := app.Run(args); err != nil {
		fmt.Fprintln(stderr, errorStyle.Render("Error: "+err.Error()))
		return ExitFatal
	}
	return code
}

func newApp(stdout, stderr io.Writer, code *int) *cli.App {
	return &cli.App{
		Name:            "scour",
		Usage:           "Search text, code, PDF, DOCX, email and images for a pattern",
		UsageText:       "scour [flags] PATTERN [ROOT]",
		Version:         version,
		Writer:          stdout,
		ErrWriter:       stderr,
		HideHelpCommand: true,
		Flags:           searchFlags(),
		Action: func(c *cli.Context) error {
			if err := InitLogger(c.String("logfile"), c.String("log-level")); err != nil {
				return err
			}

			cfg, err := buildConfig(c)
			if err != nil {
				return err
			}

			se, err := search.NewSearchEngine(cfg)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if cfg.Interactive {
				restore := detachStderrLogs()
				matched, err := runInteractive(ctx, se)
				restore()
				if err != nil {
					return err
				}
				*code = exitCodeFor(matched)
				return nil
			}

			report, err := se.Execute(ctx)
			if err != nil {
				return err
			}
			RenderReport(stdout, report, se.Config(), se.Pattern())
			*code = exitCodeFor(len(report.Results))
			return nil
		},
	}
}

func searchFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:    "case-sensitive",
			Aliases: []string{"s"},
			Usage:   "Match case exactly",
		},
		&cli.BoolFlag{
			Name:    "regex",
			Aliases: []string{"e"},
			Usage:   "Treat PATTERN as a regular expression (RE2 syntax)",
		},
		&cli.BoolFlag{
			Name:  "ocr",
			Usage: "Also search images through OCR (requires a build with -tags ocr)",
		},
		&cli.BoolFlag{
			Name:    "preview",
			Aliases: []string{"p"},
			Usage:   "Show the text around each match",
		},
		&cli.StringSliceFlag{
			Name:    "ext",
			Aliases: []string{"t"},
			Usage:   "Only search these extensions (comma separated, e.g. pdf,md)",
		},
		&cli.IntFlag{
			Name:    "max-depth",
			Aliases: []string{"d"},
			Usage:   "Maximum directory depth below ROOT (0 = ROOT only, -1 = unlimited)",
			Value:   -1,
		},
		&cli.BoolFlag{
			Name:    "hidden",
			Aliases: []string{"H"},
			Usage:   "Include dot-files and dot-directories",
		},
		&cli.BoolFlag{
			Name:  "no-skip-dirs",
			Usage: "Also descend into node_modules, .git, vendor and similar directories",
		},
		&cli.IntFlag{
			Name:    "limit",
			Aliases: []string{"n"},
			Usage:   "Maximum number of files to list",
			Value:   config.DefaultResultLimit,
		},
		&cli.BoolFlag{
			Name:    "interactive",
			Aliases: []string{"i"},
			Usage:   "Browse the results in a full-screen view",
		},
		&cli.IntFlag{
			Name:    "workers",
			Aliases: []string{"j"},
			Usage:   "Concurrent file workers (default scales with CPU)",
		},
		&cli.DurationFlag{
			Name:  "match-timeout",
			Usage: "Per-file pattern matching budget",
			Value: config.DefaultMatchTimeout,
		},
		&cli.DurationFlag{
			Name:  "extract-timeout",
			Usage: "Per-file budget for PDF, DOCX and email extraction",
			Value: config.DefaultExtractTimeout,
		},
		&cli.IntFlag{
			Name:  "context-width",
			Usage: "Bytes of preview text on each side of a match",
			Value: config.DefaultContextWidth,
		},
		&cli.StringFlag{
			Name:  "config",
			Usage: "TOML file with default settings (default $XDG_CONFIG_HOME/scour/config.toml)",
		},
		&cli.StringFlag{
			Name:  "logfile",
			Usage: "Write logs into file instead of stderr",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level: debug, info, warn, error",
			Value: "warn",
		},
	}
}

// buildConfig layers defaults, the config file and explicit flags, in that order.
func buildConfig(c *cli.Context) (config.SearchConfig, error) {
	path := c.String("config")
	if path == "" {
		path = config.DefaultConfigPath()
	}
	cfg, err := config.LoadFile(path, config.DefaultSearchConfig())
	if err != nil {
		return cfg, err
	}

	switch c.NArg() {
	case 0:
		_ = cli.ShowAppHelp(c)
		return cfg, errors.New("missing PATTERN argument")
	case 1:
	case 2:
		cfg.RootDirectory = c.Args().Get(1)
	default:
		return cfg, fmt.Errorf("expected PATTERN [ROOT], got %d arguments", c.NArg())
	}
	cfg.Pattern = c.Args().First()

	if c.IsSet("case-sensitive") {
		cfg.CaseSensitive = c.Bool("case-sensitive")
	}
	if c.IsSet("regex") {
		cfg.UseRegex = c.Bool("regex")
	}
	if c.IsSet("ocr") {
		cfg.UseOCR = c.Bool("ocr")
	}
	if c.IsSet("preview") {
		cfg.ShowPreview = c.Bool("preview")
	}
	if c.IsSet("ext") {
		cfg.Extensions = c.StringSlice("ext")
	}
	if c.IsSet("max-depth") {
		cfg.MaxDepth = c.Int("max-depth")
	}
	if c.IsSet("hidden") {
		cfg.IncludeHidden = c.Bool("hidden")
	}
	if c.IsSet("no-skip-dirs") {
		cfg.SkipCommonDirs = !c.Bool("no-skip-dirs")
	}
	if c.IsSet("limit") {
		cfg.ResultLimit = c.Int("limit")
	}
	if c.IsSet("interactive") {
		cfg.Interactive = c.Bool("interactive")
	}
	if c.IsSet("workers") {
		cfg.Workers = c.Int("workers")
	}
	if c.IsSet("match-timeout") {
		cfg.MatchTimeout = c.Duration("match-timeout")
	}
	if c.IsSet("extract-timeout") {
		cfg.ExtractTimeout = c.Duration("extract-timeout")
	}
	if c.IsSet("context-width") {
		cfg.ContextWidth = c.Int("context-width")
	}
	return cfg, nil
}

func exitCodeFor(matched int) int {
	if matched > 0 {
		return ExitMatches
	}
	return ExitNoMatches
}
