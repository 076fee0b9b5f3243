package search

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"scour/config"
)

// jobBuffer is the capacity of the walker-to-worker channel.
const jobBuffer = 1000

// SearchEngine runs one configured search. Construction performs every check
// that can fail the whole invocation; Execute only reports per-file failures
// through the stats.
type SearchEngine struct {
	cfg      config.SearchConfig
	pattern  *Pattern
	registry *ExtractorRegistry
	ocr      OCRFactory
}

// NewSearchEngine validates cfg, compiles the pattern and checks the root.
func NewSearchEngine(cfg config.SearchConfig) (*SearchEngine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	cfg.Prepare()

	pattern, err := Compile(cfg.Pattern, cfg.UseRegex, cfg.CaseSensitive)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(cfg.RootDirectory)
	if err != nil {
		return nil, fmt.Errorf("cannot access root directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root %s is not a directory", cfg.RootDirectory)
	}

	return &SearchEngine{
		cfg:      cfg,
		pattern:  pattern,
		registry: NewExtractorRegistry(),
		ocr:      DefaultOCRFactory,
	}, nil
}

// SetOCRFactory replaces the factory each worker uses to create its OCR engine.
func (se *SearchEngine) SetOCRFactory(factory OCRFactory) {
	se.ocr = factory
}

// Config returns the prepared configuration.
func (se *SearchEngine) Config() config.SearchConfig {
	return se.cfg
}

// Pattern returns the compiled search pattern.
func (se *SearchEngine) Pattern() *Pattern {
	return se.pattern
}

// Execute walks the tree, scans every candidate concurrently and returns the
// ranked report. Cancelling ctx stops new files from being scanned; the
// report then covers the files already processed.
func (se *SearchEngine) Execute(ctx context.Context) (*SearchReport, error) {
	startTime := time.Now()

	logrus.WithFields(logrus.Fields{
		"root":    se.cfg.RootDirectory,
		"pattern": se.pattern.String(),
		"types":   config.GetFileTypeDescription(se.cfg.Extensions, se.cfg.UseOCR),
		"workers": se.cfg.Workers,
	}).Debug("Starting search")

	if se.cfg.UseOCR && se.ocr == nil {
		logrus.Warn("OCR requested but this build has no OCR support; images will be skipped")
	}

	jobs := make(chan Candidate, jobBuffer)
	go NewFileWalker(&se.cfg).Walk(ctx, jobs)

	stats := newStatsCollector()
	pool := &workerPool{
		cfg:      &se.cfg,
		pattern:  se.pattern,
		registry: se.registry,
		ocr:      se.ocr,
		stats:    stats,
	}
	results := pool.run(ctx, jobs)

	report := &SearchReport{
		Results: rankResults(results, se.cfg.ResultLimit),
		Stats:   stats.finalize(time.Since(startTime)),
	}

	entry := logrus.WithFields(logrus.Fields{
		"scanned": FormatNumber(report.Stats.FilesScanned),
		"matched": FormatNumber(report.Stats.FilesMatched),
		"matches": FormatNumber(report.Stats.TotalMatches),
		"skipped": FormatNumber(report.Stats.FilesSkipped()),
		"elapsed": report.Stats.Elapsed.Round(time.Millisecond),
	})
	if ctx.Err() != nil {
		entry.Warn("Search cancelled")
	} else {
		entry.Info("Search completed")
	}

	return report, nil
}
