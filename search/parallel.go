package search

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"scour/config"
)

// workerPool scans candidates with a fixed number of goroutines. Each worker
// owns its OCR session for its whole lifetime.
type workerPool struct {
	cfg      *config.SearchConfig
	pattern  *Pattern
	registry *ExtractorRegistry
	ocr      OCRFactory
	stats    *statsCollector
}

// run consumes jobs until the channel is closed and returns every file that
// matched, in completion order.
func (wp *workerPool) run(ctx context.Context, jobs <-chan Candidate) []FileResult {
	resultChan := make(chan FileResult, wp.cfg.Workers)

	var wg sync.WaitGroup
	for i := 0; i < wp.cfg.Workers; i++ {
		wg.Add(1)
		go wp.worker(ctx, i, jobs, resultChan, &wg)
	}

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	var results []FileResult
	for result := range resultChan {
		results = append(results, result)
	}
	return results
}

// worker processes jobs until the channel closes. Once ctx is cancelled it
// drains the remaining jobs without scanning them.
func (wp *workerPool) worker(ctx context.Context, id int, jobs <-chan Candidate, results chan<- FileResult, wg *sync.WaitGroup) {
	defer wg.Done()

	session := newOCRSession(wp.ocr)
	defer func() {
		if err := session.close(); err != nil {
			logrus.WithFields(logrus.Fields{"worker": id, "error": err}).Warn("Failed to release OCR engine")
		}
	}()

	for cand := range jobs {
		if ctx.Err() != nil {
			continue
		}

		result, scanned, err := wp.processFile(session, cand)
		reason := ReasonFor(err)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"file":   cand.Path,
				"reason": reason.String(),
				"error":  err,
			}).Debug("Skipped file")
		}

		wp.stats.record(cand.Type, scanned, result.MatchCount, reason)
		if result.MatchCount > 0 {
			results <- result
		}
	}
}

// processFile reads, extracts and matches one file. It returns the number of
// bytes read along with the result.
func (wp *workerPool) processFile(session *ocrSession, cand Candidate) (FileResult, int64, error) {
	result := FileResult{Path: cand.Path, Type: cand.Type, Size: cand.Size}

	if cand.TooLarge() {
		return result, 0, &ExtractError{Kind: ErrTooLarge, Err: fmt.Errorf("%s exceeds %s", FormatFileSize(cand.Size), FormatFileSize(config.MaxFileSize))}
	}

	data, err := readBounded(cand.Path, cand.Type == config.PlainText || cand.Type == config.Code)
	if err != nil {
		return result, 0, err
	}
	scanned := int64(len(data))

	text, err := wp.extract(session, cand.Type, data)
	if err != nil {
		return result, scanned, err
	}

	// In-flight files run to completion even if the scan is cancelled, so the
	// match deadline is not derived from the scan context.
	mctx, cancel := context.WithTimeout(context.Background(), wp.cfg.MatchTimeout)
	defer cancel()

	width := 0
	if wp.cfg.ShowPreview {
		width = wp.cfg.ContextWidth
	}
	matches, err := wp.pattern.FindAll(mctx, text, width)
	if err != nil {
		return result, scanned, err
	}

	result.Matches = matches
	result.MatchCount = len(matches)
	return result, scanned, nil
}

// extract dispatches on the file type. Structured documents run under the
// extraction timeout.
func (wp *workerPool) extract(session *ocrSession, ft config.FileType, data []byte) (string, error) {
	if ft == config.Image {
		return session.recognize(data)
	}

	extractor, ok := wp.registry.GetExtractor(ft)
	if !ok {
		return "", &ExtractError{Kind: ErrFeatureDisabled, Err: fmt.Errorf("no extractor for %s", ft)}
	}
	if isDocumentFormat(ft) {
		return runWithTimeout(func() (string, error) {
			return extractor.ExtractText(data)
		}, wp.cfg.ExtractTimeout)
	}
	return extractor.ExtractText(data)
}

// runWithTimeout runs fn in its own goroutine. A timeout or panic is reported
// as a corrupt document; an abandoned fn finishes in the background.
func runWithTimeout(fn func() (string, error), timeout time.Duration) (string, error) {
	type outcome struct {
		text string
		err  error
	}
	done := make(chan outcome, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: corrupt("extractor panic: %v", r)}
			}
		}()
		text, err := fn()
		done <- outcome{text: text, err: err}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case o := <-done:
		return o.text, o.err
	case <-timer.C:
		return "", corrupt("extraction timed out after %s", timeout)
	}
}
