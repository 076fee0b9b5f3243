package search

import (
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"scour/config"
)

// Match is one pattern occurrence inside a file's extracted text.
type Match struct {
	Offset  int    // byte offset into the extracted text
	Line    int    // 1-based line number
	Context string // surrounding text, only populated when previews are enabled
}

// FileResult is a file that produced at least one match.
type FileResult struct {
	Path       string
	Type       config.FileType
	Size       int64
	Matches    []Match
	MatchCount int
	Confidence float64
}

// ScanStats are per-invocation totals. They are only meaningful once the scan has finished.
type ScanStats struct {
	FilesScanned int
	FilesMatched int
	TotalMatches int
	BytesScanned int64
	Elapsed      time.Duration
	ByType       map[config.FileType]int
	Skipped      map[SkipReason]int
}

// FilesSkipped is the total across all skip reasons.
func (s ScanStats) FilesSkipped() int {
	n := 0
	for _, c := range s.Skipped {
		n += c
	}
	return n
}

// SearchReport is the engine's only output.
type SearchReport struct {
	Results []FileResult
	Stats   ScanStats
}

// statsCollector accumulates ScanStats from many workers.
type statsCollector struct {
	scanned atomic.Int64
	matched atomic.Int64
	matches atomic.Int64
	bytes   atomic.Int64

	mu      sync.Mutex
	byType  map[config.FileType]int
	skipped map[SkipReason]int
}

func newStatsCollector() *statsCollector {
	return &statsCollector{
		byType:  make(map[config.FileType]int),
		skipped: make(map[SkipReason]int),
	}
}

// record folds one file's outcome into the totals.
func (sc *statsCollector) record(ft config.FileType, size int64, matchCount int, reason SkipReason) {
	sc.scanned.Add(1)
	sc.bytes.Add(size)
	if matchCount > 0 {
		sc.matched.Add(1)
		sc.matches.Add(int64(matchCount))
	}

	sc.mu.Lock()
	sc.byType[ft]++
	if reason != SkipNone {
		sc.skipped[reason]++
	}
	sc.mu.Unlock()
}

// finalize must only be called after every worker has returned.
func (sc *statsCollector) finalize(elapsed time.Duration) ScanStats {
	return ScanStats{
		FilesScanned: int(sc.scanned.Load()),
		FilesMatched: int(sc.matched.Load()),
		TotalMatches: int(sc.matches.Load()),
		BytesScanned: sc.bytes.Load(),
		Elapsed:      elapsed,
		ByType:       sc.byType,
		Skipped:      sc.skipped,
	}
}

// rankResults scores every result against the largest match count, sorts by
// count descending then path ascending, and truncates to limit.
func rankResults(results []FileResult, limit int) []FileResult {
	maxCount := 0
	for _, r := range results {
		if r.MatchCount > maxCount {
			maxCount = r.MatchCount
		}
	}
	for i := range results {
		if maxCount > 0 {
			results[i].Confidence = float64(results[i].MatchCount) / float64(maxCount)
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].MatchCount != results[j].MatchCount {
			return results[i].MatchCount > results[j].MatchCount
		}
		return results[i].Path < results[j].Path
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}

// FormatFileSize formats file size in human readable format
func FormatFileSize(size int64) string {
	const unit = 1024
	if size < unit {
		return strconv.FormatInt(size, 10) + " B"
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return strconv.FormatFloat(float64(size)/float64(div), 'f', 1, 64) + " " + "KMGTPE"[exp:exp+1] + "B"
}

// FormatNumber formats a number with thousands separators
func FormatNumber(n int) string {
	str := strconv.Itoa(n)
	if len(str) <= 3 {
		return str
	}

	out := make([]byte, 0, len(str)+len(str)/3)
	for i := 0; i < len(str); i++ {
		if i > 0 && (len(str)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, str[i])
	}
	return string(out)
}
