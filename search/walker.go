package search

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"scour/config"
)

// Candidate is a file the walker hands to the worker pool.
type Candidate struct {
	Path string
	Type config.FileType
	Size int64
}

// TooLarge reports whether the candidate is over the extraction ceiling.
func (c Candidate) TooLarge() bool {
	return c.Size > config.MaxFileSize
}

// FileWalker discovers candidate files breadth-first, applying the traversal
// policy in a fixed order: depth, hidden, symlink cycle, skipped directories,
// file type, extension filter.
type FileWalker struct {
	cfg     *config.SearchConfig
	visited map[string]struct{}
}

type dirEntry struct {
	path  string
	depth int // number of path components below the root
}

// NewFileWalker creates a walker for a prepared config.
func NewFileWalker(cfg *config.SearchConfig) *FileWalker {
	return &FileWalker{cfg: cfg}
}

// Walk sends every candidate under the root to out and closes it when done.
// It stops early, without error, when ctx is cancelled.
func (fw *FileWalker) Walk(ctx context.Context, out chan<- Candidate) {
	defer close(out)

	fw.visited = make(map[string]struct{})
	root := fw.cfg.RootDirectory
	if canon, err := filepath.EvalSymlinks(root); err == nil {
		fw.visited[canon] = struct{}{}
	}

	queue := []dirEntry{{path: root, depth: 0}}
	for len(queue) > 0 {
		dir := queue[0]
		queue = queue[1:]

		entries, err := os.ReadDir(dir.path)
		if err != nil {
			logrus.WithFields(logrus.Fields{"dir": dir.path, "error": err}).Debug("Skipping unreadable directory")
			continue
		}

		for _, entry := range entries {
			if ctx.Err() != nil {
				return
			}

			name := entry.Name()
			path := filepath.Join(dir.path, name)

			if !fw.cfg.IncludeHidden && config.IsHiddenFile(name) {
				continue
			}

			info, isDir, ok := fw.resolve(path, entry)
			if !ok {
				continue
			}

			if isDir {
				if next, ok := fw.enterDir(path, name, dir.depth+1); ok {
					queue = append(queue, next)
				}
				continue
			}

			if !info.Mode().IsRegular() {
				continue
			}

			cand, ok := fw.candidate(path, info)
			if !ok {
				continue
			}
			select {
			case out <- cand:
			case <-ctx.Done():
				return
			}
		}
	}
}

// resolve returns the entry's file info, following symlinks.
func (fw *FileWalker) resolve(path string, entry fs.DirEntry) (fs.FileInfo, bool, bool) {
	if entry.Type()&fs.ModeSymlink != 0 {
		info, err := os.Stat(path)
		if err != nil {
			logrus.WithFields(logrus.Fields{"file": path, "error": err}).Debug("Skipping broken symlink")
			return nil, false, false
		}
		return info, info.IsDir(), true
	}

	info, err := entry.Info()
	if err != nil {
		logrus.WithFields(logrus.Fields{"file": path, "error": err}).Debug("Skipping entry")
		return nil, false, false
	}
	return info, entry.IsDir(), true
}

// enterDir decides whether a subdirectory is queued.
func (fw *FileWalker) enterDir(path, name string, depth int) (dirEntry, bool) {
	if !fw.cfg.DepthAllowed(depth) {
		return dirEntry{}, false
	}
	if fw.cfg.SkipCommonDirs && config.ShouldSkipDirectory(name) {
		return dirEntry{}, false
	}

	canon, err := filepath.EvalSymlinks(path)
	if err != nil {
		logrus.WithFields(logrus.Fields{"dir": path, "error": err}).Debug("Skipping unresolvable directory")
		return dirEntry{}, false
	}
	if _, seen := fw.visited[canon]; seen {
		logrus.WithField("dir", path).Debug("Skipping already visited directory")
		return dirEntry{}, false
	}
	fw.visited[canon] = struct{}{}

	return dirEntry{path: path, depth: depth}, true
}

// candidate classifies a regular file and applies the type and extension policy.
func (fw *FileWalker) candidate(path string, info fs.FileInfo) (Candidate, bool) {
	ft := config.Classify(path)
	switch ft {
	case config.Unknown:
		return Candidate{}, false
	case config.Image:
		if !fw.cfg.UseOCR {
			return Candidate{}, false
		}
	}

	if !fw.cfg.AllowsExtension(filepath.Ext(path)) {
		return Candidate{}, false
	}

	return Candidate{Path: path, Type: ft, Size: info.Size()}, true
}
