package config

import (
	"path/filepath"
	"strings"
)

// FileType is the extraction family a path belongs to, derived from its extension.
type FileType int

const (
	Unknown FileType = iota
	PlainText
	Code
	Pdf
	Docx
	Image
	Email
)

// AllFileTypes lists every classifiable type in display order (Unknown excluded).
var AllFileTypes = []FileType{PlainText, Code, Pdf, Docx, Image, Email}

func (t FileType) String() string {
	switch t {
	case PlainText:
		return "Text"
	case Code:
		return "Code"
	case Pdf:
		return "PDF"
	case Docx:
		return "DOCX"
	case Image:
		return "Image"
	case Email:
		return "Email"
	default:
		return "Unknown"
	}
}

// DocumentTypes defines the file extensions for text and markup files
var DocumentTypes = []string{
	"txt", "md", "markdown", "rst", "log", "csv", "tsv",
	"json", "yaml", "yml", "toml", "ini", "cfg", "conf",
	"xml", "html", "htm", "css", "tex", "rtf",
}

// CodeTypes defines the file extensions for programming files
var CodeTypes = []string{
	"go", "rs", "py", "js", "ts", "jsx", "tsx", "java", "c", "cpp", "cc", "cxx",
	"h", "hpp", "rb", "php", "swift", "kt", "kts", "scala", "sh", "bash", "zsh",
	"fish", "ps1", "bat", "cmd", "sql", "r", "lua", "pl", "pm", "ex", "exs",
	"erl", "hrl", "hs", "lhs", "ml", "mli", "fs", "fsi", "fsx", "clj", "cljs",
	"cljc", "nim", "zig", "v", "d", "dart", "vue", "svelte", "cs", "m", "mm",
	"groovy", "proto",
}

// ImageTypes defines raster image extensions handled through OCR
var ImageTypes = []string{
	"png", "jpg", "jpeg", "gif", "bmp", "tif", "tiff", "webp",
}

// EmailTypes defines mail container extensions
var EmailTypes = []string{"eml", "mbox", "msg"}

// fileTypeMap gives O(1) extension lookups (keys without the leading dot)
var fileTypeMap = buildFileTypeMap()

func buildFileTypeMap() map[string]FileType {
	m := make(map[string]FileType)
	for _, ext := range DocumentTypes {
		m[ext] = PlainText
	}
	for _, ext := range CodeTypes {
		m[ext] = Code
	}
	for _, ext := range ImageTypes {
		m[ext] = Image
	}
	for _, ext := range EmailTypes {
		m[ext] = Email
	}
	m["pdf"] = Pdf
	m["docx"] = Docx
	return m
}

// Classify maps a path to its FileType by extension, case-insensitively.
// It never touches the file system.
func Classify(path string) FileType {
	ext := NormalizeExtension(filepath.Ext(path))
	if ext == "" {
		return Unknown
	}
	if t, ok := fileTypeMap[ext]; ok {
		return t
	}
	return Unknown
}

// NormalizeExtension lowercases an extension and strips a leading dot.
func NormalizeExtension(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}

// IsHiddenFile checks if a file should be treated as hidden
func IsHiddenFile(filename string) bool {
	return strings.HasPrefix(filename, ".") && filename != "." && filename != ".."
}

// commonSkipDirs are build, dependency and VCS directories that never hold
// searchable user content.
var commonSkipDirs = map[string]bool{
	".git":          true,
	".svn":          true,
	".hg":           true,
	"node_modules":  true,
	".vscode":       true,
	".idea":         true,
	"__pycache__":   true,
	".pytest_cache": true,
	"vendor":        true,
	"target":        true,
	"build":         true,
	"dist":          true,
	".next":         true,
	".nuxt":         true,
	".cache":        true,
	".npm":          true,
	".cargo":        true,
	"coverage":      true,
}

// ShouldSkipDirectory determines if a directory is a well-known build or VCS directory
func ShouldSkipDirectory(dirName string) bool {
	return commonSkipDirs[dirName]
}

// GetFileTypeDescription returns a human-readable description of the searched types
func GetFileTypeDescription(extensions []string, useOCR bool) string {
	if len(extensions) > 0 {
		return strings.Join(extensions, ", ")
	}
	desc := "text, code, pdf, docx, email"
	if useOCR {
		desc += ", images (ocr)"
	}
	return desc
}
