//go:build !linux

package search

import "os"

func dropPageCache(f *os.File) {}
