//go:build linux

package search

import (
	"os"

	"golang.org/x/sys/unix"
)

// dropPageCache tells the kernel the file's pages will not be reused, so a
// large tree walk does not evict the rest of the page cache.
func dropPageCache(f *os.File) {
	_ = unix.Fadvise(int(f.Fd()), 0, 0, unix.FADV_DONTNEED)
}
