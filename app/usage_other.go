//go:build !unix

package app

import "runtime"

func sampleMemoryAndCPU() (heap uint64, cpu float64) {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return ms.HeapAlloc, 0
}
