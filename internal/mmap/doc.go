// Package mmap provides memory-mapped file access for zero-copy loading of
// persisted filters.
//
// # Usage
//
//	m, err := mmap.Open("users.sbf")
//	if err != nil { ... }
//	defer m.Close()
//
//	data := m.Bytes()
//	region, _ := m.Region(offset, size)
//	_ = region.Advise(mmap.AccessWillNeed)
//
// OpenPrivate maps a file copy-on-write: the mapping is writable, but writes
// stay private to the process and never reach the file. Decoded bitmaps that
// adopt mapped words in place rely on this.
//
// # Platform Support
//
//   - Unix: mmap(2) with madvise(2) for access hints
//   - Windows: CreateFileMapping/MapViewOfFile (advice is a no-op)
//
// # Thread Safety
//
// Close is idempotent. Callers must ensure no goroutine touches Bytes() after
// Close returns.
package mmap
