// Package fs provides a file system abstraction for local blob storage and
// fault injection in tests.
//
//   - [FileSystem]: the operations local storage needs (open, rename, remove, list)
//   - [LocalFS]: the os-backed implementation, available as [Default]
//   - [FaultyFS]: a wrapper that fails writes, syncs, closes or renames on demand
//
// [WriteFileAtomic] writes through any FileSystem using a temporary file and
// a rename, so a crash never leaves a partially written target:
//
//	err := fs.WriteFileAtomic(fs.Default, path, data, 0o644)
//
// Tests inject failures by name pattern:
//
//	ffs := fs.NewFaultyFS(nil)
//	ffs.AddRule("filter.sbf", fs.Fault{FailAfterBytes: 16})
package fs
