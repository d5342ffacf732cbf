// Package blobstore provides storage abstraction for encoded filters and
// their manifests.
//
// Store is the interface for reading and writing named blobs.
// Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: local file system with atomic writes and mmap-backed reads
//   - MemoryStore: in-memory map, for tests and ephemeral filters
//   - s3.Store: Amazon S3 with ranged reads and multipart uploads
//   - minio.Store: MinIO and other S3-compatible servers
//
// # Custom Implementations
//
//	type Store interface {
//	    Open(ctx, name) (Blob, error)
//	    Put(ctx, name, data) error
//	    Delete(ctx, name) error
//	    List(ctx, prefix) ([]string, error)
//	}
//
// Blobs whose bytes are already resident (mapped files, memory) also
// implement Mappable, which lets decoders skip an intermediate copy.
package blobstore
