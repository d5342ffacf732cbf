// Package s3 provides an S3 implementation of the blobstore.Store interface.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("filters/"),
//	    s3.WithRegion("us-east-1"),
//	)
//
//	repo := repository.New(store)
//
// # Features
//
//   - Range reads for partial fetches
//   - Multipart uploads above the part size, CRC32C integrity checks
//   - Automatic pagination for listing
//   - Configurable prefix for multi-tenant isolation
package s3
