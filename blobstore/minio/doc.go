// Package minio provides a blobstore.Store implementation using the MinIO client.
//
// It works with MinIO and other S3-compatible systems such as Ceph,
// SeaweedFS and Garage, without the AWS SDK.
//
// # Basic Usage
//
//	store, err := minio.Connect("localhost:9000", "minioadmin", "minioadmin", false,
//	    "my-bucket", "filters/")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	repo := repository.New(store)
//
// An existing *minio.Client can be wrapped with NewStore.
package minio
