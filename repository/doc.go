// Package repository persists named bloom filters in a blobstore.Store.
//
// A saved filter consists of an encoded filter blob ("<name>.sbf", see
// package codec) and a JSON manifest ("<name>.json") carrying its geometry,
// hasher, population, checksum and save time. Manifests can be read without
// decoding the filter.
//
//	repo := repository.New(blobstore.NewLocalStore("/var/lib/filters"),
//	    repository.WithMaxConcurrency(8),
//	    repository.WithIOLimit(64<<20),
//	)
//	if _, err := repo.Save(ctx, "users", f); err != nil {
//	    return err
//	}
//	filters, err := repo.LoadAll(ctx, []string{"users", "sessions"})
package repository
