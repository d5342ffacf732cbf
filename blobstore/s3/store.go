package s3

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"slices"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/hupe1980/sparsebloom/blobstore"
)

// Store implements blobstore.Store for S3.
type Store struct {
	client   Client
	uploader *manager.Uploader
	bucket   string
	prefix   string
	opts     options
}

var _ blobstore.Store = (*Store)(nil)

// New creates a Store using the default AWS configuration chain.
func New(ctx context.Context, bucket string, optFns ...Option) (*Store, error) {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	var loadOpts []func(*config.LoadOptions) error
	if opts.region != "" {
		loadOpts = append(loadOpts, config.WithRegion(opts.region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("s3: load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.endpoint != "" {
			o.BaseEndpoint = aws.String(opts.endpoint)
		}
		o.UsePathStyle = opts.pathStyle
	})
	return newStore(client, bucket, opts), nil
}

// NewStore creates a Store on an existing client.
func NewStore(client Client, bucket string, optFns ...Option) *Store {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	return newStore(client, bucket, opts)
}

func newStore(client Client, bucket string, opts options) *Store {
	prefix := strings.Trim(opts.prefix, "/")
	if prefix != "" {
		prefix += "/"
	}
	return &Store{
		client: client,
		uploader: manager.NewUploader(client, func(u *manager.Uploader) {
			u.PartSize = opts.partSize
			u.Concurrency = opts.concurrency
		}),
		bucket: bucket,
		prefix: prefix,
		opts:   opts,
	}
}

func (s *Store) key(name string) string {
	return s.prefix + name
}

// Open issues a HeadObject and returns a blob served by ranged GETs.
// Reads use ctx.
func (s *Store) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	key := s.key(name)
	head, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, mapError(err, key)
	}

	return &blob{
		ctx:    ctx,
		client: s.client,
		bucket: s.bucket,
		key:    key,
		size:   aws.ToInt64(head.ContentLength),
	}, nil
}

// Put uploads data. Blobs larger than the part size use a multipart upload.
func (s *Store) Put(ctx context.Context, name string, data []byte) error {
	if name == "" {
		return blobstore.ErrInvalidName
	}
	key := s.key(name)

	if int64(len(data)) <= s.opts.partSize {
		input := &s3.PutObjectInput{
			Bucket:        aws.String(s.bucket),
			Key:           aws.String(key),
			Body:          bytes.NewReader(data),
			ContentLength: aws.Int64(int64(len(data))),
		}
		if s.opts.checksum {
			input.ChecksumCRC32C = aws.String(checksumCRC32C(data))
		}
		if _, err := s.client.PutObject(ctx, input); err != nil {
			return fmt.Errorf("s3: put %s: %w", key, err)
		}
		return nil
	}

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	}
	if s.opts.checksum {
		input.ChecksumAlgorithm = types.ChecksumAlgorithmCrc32c
	}
	if _, err := s.uploader.Upload(ctx, input); err != nil {
		return fmt.Errorf("s3: upload %s: %w", key, err)
	}
	return nil
}

// Delete removes the object. S3 deletes are idempotent.
func (s *Store) Delete(ctx context.Context, name string) error {
	key := s.key(name)
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if errors.Is(mapError(err, key), blobstore.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("s3: delete %s: %w", key, err)
	}
	return nil
}

// List returns the sorted names under prefix, relative to the store prefix.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	var names []string

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.key(prefix)),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("s3: list %s: %w", s.key(prefix), err)
		}
		for _, obj := range page.Contents {
			names = append(names, strings.TrimPrefix(aws.ToString(obj.Key), s.prefix))
		}
	}
	slices.Sort(names)
	return names, nil
}

// mapError turns S3 not-found responses into blobstore.ErrNotFound.
func mapError(err error, key string) error {
	var nf *types.NotFound
	var nsk *types.NoSuchKey
	if errors.As(err, &nf) || errors.As(err, &nsk) {
		return fmt.Errorf("%w: %s", blobstore.ErrNotFound, key)
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey":
			return fmt.Errorf("%w: %s", blobstore.ErrNotFound, key)
		}
	}
	return err
}

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

// checksumCRC32C returns the base64 big-endian CRC32C S3 expects.
func checksumCRC32C(data []byte) string {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], crc32.Checksum(data, castagnoli))
	return base64.StdEncoding.EncodeToString(b[:])
}
