package vault

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// s3API is the subset of *s3.Client used by S3FS.
type s3API interface {
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, opts ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, opts ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// S3Options configures NewS3FS.
type S3Options struct {
	Bucket   string
	Region   string
	Endpoint string // non-empty enables path-style addressing (MinIO and similar)
	Prefix   string // key prefix acting as the storage root
}

// S3FS is a FileSystem over an S3-compatible bucket. Directories are
// zero-length "dir/" marker objects.
type S3FS struct {
	client s3API
	bucket string
	prefix string
}

var _ FileSystem = (*S3FS)(nil)

// NewS3FS creates an S3 file system using the default AWS credential chain.
func NewS3FS(ctx context.Context, opts S3Options) (*S3FS, error) {
	if opts.Bucket == "" {
		return nil, errors.New("s3 bucket is required")
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(opts.Region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	var s3opts []func(*s3.Options)
	if opts.Endpoint != "" {
		s3opts = append(s3opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		})
	}
	return newS3FS(s3.NewFromConfig(cfg, s3opts...), opts.Bucket, opts.Prefix), nil
}

func newS3FS(client s3API, bucket, prefix string) *S3FS {
	prefix = strings.Trim(NormalizePath(prefix), "/")
	if prefix == "." {
		prefix = ""
	}
	return &S3FS{client: client, bucket: bucket, prefix: prefix}
}

func (s *S3FS) key(p string) (string, error) {
	norm := NormalizePath(p)
	if escapes(norm) {
		return "", &PathError{Op: "resolve", Path: p, Err: ErrOutsideRoot}
	}
	if norm == "." {
		return s.prefix, nil
	}
	return path.Join(s.prefix, norm), nil
}

// Exists reports whether p is an object or has objects below it.
func (s *S3FS) Exists(ctx context.Context, p string) (bool, error) {
	key, err := s.key(p)
	if err != nil {
		return false, err
	}
	if key != "" {
		_, err = s.client.HeadObject(ctx, &s3.HeadObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		})
		if err == nil {
			return true, nil
		}
		if !isNotFound(err) {
			return false, fmt.Errorf("s3 head object: %w", err)
		}
		key += "/"
	}

	out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(s.bucket),
		Prefix:  aws.String(key),
		MaxKeys: aws.Int32(1),
	})
	if err != nil {
		return false, fmt.Errorf("s3 list objects: %w", err)
	}
	return len(out.Contents) > 0, nil
}

// Mkdir writes the directory marker for p.
func (s *S3FS) Mkdir(ctx context.Context, p string) error {
	key, err := s.key(p)
	if err != nil {
		return err
	}
	return s.put(ctx, key+"/", nil, "application/x-directory")
}

// WriteBinary uploads data as the object for p.
func (s *S3FS) WriteBinary(ctx context.Context, p string, data []byte) error {
	key, err := s.key(p)
	if err != nil {
		return err
	}
	contentType := mime.TypeByExtension(path.Ext(key))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return s.put(ctx, key, data, contentType)
}

func (s *S3FS) put(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("s3 put object: %w", err)
	}
	return nil
}

func isNotFound(err error) bool {
	var nf *types.NotFound
	var nsk *types.NoSuchKey
	return errors.As(err, &nf) || errors.As(err, &nsk)
}
