package sinks

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/chrontax/cra/internal/engine"
	"github.com/chrontax/cra/internal/integrations/awss3"
)

// S3Uploader is the part of manager.Uploader used by S3Sink.
type S3Uploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// S3Config configures an S3 sink. Keys are written below Prefix when set.
type S3Config struct {
	awss3.Config
	Bucket string
	Prefix string
}

// S3Sink uploads archives and extracted files as S3 objects.
type S3Sink struct {
	bucket   string
	prefix   string
	uploader S3Uploader
}

func NewS3Sink(ctx context.Context, cfg S3Config) (*S3Sink, error) {
	client, err := awss3.NewClient(ctx, cfg.Config)
	if err != nil {
		return nil, err
	}
	return NewS3SinkWithUploader(cfg.Bucket, cfg.Prefix, manager.NewUploader(client)), nil
}

// NewS3SinkWithUploader creates a sink around an existing uploader.
func NewS3SinkWithUploader(bucket, prefix string, uploader S3Uploader) *S3Sink {
	return &S3Sink{
		bucket:   bucket,
		prefix:   strings.Trim(prefix, "/"),
		uploader: uploader,
	}
}

func (s *S3Sink) Name() string {
	if s.prefix == "" {
		return fmt.Sprintf("s3(%s)", s.bucket)
	}
	return fmt.Sprintf("s3(%s/%s)", s.bucket, s.prefix)
}

func (s *S3Sink) Kind() string {
	return "s3"
}

// Key returns the object key a write to p lands on.
func (s *S3Sink) Key(p string) string {
	p = strings.TrimPrefix(p, "/")
	if s.prefix == "" {
		return p
	}
	return path.Join(s.prefix, p)
}

func (s *S3Sink) Write(ctx context.Context, p string, data io.Reader) error {
	key := s.Key(p)
	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        data,
		ContentType: aws.String(contentType(key)),
	})
	if err != nil {
		return fmt.Errorf("failed to upload to s3://%s/%s: %w", s.bucket, key, err)
	}
	return nil
}

// contentType labels archives with their media type and anything else as
// opaque bytes.
func contentType(key string) string {
	if format, ok := engine.FormatFromExtension(path.Ext(key)); ok {
		return format.MediaType()
	}
	return "application/octet-stream"
}

func (s *S3Sink) Close(context.Context) error {
	return nil
}
