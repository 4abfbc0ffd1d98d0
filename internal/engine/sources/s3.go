package sources

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/chrontax/cra/internal/engine"
	"github.com/chrontax/cra/internal/integrations/awss3"
)

// S3Downloader is an interface for downloading objects from S3.
// This allows for easy mocking in tests.
type S3Downloader interface {
	Download(ctx context.Context, w io.WriterAt, input *s3.GetObjectInput, opts ...func(*manager.Downloader)) (int64, error)
}

// S3Config contains configuration for the S3 source.
type S3Config struct {
	awss3.Config
	Bucket string
}

// S3Source reads archives from S3-compatible object storage.
type S3Source struct {
	bucket     string
	downloader S3Downloader
}

// NewS3Source creates a new S3 source with the given configuration.
func NewS3Source(ctx context.Context, cfg S3Config) (engine.Source, error) {
	client, err := awss3.NewClient(ctx, cfg.Config)
	if err != nil {
		return nil, err
	}

	return &S3Source{
		bucket:     cfg.Bucket,
		downloader: manager.NewDownloader(client),
	}, nil
}

// NewS3SourceWithDownloader creates a new S3 source with a custom downloader.
// This is useful for testing.
func NewS3SourceWithDownloader(bucket string, downloader S3Downloader) engine.Source {
	return &S3Source{
		bucket:     bucket,
		downloader: downloader,
	}
}

func (s *S3Source) Name() string {
	return fmt.Sprintf("s3(%s)", s.bucket)
}

func (s *S3Source) Kind() string {
	return "s3"
}

func (s *S3Source) Read(ctx context.Context, key string) ([]byte, error) {
	buf := manager.NewWriteAtBuffer(nil)

	_, err := s.downloader.Download(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to download s3://%s/%s: %w", s.bucket, key, err)
	}

	return buf.Bytes(), nil
}

func (s *S3Source) Close(ctx context.Context) error {
	return nil
}
