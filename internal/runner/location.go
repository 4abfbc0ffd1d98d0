package runner

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/chrontax/cra/internal/engine"
	"github.com/chrontax/cra/internal/engine/sinks"
	"github.com/chrontax/cra/internal/engine/sources"
	"github.com/chrontax/cra/internal/integrations/awss3"
	"github.com/spf13/afero"
)

type LocationKind int

const (
	LocationFile LocationKind = iota
	LocationStdio
	LocationS3
	LocationHTTP
)

func (k LocationKind) String() string {
	switch k {
	case LocationStdio:
		return "stdio"
	case LocationS3:
		return "s3"
	case LocationHTTP:
		return "http"
	default:
		return "file"
	}
}

// Location is where an archive is read from or written to: "-" for
// stdin/stdout, s3://bucket/key, http(s)://... (read only) or a local path.
type Location struct {
	Kind   LocationKind
	Raw    string
	Bucket string
	// Path is the key for S3, the URL for HTTP and the file path otherwise.
	Path string
}

func ParseLocation(raw string) (Location, error) {
	switch {
	case raw == "":
		return Location{}, fmt.Errorf("empty location")
	case raw == "-":
		return Location{Kind: LocationStdio, Raw: raw}, nil
	case strings.HasPrefix(raw, "s3://"):
		bucket, key, err := awss3.ParseURL(raw)
		if err != nil {
			return Location{}, err
		}
		return Location{Kind: LocationS3, Raw: raw, Bucket: bucket, Path: key}, nil
	case strings.HasPrefix(raw, "http://"), strings.HasPrefix(raw, "https://"):
		return Location{Kind: LocationHTTP, Raw: raw, Path: raw}, nil
	default:
		return Location{Kind: LocationFile, Raw: raw, Path: raw}, nil
	}
}

// Resolver turns locations into sources and sinks.
type Resolver struct {
	Fs     afero.Fs
	Stdin  io.Reader
	Stdout io.Writer
	S3     awss3.Config
	HTTP   sources.HTTPConfig

	// NewS3Source and NewS3Sink default to the real S3 client.
	NewS3Source func(ctx context.Context, bucket string) (engine.Source, error)
	NewS3Sink   func(ctx context.Context, bucket string) (engine.Sink, error)
}

// NewResolver returns a resolver backed by the OS filesystem and the default
// AWS configuration.
func NewResolver(stdin io.Reader, stdout io.Writer) *Resolver {
	return &Resolver{
		Fs:     afero.NewOsFs(),
		Stdin:  stdin,
		Stdout: stdout,
	}
}

func (r *Resolver) fs() afero.Fs {
	if r.Fs == nil {
		return afero.NewOsFs()
	}
	return r.Fs
}

// Source returns a source able to read loc and the path to pass to it.
func (r *Resolver) Source(ctx context.Context, loc Location) (engine.Source, string, error) {
	switch loc.Kind {
	case LocationStdio:
		if r.Stdin == nil {
			return nil, "", fmt.Errorf("stdin is not available")
		}
		return sources.NewStreamSource(r.Stdin), loc.Raw, nil
	case LocationS3:
		if r.NewS3Source != nil {
			source, err := r.NewS3Source(ctx, loc.Bucket)
			return source, loc.Path, err
		}
		source, err := sources.NewS3Source(ctx, sources.S3Config{Config: r.S3, Bucket: loc.Bucket})
		return source, loc.Path, err
	case LocationHTTP:
		source, err := sources.NewHTTPSource(r.HTTP)
		return source, loc.Path, err
	default:
		return sources.NewFilesystemSource(r.fs()), loc.Path, nil
	}
}

// Sink returns a sink able to write loc and the path to pass to it.
func (r *Resolver) Sink(ctx context.Context, loc Location) (engine.Sink, string, error) {
	switch loc.Kind {
	case LocationStdio:
		if r.Stdout == nil {
			return nil, "", fmt.Errorf("stdout is not available")
		}
		return sinks.NewStreamSink(r.Stdout), loc.Raw, nil
	case LocationS3:
		if r.NewS3Sink != nil {
			sink, err := r.NewS3Sink(ctx, loc.Bucket)
			return sink, loc.Path, err
		}
		sink, err := sinks.NewS3Sink(ctx, sinks.S3Config{Config: r.S3, Bucket: loc.Bucket})
		if err != nil {
			return nil, "", err
		}
		return sink, loc.Path, nil
	case LocationHTTP:
		return nil, "", fmt.Errorf("cannot write to %s: http locations are read only", loc.Raw)
	default:
		return sinks.NewFilesystemSink(r.fs()), loc.Path, nil
	}
}

// Read loads the whole content at raw.
func (r *Resolver) Read(ctx context.Context, raw string) ([]byte, error) {
	loc, err := ParseLocation(raw)
	if err != nil {
		return nil, err
	}

	source, path, err := r.Source(ctx, loc)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", raw, err)
	}
	defer func() { _ = source.Close(ctx) }()

	return source.Read(ctx, path)
}

// Write stores data at raw.
func (r *Resolver) Write(ctx context.Context, raw string, data io.Reader) error {
	loc, err := ParseLocation(raw)
	if err != nil {
		return err
	}

	sink, path, err := r.Sink(ctx, loc)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", raw, err)
	}

	if err := sink.Write(ctx, path, data); err != nil {
		return err
	}
	return sink.Close(ctx)
}
