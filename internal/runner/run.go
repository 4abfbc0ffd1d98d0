package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	v1 "github.com/chrontax/cra/apis/v1"
	"github.com/chrontax/cra/internal/engine"
	"github.com/chrontax/cra/internal/engine/archivers"
	"github.com/chrontax/cra/internal/engine/codecs"
	"github.com/chrontax/cra/internal/engine/sinks"
	"go.uber.org/zap"
)

// Runner builds the archive described by a manifest and writes it to the
// manifest output.
type Runner struct {
	logger   *zap.Logger
	manifest v1.Archive
	resolver *Resolver
	format   engine.Format
	options  codecs.Options
}

type Option func(*Runner)

// WithOwner fixes the owner recorded in tar headers instead of the process owner.
func WithOwner(owner codecs.Owner) Option {
	return func(r *Runner) {
		r.options.Owner = &owner
	}
}

func WithClock(clock func() time.Time) Option {
	return func(r *Runner) {
		r.options.Clock = clock
	}
}

// New prepares a runner. The manifest must already be validated and expanded.
func New(logger *zap.Logger, manifest v1.Archive, resolver *Resolver, opts ...Option) (*Runner, error) {
	logger.Info("creating runner", zap.String("manifest_name", manifest.Metadata.Name))

	format, err := engine.ParseFormat(manifest.Spec.Format)
	if err != nil {
		return nil, err
	}

	options, err := BuildCodecOptions(format, manifest.Spec.Options)
	if err != nil {
		return nil, err
	}
	options.Logger = logger.Named("codec")

	r := &Runner{
		logger:   logger,
		manifest: manifest,
		resolver: resolver,
		format:   format,
		options:  options,
	}
	for _, opt := range opts {
		opt(r)
	}

	return r, nil
}

// BuildCodecOptions maps manifest options to codec options for format.
func BuildCodecOptions(format engine.Format, spec *v1.ArchiveOptions) (codecs.Options, error) {
	var opts codecs.Options
	if spec == nil {
		return opts, nil
	}

	opts.MaxEntrySize = spec.MaxEntrySize

	if spec.Method == "" {
		return opts, nil
	}

	switch format {
	case engine.FormatZip:
		method, err := codecs.ParseZipMethod(spec.Method)
		if err != nil {
			return opts, err
		}
		opts.ZipMethod = method
	case engine.FormatSevenZip:
		method, err := codecs.ParseSevenZipMethod(spec.Method)
		if err != nil {
			return opts, err
		}
		opts.SevenZipMethod = method
	}

	return opts, nil
}

// Output returns the location the archive is written to.
func (r *Runner) Output() (Location, error) {
	out := r.manifest.Spec.Output
	switch {
	case out == nil || out.Stdout != nil:
		return Location{Kind: LocationStdio, Raw: "-"}, nil
	case out.Filesystem != nil:
		return Location{Kind: LocationFile, Raw: out.Filesystem.Path, Path: out.Filesystem.Path}, nil
	case out.S3 != nil:
		return Location{
			Kind:   LocationS3,
			Raw:    fmt.Sprintf("s3://%s/%s", out.S3.Bucket, out.S3.Key),
			Bucket: out.S3.Bucket,
			Path:   out.S3.Key,
		}, nil
	default:
		return Location{}, fmt.Errorf("invalid output configuration: no output type specified")
	}
}

func (r *Runner) outputResolver() *Resolver {
	s3 := r.manifest.Spec.Output
	if s3 == nil || s3.S3 == nil {
		return r.resolver
	}

	resolver := *r.resolver
	spec := s3.S3
	resolver.S3.ForcePathStyle = spec.ForcePathStyle
	if spec.Region != nil {
		resolver.S3.Region = *spec.Region
	}
	if spec.Endpoint != nil {
		resolver.S3.Endpoint = *spec.Endpoint
	}
	if spec.Credentials != nil {
		resolver.S3.AccessKeyID = spec.Credentials.AccessKeyID
		resolver.S3.SecretAccessKey = spec.Credentials.SecretAccessKey
	}
	return &resolver
}

// Run resolves every entry, encodes the archive and writes it to the output.
func (r *Runner) Run(ctx context.Context) error {
	loc, err := r.Output()
	if err != nil {
		return err
	}

	inner, path, err := r.outputResolver().Sink(ctx, loc)
	if err != nil {
		return fmt.Errorf("failed to build sink: %w", err)
	}

	archiver, err := archivers.NewArchiver(r.format, r.options)
	if err != nil {
		return err
	}

	sink := sinks.NewArchiveSink(inner, archiver, path)
	r.logger.Debug("writing archive", zap.String("format", r.format.String()), zap.String("sink", sink.Name()))

	for i, entry := range r.manifest.Spec.Entries {
		if err := r.addEntry(ctx, sink, entry); err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}
	}

	if err := sink.Close(ctx); err != nil {
		return err
	}

	r.logger.Info("archive written",
		zap.String("output", loc.Raw),
		zap.Int("entries", sink.Entries()),
	)
	return nil
}

func (r *Runner) addEntry(ctx context.Context, sink *sinks.ArchiveSink, entry v1.EntrySpec) error {
	switch {
	case entry.Directory != nil:
		r.logger.Debug("adding directory", zap.String("name", entry.Directory.Name))
		return sink.WriteDirectory(ctx, entry.Directory.Name)

	case entry.File != nil:
		content, err := r.fileContent(ctx, entry.File)
		if err != nil {
			return fmt.Errorf("file %s: %w", entry.File.Name, err)
		}
		if limit := r.options.MaxEntrySize; limit > 0 && int64(len(content)) > limit {
			return &engine.IOError{
				Format: r.format,
				Name:   entry.File.Name,
				Err:    fmt.Errorf("%w: %d bytes exceeds %d", engine.ErrEntryTooLarge, len(content), limit),
			}
		}
		r.logger.Debug("adding file", zap.String("name", entry.File.Name), zap.Int("size", len(content)))
		return sink.Write(ctx, entry.File.Name, bytes.NewReader(content))

	default:
		return errors.New("entry has no type specified")
	}
}

func (r *Runner) fileContent(ctx context.Context, spec *v1.FileEntrySpec) ([]byte, error) {
	switch {
	case spec.Content != nil:
		return []byte(*spec.Content), nil
	case spec.Source != nil:
		if strings.TrimSpace(*spec.Source) == "-" {
			return nil, errors.New("stdin cannot be used as an entry source")
		}
		return r.resolver.Read(ctx, *spec.Source)
	default:
		return []byte{}, nil
	}
}
