package main

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/chrontax/cra/internal/engine/filter"
	"github.com/chrontax/cra/internal/engine/sources"
	"github.com/chrontax/cra/internal/integrations/awss3"
	"github.com/chrontax/cra/internal/runner"
	"github.com/chrontax/cra/pkg/cra"
	"github.com/samber/lo"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

func formatNames() []string {
	return lo.Map([]cra.Format{cra.Zip, cra.Tar, cra.SevenZip}, func(f cra.Format, _ int) string {
		return f.String()
	})
}

func filterFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "filter",
		Usage: `CEL expression over name, dir and size selecting entries, e.g. '!dir && name.endsWith(".txt")'`,
	}
}

func inputFormatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "input-format",
		Usage: "Skip detection and read the input as this format (zip, tar, 7z)",
	}
}

func maxEntrySizeFlag() cli.Flag {
	return &cli.Int64Flag{
		Name:  "max-entry-size",
		Usage: "Fail when a single entry is larger than this many bytes (0 disables the limit)",
	}
}

func methodFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "method",
		Usage: "Compression method: deflate, store or zstd for zip; deflate, copy or zstd for 7z",
	}
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "Archive format (zip, tar, 7z); inferred from the destination extension when omitted",
	}
}

func newResolver(command *cli.Command) (*runner.Resolver, error) {
	root := command.Root()
	resolver := runner.NewResolver(root.Reader, root.Writer)
	resolver.S3 = awss3.Config{
		Region:         root.String("s3-region"),
		Endpoint:       root.String("s3-endpoint"),
		ForcePathStyle: root.Bool("s3-path-style"),
	}

	httpCfg, err := httpConfig(root)
	if err != nil {
		return nil, err
	}
	resolver.HTTP = httpCfg
	return resolver, nil
}

// httpConfig builds the download settings for http(s):// locations from the
// root flags.
func httpConfig(root *cli.Command) (sources.HTTPConfig, error) {
	cfg := sources.HTTPConfig{
		Timeout:  root.Duration("http-timeout"),
		Insecure: root.Bool("http-insecure"),
	}

	for _, raw := range root.StringSlice("http-header") {
		name, value, ok := strings.Cut(raw, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return cfg, fmt.Errorf("invalid --http-header %q, expected 'Name: value'", raw)
		}
		if cfg.Headers == nil {
			cfg.Headers = map[string]string{}
		}
		cfg.Headers[name] = strings.TrimSpace(value)
	}

	if user := root.String("http-user"); user != "" {
		cfg.Auth = &sources.BasicAuthConfig{Username: user, Password: root.String("http-password")}
	}

	return cfg, nil
}

// archiveOptions maps the codec flags of command to options for format.
func archiveOptions(command *cli.Command, logger *zap.Logger, format cra.Format) ([]cra.Option, error) {
	opts := []cra.Option{cra.WithLogger(logger.Named("cra"))}

	if size := command.Int64("max-entry-size"); size > 0 {
		opts = append(opts, cra.WithMaxEntrySize(size))
	}

	method := command.String("method")
	if method == "" {
		return opts, nil
	}

	switch format {
	case cra.Zip:
		m, err := cra.ParseZipMethod(method)
		if err != nil {
			return nil, err
		}
		opts = append(opts, cra.WithZipMethod(m))
	case cra.SevenZip:
		m, err := cra.ParseSevenZipMethod(method)
		if err != nil {
			return nil, err
		}
		opts = append(opts, cra.WithSevenZipMethod(m))
	default:
		logger.Warn("compression method ignored", zap.String("format", format.String()), zap.String("method", method))
	}

	return opts, nil
}

// openArchive reads and decodes the archive at src.
func openArchive(ctx context.Context, command *cli.Command, logger *zap.Logger, src string) (*cra.Reader, error) {
	resolver, err := newResolver(command)
	if err != nil {
		return nil, err
	}

	data, err := resolver.Read(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", src, err)
	}

	var opts []cra.Option
	opts = append(opts, cra.WithLogger(logger.Named("cra")))
	if size := command.Int64("max-entry-size"); size > 0 {
		opts = append(opts, cra.WithMaxEntrySize(size))
	}

	if name := command.String("input-format"); name != "" {
		format, err := cra.ParseFormat(name)
		if err != nil {
			return nil, err
		}
		return cra.NewReaderFormat(data, format, opts...)
	}

	return cra.NewReader(data, opts...)
}

// outputFormat picks the --format flag, or else the destination's extension.
func outputFormat(command *cli.Command, dest string) (cra.Format, error) {
	if name := command.String("format"); name != "" {
		return cra.ParseFormat(name)
	}

	if format, ok := cra.FormatFromExtension(path.Ext(dest)); ok {
		return format, nil
	}

	return 0, fmt.Errorf("cannot infer the archive format from %q, use --format", dest)
}

// writeArchive encodes w and stores it at dest, refusing to write binary data
// to a terminal.
func writeArchive(ctx context.Context, command *cli.Command, dest string, w *cra.Writer) error {
	if dest == "-" && isTerminal(command.Root().Writer) {
		return fmt.Errorf("refusing to write a %s archive to a terminal, redirect stdout or use --out", w.Format())
	}

	data, err := w.Archive()
	if err != nil {
		return err
	}

	resolver, err := newResolver(command)
	if err != nil {
		return err
	}
	if err := resolver.Write(ctx, dest, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write %s: %w", dest, err)
	}
	return nil
}

func compileFilter(command *cli.Command) (*filter.Filter, error) {
	return filter.Compile(command.String("filter"))
}
