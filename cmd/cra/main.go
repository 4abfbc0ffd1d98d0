package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// application owns state shared by the root command hooks and main.
type application struct {
	logger *zap.Logger
}

func newApp() *cli.Command {
	return (&application{}).command()
}

func (a *application) command() *cli.Command {
	return &cli.Command{
		Name:  "cra",
		Usage: "Read, write and convert zip, tar and 7z archives",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "debug",
				Aliases: []string{"d"},
				Usage:   "Enable debug logging",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Value:   "info",
				Usage:   "Log Level (debug, info, warn, error, fatal)",
				Action: func(_ context.Context, _ *cli.Command, s string) error {
					if _, err := zapcore.ParseLevel(s); err != nil {
						return fmt.Errorf("invalid log level %s: %w", s, err)
					}
					return nil
				},
			},
			&cli.StringFlag{
				Name:    "s3-region",
				Usage:   "Region for s3:// locations",
				Sources: cli.EnvVars("CRA_S3_REGION"),
			},
			&cli.StringFlag{
				Name:    "s3-endpoint",
				Usage:   "Endpoint for S3-compatible storage",
				Sources: cli.EnvVars("CRA_S3_ENDPOINT"),
			},
			&cli.BoolFlag{
				Name:    "s3-path-style",
				Usage:   "Use path-style S3 addressing",
				Sources: cli.EnvVars("CRA_S3_PATH_STYLE"),
			},
			&cli.StringSliceFlag{
				Name:  "http-header",
				Usage: "Header sent with http(s):// downloads as 'Name: value' (can be repeated)",
			},
			&cli.StringFlag{
				Name:    "http-user",
				Usage:   "Basic auth user for http(s):// locations",
				Sources: cli.EnvVars("CRA_HTTP_USER"),
			},
			&cli.StringFlag{
				Name:    "http-password",
				Usage:   "Basic auth password for http(s):// locations",
				Sources: cli.EnvVars("CRA_HTTP_PASSWORD"),
			},
			&cli.DurationFlag{
				Name:    "http-timeout",
				Usage:   "Timeout for a whole http(s):// download",
				Sources: cli.EnvVars("CRA_HTTP_TIMEOUT"),
			},
			&cli.BoolFlag{
				Name:    "http-insecure",
				Usage:   "Skip TLS certificate verification for http(s):// locations",
				Sources: cli.EnvVars("CRA_HTTP_INSECURE"),
			},
		},
		Commands: []*cli.Command{
			newDetectCommand(),
			newListCommand(),
			newExtractCommand(),
			newCreateCommand(),
			newConvertCommand(),
			newBuildCommand(),
			newValidateCommand(),
			newVersionCommand(),
		},
		Before: func(ctx context.Context, command *cli.Command) (context.Context, error) {
			logger, err := createLogger(command.Bool("debug"), command.String("log-level"))
			if err != nil {
				return nil, err
			}
			a.logger = logger

			logger.Debug("logger created", zap.String("log_level", command.String("log-level")))
			return withLogger(ctx, logger), nil
		},
		ExitErrHandler: func(ctx context.Context, _ *cli.Command, err error) {
			if err == nil {
				return
			}
			if logger := loggerFrom(ctx); logger != nil {
				logger.Fatal("failed to run application", zap.Error(err))
			}
			log.Fatal(fmt.Errorf("failed to run application: %w", err))
		},
	}
}

func (a *application) sync() {
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &application{}
	defer a.sync()

	_ = a.command().Run(ctx, os.Args)
}
