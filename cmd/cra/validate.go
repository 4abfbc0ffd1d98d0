package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chrontax/cra/internal/runner"
	"github.com/go-playground/validator/v10"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

func newValidateCommand() *cli.Command {
	return &cli.Command{
		Name:  "validate",
		Usage: "Validate a manifest",
		Flags: []cli.Flag{
			allowedEnvFlag(),
		},
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name:      "manifest",
				UsageText: "The manifest file to validate",
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			logger := getLogger(ctx)

			manifestFilename := command.StringArg("manifest")
			if manifestFilename == "" {
				return fmt.Errorf("no manifest provided")
			}

			resolver, err := newResolver(command)
			if err != nil {
				return err
			}

			data, err := resolver.Read(ctx, manifestFilename)
			if err != nil {
				return fmt.Errorf("failed to read manifest '%s': %w", manifestFilename, err)
			}

			logger = logger.With(zap.String("manifest_filename", manifestFilename))
			logger.Debug("validating manifest")

			w := command.Root().Writer
			manifest, err := runner.LoadManifest(data, command.StringSlice("allowed-env"), time.Now())
			if err != nil {
				fmt.Fprintln(w, formatValidationError(err))
				return fmt.Errorf("manifest '%s' is invalid", manifestFilename)
			}

			if _, err := runner.New(logger, manifest, resolver); err != nil {
				fmt.Fprintln(w, err)
				return fmt.Errorf("manifest '%s' is invalid", manifestFilename)
			}

			fmt.Fprintf(w, "✓ Manifest '%s' is valid\n", manifestFilename)
			return nil
		},
	}
}

func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("manifest has %d validation error(s):", len(validationErrs)))
		for _, fe := range validationErrs {
			sb.WriteString(fmt.Sprintf("\n  • %s: failed '%s' validation", fe.Namespace(), fe.Tag()))
			if fe.Param() != "" {
				sb.WriteString(fmt.Sprintf(" (param: %s)", fe.Param()))
			}
		}
		return errors.New(sb.String())
	}
	return err
}
