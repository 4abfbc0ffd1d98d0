package runner

import (
	"errors"
	"fmt"
	"os"
	"time"

	v1 "github.com/chrontax/cra/apis/v1"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"
)

var (
	defaultValidator = validator.New(validator.WithRequiredStructEnabled())
)

// ParseManifest parses a YAML or JSON archive manifest and validates it. The
// returned manifest still contains unexpanded ${VAR} references.
func ParseManifest(data []byte) (v1.Archive, error) {
	var manifest v1.Archive
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return v1.Archive{}, fmt.Errorf("failed to unmarshal manifest: %w", err)
	}

	if err := defaultValidator.Struct(manifest); err != nil {
		return v1.Archive{}, fmt.Errorf("failed to validate manifest: %w", err)
	}

	return manifest, nil
}

// LoadManifest parses data, builds the variables and expands them into the
// manifest.
func LoadManifest(data []byte, allowedEnv []string, now time.Time) (v1.Archive, error) {
	manifest, err := ParseManifest(data)
	if err != nil {
		return v1.Archive{}, err
	}

	variables, err := BuildVariables(manifest, allowedEnv, now)
	if err != nil {
		return v1.Archive{}, fmt.Errorf("failed to build variables: %w", err)
	}

	if err := ExpandTemplates(&manifest, variables); err != nil {
		return v1.Archive{}, fmt.Errorf("failed to expand manifest: %w", err)
	}

	return manifest, nil
}

// buildDateLayout is ISO 8601 basic format. It has no colons, so the date can
// go into S3 keys and file names.
const buildDateLayout = "20060102T150405Z"

// BuildVariables creates the variables map for expansion: the built-in
// MANIFEST_NAME, BUILD_DATE_ISO8601 and BUILD_DATE_RFC3339 plus every allowed
// environment variable. An allowed variable that is unset is an error.
func BuildVariables(manifest v1.Archive, allowedEnv []string, now time.Time) (map[string]string, error) {
	date := now.UTC()
	variables := map[string]string{
		"MANIFEST_NAME":      manifest.Metadata.Name,
		"BUILD_DATE_ISO8601": date.Format(buildDateLayout),
		"BUILD_DATE_RFC3339": date.Format(time.RFC3339),
	}

	var errs error
	for _, envName := range allowedEnv {
		val, ok := os.LookupEnv(envName)
		if !ok {
			errs = errors.Join(errs, fmt.Errorf("environment variable %q is not set", envName))
			continue
		}
		variables[envName] = val
	}

	if errs != nil {
		return nil, errs
	}

	return variables, nil
}
