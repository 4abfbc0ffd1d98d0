package main

import (
	"context"
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/urfave/cli/v3"
)

type buildInfo struct {
	Version   string
	GoVersion string
	Commit    string
	Time      string
	Modified  bool
}

// readBuildInfo reads version control stamps embedded by the go toolchain.
func readBuildInfo() buildInfo {
	b := buildInfo{Version: "(devel)", GoVersion: runtime.Version()}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return b
	}
	if info.Main.Version != "" {
		b.Version = info.Main.Version
	}

	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			b.Commit = setting.Value
		case "vcs.time":
			b.Time = setting.Value
		case "vcs.modified":
			b.Modified = setting.Value == "true"
		}
	}
	return b
}

func newVersionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Print version information",
		Action: func(_ context.Context, command *cli.Command) error {
			b := readBuildInfo()
			w := command.Root().Writer

			fmt.Fprintf(w, "cra %s\n", b.Version)
			fmt.Fprintf(w, "go: %s\n", b.GoVersion)
			if b.Commit != "" {
				dirty := ""
				if b.Modified {
					dirty = " (dirty)"
				}
				fmt.Fprintf(w, "commit: %s%s\n", b.Commit, dirty)
			}
			if b.Time != "" {
				fmt.Fprintf(w, "built: %s\n", b.Time)
			}
			fmt.Fprintf(w, "formats: %s\n", strings.Join(formatNames(), ", "))
			return nil
		},
	}
}
