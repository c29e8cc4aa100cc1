package main

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

var version = "dev"

func versionCmd() *cobra.Command {
	var short bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the mysteryweb version and build details",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			if short {
				cmd.Println(version)
				return
			}
			info, _ := debug.ReadBuildInfo()
			cmd.Println(versionString(info))
		},
	}
	cmd.Flags().BoolVar(&short, "short", false, "Print only the version number")
	return cmd
}

// versionString formats the version with the VCS revision and Go toolchain
// when the binary carries build info.
func versionString(info *debug.BuildInfo) string {
	out := fmt.Sprintf("mysteryweb %s", version)
	if info == nil {
		return out + " " + runtime.Version()
	}
	var revision, modified string
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.modified":
			modified = s.Value
		}
	}
	if len(revision) > 12 {
		revision = revision[:12]
	}
	if revision != "" {
		out += " (" + revision
		if modified == "true" {
			out += "-dirty"
		}
		out += ")"
	}
	return out + " " + info.GoVersion
}
