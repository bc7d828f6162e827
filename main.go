package main

import (
	"runtime/debug"

	"github.com/claii/claii/cmd"
)

// Build metadata, overridable at link time:
//
//	go build -ldflags "-X main.version=... -X main.commit=... -X main.date=..."
var (
	version = "0.2.0"
	commit  = "none"
	date    = "unknown"
)

func init() {
	// Fall back to the vcs revision recorded in the build info.
	if commit == "none" {
		if info, ok := debug.ReadBuildInfo(); ok {
			for _, s := range info.Settings {
				if s.Key == "vcs.revision" && len(s.Value) >= 7 {
					commit = s.Value[:7]
					break
				}
			}
		}
	}
}

func main() {
	cmd.Execute(version, commit, date)
}
