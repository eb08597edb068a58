package version

import "runtime"

// Build information, injected via ldflags at build time:
//
//	-X github.com/pscheid92/tasklists/internal/platform/version.Version=v1.2.3
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
}

func Get() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
	}
}

// UserAgent identifies API clients built from this module.
func UserAgent(component string) string {
	return "tasklists-" + component + "/" + Version
}
