package version

import runtimeDebug "runtime/debug"

// Set at build time with -ldflags
var (
	Version string
	Commit  string
)

func init() {
	if Version == "" {
		if buildInfo, ok := runtimeDebug.ReadBuildInfo(); ok {
			Version = buildInfo.Main.Version
		}
	}

	if Commit == "" {
		Commit = vcsRevision()
	}
}

func vcsRevision() string {
	buildInfo, ok := runtimeDebug.ReadBuildInfo()
	if !ok {
		return ""
	}

	for _, setting := range buildInfo.Settings {
		if setting.Key == "vcs.revision" {
			return setting.Value
		}
	}

	return ""
}
