package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// You can set the version at build time using something like:
// go build -ldflags "-X github.com/vsariola/keysynth/version.Version=$(git describe --dirty)"

var Version string

// Hash is the short VCS revision the binary was built from, with -dirty
// appended for modified working trees. Empty when built outside a checkout.
var Hash = func() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	var revision string
	modified := false
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
		case "vcs.modified":
			modified = setting.Value == "true"
		}
	}
	if len(revision) > 7 {
		revision = revision[:7]
	}
	if revision != "" && modified {
		revision += "-dirty"
	}
	return revision
}()

var VersionOrHash = func() string {
	if Version != "" {
		return Version
	}
	if Hash != "" {
		return Hash
	}
	return "dev"
}()

// Banner is the one line description printed by -v.
func Banner(program string) string {
	return fmt.Sprintf("%s %s (%s %s/%s)", program, VersionOrHash, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
