package version

import (
	"errors"
	"fmt"
	"runtime"
	"runtime/debug"
	"sync"
)

const unknownVersion = "<unknown>"

var (
	revisionOnce sync.Once
	revision     string
	buildTime    string
)

func ParseBuildInfo() (string, string, error) {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "", "", errors.New("failed to read build info")
	}
	var gitHash string
	var time string
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			gitHash = s.Value
		case "vcs.time":
			if len(s.Value) >= 10 {
				time = s.Value[:10]
			}
		}
	}
	if gitHash == "" {
		return "", "", errors.New("no vcs info in build")
	}

	return time, gitHash, nil
}

// GetGitRevision returns the commit the binary was built from, or "<unknown>".
func GetGitRevision() string {
	revisionOnce.Do(func() {
		var err error
		buildTime, revision, err = ParseBuildInfo()
		if err != nil {
			revision = unknownVersion
		}
	})
	return revision
}

func BuildVersionString(appTitle string) string {
	rev := GetGitRevision()
	return fmt.Sprintf("%s\n Git commit:\t%s\n Build date:\t%s\n OS/Arch:\t%s/%s",
		appTitle, rev, buildTime, runtime.GOOS, runtime.GOARCH)
}
