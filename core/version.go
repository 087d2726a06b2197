package core

import "fmt"

// VersionInfo はビルド時に -ldflags で埋め込まれる版情報
type VersionInfo struct {
	Version  string `json:"version"`
	Revision string `json:"revision"`
	Build    string `json:"build"`
}

var Version VersionInfo

func SetVersion(version, revision, build string) {
	Version = VersionInfo{
		Version:  version,
		Revision: revision,
		Build:    build,
	}
}

func (v VersionInfo) String() string {
	if v.Version == "" {
		return "dev"
	}
	if v.Revision == "" {
		return v.Version
	}
	return fmt.Sprintf("%s (%s, %s)", v.Version, v.Revision, v.Build)
}
