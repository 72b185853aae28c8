// Package buildinfo reports which dagflow build is running.
//
// The CLI prints it for --version, the HTTP server returns it from /healthz,
// and the remote definition source sends it as its User-Agent. Release
// builds stamp the variables with ldflags:
//
//	go build -ldflags "-X github.com/matzehuels/dagflow/pkg/buildinfo.Version=v0.3.0 \
//	    -X github.com/matzehuels/dagflow/pkg/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	    -X github.com/matzehuels/dagflow/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)" \
//	    ./cmd/dagflow
package buildinfo

import "fmt"

// Stamped at link time. Local builds keep the placeholders.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Info is the build stamp in a form that serializes cleanly.
type Info struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"built"`
}

// Current returns the stamp of the running binary.
func Current() Info {
	return Info{Version: Version, Commit: Commit, Date: Date}
}

// UserAgent returns the User-Agent dagflow sends to other dagflow servers.
func UserAgent() string { return "dagflow/" + Version }

// String returns the stamp as "key: value" lines.
func String() string {
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s", Version, Commit, Date)
}

// Template returns the cobra version template for the dagflow root command.
func Template() string {
	return fmt.Sprintf("{{.Name}} %s (commit %s, built %s)\n", Version, Commit, Date)
}
