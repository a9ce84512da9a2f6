// Package buildinfo carries release metadata stamped by the linker:
//
//	go build -ldflags "\
//	  -X github.com/m3rciful/reviewbot/core/buildinfo.Version=v0.3.0 \
//	  -X github.com/m3rciful/reviewbot/core/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	  -X github.com/m3rciful/reviewbot/core/buildinfo.Date=$(date -u +%FT%TZ)" ./cmd/reviewbot
package buildinfo

var (
	// Version is the release tag, "dev" for local builds.
	Version = "dev"
	// Commit is the short source revision.
	Commit = "local"
	// Date is the RFC 3339 build time; empty for local builds.
	Date = ""
)
