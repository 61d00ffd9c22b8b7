// Package buildinfo holds build-time metadata injected via -ldflags, e.g.
//
//	go build -ldflags "-X github.com/shirasaka-flower/line-gateway/internal/buildinfo.Version=v1.2.0"
//
// Version doubles as the Sentry release.
package buildinfo

// Version is the semantic version or tag for this build.
var Version = "dev"

// Commit is the git commit SHA for this build.
var Commit = ""

// BuildDate is the RFC3339 build timestamp.
var BuildDate = ""
