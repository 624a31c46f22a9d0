// Package version exposes the build version, overridable at link time:
//
//	go build -ldflags "-X github.com/getpup/pupsourcing-dbcontext/pkg/version.Version=1.2.3"
package version

// Version is the current release.
var Version = "0.1.0-dev"
