// Package version is set at link time:
//
//	go build -ldflags "-X github.com/openinterpreter/oi-bootstrap/internal/pkg/version.Version=$(git describe --dirty)"
package version

var Version = "was not built properly"
