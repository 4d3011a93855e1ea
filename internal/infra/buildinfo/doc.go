// Package buildinfo exposes version information injected with ldflags:
//
//	go build -ldflags "-X github.com/wildfly/wildfly-sub133/internal/infra/buildinfo.Version=v1.0.0"
package buildinfo
