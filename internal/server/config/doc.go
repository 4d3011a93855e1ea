// Package config provides server configuration for kernel-server.
//
//   - spec.go: ServerConfig struct definition
//   - default.go: default configuration values
//   - verify.go: validation (address formats, TLS files, pool sizes)
//   - sanitize.go: log sanitization (hide credentials)
//   - convert.go: conversion to component configurations
//
// Configuration is loaded via internal/infra/confloader and supports
// files, environment variables and flags.
package config
