// Package tlsroots manages TLS material for the HTTP listener and the CLI.
//
// CertReloader serves the listener certificate and reloads it when the
// files change. Pool collects trusted roots for clients that connect to a
// server with a private CA.
package tlsroots
