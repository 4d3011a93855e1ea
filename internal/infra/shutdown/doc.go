// Package shutdown runs named cleanup hooks when the process is asked to
// stop. Hooks run in reverse registration order under one deadline, so
// the HTTP listener stops before the deployments it routes to, and the
// deployments stop before the services they use.
package shutdown
