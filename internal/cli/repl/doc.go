// Package repl is the interactive mode of kernel-cli. Each line is either a
// shell command (help, history, exit) or a management request written as
//
//	/subsystem=ejb3:read-attribute(name=pool-size)
//	:read-resource(recursive=true)
//
// which is parsed into a management.Operation and executed remotely.
package repl
