// Package confloader loads configuration with koanf.
//
// Sources, highest priority first:
//
//  1. Overrides (command line flags)
//  2. Environment variables (KERNEL_ prefix)
//  3. YAML configuration file
//  4. Defaults already present in the target struct
//
// Watcher reports configuration file changes through fsnotify so the
// server can re-apply reloadable settings.
package confloader
