// Package config loads and validates application configuration: which
// storage backend persists mapping state, how to reach it, and per-kind
// engine overrides. Configuration comes from a JSON file with environment
// variable overrides layered on top, so deployments can switch backends
// without editing files.
package config
