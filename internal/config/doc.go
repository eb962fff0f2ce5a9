// Package config loads and validates the TOML configuration for the daemon
// and CLI. Defaults are applied first, then the file, then environment
// fallbacks for SaaS credentials. Directory paths are derived from data_dir
// unless set explicitly.
package config
