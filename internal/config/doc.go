// Package config loads Osprey's own configuration: where burrowd listens
// and which credentials to present.
//
// The file lives at ~/.config/osprey/config.toml and is optional; a
// missing file yields defaults (local daemon, no credentials, info-level
// logging). Credentials are only required for the push channel; the HTTP
// API accepts anonymous reads on localhost installs.
//
// Example:
//
//	api_bind = "127.0.0.1:9482"
//	username = "admin"
//	password = "hunter2"
//	log_level = "debug"
package config
