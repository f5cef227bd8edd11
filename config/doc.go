// Package config loads the client configuration from defaults, an optional
// YAML file, a .env file and UPTIME_* environment variables, and validates
// the result.
package config
