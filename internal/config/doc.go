// Package config handles configuration loading, parsing, and validation
// from environment variables and optional config files. It provides
// type-safe access to server and storage settings while keeping
// configuration details separate from business logic.
package config
