// Package config resolves server configuration from environment variables.
//
// All settings have working defaults, so an empty environment yields a
// usable configuration rooted at the current working directory with the
// disk shard store.
package config
