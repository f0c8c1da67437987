// Package config handles configuration loading and management for callsy.
//
// It provides functionality for:
//   - Loading configuration from .callsy.yaml or callsy.yaml files
//   - Default configuration values
//   - Layering command-line values over file values
//   - ${VAR} expansion from a .env file and the OS environment
package config
