// Package config provides centralized configuration management for the
// GRI Pulse application.
//
// Configuration is loaded in three layers, later layers winning:
//
//  1. An optional config.yaml file (path overridable via GRIPULSE_CONFIG)
//  2. Environment variables with the GRIPULSE_ prefix
//  3. A .env file in the working directory, loaded before the environment
//     is read, matching the original deployment convention
//
// The package also owns path resolution: every file the application reads
// or writes (workbooks, generated reports, ETL output, logs, assets) goes
// through the Paths type so that no component invents its own locations.
package config
