// Package cmd implements the command-line interface for graphcal.
//
// This package provides the following commands:
//   - create: Create an event in the configured user's calendar
//   - update: Update an existing event
//   - delete: Delete an event
//   - demo: Create the event described by the [demo] section of the config file
//   - version: Display version information
//
// Credentials come from flags, GRAPH_* environment variables, a .env file or
// a TOML config file, in that order of precedence.
package cmd
