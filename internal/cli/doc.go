// Package cli wires together the Cobra command tree for the inspect binary.
//
// It defines the root command and its subcommands (review, config, models,
// cache, version), binds flags, loads configuration, runs the review
// pipeline and maps the outcome to deterministic exit codes.
package cli
