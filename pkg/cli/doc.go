// Package cli provides common plumbing for the onkyoctl command-line
// tool.
//
// This package includes:
//   - Configuration management (receiver contexts)
//   - Output formatting (YAML, JSON, raw, tables)
//   - Request file loading (YAML/JSON)
//   - Terminal UI components for the monitor view
//
// Configuration is stored in ~/.onkyo/<app>/ directory, supporting
// multiple contexts similar to kubectl. A context names one receiver
// and its connection settings (host, port, zone, end-byte variant).
//
// Example usage:
//
//	// Initialize config for your app
//	cfg, err := cli.LoadConfig("onkyoctl")
//
//	// Resolve the receiver context (-c flag, env, or current)
//	ctx, err := cfg.ResolveContext(contextName)
//
//	// Output result
//	cli.Output(result, cli.OutputOptions{
//	    Format: cli.FormatJSON,
//	    File:   outputPath,
//	})
package cli
