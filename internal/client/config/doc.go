// Package config loads runtime configuration for the tutorsync console.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. Command-line flags, which override earlier values.
//
// # JSON schema
//
// Durations use timex.Duration, so "5s" and integer nanoseconds both work:
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "remote_timeout": "5s",
//	  "refresh_interval": "5s",
//	  "store_driver": "bolt",
//	  "genai_keys": ["k1", "k2"]
//	}
//
// Environment variables are not consulted.
package config
