// Package config loads runtime configuration for the podguild CLI.
//
// Sources & precedence
//
//  1. Built-in testnet defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or --config.
//  3. PODGUILD_* environment variables, optionally from a .env file found
//     in the working directory or one of its parents.
//  4. Command-line flags set explicitly (see RegisterFlags).
//
// # JSON schema
//
// Durations use timex.Duration, so values can be strings like "60s" or
// integer nanoseconds:
//
//	{
//	  "rpc_url": "https://fullnode.testnet.sui.io:443",
//	  "publisher_url": "https://publisher.walrus-testnet.walrus.space",
//	  "cv_epochs": 10,
//	  "confirm_timeout": "60s",
//	  "blob_backend": "walrus"
//	}
//
// Environment durations are integers in the unit named by the variable,
// e.g. PODGUILD_CONFIRM_TIMEOUT_SECONDS=90 or PODGUILD_CONFIRM_POLL_INTERVAL_MS=500.
package config
