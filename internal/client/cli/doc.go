// Package cli implements the podcli command tree.
//
// The root command loads configuration (see package config), opens the local
// database and wires the blob store, the Sui gateway and the services before
// any subcommand runs. Write commands unlock the wallet keystore, prompting
// for its password unless PODGUILD_WALLET_PASSWORD is set.
//
//	podcli wallet new|import|address
//	podcli apply --job ID --pod ID [--cover-letter TEXT|--cover-letter-file F] [--contact C] [--cv FILE]
//	podcli cv fetch BLOB [--type MIME] [--out FILE]
//	podcli blob exists|url BLOB
//	podcli pod create|join, podcli job post, podcli hire
//	podcli pods, podcli jobs [--pod ID], podcli applications JOB, podcli profile [ADDR]
//	podcli history [--limit N] [--orphans]
package cli
