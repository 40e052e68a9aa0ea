package config

import (
	"github.com/spf13/pflag"
)

// Flag names shared by all commands.
const (
	FlagConfig         = "config"
	FlagPublisher      = "publisher"
	FlagAggregator     = "aggregator"
	FlagRPC            = "rpc"
	FlagNetwork        = "network"
	FlagPackage        = "package"
	FlagRegistry       = "registry"
	FlagEpochs         = "epochs"
	FlagCVEpochs       = "cv-epochs"
	FlagGasBudget      = "gas-budget"
	FlagConfirmTimeout = "confirm-timeout"
	FlagBackend        = "backend"
	FlagS3Bucket       = "s3-bucket"
	FlagS3Endpoint     = "s3-endpoint"
	FlagDataDir        = "data-dir"
	FlagKeystore       = "keystore"
	FlagLogLevel       = "log-level"
	FlagSingleFlight   = "single-flight"
)

// RegisterFlags declares the config override flags on fs. Their defaults are
// zero values: only flags set on the command line override other sources.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.StringP(FlagConfig, "c", "", "path to a JSON config file")
	fs.String(FlagPublisher, "", "Walrus publisher base URL")
	fs.String(FlagAggregator, "", "Walrus aggregator base URL")
	fs.String(FlagRPC, "", "Sui full node JSON-RPC URL")
	fs.String(FlagNetwork, "", "network used for explorer links (testnet, mainnet)")
	fs.String(FlagPackage, "", "marketplace package id")
	fs.String(FlagRegistry, "", "global registry object id")
	fs.Int(FlagEpochs, 0, "default storage epochs for uploads")
	fs.Int(FlagCVEpochs, 0, "storage epochs for encrypted CVs")
	fs.Uint64(FlagGasBudget, 0, "gas budget in MIST")
	fs.Duration(FlagConfirmTimeout, 0, "how long to wait for transaction confirmation")
	fs.String(FlagBackend, "", "blob backend: walrus or s3")
	fs.String(FlagS3Bucket, "", "bucket for the s3 backend")
	fs.String(FlagS3Endpoint, "", "endpoint for S3-compatible storage")
	fs.String(FlagDataDir, "", "directory for the local database and wallet")
	fs.String(FlagKeystore, "", "wallet keystore path")
	fs.String(FlagLogLevel, "", "log level (debug, info, warn, error)")
	fs.Bool(FlagSingleFlight, false, "reject concurrent applications to the same job")
}

func configPath(fs *pflag.FlagSet) string {
	if fs == nil {
		return ""
	}
	p, err := fs.GetString(FlagConfig)
	if err != nil {
		return ""
	}
	return p
}

// applyFlags copies every explicitly set flag into c.
func (c *Config) applyFlags(fs *pflag.FlagSet) error {
	if fs == nil {
		return nil
	}

	strs := map[string]*string{
		FlagPublisher:  &c.PublisherURL,
		FlagAggregator: &c.AggregatorURL,
		FlagRPC:        &c.RPCURL,
		FlagNetwork:    &c.Network,
		FlagPackage:    &c.PackageID,
		FlagRegistry:   &c.GlobalRegistry,
		FlagBackend:    &c.BlobBackend,
		FlagS3Bucket:   &c.S3Bucket,
		FlagS3Endpoint: &c.S3Endpoint,
		FlagDataDir:    &c.DataDir,
		FlagKeystore:   &c.KeystorePath,
		FlagLogLevel:   &c.LogLevel,
	}
	for name, dst := range strs {
		if !fs.Changed(name) {
			continue
		}
		v, err := fs.GetString(name)
		if err != nil {
			return err
		}
		*dst = v
	}

	ints := map[string]*int{
		FlagEpochs:   &c.DefaultEpochs,
		FlagCVEpochs: &c.CVEpochs,
	}
	for name, dst := range ints {
		if !fs.Changed(name) {
			continue
		}
		v, err := fs.GetInt(name)
		if err != nil {
			return err
		}
		*dst = v
	}

	if fs.Changed(FlagGasBudget) {
		v, err := fs.GetUint64(FlagGasBudget)
		if err != nil {
			return err
		}
		c.GasBudget = v
	}
	if fs.Changed(FlagConfirmTimeout) {
		v, err := fs.GetDuration(FlagConfirmTimeout)
		if err != nil {
			return err
		}
		c.ConfirmTimeout = v
	}
	if fs.Changed(FlagSingleFlight) {
		v, err := fs.GetBool(FlagSingleFlight)
		if err != nil {
			return err
		}
		c.SingleFlight = v
	}
	return nil
}
