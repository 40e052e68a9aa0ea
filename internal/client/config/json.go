package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/podguild/internal/timex"
)

// jsonConfig is the on-disk shape of the config file. Durations use
// timex.Duration so they can be written as "30s" or integer nanoseconds.
// Absent or zero fields leave the current value untouched.
type jsonConfig struct {
	PublisherURL        string         `json:"publisher_url"`
	AggregatorURL       string         `json:"aggregator_url"`
	RPCURL              string         `json:"rpc_url"`
	Network             string         `json:"network"`
	PackageID           string         `json:"package_id"`
	GlobalRegistry      string         `json:"global_registry"`
	BadgeRegistry       string         `json:"badge_registry"`
	ClockObject         string         `json:"clock_object"`
	DefaultEpochs       int            `json:"default_epochs"`
	CVEpochs            int            `json:"cv_epochs"`
	ImageEpochs         int            `json:"image_epochs"`
	GasBudget           uint64         `json:"gas_budget"`
	ConfirmTimeout      timex.Duration `json:"confirm_timeout"`
	ConfirmPollInterval timex.Duration `json:"confirm_poll_interval"`
	HTTPTimeout         timex.Duration `json:"http_timeout"`
	PublisherJWTSecret  string         `json:"publisher_jwt_secret"`
	BlobBackend         string         `json:"blob_backend"`
	S3Bucket            string         `json:"s3_bucket"`
	S3Region            string         `json:"s3_region"`
	S3Endpoint          string         `json:"s3_endpoint"`
	S3AccessKey         string         `json:"s3_access_key"`
	S3SecretKey         string         `json:"s3_secret_key"`
	S3PublicURL         string         `json:"s3_public_url"`
	DataDir             string         `json:"data_dir"`
	KeystorePath        string         `json:"keystore_path"`
	LogLevel            string         `json:"log_level"`
	SingleFlight        *bool          `json:"single_flight"`
}

func (c *Config) loadJSON(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var jc jsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	setString(&c.PublisherURL, jc.PublisherURL)
	setString(&c.AggregatorURL, jc.AggregatorURL)
	setString(&c.RPCURL, jc.RPCURL)
	setString(&c.Network, jc.Network)
	setString(&c.PackageID, jc.PackageID)
	setString(&c.GlobalRegistry, jc.GlobalRegistry)
	setString(&c.BadgeRegistry, jc.BadgeRegistry)
	setString(&c.ClockObject, jc.ClockObject)
	setString(&c.PublisherJWTSecret, jc.PublisherJWTSecret)
	setString(&c.BlobBackend, jc.BlobBackend)
	setString(&c.S3Bucket, jc.S3Bucket)
	setString(&c.S3Region, jc.S3Region)
	setString(&c.S3Endpoint, jc.S3Endpoint)
	setString(&c.S3AccessKey, jc.S3AccessKey)
	setString(&c.S3SecretKey, jc.S3SecretKey)
	setString(&c.S3PublicURL, jc.S3PublicURL)
	setString(&c.DataDir, jc.DataDir)
	setString(&c.KeystorePath, jc.KeystorePath)
	setString(&c.LogLevel, jc.LogLevel)

	if jc.DefaultEpochs != 0 {
		c.DefaultEpochs = jc.DefaultEpochs
	}
	if jc.CVEpochs != 0 {
		c.CVEpochs = jc.CVEpochs
	}
	if jc.ImageEpochs != 0 {
		c.ImageEpochs = jc.ImageEpochs
	}
	if jc.GasBudget != 0 {
		c.GasBudget = jc.GasBudget
	}
	if jc.ConfirmTimeout.Duration != 0 {
		c.ConfirmTimeout = jc.ConfirmTimeout.Duration
	}
	if jc.ConfirmPollInterval.Duration != 0 {
		c.ConfirmPollInterval = jc.ConfirmPollInterval.Duration
	}
	if jc.HTTPTimeout.Duration != 0 {
		c.HTTPTimeout = jc.HTTPTimeout.Duration
	}
	if jc.SingleFlight != nil {
		c.SingleFlight = *jc.SingleFlight
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
