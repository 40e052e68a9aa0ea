package config

import (
	"fmt"
	"net/url"
	"regexp"
	"time"

	validation "github.com/jellydator/validation"
)

var objectID = validation.Match(regexp.MustCompile(`^0x[0-9a-fA-F]{1,64}$`)).Error("must be a 0x-prefixed hex object id")

var httpURL = validation.By(func(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	u, err := url.Parse(s)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return validation.NewError("validation_http_url", "must be an http(s) URL")
	}
	return nil
})

// Validate checks that URLs parse, object ids look like ids and numeric
// settings are positive.
func (c *Config) Validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.PublisherURL, validation.Required, httpURL),
		validation.Field(&c.AggregatorURL, validation.Required, httpURL),
		validation.Field(&c.RPCURL, validation.Required, httpURL),
		validation.Field(&c.Network, validation.Required, validation.In("testnet", "mainnet", "devnet", "localnet")),
		validation.Field(&c.PackageID, validation.Required, objectID),
		validation.Field(&c.GlobalRegistry, validation.Required, objectID),
		validation.Field(&c.BadgeRegistry, objectID),
		validation.Field(&c.ClockObject, validation.Required, objectID),
		validation.Field(&c.DefaultEpochs, validation.Required, validation.Min(1)),
		validation.Field(&c.CVEpochs, validation.Required, validation.Min(1)),
		validation.Field(&c.ImageEpochs, validation.Required, validation.Min(1)),
		validation.Field(&c.GasBudget, validation.Required),
		validation.Field(&c.ConfirmTimeout, validation.Required, validation.Min(time.Millisecond)),
		validation.Field(&c.ConfirmPollInterval, validation.Required, validation.Min(time.Millisecond)),
		validation.Field(&c.HTTPTimeout, validation.Min(time.Duration(0))),
		validation.Field(&c.BlobBackend, validation.Required, validation.In(BackendWalrus, BackendS3)),
		validation.Field(&c.S3Bucket, validation.When(c.BlobBackend == BackendS3, validation.Required)),
		validation.Field(&c.S3Endpoint, httpURL),
		validation.Field(&c.S3PublicURL, httpURL),
		validation.Field(&c.DataDir, validation.Required),
		validation.Field(&c.LogLevel, validation.In("debug", "info", "warn", "error")),
	)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
