package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/allisson/go-env"
	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment variable read by loadEnv.
const EnvPrefix = "PODGUILD_"

// loadEnv overlays c with PODGUILD_* variables. Unset or unparsable
// variables keep the current value.
func (c *Config) loadEnv() {
	c.PublisherURL = env.GetString(EnvPrefix+"PUBLISHER_URL", c.PublisherURL)
	c.AggregatorURL = env.GetString(EnvPrefix+"AGGREGATOR_URL", c.AggregatorURL)
	c.RPCURL = env.GetString(EnvPrefix+"RPC_URL", c.RPCURL)
	c.Network = env.GetString(EnvPrefix+"NETWORK", c.Network)

	c.PackageID = env.GetString(EnvPrefix+"PACKAGE_ID", c.PackageID)
	c.GlobalRegistry = env.GetString(EnvPrefix+"GLOBAL_REGISTRY", c.GlobalRegistry)
	c.BadgeRegistry = env.GetString(EnvPrefix+"BADGE_REGISTRY", c.BadgeRegistry)
	c.ClockObject = env.GetString(EnvPrefix+"CLOCK_OBJECT", c.ClockObject)

	c.DefaultEpochs = env.GetInt(EnvPrefix+"DEFAULT_EPOCHS", c.DefaultEpochs)
	c.CVEpochs = env.GetInt(EnvPrefix+"CV_EPOCHS", c.CVEpochs)
	c.ImageEpochs = env.GetInt(EnvPrefix+"IMAGE_EPOCHS", c.ImageEpochs)

	c.GasBudget = uint64(env.GetInt(EnvPrefix+"GAS_BUDGET", int(c.GasBudget)))
	c.ConfirmTimeout = env.GetDuration(EnvPrefix+"CONFIRM_TIMEOUT_SECONDS", int64(c.ConfirmTimeout/time.Second), time.Second)
	c.ConfirmPollInterval = env.GetDuration(EnvPrefix+"CONFIRM_POLL_INTERVAL_MS", int64(c.ConfirmPollInterval/time.Millisecond), time.Millisecond)
	c.HTTPTimeout = env.GetDuration(EnvPrefix+"HTTP_TIMEOUT_SECONDS", int64(c.HTTPTimeout/time.Second), time.Second)

	c.PublisherJWTSecret = env.GetString(EnvPrefix+"PUBLISHER_JWT_SECRET", c.PublisherJWTSecret)

	c.BlobBackend = env.GetString(EnvPrefix+"BLOB_BACKEND", c.BlobBackend)
	c.S3Bucket = env.GetString(EnvPrefix+"S3_BUCKET", c.S3Bucket)
	c.S3Region = env.GetString(EnvPrefix+"S3_REGION", c.S3Region)
	c.S3Endpoint = env.GetString(EnvPrefix+"S3_ENDPOINT", c.S3Endpoint)
	c.S3AccessKey = env.GetString(EnvPrefix+"S3_ACCESS_KEY", c.S3AccessKey)
	c.S3SecretKey = env.GetString(EnvPrefix+"S3_SECRET_KEY", c.S3SecretKey)
	c.S3PublicURL = env.GetString(EnvPrefix+"S3_PUBLIC_URL", c.S3PublicURL)

	c.DataDir = env.GetString(EnvPrefix+"DATA_DIR", c.DataDir)
	c.KeystorePath = env.GetString(EnvPrefix+"KEYSTORE_PATH", c.KeystorePath)
	c.LogLevel = env.GetString(EnvPrefix+"LOG_LEVEL", c.LogLevel)
	c.SingleFlight = env.GetBool(EnvPrefix+"SINGLE_FLIGHT", c.SingleFlight)
}

// loadDotEnv loads the nearest .env file walking up from the working
// directory. Variables already present in the environment win.
func loadDotEnv() {
	dir, err := os.Getwd()
	if err != nil {
		return
	}

	for {
		path := filepath.Join(dir, ".env")
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return
		}
		dir = parent
	}
}
