package config

import (
	"path/filepath"
	"time"

	"github.com/dmitrijs2005/podguild/internal/filex"
	"github.com/spf13/pflag"
)

const (
	BackendWalrus = "walrus"
	BackendS3     = "s3"
)

// KeystoreFileName is the wallet file inside DataDir when KeystorePath is unset.
const KeystoreFileName = "wallet.json"

// Config holds runtime settings for the podguild CLI.
type Config struct {
	PublisherURL  string
	AggregatorURL string
	RPCURL        string
	// Network selects the explorer links: testnet or mainnet.
	Network string

	PackageID      string
	GlobalRegistry string
	BadgeRegistry  string
	ClockObject    string

	// DefaultEpochs applies to uploads that do not ask for a retention.
	DefaultEpochs int
	CVEpochs      int
	ImageEpochs   int

	// GasBudget is in MIST.
	GasBudget           uint64
	ConfirmTimeout      time.Duration
	ConfirmPollInterval time.Duration
	HTTPTimeout         time.Duration

	// PublisherJWTSecret enables JWT auth on uploads when non-empty.
	PublisherJWTSecret string

	BlobBackend string
	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3PublicURL string

	DataDir      string
	KeystorePath string
	LogLevel     string

	// SingleFlight rejects a second concurrent application to the same job.
	SingleFlight bool
}

// LoadDefaults populates c with testnet defaults.
func (c *Config) LoadDefaults() {
	c.PublisherURL = "https://publisher.walrus-testnet.walrus.space"
	c.AggregatorURL = "https://aggregator.walrus-testnet.walrus.space"
	c.RPCURL = "https://fullnode.testnet.sui.io:443"
	c.Network = "testnet"

	c.PackageID = "0x5e2aa3dedd48e8241bf9a14717668b42cfad18d0cc042b977e42cb9abd3747c0"
	c.GlobalRegistry = "0xafe8cfa06240263b7869fe66de7e0896c440726981b3b127b1111ecf13007c7b"
	c.BadgeRegistry = "0x128063197e15102462a812d632bdf40b95482fcdb871eea85b9bce9620e1c6cc"
	c.ClockObject = "0x6"

	c.DefaultEpochs = 5
	c.CVEpochs = 10
	c.ImageEpochs = 10

	c.GasBudget = 50_000_000
	c.ConfirmTimeout = 60 * time.Second
	c.ConfirmPollInterval = time.Second
	c.HTTPTimeout = 30 * time.Second

	c.BlobBackend = BackendWalrus
	c.S3Region = "us-east-1"

	c.DataDir = filex.DefaultDataDir()
	c.LogLevel = "info"
}

// Load builds a Config from defaults, the JSON file named by --config, the
// environment and finally the flags in fs that were set explicitly. Later
// sources take precedence over earlier ones.
func Load(fs *pflag.FlagSet) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if path := configPath(fs); path != "" {
		if err := cfg.loadJSON(path); err != nil {
			return nil, err
		}
	}

	loadDotEnv()
	cfg.loadEnv()

	if err := cfg.applyFlags(fs); err != nil {
		return nil, err
	}

	if cfg.KeystorePath == "" {
		cfg.KeystorePath = filepath.Join(cfg.DataDir, KeystoreFileName)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
