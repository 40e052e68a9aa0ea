package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"path/filepath"

	"github.com/dmitrijs2005/podguild/internal/client/blobstore"
	"github.com/dmitrijs2005/podguild/internal/client/chain"
	"github.com/dmitrijs2005/podguild/internal/client/config"
	"github.com/dmitrijs2005/podguild/internal/client/repositories/repomanager"
	"github.com/dmitrijs2005/podguild/internal/client/services"
	"github.com/dmitrijs2005/podguild/internal/filex"
	"github.com/dmitrijs2005/podguild/internal/logging"
	"github.com/dmitrijs2005/podguild/internal/netx"
)

// App holds the wired collaborators shared by all commands of one run.
type App struct {
	config *config.Config
	log    logging.Logger
	out    io.Writer
	reader *bufio.Reader

	db        *sql.DB
	repos     *repomanager.Repositories
	store     blobstore.Store
	queries   *chain.Queries
	apply     *services.ApplicationService
	pods      *services.PodService
	retrieval *services.RetrievalService
}

// backends are the network-facing collaborators of an App.
type backends struct {
	store   blobstore.Store
	gateway chain.Gateway
	reader  chain.Reader
}

// NewApp opens the local database in cfg.DataDir and connects the configured
// blob store and Sui node.
func NewApp(ctx context.Context, cfg *config.Config, in io.Reader, out, logOut io.Writer) (*App, error) {
	log := logging.New(logOut, cfg.LogLevel)

	dir, err := filex.EnsureDir(cfg.DataDir)
	if err != nil {
		return nil, err
	}

	db, err := repomanager.InitDatabase(ctx, filepath.Join(dir, repomanager.DBFileName))
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}

	httpClient := netx.NewClient(cfg.HTTPTimeout)

	store, err := newStore(ctx, cfg, httpClient, log)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	sui := chain.NewSuiClient(cfg.RPCURL, httpClient, log,
		chain.WithGasBudget(cfg.GasBudget),
		chain.WithConfirmation(cfg.ConfirmTimeout, cfg.ConfirmPollInterval),
	)

	return newApp(cfg, log, db, backends{store: store, gateway: sui, reader: sui}, in, out), nil
}

func newStore(ctx context.Context, cfg *config.Config, httpClient *http.Client, log logging.Logger) (blobstore.Store, error) {
	switch cfg.BlobBackend {
	case config.BackendS3:
		return blobstore.NewS3Store(ctx, blobstore.S3Options{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			PublicURL: cfg.S3PublicURL,
		}, log)
	default:
		opts := []blobstore.WalrusOption{
			blobstore.WithHTTPClient(httpClient),
			blobstore.WithDefaultEpochs(cfg.DefaultEpochs),
		}
		if cfg.PublisherJWTSecret != "" {
			opts = append(opts, blobstore.WithPublisherAuth(blobstore.NewPublisherAuth(cfg.PublisherJWTSecret)))
		}
		return blobstore.NewWalrusStore(cfg.PublisherURL, cfg.AggregatorURL, log, opts...), nil
	}
}

func newApp(cfg *config.Config, log logging.Logger, db *sql.DB, b backends, in io.Reader, out io.Writer) *App {
	repos := repomanager.New(db)
	contract := chain.Contract{
		Package:        cfg.PackageID,
		GlobalRegistry: cfg.GlobalRegistry,
		BadgeRegistry:  cfg.BadgeRegistry,
		Clock:          cfg.ClockObject,
	}

	applyOpts := []services.ApplicationOption{
		services.WithCVEpochs(cfg.CVEpochs),
		services.WithActivityRecorder(repos.Activity),
		services.WithNetwork(cfg.Network),
	}
	if cfg.SingleFlight {
		applyOpts = append(applyOpts, services.WithSingleFlight())
	}

	return &App{
		config:  cfg,
		log:     log,
		out:     out,
		reader:  bufio.NewReader(in),
		db:      db,
		repos:   repos,
		store:   b.store,
		queries: chain.NewQueries(b.reader, contract),
		apply:   services.NewApplicationService(b.store, b.gateway, contract, log, applyOpts...),
		pods: services.NewPodService(b.store, b.gateway, contract, log,
			services.WithImageEpochs(cfg.ImageEpochs),
			services.WithPodRecorder(repos.Activity),
			services.WithPodNetwork(cfg.Network),
		),
		retrieval: services.NewRetrievalService(b.store, log),
	}
}

func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}
