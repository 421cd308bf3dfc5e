package cmd

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/llehouerou/lastmix/internal/catalog"
	"github.com/llehouerou/lastmix/internal/config"
	dbutil "github.com/llehouerou/lastmix/internal/db"
	"github.com/llehouerou/lastmix/internal/drain"
	"github.com/llehouerou/lastmix/internal/errmsg"
	"github.com/llehouerou/lastmix/internal/events"
	"github.com/llehouerou/lastmix/internal/lastfm"
	"github.com/llehouerou/lastmix/internal/lastfm/lfmcache"
	"github.com/llehouerou/lastmix/internal/radio"
	"github.com/llehouerou/lastmix/internal/station"
	"github.com/llehouerou/lastmix/internal/stations"
)

// app holds the components shared by the commands of one process.
type app struct {
	cfg    *config.Config
	logger zerolog.Logger
	db     *sql.DB

	cache    *lfmcache.Cache
	source   lastfm.Source
	repo     *station.SQLiteRepository
	broker   *events.Broker
	engine   *radio.Engine
	drain    *drain.Drain
	stations *stations.Service
}

func loadConfig() (*config.Config, error) {
	if configPath == "" {
		return config.Load()
	}
	if _, err := os.Stat(configPath); err != nil {
		return nil, fmt.Errorf("config file: %w", err)
	}
	return config.LoadFrom(configPath)
}

// openStore loads the configuration and opens the database. Commands that
// never talk to Last.fm stop here.
func openStore() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, errmsg.Wrap(errmsg.OpLoadConfig, err)
	}

	logCfg := cfg.GetLogConfig()
	if logFile != "" {
		logCfg.File = logFile
	}
	if logLevel != "" {
		logCfg.Level = logLevel
	}
	logger := setupLogger(logCfg.File, logCfg.Level)

	path := dbPath
	if path == "" {
		if path, err = cfg.GetDBPath(); err != nil {
			return nil, errmsg.Wrap(errmsg.OpOpenDatabase, err)
		}
	}
	db, err := dbutil.Open(path)
	if err != nil {
		return nil, errmsg.WrapWith(errmsg.OpOpenDatabase, path, err)
	}
	logger.Debug().Str("path", path).Msg("database opened")

	lc := cfg.GetLastfmConfig()
	return &app{
		cfg:    cfg,
		logger: logger,
		db:     db,
		cache:  lfmcache.NewCache(db, lc.CacheTTLDays, nil),
		repo:   station.NewSQLiteRepository(db),
	}, nil
}

// openApp opens the store and wires the station engine over Last.fm and the
// catalog.
func openApp() (*app, error) {
	a, err := openStore()
	if err != nil {
		return nil, err
	}
	if !a.cfg.HasLastfmConfig() {
		a.Close()
		return nil, fmt.Errorf("%w: set lastfm.api_key or %sLASTFM_API_KEY", lastfm.ErrNotConfigured, config.EnvPrefix)
	}

	lc := a.cfg.GetLastfmConfig()
	client := lastfm.New(lc.APIKey, lc.APISecret, lc.RequestsPerSecond, a.logger)
	a.source = lfmcache.NewSource(client, a.cache, a.logger)

	radioCfg := a.cfg.GetRadioConfig()
	a.broker = events.NewBroker()
	a.engine = radio.NewEngine(
		a.source,
		catalog.New(a.cfg.GetCatalogConfig(), a.logger),
		a.repo,
		a.broker,
		radioCfg,
		a.logger,
	)
	a.drain = drain.New(a.cfg.GetDrainConfig().Interval, a.logger)
	a.stations = stations.NewService(a.repo, a.engine.Builder, a.drain, radioCfg, a.logger)
	return a, nil
}

func (a *app) Close() {
	if a.broker != nil {
		a.broker.Close()
	}
	if err := a.db.Close(); err != nil {
		a.logger.Warn().Err(err).Msg("close database")
	}
}
