package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/neomorfeo/barberiq/internal/adapter/bolt"
	"github.com/neomorfeo/barberiq/internal/adapter/fsm"
	"github.com/neomorfeo/barberiq/internal/adapter/httpclient"
	"github.com/neomorfeo/barberiq/internal/adapter/otel"
	"github.com/neomorfeo/barberiq/internal/adapter/ristretto"
	"github.com/neomorfeo/barberiq/internal/app"
	"github.com/neomorfeo/barberiq/internal/config"
	"github.com/neomorfeo/barberiq/internal/domain"
	"github.com/neomorfeo/barberiq/internal/logger"
)

// env holds what every subcommand shares. Collaborators are opened lazily so
// that offline commands never touch the cache file or the network.
type env struct {
	cfg    *config.Config
	logger *slog.Logger

	storage   *bolt.Storage
	results   *ristretto.Cache
	providers *otel.Providers
	session   *app.Session
}

func newEnv(cfgPath, apiURL, cachePath string, stderr io.Writer) (*env, error) {
	cfg, err := config.LoadFrom(cfgPath)
	if err != nil {
		return nil, err
	}
	if apiURL != "" {
		cfg.Client.APIURL = apiURL
	}
	if cachePath != "" {
		cfg.Client.CachePath = cachePath
	}
	cfg.Logging.Service = "tenantctl"

	return &env{cfg: cfg, logger: logger.New(cfg.Logging, stderr)}, nil
}

// openStorage opens the durable tenant cache file.
func (e *env) openStorage() (*bolt.Storage, error) {
	if e.storage != nil {
		return e.storage, nil
	}
	s, err := bolt.Open(e.cfg.Client.CachePath)
	if err != nil {
		return nil, fmt.Errorf("opening tenant cache: %w", err)
	}
	e.storage = s
	return s, nil
}

// tenantCache is the durable tenant cache without the rest of a session.
func (e *env) tenantCache() (*app.TenantCache, error) {
	storage, err := e.openStorage()
	if err != nil {
		return nil, err
	}
	return app.NewTenantCache(storage,
		app.WithDefaultTTL(e.cfg.Client.TenantTTL),
		app.WithCacheLogger(e.logger),
	), nil
}

// openSession wires a full session against the configured API.
func (e *env) openSession(ctx context.Context) (*app.Session, error) {
	if e.session != nil {
		return e.session, nil
	}

	otelCfg := otel.ConfigFromEnv("tenantctl")
	if os.Getenv("OTEL_EXPORTER") == "" {
		otelCfg.Exporter = otel.ExporterNone
	}
	providers, err := otel.Setup(ctx, otelCfg)
	if err != nil {
		return nil, fmt.Errorf("otel: %w", err)
	}
	e.providers = providers

	storage, err := e.openStorage()
	if err != nil {
		return nil, err
	}
	results, err := ristretto.New(e.cfg.Client.QueryCacheMB << 20)
	if err != nil {
		return nil, fmt.Errorf("creating query cache: %w", err)
	}
	e.results = results

	client := httpclient.New(e.cfg.Client.APIURL, httpclient.WithTimeout(e.cfg.Client.Timeout))

	routes := domain.DefaultRouteMatcher()
	routes.StrictPrefix = e.cfg.Client.StrictRoutes

	e.session = app.NewSession(app.SessionConfig{
		Directory: otel.NewTracingDirectory(httpclient.NewDirectory(client)),
		Repos: app.Repositories{
			Appointments: tracedRecords[domain.Appointment](client, domain.CollectionAppointments),
			Barbers:      tracedRecords[domain.Barber](client, domain.CollectionBarbers),
			Comments:     tracedRecords[domain.Comment](client, domain.CollectionComments),
			Services:     tracedRecords[domain.Service](client, domain.CollectionServices),
		},
		Storage:    storage,
		QueryCache: results,
		Validator:  fsm.New(),
		TenantTTL:  e.cfg.Client.TenantTTL,
		Routes:     &routes,
		Logger:     e.logger,
	})
	return e.session, nil
}

func tracedRecords[T domain.Entity](client *httpclient.Client, collection string) domain.Repository[T] {
	return otel.NewTracingRecords[T](collection, httpclient.NewRecords[T](client, collection))
}

// close releases whatever was opened.
func (e *env) close(ctx context.Context) error {
	var errs []error
	if e.session != nil {
		e.session.Close()
	}
	if e.results != nil {
		e.results.Close()
	}
	if e.storage != nil {
		errs = append(errs, e.storage.Close())
	}
	if e.providers != nil {
		errs = append(errs, e.providers.Shutdown(ctx))
	}
	return errors.Join(errs...)
}
