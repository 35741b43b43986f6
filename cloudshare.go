// Package cloudshare wires the client SDK together: configuration, the
// durable session store, the query cache, the REST client, the alert bus,
// and the upload queue. UI layers embed one App and build on top of it.
package cloudshare

import (
	"context"
	"fmt"

	"github.com/cloudshare/cloudshare-go/api"
	"github.com/cloudshare/cloudshare-go/cache"
	"github.com/cloudshare/cloudshare-go/config"
	"github.com/cloudshare/cloudshare-go/logging"
	"github.com/cloudshare/cloudshare-go/notify"
	"github.com/cloudshare/cloudshare-go/session"
	"github.com/cloudshare/cloudshare-go/upload"
)

// App is the assembled client.
type App struct {
	Config  *config.Config
	Session *session.Store
	Cache   *cache.Store
	API     api.Client
	Alerts  *notify.Bus
	Uploads *upload.Queue

	log logging.Logger
}

// New loads configuration (unless cfg is non-nil), opens the session
// database, and assembles the client stack.
func New(ctx context.Context, cfg *config.Config, log logging.Logger) (*App, error) {
	if cfg == nil {
		loaded, err := config.LoadConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	if log == nil {
		log = logging.Nop()
	}

	sess, err := session.Open(ctx, cfg.SessionDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}

	store := cache.New()
	client := api.NewHTTPClient(cfg, sess, store, api.WithLogger(log))
	alerts := notify.NewBus()

	return &App{
		Config:  cfg,
		Session: sess,
		Cache:   store,
		API:     client,
		Alerts:  alerts,
		Uploads: upload.NewQueue(client, alerts, log),
		log:     log,
	}, nil
}

// Close releases the API transport and the session database.
func (a *App) Close() error {
	if err := a.API.Close(); err != nil {
		return err
	}
	return a.Session.Close()
}
