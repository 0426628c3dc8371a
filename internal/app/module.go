package app

import (
	"context"
	"fmt"

	"github.com/pcarneir0/rigdesk/internal/api"
	"github.com/pcarneir0/rigdesk/internal/badge"
	"github.com/pcarneir0/rigdesk/internal/bus"
	"github.com/pcarneir0/rigdesk/internal/config"
	"github.com/pcarneir0/rigdesk/internal/lock"
	"github.com/pcarneir0/rigdesk/internal/logging"
	"github.com/pcarneir0/rigdesk/internal/notify"
	"github.com/pcarneir0/rigdesk/internal/profile"
	"github.com/pcarneir0/rigdesk/internal/store"
	"github.com/pcarneir0/rigdesk/internal/tui"
	"github.com/pcarneir0/rigdesk/internal/viewstate"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Params holds the resolved launch configuration passed to the fx module.
type Params struct {
	ProfileName string
	ServerURL   string // optional override; empty = use config value
	Console     bool   // tee logs to stderr (headless mode only)
}

// Module returns the fx module for the client, composing all providers
// and lifecycle hooks.
func Module(p Params) fx.Option {
	return fx.Module("rigdesk",
		fx.Supply(p),
		fx.Provide(
			provideLogger,
			provideConfig,
			provideBus,
			provideLock,
			provideStore,
			provideClient,
			provideViewer,
			provideBadgeStore,
			provideRefresher,
			provideMachine,
			provideNotifier,
			provideTUI,
		),
		fx.Invoke(registerLifecycle),
	)
}

func provideLogger(p Params) (*zap.Logger, error) {
	return logging.New(profile.LogPath(p.ProfileName), p.ProfileName, p.Console)
}

func provideConfig(p Params, logger *zap.Logger) (*config.Config, error) {
	cfg, err := config.Load(profile.ConfigPath())
	if err != nil {
		logger.Info("no config file, using defaults")
		cfg = config.Default()
	}
	if p.ServerURL != "" {
		cfg.ServerURL = p.ServerURL
	}
	return cfg, nil
}

func provideBus() *bus.Bus {
	return bus.New()
}

func provideLock(p Params, logger *zap.Logger) (*lock.Lock, error) {
	if err := profile.EnsureDir(p.ProfileName); err != nil {
		return nil, err
	}
	logger.Info("acquiring profile lock", zap.String("profile", p.ProfileName))
	l, err := lock.Acquire(profile.Dir(p.ProfileName))
	if err != nil {
		return nil, err
	}
	logger.Info("profile lock acquired")
	return l, nil
}

func provideStore(p Params, logger *zap.Logger) (*store.DB, error) {
	dbPath := profile.DBPath(p.ProfileName)
	db, err := store.Open(dbPath)
	if err != nil {
		return nil, err
	}
	result, err := db.Migrate()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if result.Changed {
		logger.Info("migrations applied", zap.Uint("version", result.Version))
	} else {
		logger.Info("migrations up to date", zap.Uint("version", result.Version))
	}
	logger.Info("store initialized", zap.String("path", dbPath))
	return db, nil
}

func provideClient(p Params, cfg *config.Config, logger *zap.Logger) (*api.Client, error) {
	token, err := profile.LoadToken(p.ProfileName)
	if err != nil {
		return nil, fmt.Errorf("no auth token for profile %q: run rigdeskctl login first: %w", p.ProfileName, err)
	}
	return api.New(cfg.ServerURL, token, logger,
		api.WithUnauthorizedHandler(func() {
			// A rejected token is stale. Drop it so the next launch
			// prompts for login instead of looping on 401s.
			if cerr := profile.ClearToken(p.ProfileName); cerr != nil {
				logger.Warn("clear token", zap.Error(cerr))
			}
		}),
	), nil
}

func provideViewer(client *api.Client, logger *zap.Logger) (*api.UserRef, error) {
	me, err := client.Me(context.Background())
	if err != nil {
		return nil, fmt.Errorf("verify session: %w", err)
	}
	logger.Info("authenticated", zap.String("user", me.Name), zap.String("role", me.Role))
	return me, nil
}

// apiCounts adapts the REST client to the badge store's fetcher.
type apiCounts struct {
	client *api.Client
}

func (a apiCounts) MessagesUnread(ctx context.Context) (int, error) {
	return a.client.Messaging.UnreadCount(ctx)
}

func (a apiCounts) NotificationsUnread(ctx context.Context) (int, error) {
	return a.client.Notifications.UnreadCount(ctx)
}

func provideBadgeStore(client *api.Client, b *bus.Bus, logger *zap.Logger) *badge.Store {
	return badge.NewStore(apiCounts{client: client}, b, logger)
}

func provideRefresher(s *badge.Store, b *bus.Bus, logger *zap.Logger) *badge.Refresher {
	return badge.NewRefresher(s, b, logger)
}

func provideMachine(client *api.Client, me *api.UserRef, b *bus.Bus, logger *zap.Logger) *viewstate.Machine {
	return viewstate.NewMachine(client.Messaging, b, logger, me.ID, me.Role)
}

func provideNotifier(client *api.Client, cfg *config.Config, b *bus.Bus, logger *zap.Logger) *notify.Controller {
	return notify.NewController(client.Notifications, b, logger, cfg.Language)
}

func provideTUI(p Params, cfg *config.Config, me *api.UserRef, client *api.Client, machine *viewstate.Machine, notifier *notify.Controller, badges *badge.Store, db *store.DB, b *bus.Bus, logger *zap.Logger) *tui.App {
	return tui.NewApp(tui.Deps{
		Config:   cfg,
		Profile:  p.ProfileName,
		Me:       me,
		Client:   client,
		Machine:  machine,
		Notifier: notifier,
		Badges:   badges,
		Drafts:   db,
		Bus:      b,
		Logger:   logger,
	})
}

func registerLifecycle(lc fx.Lifecycle, shutdowner fx.Shutdowner, app *tui.App, refresher *badge.Refresher, lk *lock.Lock, db *store.DB, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			refresher.Start(context.Background())

			// The tview loop blocks, so it runs in the background and
			// shuts the fx app down when the user quits.
			go func() {
				if err := app.Run(); err != nil {
					logger.Error("tui error", zap.Error(err))
				}
				_ = shutdowner.Shutdown()
			}()
			return nil
		},
		OnStop: func(_ context.Context) error {
			app.Stop()
			refresher.Stop()
			if err := db.Close(); err != nil {
				logger.Warn("error closing store", zap.Error(err))
			}
			if err := lk.Release(); err != nil {
				logger.Warn("error releasing lock", zap.Error(err))
			}
			logger.Info("rigdesk stopped")
			return nil
		},
	})
}
