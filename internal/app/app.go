package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/five82/sixcities/internal/catalog"
	"github.com/five82/sixcities/internal/config"
	"github.com/five82/sixcities/internal/gateway"
	"github.com/five82/sixcities/internal/logging"
	"github.com/five82/sixcities/internal/prefs"
	"github.com/five82/sixcities/internal/rental"
	"github.com/five82/sixcities/internal/session"
	"github.com/five82/sixcities/internal/state"
	"github.com/five82/sixcities/internal/ui"
)

// Options configure the six-cities application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/sixcities/prefs.toml
	APIURL     string // overrides the configured API root
}

// eventBuffer bounds how many gateway events may wait for the UI.
const eventBuffer = 64

// Run boots the six-cities TUI until the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if v := strings.TrimSpace(opts.APIURL); v != "" {
		cfg.APIURL = v
	}

	logger, closer, err := logging.New(logging.Options{
		File:         cfg.LogFile,
		Level:        cfg.LogLevel,
		LogstashAddr: cfg.LogstashAddr,
	})
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer func() { _ = closer.Close() }()

	userPrefs, _ := prefs.Load(opts.PrefsPath)

	tokens, err := session.Open(cfg.TokenFile)
	if err != nil {
		return fmt.Errorf("open token store: %w", err)
	}

	client, err := rental.NewClient(cfg.APIURL,
		rental.WithTimeout(cfg.Timeout),
		rental.WithTokenSource(tokens),
		rental.WithLogger(logger.With("component", "rental")))
	if err != nil {
		return fmt.Errorf("init api client: %w", err)
	}

	events := make(chan gateway.Event, eventBuffer)
	gw := gateway.New(client,
		gateway.WithLogger(logger.With("component", "gateway")),
		gateway.WithObserver(func(ev gateway.Event) {
			select {
			case events <- ev:
			default:
			}
		}))

	cityName := userPrefs.City
	if cityName == "" {
		cityName = cfg.DefaultCity
	}
	offers := state.NewOffersStore(catalog.CityByName(nil, cityName))
	actions := NewActions(gw, offers, state.NewAuthStore(), tokens, logger)

	logger.Info("starting", "api_url", cfg.APIURL, "city", cityName)

	return ui.Run(ui.Options{
		Context:   ctx,
		Actions:   actions,
		Events:    events,
		LogPath:   cfg.LogFile,
		ThemeName: userPrefs.Theme,
		Sort:      catalog.ParseSortCriterion(userPrefs.Sort),
		PrefsPath: opts.PrefsPath,
	})
}
