package application

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/eugenenazirov/termconf/internal/config"
	"github.com/eugenenazirov/termconf/internal/sysprop"
	"github.com/eugenenazirov/termconf/internal/watch"
)

// ErrInvalidOptions indicates options that cannot produce a working App.
var ErrInvalidOptions = errors.New("invalid options")

// Options collects the command-line inputs that shape the store.
type Options struct {
	// Definitions are -D key=value overrides layered above the environment.
	Definitions map[string]string
	// ConfigFile, when set, defines jline.configuration.
	ConfigFile string
	// FetchTimeout bounds remote configuration reads. Zero keeps the opener default.
	FetchTimeout time.Duration
	// WatchDebounce is passed to the watcher. Zero keeps the watcher default.
	WatchDebounce time.Duration
}

// App encapsulates the application dependencies.
type App struct {
	props  *sysprop.Properties
	store  *config.Store
	logger *zap.Logger
	opts   Options
}

// New builds the override namespace and loads the configuration store.
func New(opts Options, logger *zap.Logger) (*App, error) {
	if err := validateOptions(opts); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	props := sysprop.New(sysprop.WithDefinitions(opts.Definitions))
	if opts.ConfigFile != "" {
		if err := props.Set(config.ConfigurationKey, opts.ConfigFile); err != nil {
			return nil, fmt.Errorf("define %s: %w", config.ConfigurationKey, err)
		}
	}

	var client *http.Client
	if opts.FetchTimeout > 0 {
		client = &http.Client{Timeout: opts.FetchTimeout}
	}

	store := config.New(
		config.WithSystemProperties(props),
		config.WithOpener(config.NewOpener(client)),
		config.WithLogger(logger.Named("config")),
	)

	return &App{
		props:  props,
		store:  store,
		logger: logger,
		opts:   opts,
	}, nil
}

// Store returns the configuration store.
func (a *App) Store() *config.Store {
	return a.store
}

// SystemProperties returns the override namespace backing the store.
func (a *App) SystemProperties() *sysprop.Properties {
	return a.props
}

// Watch resets the store whenever its configuration file changes, until ctx is cancelled.
func (a *App) Watch(ctx context.Context, onReload func(context.Context)) error {
	w, err := watch.New(a.store, watch.Config{
		Debounce: a.opts.WatchDebounce,
		Logger:   a.logger.Named("watch"),
		OnReload: onReload,
	})
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	return w.Run(ctx)
}

// ParseDefinitions converts repeated -D values into a definition map. A bare
// key defines an empty value; later definitions of a key win.
func ParseDefinitions(raw []string) (map[string]string, error) {
	defs := make(map[string]string, len(raw))
	for _, item := range raw {
		key, value, err := sysprop.ParseDefinition(item)
		if err != nil {
			return nil, err
		}
		defs[key] = value
	}
	return defs, nil
}

func validateOptions(opts Options) error {
	if opts.FetchTimeout < 0 {
		return fmt.Errorf("%w: fetch timeout must be >= 0", ErrInvalidOptions)
	}
	if opts.WatchDebounce < 0 {
		return fmt.Errorf("%w: watch debounce must be >= 0", ErrInvalidOptions)
	}
	for key := range opts.Definitions {
		if key == "" {
			return fmt.Errorf("%w: %w", ErrInvalidOptions, sysprop.ErrInvalidDefinition)
		}
	}
	return nil
}
