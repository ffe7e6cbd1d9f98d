package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/eugenenazirov/termconf/internal/application"
	"github.com/eugenenazirov/termconf/internal/config"
	"github.com/eugenenazirov/termconf/internal/logging"
	"github.com/eugenenazirov/termconf/internal/output"
)

var (
	signalNotify = signal.Notify
	signalStop   = signal.Stop
)

var errUnset = errors.New("property is not set")

type valueCommand struct {
	cmd     *kingpin.CmdClause
	name    *string
	str     *string
	strSet  bool
	boolean *bool
	integer *int
	long    *int64
}

type cli struct {
	app          *kingpin.Application
	defines      *[]string
	configFile   *string
	debug        *bool
	format       *string
	logFormat    *string
	fetchTimeout *time.Duration
	debounce     *time.Duration

	get     valueCommand
	boolean valueCommand
	integer valueCommand
	long    valueCommand
	explain valueCommand
	list    *kingpin.CmdClause
	host    *kingpin.CmdClause
	watch   *kingpin.CmdClause
}

func newCLI() *cli {
	c := &cli{}
	c.app = kingpin.New("termconf", "Inspect layered terminal configuration (overrides > ~/.jline.rc > defaults)")
	c.defines = c.app.Flag("define", "Define a system property as KEY=VALUE (repeatable)").Short('D').Strings()
	c.configFile = c.app.Flag("config", "Path or URL of the properties file (sets "+config.ConfigurationKey+")").String()
	c.debug = c.app.Flag("debug", "Enable debug logging, including every loaded property").Bool()
	c.format = c.app.Flag("output", "Output format").Short('o').Default(string(output.FormatText)).Enum(output.Formats()...)
	c.logFormat = c.app.Flag("log-format", "Log encoding written to stderr").Default("json").Enum("json", "console")
	c.fetchTimeout = c.app.Flag("fetch-timeout", "Timeout for remote configuration sources").Default("10s").Duration()
	c.debounce = c.app.Flag("debounce", "Quiet period before reloading in watch mode").Default("250ms").Duration()

	c.get.cmd = c.app.Command("get", "Print a string property")
	c.get.name = c.get.cmd.Arg("name", "Property name").Required().String()
	c.get.str = c.get.cmd.Flag("default", "Value printed when the property is unset").IsSetByUser(&c.get.strSet).String()

	c.boolean.cmd = c.app.Command("bool", "Print a boolean property")
	c.boolean.name = c.boolean.cmd.Arg("name", "Property name").Required().String()
	c.boolean.boolean = c.boolean.cmd.Flag("default", "Value used when the property is unset").Bool()

	c.integer.cmd = c.app.Command("int", "Print a 32-bit integer property")
	c.integer.name = c.integer.cmd.Arg("name", "Property name").Required().String()
	c.integer.integer = c.integer.cmd.Flag("default", "Value used when the property is unset").Default("0").Int()

	c.long.cmd = c.app.Command("long", "Print a 64-bit integer property")
	c.long.name = c.long.cmd.Arg("name", "Property name").Required().String()
	c.long.long = c.long.cmd.Flag("default", "Value used when the property is unset").Default("0").Int64()

	c.explain.cmd = c.app.Command("explain", "Show which layer supplies a property")
	c.explain.name = c.explain.cmd.Arg("name", "Property name").Required().String()

	c.list = c.app.Command("list", "Print every property loaded from the configuration source")
	c.host = c.app.Command("host", "Print home directory, OS name and text encoding")
	c.watch = c.app.Command("watch", "Reload and print properties whenever the configuration file changes")

	return c
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "termconf: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	c := newCLI()
	command, err := c.app.Parse(args)
	if err != nil {
		return err
	}

	format, err := output.ParseFormat(*c.format)
	if err != nil {
		return err
	}

	defs, err := application.ParseDefinitions(*c.defines)
	if err != nil {
		return err
	}

	logger, err := logging.New(logging.WithDebug(*c.debug), logging.WithEncoding(*c.logFormat))
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	app, err := application.New(application.Options{
		Definitions:   defs,
		ConfigFile:    *c.configFile,
		FetchTimeout:  *c.fetchTimeout,
		WatchDebounce: *c.debounce,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return c.dispatch(command, app, logger, format, stdout)
}

func (c *cli) dispatch(command string, app *application.App, logger *zap.Logger, format output.Format, stdout io.Writer) error {
	store := app.Store()

	switch command {
	case c.get.cmd.FullCommand():
		res, err := store.Resolve(*c.get.name)
		if err != nil {
			return err
		}
		if !res.Found() {
			if !c.get.strSet {
				return fmt.Errorf("%w: %s", errUnset, res.Name)
			}
			res.Value, res.Origin = *c.get.str, config.OriginDefault
		}
		return output.Write(stdout, format, output.ValueReport{Name: res.Name, Value: res.Value, Origin: res.Origin.String()})

	case c.boolean.cmd.FullCommand():
		value, err := store.GetBoolean(*c.boolean.name, *c.boolean.boolean)
		if err != nil {
			return err
		}
		return writeValue(stdout, format, store, *c.boolean.name, value)

	case c.integer.cmd.FullCommand():
		value, err := store.GetInteger(*c.integer.name, *c.integer.integer)
		if err != nil {
			return err
		}
		return writeValue(stdout, format, store, *c.integer.name, value)

	case c.long.cmd.FullCommand():
		value, err := store.GetLong(*c.long.name, *c.long.long)
		if err != nil {
			return err
		}
		return writeValue(stdout, format, store, *c.long.name, value)

	case c.explain.cmd.FullCommand():
		res, err := store.Resolve(*c.explain.name)
		if err != nil {
			return err
		}
		return output.Write(stdout, format, output.ExplainReport{
			Name:   res.Name,
			Value:  res.Value,
			Found:  res.Found(),
			Origin: res.Origin.String(),
			Source: store.Source().String(),
		})

	case c.list.FullCommand():
		return writeProperties(stdout, format, store)

	case c.host.FullCommand():
		return output.Write(stdout, format, hostReport(store, logger))

	case c.watch.FullCommand():
		ctx, cancel := signalContext(context.Background(), logger)
		defer cancel()

		if err := writeProperties(stdout, format, store); err != nil {
			return err
		}
		return app.Watch(ctx, func(context.Context) {
			if err := writeProperties(stdout, format, store); err != nil {
				logger.Warn("failed to print properties", zap.Error(err))
			}
		})

	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

func writeValue(w io.Writer, format output.Format, store *config.Store, name string, value any) error {
	res, err := store.Resolve(name)
	if err != nil {
		return err
	}
	origin := res.Origin
	if !res.Found() {
		origin = config.OriginDefault
	}
	return output.Write(w, format, output.ValueReport{Name: name, Value: value, Origin: origin.String()})
}

func writeProperties(w io.Writer, format output.Format, store *config.Store) error {
	return output.Write(w, format, output.PropertiesReport{
		Source:     store.Source().String(),
		Properties: store.Properties().Map(),
	})
}

func hostReport(store *config.Store, logger *zap.Logger) output.HostReport {
	report := output.HostReport{
		UserHome: store.UserHome(),
		OSName:   store.OSName(),
		Encoding: store.Encoding(),
		Source:   store.Source().String(),
	}
	if enc, err := store.Charset(); err != nil {
		logger.Warn("unknown text encoding", zap.String("encoding", report.Encoding), zap.Error(err))
	} else {
		report.Charset = config.CharsetName(enc)
	}
	return report
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context, logger *zap.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	quit := make(chan os.Signal, 1)
	signalNotify(quit, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	stop := signalStop

	go func() {
		defer stop(quit)
		select {
		case <-quit:
			logger.Info("stopping watcher")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
