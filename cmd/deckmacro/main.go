// Package main is the entry point for the deckmacro daemon.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli"

	"github.com/dshills/deckmacro/internal/config"
	"github.com/dshills/deckmacro/internal/host"
	"github.com/dshills/deckmacro/internal/input/inject"
	"github.com/dshills/deckmacro/internal/input/key"
	"github.com/dshills/deckmacro/internal/input/replay"
	"github.com/dshills/deckmacro/internal/macro"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
)

const (
	reconnectDelay = 2 * time.Second
	healthLatency  = 50 * time.Millisecond
)

// level is shared by every logger so reloads take effect immediately.
var level = new(slog.LevelVar)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if err := newApp().Run(os.Args); err != nil {
		slog.Error("deckmacro failed", "error", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "deckmacro"
	app.Usage = "replay keyboard and mouse-wheel macros for a control surface"
	app.Version = fmt.Sprintf("%s (%s)", version, commit)
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:   "config, c",
			Usage:  "Path to the settings file",
			Value:  "deckmacro.toml",
			EnvVar: "DECKMACRO_CONFIG",
		},
		cli.StringFlag{
			Name:  "backend",
			Usage: "Override input.backend (robotgo or dryrun; robotgo requires building with -tags robotgo)",
		},
		cli.BoolFlag{
			Name:  "debug",
			Usage: "Log at debug level",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:   "serve",
			Usage:  "Connect to the host and run macros until interrupted",
			Action: serve,
		},
		{
			Name:      "run",
			Usage:     "Run one macro locally",
			ArgsUsage: " ",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "action",
					Usage: "keyboard or wheel",
					Value: string(macro.ActionKeyboard),
				},
				cli.StringSliceFlag{
					Name:  "param, p",
					Usage: "Binding parameter as Name=Value (repeatable)",
				},
				cli.DurationFlag{
					Name:  "for",
					Usage: "How long to let a repeating binding run",
					Value: 3 * time.Second,
				},
			},
			Action: runOnce,
		},
		{
			Name:      "decode",
			Usage:     "Show the keys an encoded binding presses",
			ArgsUsage: "<encoded>",
			Flags: []cli.Flag{
				cli.BoolFlag{Name: "right", Usage: "Prefer right-hand modifiers"},
				cli.BoolFlag{Name: "right-alt", Usage: "Also hold right Alt"},
			},
			Action: decode,
		},
	}
	return app
}

// loadConfig reads settings and applies global flag overrides.
func loadConfig(c *cli.Context) (*config.Config, config.Settings, error) {
	cfg, err := config.Load(c.GlobalString("config"))
	if err != nil {
		return nil, config.Settings{}, fmt.Errorf("loading settings: %w", err)
	}
	s := applyFlags(c, cfg.Settings())
	level.Set(s.Logging.Level)
	return cfg, s, nil
}

func applyFlags(c *cli.Context, s config.Settings) config.Settings {
	if b := c.GlobalString("backend"); b != "" {
		s.Input.Backend = b
	}
	if c.GlobalBool("debug") {
		s.Logging.Level = slog.LevelDebug
	}
	return s
}

func newEngine(s config.Settings, inj inject.Injector) (*macro.Engine, *replay.Replayer) {
	r := replay.New(inject.NewLogger(inj, nil), replay.WithTickSpacing(s.Input.TickSpacing))
	return macro.New(r), r
}

func logMetrics(r *replay.Replayer, lvl slog.Level) {
	snap := r.Metrics().Snapshot()
	health := r.Metrics().HealthCheck(healthLatency)
	slog.Log(context.Background(), lvl, "replay metrics",
		"presses", snap.PressesTotal,
		"gestures", snap.GesturesTotal,
		"ticks", snap.TicksTotal,
		"cancelled", snap.CancelledTotal,
		"injector_errors", snap.InjectorErrors,
		"p99_emit", snap.P99EmitLatency,
		"healthy", health.Healthy,
		"health", health.Message,
	)
}

func serve(c *cli.Context) error {
	cfg, s, err := loadConfig(c)
	if err != nil {
		return err
	}
	defer cfg.Close()

	cfg.OnChange(func(next config.Settings) {
		next = applyFlags(c, next)
		level.Set(next.Logging.Level)
	})
	if err := cfg.Watch(); err != nil {
		slog.Warn("settings will not reload", "path", cfg.Path(), "error", err)
	}

	inj, err := inject.New(s.Input.Backend)
	if err != nil {
		return err
	}
	engine, replayer := newEngine(s, inj)
	defer logMetrics(replayer, slog.LevelInfo)
	defer engine.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := host.NewClient(s.Host.URL, engine)
	slog.Info("serving", "url", s.Host.URL, "backend", s.Input.Backend)
	for {
		err := client.Run(ctx)
		if ctx.Err() != nil {
			return nil
		}
		slog.Warn("host connection lost", "error", err, "retry_in", reconnectDelay)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(reconnectDelay):
		}
	}
}

// parseParams parses Name=Value pairs.
func parseParams(pairs []string) (macro.Params, error) {
	p := macro.Params{}
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("invalid parameter %q, want Name=Value", pair)
		}
		p[strings.TrimSpace(name)] = value
	}
	return p, nil
}

func runOnce(c *cli.Context) error {
	kind, err := macro.ParseActionKind(c.String("action"))
	if err != nil {
		return err
	}
	params, err := parseParams(c.StringSlice("param"))
	if err != nil {
		return err
	}

	_, s, err := loadConfig(c)
	if err != nil {
		return err
	}
	inj, err := inject.New(s.Input.Backend)
	if err != nil {
		return err
	}

	engine, replayer := newEngine(s, inj)
	if err := engine.Run(kind, params); err != nil {
		engine.Close()
		return err
	}
	if kind == macro.ActionKeyboard && engine.Repeating(params) {
		time.Sleep(c.Duration("for"))
		_ = engine.Run(kind, params)
	}
	engine.Wait()
	engine.Close()
	logMetrics(replayer, slog.LevelDebug)

	if rec, ok := inj.(*inject.Recorder); ok {
		for _, e := range rec.Strings() {
			fmt.Fprintln(c.App.Writer, e)
		}
	}
	return nil
}

func decode(c *cli.Context) error {
	if c.NArg() != 1 {
		cli.ShowCommandHelp(c, "decode")
		return errors.New("decode needs exactly one encoded binding")
	}
	encoded := c.Args().First()

	if _, err := key.Parse(key.Label(encoded)); err != nil {
		return err
	}
	b := key.Decode(encoded)
	r := b.Resolve(c.Bool("right"), c.Bool("right-alt"))

	mods := make([]string, len(b.Modifiers))
	for i, m := range b.Modifiers {
		mods[i] = m.String()
	}
	fmt.Fprintf(c.App.Writer, "label:     %s\n", key.Label(encoded))
	fmt.Fprintf(c.App.Writer, "key:       %s\n", b.Code)
	fmt.Fprintf(c.App.Writer, "modifiers: %s\n", strings.Join(mods, "+"))
	fmt.Fprintf(c.App.Writer, "presses:   %s\n", r)
	return nil
}
