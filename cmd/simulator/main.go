// Command simulator runs batches of battles or gacha draws and prints a JSON
// summary. With -persist every battle and draw goes through the services
// against PostgreSQL instead of the in-memory engines.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/udisondev/xiuxian/internal/config"
	"github.com/udisondev/xiuxian/internal/data"
	"github.com/udisondev/xiuxian/internal/game/loot"
	"github.com/udisondev/xiuxian/internal/model"
)

const DefaultConfigPath = "config/simulator.yaml"

type options struct {
	configPath string
	mode       string
	n          int
	monsterID  int
	level      int
	gear       int
	kind       string
	count      int
	wish       string
	persist    bool
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("simulator", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.configPath, "config", DefaultConfigPath, "path to YAML config (missing file = defaults)")
	fs.StringVar(&o.mode, "mode", modeBattle, "battle or gacha")
	fs.IntVar(&o.n, "n", 100, "number of battles or draws")
	fs.IntVar(&o.monsterID, "monster", 1, "bestiary monster ID (battle mode)")
	fs.IntVar(&o.level, "level", 10, "player level")
	fs.IntVar(&o.gear, "gear", 0, "equipment pulls used to dress the player before battles")
	fs.StringVar(&o.kind, "kind", string(loot.KindEquipment), "equipment or pet (gacha mode)")
	fs.IntVar(&o.count, "count", 10, "pulls per draw (gacha mode)")
	fs.StringVar(&o.wish, "wish", "", "wishlist target quality, e.g. legendary (gacha mode)")
	fs.BoolVar(&o.persist, "persist", false, "run through PostgreSQL-backed services")
	if err := fs.Parse(args); err != nil {
		return o, err
	}

	if o.mode != modeBattle && o.mode != modeGacha {
		return o, fmt.Errorf("unknown mode %q", o.mode)
	}
	if o.n < 1 {
		return o, fmt.Errorf("-n must be positive, got %d", o.n)
	}
	return o, nil
}

func (o options) plan() (Plan, error) {
	p := Plan{
		N:         o.n,
		MonsterID: o.monsterID,
		Level:     o.level,
		Gear:      o.gear,
		Count:     o.count,
	}

	kind, err := loot.ParseKind(o.kind)
	if err != nil {
		return p, err
	}
	p.Kind = kind

	if o.wish != "" {
		q, err := model.ParseQuality(o.wish)
		if err != nil {
			return p, fmt.Errorf("-wish: %w", err)
		}
		p.Wish = loot.WishBias{Enabled: true, Target: q}
	}
	return p, nil
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	cfgPath := opts.configPath
	if p := os.Getenv("XIUXIAN_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Логи в stderr: stdout занят JSON-сводкой
	logLevel, _ := config.ParseLevel(cfg.LogLevel)
	slog.SetDefault(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{
		Level: logLevel,
	})))

	if err := data.LoadMonsters(); err != nil {
		return fmt.Errorf("loading bestiary: %w", err)
	}

	plan, err := opts.plan()
	if err != nil {
		return err
	}
	plan.Workers = cfg.Simulator.Workers
	plan.Seed = cfg.Simulator.Seed

	slog.Info("simulator starting",
		"mode", opts.mode,
		"n", plan.N,
		"workers", plan.Workers,
		"persist", opts.persist)

	var summary any
	switch {
	case opts.persist:
		summary, err = runPersisted(ctx, cfg, opts.mode, plan)
	case opts.mode == modeBattle:
		summary, err = RunBattles(ctx, plan)
	default:
		summary, err = RunDraws(ctx, plan)
	}
	if err != nil {
		return err
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(summary); err != nil {
		return fmt.Errorf("writing summary: %w", err)
	}
	return nil
}
