// Command terrainsim generates a hex terrain map, prints a summary and an
// ASCII preview, and optionally archives it and serves the HTTP API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/talgya/hexterrain/internal/api"
	"github.com/talgya/hexterrain/internal/entropy"
	"github.com/talgya/hexterrain/internal/mapgen"
	"github.com/talgya/hexterrain/internal/persistence"
	"github.com/talgya/hexterrain/internal/world"
)

// overrides collects repeated -set key=value flags.
type overrides map[string]string

func (o overrides) String() string {
	parts := make([]string, 0, len(o))
	for k, v := range o {
		parts = append(parts, k+"="+v)
	}
	return strings.Join(parts, ",")
}

func (o overrides) Set(s string) error {
	k, v, ok := strings.Cut(s, "=")
	if !ok || k == "" {
		return fmt.Errorf("want key=value, got %q", s)
	}
	o[strings.TrimSpace(k)] = strings.TrimSpace(v)
	return nil
}

func main() {
	var (
		preset  = flag.String("preset", "default", "base configuration: default, small or large")
		width   = flag.Int("w", 0, "cells along x (multiple of 5, 0 = preset)")
		height  = flag.Int("h", 0, "cells along z (multiple of 5, 0 = preset)")
		seed    = flag.Int64("seed", 0, "fixed seed (0 = draw a fresh one)")
		regions = flag.Int("regions", 0, "landmass regions 1-4 (0 = preset)")
		land    = flag.Int("land", 0, "land percentage (0 = preset)")
		dbPath  = flag.String("db", os.Getenv("TERRAIN_DB"), "SQLite archive path (empty = no archive)")
		name    = flag.String("name", "", "archive name (default seed-N)")
		serve   = flag.Bool("serve", false, "serve the HTTP API after generating")
		port    = flag.Int("port", envIntOrDefault("TERRAIN_PORT", 8080), "HTTP API port")
		preview = flag.Bool("preview", true, "print an ASCII preview")
		verbose = flag.Bool("v", false, "debug logging")
	)
	sets := overrides{}
	flag.Var(sets, "set", "config override key=value, repeatable (keys: "+strings.Join(mapgen.ConfigKeys(), ", ")+")")
	flag.Parse()

	setupLogging(*verbose)

	cfg, err := presetConfig(*preset)
	if err != nil {
		fail("bad preset", err)
	}
	// Dedicated flags take precedence over -set.
	if *width > 0 {
		sets["w"] = strconv.Itoa(*width)
	}
	if *height > 0 {
		sets["h"] = strconv.Itoa(*height)
	}
	if *seed != 0 {
		sets["seed"] = strconv.FormatInt(*seed, 10)
	}
	if *regions > 0 {
		sets["regions"] = strconv.Itoa(*regions)
	}
	if *land > 0 {
		sets["land"] = strconv.Itoa(*land)
	}
	if err := cfg.Apply(sets); err != nil {
		fail("bad configuration", err)
	}
	if err := cfg.Validate(); err != nil {
		fail("bad configuration", err)
	}

	gen := &mapgen.Generator{}
	if key := os.Getenv("RANDOM_ORG_API_KEY"); key != "" {
		gen.Seeds = entropy.NewRandomOrgSource(key)
		slog.Info("fresh seeds drawn from random.org")
	}

	// ── Generate ──────────────────────────────────────────────────────
	res, err := gen.Generate(cfg)
	if err != nil {
		fail("generation failed", err)
	}
	logSummary(res)

	if *preview {
		fmt.Println()
		if err := writePreview(os.Stdout, res.Grid); err != nil {
			fail("preview failed", err)
		}
		fmt.Println()
	}

	// ── Archive ───────────────────────────────────────────────────────
	var db *persistence.DB
	if *dbPath != "" {
		if dir := filepath.Dir(*dbPath); dir != "." {
			os.MkdirAll(dir, 0755)
		}
		db, err = persistence.Open(*dbPath)
		if err != nil {
			fail("failed to open database", err)
		}
		defer db.Close()

		id, err := db.SaveMap(res, *name)
		if err != nil {
			fail("archive failed", err)
		}
		if err := db.SaveMeta("last_map", id); err != nil {
			slog.Warn("save meta failed", "error", err)
		}
		fmt.Printf("Archived as %s in %s\n", id, *dbPath)
	}

	if !*serve {
		return
	}

	// ── HTTP API ──────────────────────────────────────────────────────
	adminKey := os.Getenv("TERRAIN_ADMIN_KEY")
	if adminKey == "" {
		slog.Warn("TERRAIN_ADMIN_KEY not set, map deletion is disabled")
	}
	defaults := res.Config
	defaults.UseFixedSeed = false

	srv := &api.Server{
		Gen:      gen,
		DB:       db,
		Defaults: defaults,
		Port:     *port,
		AdminKey: adminKey,

		TrustProxy: os.Getenv("TERRAIN_TRUST_PROXY") != "",
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Printf("API: http://localhost:%d/api/v1/status (Ctrl+C to stop)\n", *port)
	if err := srv.ListenAndServe(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("HTTP API stopped", "error", err)
		os.Exit(1)
	}
	slog.Info("shut down")
}

func presetConfig(name string) (mapgen.Config, error) {
	switch strings.ToLower(name) {
	case "default", "":
		return mapgen.DefaultConfig(), nil
	case "small":
		return mapgen.SmallTestConfig(), nil
	case "large":
		return mapgen.LargeConfig(), nil
	}
	return mapgen.Config{}, fmt.Errorf("unknown preset %q (options: default, small, large)", name)
}

// setupLogging uses text output on a terminal and JSON otherwise.
func setupLogging(verbose bool) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if verbose {
		opts.Level = slog.LevelDebug
	}
	var handler slog.Handler
	if isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func logSummary(res *mapgen.Result) {
	st := res.Stats
	slog.Info("map generated",
		"size", fmt.Sprintf("%dx%d", res.Grid.CellCountX, res.Grid.CellCountZ),
		"cells", humanize.Comma(int64(res.Grid.Len())),
		"seed", res.Seed,
		"elapsed", st.Elapsed,
	)
	slog.Info("land",
		"regions", st.Regions,
		"budget", st.LandBudget,
		"cells", st.LandCells,
		"shortfall", st.LandShortfall,
		"erodible", fmt.Sprintf("%d -> %d", st.InitialErodible, st.FinalErodible),
	)
	slog.Info("water",
		"rivers", st.Rivers,
		"river_budget", st.RiverBudget,
		"river_shortfall", st.RiverShortfall,
		"lakes", st.Lakes,
	)

	landCounts, waterCounts := world.TerrainCounts(res.Grid)
	for t := 0; t < world.TerrainTypeCount; t++ {
		if landCounts[t] == 0 && waterCounts[t] == 0 {
			continue
		}
		slog.Info("terrain", "type", world.TerrainName(t), "land", landCounts[t], "underwater", waterCounts[t])
	}

	landPct := 100 * float64(world.LandCount(res.Grid)) / float64(res.Grid.Len())
	fmt.Printf("Seed %d: %s%% land, %d rivers, %d lakes.\n",
		res.Seed, humanize.FtoaWithDigits(landPct, 1), st.Rivers, st.Lakes)
}

func fail(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}

func envIntOrDefault(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
