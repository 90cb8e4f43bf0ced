package mapgen

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/talgya/hexterrain/internal/noise"
	"github.com/talgya/hexterrain/internal/world"
)

func TestFromMapOverridesDefaults(t *testing.T) {
	cfg, err := FromMap(map[string]string{
		"w":          "40",
		"h":          "30",
		"seed":       "1234",
		"regions":    "2",
		"land":       "60",
		"wind":       "se",
		"hemisphere": "North",
		"noise":      "perlin",
		"map_data":   "moisture",
		"runoff":     "0.3",
	})
	if err != nil {
		t.Fatalf("FromMap: %v", err)
	}
	if cfg.CellCountX != 40 || cfg.CellCountZ != 30 {
		t.Errorf("size = %dx%d", cfg.CellCountX, cfg.CellCountZ)
	}
	if cfg.Seed != 1234 || !cfg.UseFixedSeed {
		t.Errorf("seed = %d fixed=%v", cfg.Seed, cfg.UseFixedSeed)
	}
	if cfg.RegionCount != 2 || cfg.LandPercentage != 60 {
		t.Errorf("regions=%d land=%d", cfg.RegionCount, cfg.LandPercentage)
	}
	if cfg.WindDirection != world.SE || cfg.Hemisphere != HemisphereNorth {
		t.Errorf("wind=%s hemisphere=%s", cfg.WindDirection, cfg.Hemisphere)
	}
	if cfg.NoiseKind != noise.KindPerlin || cfg.MapData != MapDataMoisture {
		t.Errorf("noise=%s map data=%s", cfg.NoiseKind, cfg.MapData)
	}
	if cfg.RunoffFactor != 0.3 {
		t.Errorf("runoff = %f", cfg.RunoffFactor)
	}
	if cfg.ElevationMax != 8 {
		t.Errorf("untouched field changed: elevation max = %d", cfg.ElevationMax)
	}
}

func TestFromMapSuggestions(t *testing.T) {
	tests := []struct {
		values map[string]string
		want   string
	}{
		{map[string]string{"regoins": "2"}, `"regions"`},
		{map[string]string{"wind": "nww"}, `"NW"`},
		{map[string]string{"hemisphere": "nort"}, `"north"`},
		{map[string]string{"noise": "simplx"}, `"simplex"`},
		{map[string]string{"map_data": "temperatur"}, `"temperature"`},
	}
	for _, tt := range tests {
		_, err := FromMap(tt.values)
		if err == nil {
			t.Errorf("FromMap(%v): expected error", tt.values)
			continue
		}
		if !strings.Contains(err.Error(), "did you mean "+tt.want) {
			t.Errorf("FromMap(%v) error %q lacks suggestion %s", tt.values, err, tt.want)
		}
	}
}

func TestFromMapBadNumber(t *testing.T) {
	_, err := FromMap(map[string]string{"land": "lots"})
	if err == nil || !strings.Contains(err.Error(), `"land"`) {
		t.Fatalf("err = %v, want error naming the key", err)
	}
}

func TestConfigJSONRoundTripsEnums(t *testing.T) {
	cfg := DefaultConfig()
	cfg.WindDirection = world.E
	cfg.Hemisphere = HemisphereSouth
	data, err := json.Marshal(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"wind_direction":"E"`) || !strings.Contains(string(data), `"hemisphere":"south"`) {
		t.Fatalf("enums not encoded by name: %s", data)
	}

	var back Config
	if err := json.Unmarshal([]byte(`{"wind_direction":"sw","hemisphere":"north","region_count":3}`), &back); err != nil {
		t.Fatal(err)
	}
	if back.WindDirection != world.SW || back.Hemisphere != HemisphereNorth || back.RegionCount != 3 {
		t.Fatalf("decoded %+v", back)
	}
}

func TestSmallTestConfigIsFixed(t *testing.T) {
	cfg := SmallTestConfig()
	if !cfg.UseFixedSeed {
		t.Fatal("small test config should fix its seed")
	}
	if _, err := world.NewGrid(cfg.CellCountX, cfg.CellCountZ); err != nil {
		t.Fatalf("small test config size rejected: %v", err)
	}
}

func TestPresetsValidate(t *testing.T) {
	for name, cfg := range map[string]Config{
		"default": DefaultConfig(),
		"small":   SmallTestConfig(),
		"large":   LargeConfig(),
	} {
		if err := cfg.Validate(); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}
}

func TestValidateRejectsOutOfRange(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		key    string
	}{
		{"huge water", func(c *Config) { c.WaterLevel = 1000000 }, "water"},
		{"huge elevation", func(c *Config) { c.ElevationMax = 2000000 }, "elevation_max"},
		{"low elevation", func(c *Config) { c.ElevationMin = -5 }, "elevation_min"},
		{"huge chunk", func(c *Config) { c.ChunkSizeMin, c.ChunkSizeMax = 30000, 30000 }, "chunk_min"},
		{"chunk order", func(c *Config) { c.ChunkSizeMin, c.ChunkSizeMax = 120, 60 }, "exceeds chunk_max"},
		{"regions", func(c *Config) { c.RegionCount = 5 }, "regions"},
		{"land", func(c *Config) { c.LandPercentage = 101 }, "land"},
		{"erosion", func(c *Config) { c.ErosionPercentage = -1 }, "erosion"},
		{"rivers", func(c *Config) { c.RiverPercentage = 21 }, "rivers"},
		{"jitter", func(c *Config) { c.JitterProbability = 0.6 }, "jitter"},
		{"wind strength", func(c *Config) { c.WindStrength = 0 }, "wind_strength"},
		{"nan moisture", func(c *Config) { c.StartingMoisture = math.NaN() }, "moisture"},
		{"wind", func(c *Config) { c.WindDirection = 9 }, "wind"},
		{"hemisphere", func(c *Config) { c.Hemisphere = 3 }, "hemisphere"},
		{"map data", func(c *Config) { c.MapData = "height" }, "map_data"},
		{"noise", func(c *Config) { c.NoiseKind = "worley" }, "noise kind"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.key) {
				t.Fatalf("error %q does not name %q", err, tt.key)
			}
		})
	}
}

func TestValidateReportsEveryProblem(t *testing.T) {
	cfg := DefaultConfig()
	cfg.WaterLevel = 0
	cfg.RegionCount = 0
	err := cfg.Validate()
	if !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("err = %v, want ErrOutOfRange", err)
	}
	if msg := err.Error(); !strings.Contains(msg, "water") || !strings.Contains(msg, "regions") {
		t.Fatalf("error %q should name both fields", msg)
	}
}
