package mapgen

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/talgya/hexterrain/internal/noise"
	"github.com/talgya/hexterrain/internal/world"
)

// Hemisphere selects how grid rows map to latitude.
type Hemisphere uint8

const (
	HemisphereBoth  Hemisphere = iota // Equator across the middle row
	HemisphereNorth                   // Equator at the bottom row
	HemisphereSouth                   // Equator at the top row
)

var hemisphereNames = []string{"both", "north", "south"}

func (h Hemisphere) String() string {
	if int(h) < len(hemisphereNames) {
		return hemisphereNames[h]
	}
	return fmt.Sprintf("Hemisphere(%d)", uint8(h))
}

// ParseHemisphere converts "both", "north" or "south" to a Hemisphere.
func ParseHemisphere(s string) (Hemisphere, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range hemisphereNames {
		if n == name {
			return Hemisphere(i), nil
		}
	}
	return HemisphereBoth, unknownName("hemisphere", s, hemisphereNames)
}

func (h Hemisphere) MarshalText() ([]byte, error) { return []byte(h.String()), nil }

func (h *Hemisphere) UnmarshalText(text []byte) error {
	parsed, err := ParseHemisphere(string(text))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// MapDataMode selects the auxiliary scalar exported per cell.
type MapDataMode string

const (
	MapDataTemperature MapDataMode = "temperature"
	MapDataMoisture    MapDataMode = "moisture"
)

// Config holds every map generation parameter. It is treated as immutable
// for the duration of one generation run. Generate does not range-check it;
// callers taking untrusted input run Validate first.
type Config struct {
	CellCountX int `json:"cell_count_x"`
	CellCountZ int `json:"cell_count_z"`

	Seed         int64 `json:"seed"`
	UseFixedSeed bool  `json:"use_fixed_seed"`

	// Land sculpting.
	JitterProbability   float64 `json:"jitter_probability"`
	ChunkSizeMin        int     `json:"chunk_size_min"`
	ChunkSizeMax        int     `json:"chunk_size_max"`
	HighriseProbability float64 `json:"highrise_probability"`
	SinkProbability     float64 `json:"sink_probability"`
	LandPercentage      int     `json:"land_percentage"`
	WaterLevel          int     `json:"water_level"`
	ElevationMin        int     `json:"elevation_min"`
	ElevationMax        int     `json:"elevation_max"`

	// Regions.
	MapBorderX   int `json:"map_border_x"`
	MapBorderZ   int `json:"map_border_z"`
	RegionBorder int `json:"region_border"`
	RegionCount  int `json:"region_count"`

	ErosionPercentage int `json:"erosion_percentage"`

	// Climate.
	StartingMoisture    float64         `json:"starting_moisture"`
	EvaporationFactor   float64         `json:"evaporation_factor"`
	PrecipitationFactor float64         `json:"precipitation_factor"`
	RunoffFactor        float64         `json:"runoff_factor"`
	SeepageFactor       float64         `json:"seepage_factor"`
	WindDirection       world.Direction `json:"wind_direction"`
	WindStrength        float64         `json:"wind_strength"`

	// Rivers.
	RiverPercentage      int     `json:"river_percentage"`
	ExtraLakeProbability float64 `json:"extra_lake_probability"`

	// Temperature and biomes.
	LowTemperature    float64     `json:"low_temperature"`
	HighTemperature   float64     `json:"high_temperature"`
	Hemisphere        Hemisphere  `json:"hemisphere"`
	TemperatureJitter float64     `json:"temperature_jitter"`
	NoiseKind         noise.Kind  `json:"noise_kind"`
	NoiseSeed         int64       `json:"noise_seed"`
	MapData           MapDataMode `json:"map_data"`
}

// DefaultConfig returns the standard 20x15 configuration.
func DefaultConfig() Config {
	return Config{
		CellCountX:           20,
		CellCountZ:           15,
		JitterProbability:    0.25,
		ChunkSizeMin:         30,
		ChunkSizeMax:         100,
		HighriseProbability:  0.25,
		SinkProbability:      0.2,
		LandPercentage:       50,
		WaterLevel:           3,
		ElevationMin:         -2,
		ElevationMax:         8,
		MapBorderX:           5,
		MapBorderZ:           5,
		RegionBorder:         5,
		RegionCount:          1,
		ErosionPercentage:    50,
		StartingMoisture:     0.1,
		EvaporationFactor:    0.5,
		PrecipitationFactor:  0.25,
		RunoffFactor:         0.25,
		SeepageFactor:        0.125,
		WindDirection:        world.NW,
		WindStrength:         4,
		RiverPercentage:      10,
		ExtraLakeProbability: 0.25,
		LowTemperature:       0,
		HighTemperature:      1,
		Hemisphere:           HemisphereBoth,
		TemperatureJitter:    0.1,
		NoiseKind:            noise.KindSimplex,
		NoiseSeed:            1234,
		MapData:              MapDataTemperature,
	}
}

// SmallTestConfig returns a tiny fixed-seed map for rapid iteration.
func SmallTestConfig() Config {
	cfg := DefaultConfig()
	cfg.CellCountX = 10
	cfg.CellCountZ = 10
	cfg.Seed = 42
	cfg.UseFixedSeed = true
	cfg.ChunkSizeMin = 20
	cfg.ChunkSizeMax = 30
	cfg.MapBorderX = 2
	cfg.MapBorderZ = 2
	cfg.RegionBorder = 1
	return cfg
}

// LargeConfig returns an 80x60 map with four landmasses.
func LargeConfig() Config {
	cfg := DefaultConfig()
	cfg.CellCountX = 80
	cfg.CellCountZ = 60
	cfg.RegionCount = 4
	cfg.ChunkSizeMax = 150
	return cfg
}

// ErrOutOfRange marks a Config value outside its accepted range.
var ErrOutOfRange = errors.New("config value out of range")

// Validate range-checks every parameter against the limits of the editor
// sliders. Generation itself does not re-check them; callers taking
// untrusted input should. Grid dimensions are checked by world.NewGrid.
func (c Config) Validate() error {
	var errs []error
	checkInt := func(key string, v, lo, hi int) {
		if v < lo || v > hi {
			errs = append(errs, fmt.Errorf("%w: %s = %d, want %d..%d", ErrOutOfRange, key, v, lo, hi))
		}
	}
	checkFloat := func(key string, v, lo, hi float64) {
		if v < lo || v > hi || math.IsNaN(v) {
			errs = append(errs, fmt.Errorf("%w: %s = %g, want %g..%g", ErrOutOfRange, key, v, lo, hi))
		}
	}

	checkFloat("jitter", c.JitterProbability, 0, 0.5)
	checkInt("chunk_min", c.ChunkSizeMin, 20, 200)
	checkInt("chunk_max", c.ChunkSizeMax, 20, 200)
	checkFloat("highrise", c.HighriseProbability, 0, 1)
	checkFloat("sink", c.SinkProbability, 0, 0.4)
	checkInt("land", c.LandPercentage, 0, 100)
	checkInt("water", c.WaterLevel, 1, 5)
	checkInt("elevation_min", c.ElevationMin, -4, 0)
	checkInt("elevation_max", c.ElevationMax, 6, 10)
	checkInt("border_x", c.MapBorderX, 0, 10)
	checkInt("border_z", c.MapBorderZ, 0, 10)
	checkInt("region_border", c.RegionBorder, 0, 10)
	checkInt("regions", c.RegionCount, 1, 4)
	checkInt("erosion", c.ErosionPercentage, 0, 100)
	checkFloat("moisture", c.StartingMoisture, 0, 1)
	checkFloat("evaporation", c.EvaporationFactor, 0, 1)
	checkFloat("precipitation", c.PrecipitationFactor, 0, 1)
	checkFloat("runoff", c.RunoffFactor, 0, 1)
	checkFloat("seepage", c.SeepageFactor, 0, 1)
	checkFloat("wind_strength", c.WindStrength, 1, 10)
	checkInt("rivers", c.RiverPercentage, 0, 20)
	checkFloat("extra_lake", c.ExtraLakeProbability, 0, 1)
	checkFloat("temp_low", c.LowTemperature, 0, 1)
	checkFloat("temp_high", c.HighTemperature, 0, 1)
	checkFloat("temp_jitter", c.TemperatureJitter, 0, 1)

	if c.ChunkSizeMin > c.ChunkSizeMax {
		errs = append(errs, fmt.Errorf("%w: chunk_min %d exceeds chunk_max %d", ErrOutOfRange, c.ChunkSizeMin, c.ChunkSizeMax))
	}
	if c.WindDirection >= world.DirectionCount {
		errs = append(errs, fmt.Errorf("%w: wind = %d", ErrOutOfRange, c.WindDirection))
	}
	if int(c.Hemisphere) >= len(hemisphereNames) {
		errs = append(errs, fmt.Errorf("%w: hemisphere = %d", ErrOutOfRange, c.Hemisphere))
	}
	if _, err := noise.New(c.NoiseKind, 0); err != nil {
		errs = append(errs, err)
	}
	switch c.MapData {
	case MapDataTemperature, MapDataMoisture:
	default:
		errs = append(errs, fmt.Errorf("%w: map_data = %q", ErrOutOfRange, c.MapData))
	}
	return errors.Join(errs...)
}

type setter func(c *Config, v string) error

func intField(dst func(c *Config) *int) setter {
	return func(c *Config, v string) error {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		*dst(c) = parsed
		return nil
	}
}

func floatField(dst func(c *Config) *float64) setter {
	return func(c *Config, v string) error {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}
		*dst(c) = parsed
		return nil
	}
}

var setters = map[string]setter{
	"w":             intField(func(c *Config) *int { return &c.CellCountX }),
	"h":             intField(func(c *Config) *int { return &c.CellCountZ }),
	"jitter":        floatField(func(c *Config) *float64 { return &c.JitterProbability }),
	"chunk_min":     intField(func(c *Config) *int { return &c.ChunkSizeMin }),
	"chunk_max":     intField(func(c *Config) *int { return &c.ChunkSizeMax }),
	"highrise":      floatField(func(c *Config) *float64 { return &c.HighriseProbability }),
	"sink":          floatField(func(c *Config) *float64 { return &c.SinkProbability }),
	"land":          intField(func(c *Config) *int { return &c.LandPercentage }),
	"water":         intField(func(c *Config) *int { return &c.WaterLevel }),
	"elevation_min": intField(func(c *Config) *int { return &c.ElevationMin }),
	"elevation_max": intField(func(c *Config) *int { return &c.ElevationMax }),
	"border_x":      intField(func(c *Config) *int { return &c.MapBorderX }),
	"border_z":      intField(func(c *Config) *int { return &c.MapBorderZ }),
	"region_border": intField(func(c *Config) *int { return &c.RegionBorder }),
	"regions":       intField(func(c *Config) *int { return &c.RegionCount }),
	"erosion":       intField(func(c *Config) *int { return &c.ErosionPercentage }),
	"moisture":      floatField(func(c *Config) *float64 { return &c.StartingMoisture }),
	"evaporation":   floatField(func(c *Config) *float64 { return &c.EvaporationFactor }),
	"precipitation": floatField(func(c *Config) *float64 { return &c.PrecipitationFactor }),
	"runoff":        floatField(func(c *Config) *float64 { return &c.RunoffFactor }),
	"seepage":       floatField(func(c *Config) *float64 { return &c.SeepageFactor }),
	"wind_strength": floatField(func(c *Config) *float64 { return &c.WindStrength }),
	"rivers":        intField(func(c *Config) *int { return &c.RiverPercentage }),
	"extra_lake":    floatField(func(c *Config) *float64 { return &c.ExtraLakeProbability }),
	"temp_low":      floatField(func(c *Config) *float64 { return &c.LowTemperature }),
	"temp_high":     floatField(func(c *Config) *float64 { return &c.HighTemperature }),
	"temp_jitter":   floatField(func(c *Config) *float64 { return &c.TemperatureJitter }),
	"seed": func(c *Config, v string) error {
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return err
		}
		c.Seed = parsed
		c.UseFixedSeed = true
		return nil
	},
	"fixed_seed": func(c *Config, v string) error {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		c.UseFixedSeed = parsed
		return nil
	},
	"noise_seed": func(c *Config, v string) error {
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return err
		}
		c.NoiseSeed = parsed
		return nil
	},
	"wind": func(c *Config, v string) error {
		d, err := world.ParseDirection(v)
		if err != nil {
			return unknownName("wind direction", v, world.DirectionNames())
		}
		c.WindDirection = d
		return nil
	},
	"hemisphere": func(c *Config, v string) error {
		h, err := ParseHemisphere(v)
		if err != nil {
			return err
		}
		c.Hemisphere = h
		return nil
	},
	"noise": func(c *Config, v string) error {
		kind := noise.Kind(strings.ToLower(v))
		if _, err := noise.New(kind, 0); err != nil {
			return unknownName("noise kind", v, noise.Kinds())
		}
		c.NoiseKind = kind
		return nil
	},
	"map_data": func(c *Config, v string) error {
		switch mode := MapDataMode(strings.ToLower(v)); mode {
		case MapDataTemperature, MapDataMoisture:
			c.MapData = mode
			return nil
		}
		return unknownName("map data", v, []string{string(MapDataTemperature), string(MapDataMoisture)})
	},
}

// ConfigKeys lists the keys accepted by FromMap.
func ConfigKeys() []string {
	keys := make([]string, 0, len(setters))
	for k := range setters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// FromMap overlays flag-style key/value pairs onto the default configuration.
// Setting "seed" also fixes the seed.
func FromMap(values map[string]string) (Config, error) {
	c := DefaultConfig()
	return c, c.Apply(values)
}

// Apply overlays key/value pairs onto c.
func (c *Config) Apply(values map[string]string) error {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		set, ok := setters[k]
		if !ok {
			return unknownName("config key", k, ConfigKeys())
		}
		if err := set(c, values[k]); err != nil {
			return fmt.Errorf("config key %q: %w", k, err)
		}
	}
	return nil
}

// unknownName builds an error for an unrecognized name, suggesting the
// closest option by edit distance.
func unknownName(what, got string, options []string) error {
	if s := suggest(got, options); s != "" {
		return fmt.Errorf("unknown %s %q (did you mean %q?)", what, got, s)
	}
	return fmt.Errorf("unknown %s %q (options: %s)", what, got, strings.Join(options, ", "))
}

func suggest(got string, options []string) string {
	needle := strings.ToLower(got)
	best := ""
	bestDist := len(needle)/3 + 2
	for _, opt := range options {
		dist := levenshtein.ComputeDistance(needle, strings.ToLower(opt))
		if dist < bestDist {
			best = opt
			bestDist = dist
		}
	}
	return best
}
