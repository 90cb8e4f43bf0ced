// Package persistence provides SQLite-based storage for generated maps.
package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/ncruces/go-strftime"
	_ "modernc.org/sqlite"

	"github.com/talgya/hexterrain/internal/mapgen"
	"github.com/talgya/hexterrain/internal/world"
)

// ErrNotFound is returned when a map id is not in the archive.
var ErrNotFound = errors.New("map not found")

// timeFormat is the strftime layout of created_at.
const timeFormat = "%Y-%m-%dT%H:%M:%SZ"

// DB wraps a SQLite connection for the map archive.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS maps (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		seed INTEGER NOT NULL,
		width INTEGER NOT NULL,
		height INTEGER NOT NULL,
		land_cells INTEGER NOT NULL,
		rivers INTEGER NOT NULL,
		config_json TEXT NOT NULL,
		stats_json TEXT NOT NULL,
		created_at TEXT NOT NULL,
		created_unix INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS cells (
		map_id TEXT NOT NULL REFERENCES maps(id) ON DELETE CASCADE,
		idx INTEGER NOT NULL,
		elevation INTEGER NOT NULL,
		water_level INTEGER NOT NULL,
		terrain INTEGER NOT NULL,
		urban INTEGER NOT NULL,
		farm INTEGER NOT NULL,
		plant INTEGER NOT NULL,
		special INTEGER NOT NULL,
		walled INTEGER NOT NULL,
		roads INTEGER NOT NULL,
		river_in INTEGER NOT NULL,
		river_out INTEGER NOT NULL,
		map_data REAL NOT NULL,
		PRIMARY KEY (map_id, idx)
	);

	CREATE TABLE IF NOT EXISTS archive_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_maps_created ON maps(created_unix);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// MapSummary is one row of the maps table.
type MapSummary struct {
	ID          string `db:"id" json:"id"`
	Name        string `db:"name" json:"name"`
	Seed        int64  `db:"seed" json:"seed"`
	Width       int    `db:"width" json:"width"`
	Height      int    `db:"height" json:"height"`
	LandCells   int    `db:"land_cells" json:"land_cells"`
	Rivers      int    `db:"rivers" json:"rivers"`
	CreatedAt   string `db:"created_at" json:"created_at"`
	CreatedUnix int64  `db:"created_unix" json:"-"`
}

// Created returns the creation time.
func (m MapSummary) Created() time.Time {
	return time.Unix(m.CreatedUnix, 0).UTC()
}

// StoredMap is a map loaded back from the archive.
type StoredMap struct {
	MapSummary
	Config mapgen.Config `json:"config"`
	Stats  mapgen.Stats  `json:"stats"`
	Grid   *world.Grid   `json:"-"`
}

type mapRow struct {
	MapSummary
	ConfigJSON string `db:"config_json"`
	StatsJSON  string `db:"stats_json"`
}

// CellRow is the stored form of one cell.
type CellRow struct {
	Index      int     `db:"idx" json:"i"`
	Elevation  int     `db:"elevation" json:"elevation"`
	WaterLevel int     `db:"water_level" json:"water_level"`
	Terrain    int     `db:"terrain" json:"terrain"`
	Urban      int     `db:"urban" json:"urban"`
	Farm       int     `db:"farm" json:"farm"`
	Plant      int     `db:"plant" json:"plant"`
	Special    int     `db:"special" json:"special"`
	Walled     bool    `db:"walled" json:"walled"`
	Roads      uint8   `db:"roads" json:"roads"`
	RiverIn    uint8   `db:"river_in" json:"river_in"`
	RiverOut   uint8   `db:"river_out" json:"river_out"`
	MapData    float64 `db:"map_data" json:"map_data"`
}

// RowFromCell converts a cell to its stored form.
func RowFromCell(c *world.Cell) CellRow {
	return CellRow{
		Index:      c.Index,
		Elevation:  c.Elevation(),
		WaterLevel: c.WaterLevel(),
		Terrain:    c.TerrainType,
		Urban:      c.UrbanLevel,
		Farm:       c.FarmLevel,
		Plant:      c.PlantLevel,
		Special:    c.SpecialIndex(),
		Walled:     c.Walled,
		Roads:      c.RoadMask(),
		RiverIn:    world.EncodeRiver(c.HasIncomingRiver(), c.IncomingRiver()),
		RiverOut:   world.EncodeRiver(c.HasOutgoingRiver(), c.OutgoingRiver()),
		MapData:    c.MapData,
	}
}

// SaveMap archives a generated map and returns its new id.
func (db *DB) SaveMap(res *mapgen.Result, name string) (string, error) {
	return db.saveMap(res, name, time.Now())
}

func (db *DB) saveMap(res *mapgen.Result, name string, now time.Time) (string, error) {
	configJSON, err := json.Marshal(res.Config)
	if err != nil {
		return "", fmt.Errorf("marshal config: %w", err)
	}
	statsJSON, err := json.Marshal(res.Stats)
	if err != nil {
		return "", fmt.Errorf("marshal stats: %w", err)
	}

	id := uuid.NewString()
	if name == "" {
		name = fmt.Sprintf("seed-%d", res.Seed)
	}
	now = now.UTC()

	tx, err := db.conn.Beginx()
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT INTO maps
		(id, name, seed, width, height, land_cells, rivers, config_json, stats_json, created_at, created_unix)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, name, res.Seed, res.Grid.CellCountX, res.Grid.CellCountZ,
		world.LandCount(res.Grid), world.RiverCount(res.Grid),
		string(configJSON), string(statsJSON),
		strftime.Format(timeFormat, now), now.Unix(),
	)
	if err != nil {
		return "", fmt.Errorf("insert map: %w", err)
	}

	stmt, err := tx.Preparex(`INSERT INTO cells
		(map_id, idx, elevation, water_level, terrain, urban, farm, plant,
		 special, walled, roads, river_in, river_out, map_data)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", err
	}
	defer stmt.Close()

	for i := 0; i < res.Grid.Len(); i++ {
		r := RowFromCell(res.Grid.Cell(i))
		walled := 0
		if r.Walled {
			walled = 1
		}
		if _, err := stmt.Exec(id, r.Index, r.Elevation, r.WaterLevel, r.Terrain, r.Urban, r.Farm, r.Plant,
			r.Special, walled, r.Roads, r.RiverIn, r.RiverOut, r.MapData); err != nil {
			return "", fmt.Errorf("insert cell %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	slog.Info("map archived", "id", id, "seed", res.Seed, "cells", res.Grid.Len())
	return id, nil
}

// LoadMap rebuilds a stored map, including its grid and rivers.
func (db *DB) LoadMap(id string) (*StoredMap, error) {
	var row mapRow
	err := db.conn.Get(&row, `SELECT id, name, seed, width, height, land_cells, rivers,
		config_json, stats_json, created_at, created_unix FROM maps WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load map: %w", err)
	}

	m := &StoredMap{MapSummary: row.MapSummary}
	if err := json.Unmarshal([]byte(row.ConfigJSON), &m.Config); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := json.Unmarshal([]byte(row.StatsJSON), &m.Stats); err != nil {
		return nil, fmt.Errorf("decode stats: %w", err)
	}

	rows, err := db.Cells(id)
	if err != nil {
		return nil, err
	}
	grid, err := world.NewGrid(row.Width, row.Height)
	if err != nil {
		return nil, fmt.Errorf("rebuild grid: %w", err)
	}
	if len(rows) != grid.Len() {
		return nil, fmt.Errorf("map %s has %d cells, want %d", id, len(rows), grid.Len())
	}

	for _, r := range rows {
		grid.Restore(r.Index, r.Elevation, r.WaterLevel)
		c := grid.Cell(r.Index)
		c.TerrainType = r.Terrain
		c.UrbanLevel = r.Urban
		c.FarmLevel = r.Farm
		c.PlantLevel = r.Plant
		c.Walled = r.Walled
		c.MapData = r.MapData
		grid.SetSpecialIndex(r.Index, r.Special)
	}
	for _, r := range rows {
		grid.RestoreRoads(r.Index, r.Roads)
		if has, d := world.DecodeRiver(r.RiverOut); has {
			grid.RestoreRiver(r.Index, d)
		}
	}

	m.Grid = grid
	return m, nil
}

// Cells returns the stored cells of a map in index order.
func (db *DB) Cells(id string) ([]CellRow, error) {
	var rows []CellRow
	err := db.conn.Select(&rows, `SELECT idx, elevation, water_level, terrain, urban, farm, plant,
		special, walled, roads, river_in, river_out, map_data
		FROM cells WHERE map_id = ? ORDER BY idx`, id)
	if err != nil {
		return nil, fmt.Errorf("load cells: %w", err)
	}
	return rows, nil
}

// ListMaps returns the most recent maps, newest first.
func (db *DB) ListMaps(limit int) ([]MapSummary, error) {
	var maps []MapSummary
	err := db.conn.Select(&maps,
		`SELECT id, name, seed, width, height, land_cells, rivers, created_at, created_unix
		FROM maps ORDER BY created_unix DESC, rowid DESC LIMIT ?`,
		limit,
	)
	return maps, err
}

// DeleteMap removes a map and its cells.
func (db *DB) DeleteMap(id string) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM cells WHERE map_id = ?", id); err != nil {
		return fmt.Errorf("delete cells: %w", err)
	}
	res, err := tx.Exec("DELETE FROM maps WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete map: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

// SaveMeta stores a key-value pair in archive metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO archive_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM archive_meta WHERE key = ?", key)
	return value, err
}
