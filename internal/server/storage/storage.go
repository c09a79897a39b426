package storage

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/OCharnyshevich/mcregion/internal/server/config"
	"github.com/OCharnyshevich/mcregion/internal/server/player"
	"github.com/OCharnyshevich/mcregion/internal/server/world"
	worldanvil "github.com/OCharnyshevich/mcregion/internal/server/world/anvil"
	"github.com/OCharnyshevich/mcregion/internal/server/world/gen"
	"github.com/OCharnyshevich/mcregion/pkg/world/anvil"
)

// Storage handles file-based persistence for config, world, and player data.
type Storage struct {
	dir     string
	log     *slog.Logger
	regions *anvil.Registry
}

// New creates a new Storage rooted at dir, creating subdirectories as needed.
func New(dir string, log *slog.Logger) (*Storage, error) {
	dirs := []string{
		dir,
		filepath.Join(dir, "world"),
		filepath.Join(dir, "world", "region"),
		filepath.Join(dir, "players"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, fmt.Errorf("create directory %s: %w", d, err)
		}
	}
	return &Storage{dir: dir, log: log, regions: anvil.NewRegistry()}, nil
}

// Close releases every region file Storage has opened.
func (s *Storage) Close() error {
	return s.regions.Close()
}

// LoadConfig reads config.json into cfg. If the file does not exist, cfg is unchanged.
func (s *Storage) LoadConfig(cfg *config.Config) error {
	path := filepath.Join(s.dir, "config.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	s.log.Info("loaded config from file", "path", path)
	return nil
}

// SaveConfig writes cfg to config.json atomically.
func (s *Storage) SaveConfig(cfg *config.Config) error {
	path := filepath.Join(s.dir, "config.json")
	return s.atomicWriteJSON(path, cfg)
}

// LoadWorld reads overrides.json and bulk-loads block overrides into the world.
func (s *Storage) LoadWorld(w *world.World) error {
	path := filepath.Join(s.dir, "world", "overrides.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read world overrides: %w", err)
	}

	var wd WorldData
	if err := json.Unmarshal(data, &wd); err != nil {
		return fmt.Errorf("parse world overrides: %w", err)
	}

	overrides := make(map[world.BlockPos]int32, len(wd.Overrides))
	for _, o := range wd.Overrides {
		overrides[world.BlockPos{X: o.X, Y: o.Y, Z: o.Z}] = o.StateID
	}

	w.LoadOverrides(overrides)
	w.SetTime(wd.Age, wd.TimeOfDay)
	s.log.Info("loaded world overrides", "count", len(overrides))
	return nil
}

// SaveWorld writes all block overrides and world time to overrides.json atomically.
func (s *Storage) SaveWorld(w *world.World) error {
	age, timeOfDay := w.GetTime()
	wd := WorldData{
		Age:       age,
		TimeOfDay: timeOfDay,
	}
	w.ForEachOverride(func(pos world.BlockPos, stateID int32) {
		wd.Overrides = append(wd.Overrides, BlockOverride{
			X: pos.X, Y: pos.Y, Z: pos.Z, StateID: stateID,
		})
	})

	path := filepath.Join(s.dir, "world", "overrides.json")
	return s.atomicWriteJSON(path, &wd)
}

// SaveWorldAnvil writes the world in Minecraft's Anvil region file format
// (.mca), one sector-aligned frame per chunk, routed through the region
// engine's Registry so concurrent saves never open the same file twice.
func (s *Storage) SaveWorldAnvil(w *world.World) error {
	regionDir := filepath.Join(s.dir, "world", "region")
	if err := os.MkdirAll(regionDir, 0o755); err != nil {
		return fmt.Errorf("create region dir: %w", err)
	}

	now := anvil.Timestamp(uint32(time.Now().UTC().Unix()))
	var firstErr error

	w.ForEachChunk(func(pos gen.ChunkPos, chunk *gen.ChunkData) {
		overrides := w.OverridesForChunk(pos.X, pos.Z)

		nbtData, err := worldanvil.EncodeChunkNBT(pos.X, pos.Z, chunk, overrides)
		if err != nil {
			s.log.Error("encode chunk NBT", "cx", pos.X, "cz", pos.Z, "error", err)
			return
		}

		path := regionFilePath(regionDir, pos.X>>5, pos.Z>>5)
		coord := anvil.NewRegionCoord(pos.X, pos.Z)
		err = s.regions.With(path, func(rf *anvil.RegionFile) error {
			_, err := rf.WriteTimestamped(coord, anvil.SchemeZlib, 6, anvil.BytesPayload(nbtData), now)
			return err
		})
		if err != nil {
			s.log.Error("save region chunk", "cx", pos.X, "cz", pos.Z, "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	})

	return firstErr
}

// LoadWorldAnvil reads every region file under world/region and returns the
// raw decoded NBT bytes for each present chunk, keyed by absolute chunk
// position. It is SaveWorldAnvil's read-side mirror: turning those bytes
// back into live world state is left to the caller, the same way
// SaveWorldAnvil is handed already-encoded bytes rather than producing them
// itself.
func (s *Storage) LoadWorldAnvil() (map[gen.ChunkPos][]byte, error) {
	regionDir := filepath.Join(s.dir, "world", "region")
	entries, err := os.ReadDir(regionDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read region dir: %w", err)
	}

	out := make(map[gen.ChunkPos][]byte)
	for _, entry := range entries {
		rx, rz, ok := parseRegionFileName(entry.Name())
		if !ok {
			continue
		}
		path := filepath.Join(regionDir, entry.Name())

		present, err := anvil.GetPresentChunks(path)
		if err != nil {
			return nil, fmt.Errorf("inspect region %s: %w", entry.Name(), err)
		}

		err = s.regions.With(path, func(rf *anvil.RegionFile) error {
			for i := 0; i < 1024; i++ {
				if !present.Get(i) {
					continue
				}
				coord := anvil.RegionCoord(i)
				data, err := anvil.ReadData(rf, coord, anvil.DecodeBytes)
				if err != nil {
					return fmt.Errorf("read chunk %d: %w", i, err)
				}
				out[gen.ChunkPos{X: rx*32 + coord.X(), Z: rz*32 + coord.Z()}] = data
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	s.log.Info("loaded anvil world data", "chunks", len(out))
	return out, nil
}

// regionFilePath returns the path of the region file covering region
// coordinate (rx, rz), matching Minecraft's "r.<rx>.<rz>.mca" naming.
func regionFilePath(regionDir string, rx, rz int) string {
	return filepath.Join(regionDir, fmt.Sprintf("r.%d.%d.mca", rx, rz))
}

// parseRegionFileName extracts (rx, rz) from a "r.<rx>.<rz>.mca" file name.
func parseRegionFileName(name string) (rx, rz int, ok bool) {
	if !strings.HasPrefix(name, "r.") || !strings.HasSuffix(name, ".mca") {
		return 0, 0, false
	}
	parts := strings.Split(strings.TrimSuffix(strings.TrimPrefix(name, "r."), ".mca"), ".")
	if len(parts) != 2 {
		return 0, 0, false
	}
	rx, err1 := strconv.Atoi(parts[0])
	rz, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return rx, rz, true
}

// LoadPlayer reads players/<uuid>.json and returns the data, or nil if not found.
func (s *Storage) LoadPlayer(uuid string) (*PlayerData, error) {
	path := filepath.Join(s.dir, "players", uuid+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read player %s: %w", uuid, err)
	}

	var pd PlayerData
	if err := json.Unmarshal(data, &pd); err != nil {
		return nil, fmt.Errorf("parse player %s: %w", uuid, err)
	}
	return &pd, nil
}

// SavePlayer persists the current state of a player to disk.
func (s *Storage) SavePlayer(p *player.Player) error {
	pd := PlayerDataFromPlayer(p)
	path := filepath.Join(s.dir, "players", p.UUID+".json")
	return s.atomicWriteJSON(path, pd)
}

// atomicWriteJSON marshals v to JSON and writes it atomically using a temp file + rename.
func (s *Storage) atomicWriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	data = append(data, '\n')

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
