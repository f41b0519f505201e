package config

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/common"
	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/experience"
	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/game/core"
	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/game/mapgen"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestInit(t *testing.T) {
	configFile := writeConfig(t, t.TempDir(), "config.yaml", `
env:
  rows: 11
  cols: 13
  seed: 42
  max_episode_steps: 200
maze:
  room_count:
    min: 2
    max: 2
  room_types: ["open"]
rewards:
  wall_collision: -2
server:
  grpc_server:
    port: 8080
    idle_timeout: 5m
ui:
  window:
    width: 1024
    height: 768
`)

	cfg = nil
	v = nil

	err := Init(configFile)
	require.NoError(t, err)

	c := Get()
	assert.Equal(t, 11, c.Env.Rows)
	assert.Equal(t, 13, c.Env.Cols)
	assert.Equal(t, int64(42), c.Env.Seed)
	assert.Equal(t, 200, c.Env.MaxEpisodeSteps)
	assert.Equal(t, mapgen.FixedInt(2), c.Maze.RoomCount)
	assert.Equal(t, []string{"open"}, c.Maze.RoomTypes)
	assert.Equal(t, -2.0, c.Rewards.WallCollision)
	assert.Equal(t, -0.01, c.Rewards.Neutral) // default kept
	assert.Equal(t, 8080, c.Server.GRPCServer.Port)
	assert.Equal(t, 5*time.Minute, c.Server.GRPCServer.IdleTimeout)
	assert.Equal(t, 1024, c.UI.Window.Width)
	assert.Equal(t, 768, c.UI.Window.Height)
	assert.Equal(t, configFile, ConfigFilePath())
}

func TestInitWithDefaults(t *testing.T) {
	cfg = nil
	v = nil

	err := Init("/non/existent/path/config.yaml")
	require.NoError(t, err)

	c := Get()
	require.NotNil(t, c)
	assert.Equal(t, 15, c.Env.Rows)
	assert.Equal(t, 21, c.Env.Cols)
	assert.Equal(t, int64(-1), c.Env.Seed)
	assert.Equal(t, mapgen.IntRange(1, 8), c.Maze.RoomCount)
	assert.Equal(t, mapgen.FloatRange(0.1, 0.8), c.Maze.GlobalRoomRatio)
	assert.Equal(t, experience.PersistenceTypeNone, c.Experience.Persistence.Type)
	assert.Equal(t, experience.DefaultBufferCapacity, c.Experience.BufferCapacity)
	assert.Equal(t, experience.DefaultDiscount, c.Experience.Discount)
	assert.Equal(t, 150*time.Millisecond, c.Terminal.StepDelay)
	assert.Equal(t, [3]int{50, 200, 80}, c.Colors.Cells.Target)
	assert.Equal(t, common.DefaultPalette, c.Colors.Palette())
	assert.Equal(t, "info", c.Logging.Level)
}

func TestInitRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"tiny grid", "env:\n  rows: 2\n"},
		{"negative steps", "env:\n  max_episode_steps: -1\n"},
		{"unknown room type", "maze:\n  room_types: [\"spiral\"]\n"},
		{"inverted range", "maze:\n  room_ratio:\n    min: 2\n    max: 1\n"},
		{"bad port", "server:\n  grpc_server:\n    port: 70000\n"},
		{"zero discount", "experience:\n  discount: 0\n"},
		{"bad persistence", "experience:\n  persistence:\n    type: s3\n"},
		{"bad color", "colors:\n  cells:\n    wall: [0, 0, 300]\n"},
		{"bad log format", "logging:\n  format: xml\n"},
		{"grid above server limit", "env:\n  rows: 31\n  cols: 31\nserver:\n  grpc_server:\n    max_rows: 21\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configFile := writeConfig(t, t.TempDir(), "config.yaml", tt.content)
			cfg = nil
			v = nil
			assert.Error(t, Init(configFile))
		})
	}
}

func TestEnvironmentVariables(t *testing.T) {
	cfg = nil
	v = nil

	t.Setenv("LAB_ENV_ROWS", "9")
	t.Setenv("LAB_SERVER_GRPC_SERVER_PORT", "9090")

	err := Init("")
	require.NoError(t, err)

	c := Get()
	assert.Equal(t, 9, c.Env.Rows)
	assert.Equal(t, 9090, c.Server.GRPCServer.Port)
}

func TestSet(t *testing.T) {
	cfg = nil
	v = nil

	err := Init("")
	require.NoError(t, err)

	require.NoError(t, Set("env.cols", 31))
	require.NoError(t, Set("ui.window.width", 1280))

	c := Get()
	assert.Equal(t, 31, c.Env.Cols)
	assert.Equal(t, 1280, c.UI.Window.Width)

	err = Set("env.rows", 1)
	assert.ErrorContains(t, err, "config validation failed")
	assert.Same(t, c, Get(), "a rejected value keeps the previous config")
	assert.Equal(t, 31, Get().Env.Cols)
}

func TestWatchConfigSkipsInvalidFiles(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "config.yaml", "env:\n  rows: 9\n")

	cfg = nil
	v = nil
	require.NoError(t, Init(path))

	var (
		seenMu sync.Mutex
		seen   []int
	)
	WatchConfig(zerolog.Nop(), func(next *Config) {
		seenMu.Lock()
		seen = append(seen, next.Env.Rows)
		seenMu.Unlock()
	})

	writeConfig(t, dir, "config.yaml", "env:\n  rows: 2\n")
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 9, Get().Env.Rows, "an invalid file is not applied")

	writeConfig(t, dir, "config.yaml", "env:\n  rows: 13\n")
	require.Eventually(t, func() bool { return Get().Env.Rows == 13 }, 5*time.Second, 20*time.Millisecond)

	seenMu.Lock()
	defer seenMu.Unlock()
	assert.Contains(t, seen, 13)
	assert.NotContains(t, seen, 2)
}

func TestLoadEnvironmentConfig(t *testing.T) {
	tmpDir := t.TempDir()

	baseConfig := writeConfig(t, tmpDir, "config.yaml", `
env:
  rows: 15
server:
  grpc_server:
    port: 50051
`)
	writeConfig(t, tmpDir, "config.prod.yaml", `
env:
  rows: 21
server:
  grpc_server:
    port: 8080
    max_envs: 8
`)

	oldWd, _ := os.Getwd()
	_ = os.Chdir(tmpDir)
	defer func() { _ = os.Chdir(oldWd) }()

	cfg = nil
	v = nil

	err := Init(baseConfig)
	require.NoError(t, err)

	err = LoadEnvironmentConfig("prod")
	require.NoError(t, err)

	c := Get()
	assert.Equal(t, 21, c.Env.Rows)
	assert.Equal(t, 8080, c.Server.GRPCServer.Port)
	assert.Equal(t, 8, c.Server.GRPCServer.MaxEnvs)
	assert.Equal(t, 21, c.Env.Cols)
}

func TestEnvConfigMapping(t *testing.T) {
	cfg = nil
	v = nil
	require.NoError(t, Init(""))

	t.Run("defaults draw a seed and clamp rooms", func(t *testing.T) {
		ec, err := Get().EnvConfig(zerolog.Nop())
		require.NoError(t, err)

		assert.Nil(t, ec.Seed)
		assert.Equal(t, 15, ec.Maze.Rows)
		assert.Equal(t, 21, ec.Maze.Cols)
		assert.Equal(t, mapgen.RoomBudget(15, 21), ec.Maze.RoomCount.Max)
		assert.Equal(t, core.AllRoomTypes(), ec.Maze.RoomTypes)
		assert.Equal(t, -1.0, ec.Rewards.WallCollision)
		assert.NoError(t, ec.Validate())
	})

	t.Run("explicit seed and limits", func(t *testing.T) {
		require.NoError(t, Set("env.seed", 7))
		require.NoError(t, Set("env.max_episode_steps", 50))

		ec, err := Get().EnvConfig(zerolog.Nop())
		require.NoError(t, err)
		require.NotNil(t, ec.Seed)
		assert.Equal(t, int64(7), *ec.Seed)
		assert.Equal(t, 50, ec.MaxEpisodeSteps)
	})
}

func TestSetupLogging(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.DebugLevel)

	var buf bytes.Buffer
	logger := setupLogging(LoggingConfig{Level: "warn", Format: "json"}, &buf)

	logger.Info().Msg("hidden")
	logger.Warn().Msg("shown")

	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"message":"shown"`)
}
