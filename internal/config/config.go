package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/common"
	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/experience"
	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/game"
	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/game/core"
	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/game/mapgen"
)

// Config holds all configuration for the application
type Config struct {
	Env        EnvSettings       `mapstructure:"env"`
	Maze       MazeConfig        `mapstructure:"maze"`
	Rewards    game.RewardSchema `mapstructure:"rewards"`
	Agent      AgentConfig       `mapstructure:"agent"`
	Experience ExperienceConfig  `mapstructure:"experience"`
	Server     ServerConfig      `mapstructure:"server"`
	UI         UIConfig          `mapstructure:"ui"`
	Terminal   TerminalConfig    `mapstructure:"terminal"`
	Audio      AudioConfig       `mapstructure:"audio"`
	Colors     ColorsConfig      `mapstructure:"colors"`
	Logging    LoggingConfig     `mapstructure:"logging"`
}

// EnvSettings holds the environment shape and episode limits
type EnvSettings struct {
	Rows int `mapstructure:"rows"`
	Cols int `mapstructure:"cols"`
	// Seed of the first episode; negative means draw one.
	Seed            int64 `mapstructure:"seed"`
	MaxEpisodeSteps int   `mapstructure:"max_episode_steps"`
}

// MazeConfig holds maze generation settings. Every range with min == max is
// a fixed value.
type MazeConfig struct {
	RoomCount             mapgen.IntParam   `mapstructure:"room_count"`
	GlobalRoomRatio       mapgen.FloatParam `mapstructure:"global_room_ratio"`
	AccessPointsPerRoom   mapgen.IntParam   `mapstructure:"access_points_per_room"`
	RoomRatio             mapgen.FloatParam `mapstructure:"room_ratio"`
	RoomTypes             []string          `mapstructure:"room_types"`
	MaxPlacementAttempts  int               `mapstructure:"max_placement_attempts"`
	MaxGenerationAttempts int               `mapstructure:"max_generation_attempts"`
}

// AgentConfig holds settings of the scripted agents used by the demo and UIs
type AgentConfig struct {
	Policy   string `mapstructure:"policy"`
	Episodes int    `mapstructure:"episodes"`
}

// ExperienceConfig holds experience collection settings
type ExperienceConfig struct {
	Enabled        bool                         `mapstructure:"enabled"`
	BufferCapacity int                          `mapstructure:"buffer_capacity"`
	Discount       float64                      `mapstructure:"discount"`
	Persistence    experience.PersistenceConfig `mapstructure:"persistence"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	GRPCServer GRPCServerConfig `mapstructure:"grpc_server"`
}

// GRPCServerConfig holds gRPC server configuration
type GRPCServerConfig struct {
	Host                  string        `mapstructure:"host"`
	Port                  int           `mapstructure:"port"`
	MaxEnvs               int           `mapstructure:"max_envs"`
	MaxRows               int           `mapstructure:"max_rows"`
	MaxCols               int           `mapstructure:"max_cols"`
	IdleTimeout           time.Duration `mapstructure:"idle_timeout"`
	CleanupInterval       time.Duration `mapstructure:"cleanup_interval"`
	EnableReflection      bool          `mapstructure:"enable_reflection"`
	GracefulShutdownDelay int           `mapstructure:"graceful_shutdown_delay"`
}

// UIConfig holds graphical client configuration
type UIConfig struct {
	Window WindowConfig `mapstructure:"window"`
	Game   UIGameConfig `mapstructure:"game"`
}

// WindowConfig holds window settings
type WindowConfig struct {
	Width  int    `mapstructure:"width"`
	Height int    `mapstructure:"height"`
	Title  string `mapstructure:"title"`
}

// UIGameConfig holds UI game settings
type UIGameConfig struct {
	CellSize int `mapstructure:"cell_size"`
	// StepInterval is the number of frames between agent steps.
	StepInterval int  `mapstructure:"step_interval"`
	AgentOnly    bool `mapstructure:"agent_only"`
}

// TerminalConfig holds terminal client settings
type TerminalConfig struct {
	StepDelay time.Duration `mapstructure:"step_delay"`
}

// AudioConfig holds sound cue settings
type AudioConfig struct {
	Enabled    bool `mapstructure:"enabled"`
	SampleRate int  `mapstructure:"sample_rate"`
}

// ColorsConfig holds all color configurations
type ColorsConfig struct {
	Cells CellColorsConfig `mapstructure:"cells"`
	UI    UIColorsConfig   `mapstructure:"ui"`
}

// CellColorsConfig holds one RGB triple per cell code
type CellColorsConfig struct {
	Wall   [3]int `mapstructure:"wall"`
	Path   [3]int `mapstructure:"path"`
	Target [3]int `mapstructure:"target"`
	Start  [3]int `mapstructure:"start"`
	Player [3]int `mapstructure:"player"`
}

// Palette converts the configured colors for the clients.
func (c ColorsConfig) Palette() common.Palette {
	var p common.Palette
	p.Cells[core.CellWall] = common.RGB(c.Cells.Wall)
	p.Cells[core.CellPath] = common.RGB(c.Cells.Path)
	p.Cells[core.CellTarget] = common.RGB(c.Cells.Target)
	p.Cells[core.CellStart] = common.RGB(c.Cells.Start)
	p.Cells[core.CellPlayer] = common.RGB(c.Cells.Player)
	p.Background = common.RGB(c.UI.Background)
	p.GridLines = common.RGB(c.UI.GridLines)
	p.Text = common.RGB(c.UI.Text)
	return p
}

// UIColorsConfig holds UI color settings
type UIColorsConfig struct {
	Background [3]int `mapstructure:"background"`
	GridLines  [3]int `mapstructure:"grid_lines"`
	Text       [3]int `mapstructure:"text"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

var (
	// mu guards cfg and v. cfg is replaced, never modified, so a *Config
	// returned by Get stays consistent.
	mu  sync.RWMutex
	cfg *Config
	v   *viper.Viper
)

// setViperDefaults sets all default values using Viper's SetDefault
func setViperDefaults(v *viper.Viper) {
	// Environment defaults
	v.SetDefault("env.rows", 15)
	v.SetDefault("env.cols", 21)
	v.SetDefault("env.seed", -1)
	v.SetDefault("env.max_episode_steps", 0)

	// Maze defaults
	v.SetDefault("maze.room_count.min", 1)
	v.SetDefault("maze.room_count.max", 8)
	v.SetDefault("maze.global_room_ratio.min", 0.1)
	v.SetDefault("maze.global_room_ratio.max", 0.8)
	v.SetDefault("maze.access_points_per_room.min", 1)
	v.SetDefault("maze.access_points_per_room.max", 4)
	v.SetDefault("maze.room_ratio.min", 0.5)
	v.SetDefault("maze.room_ratio.max", 1.5)
	v.SetDefault("maze.room_types", []string{"open", "pillars", "courtyard"})
	v.SetDefault("maze.max_placement_attempts", mapgen.DefaultMaxPlacementAttempts)
	v.SetDefault("maze.max_generation_attempts", mapgen.DefaultMaxGenerationAttempts)

	// Reward defaults
	rewards := game.DefaultRewardSchema()
	v.SetDefault("rewards.neutral", rewards.Neutral)
	v.SetDefault("rewards.wall_collision", rewards.WallCollision)
	v.SetDefault("rewards.target_reached", rewards.TargetReached)

	// Agent defaults
	v.SetDefault("agent.policy", "planner")
	v.SetDefault("agent.episodes", 1)

	// Experience defaults
	persistence := experience.DefaultPersistenceConfig()
	v.SetDefault("experience.enabled", false)
	v.SetDefault("experience.buffer_capacity", experience.DefaultBufferCapacity)
	v.SetDefault("experience.discount", experience.DefaultDiscount)
	v.SetDefault("experience.persistence.type", string(persistence.Type))
	v.SetDefault("experience.persistence.base_dir", persistence.BaseDir)
	v.SetDefault("experience.persistence.max_file_size", persistence.MaxFileSize)
	v.SetDefault("experience.persistence.rotation_interval", "0s")

	// gRPC server defaults
	v.SetDefault("server.grpc_server.host", "0.0.0.0")
	v.SetDefault("server.grpc_server.port", 50051)
	v.SetDefault("server.grpc_server.max_envs", 100)
	v.SetDefault("server.grpc_server.max_rows", 201)
	v.SetDefault("server.grpc_server.max_cols", 201)
	v.SetDefault("server.grpc_server.idle_timeout", "30m")
	v.SetDefault("server.grpc_server.cleanup_interval", "1m")
	v.SetDefault("server.grpc_server.enable_reflection", true)
	v.SetDefault("server.grpc_server.graceful_shutdown_delay", 5)

	// UI defaults
	v.SetDefault("ui.window.width", 840)
	v.SetDefault("ui.window.height", 660)
	v.SetDefault("ui.window.title", "Labyrinth RL")
	v.SetDefault("ui.game.cell_size", 32)
	v.SetDefault("ui.game.step_interval", 10)
	v.SetDefault("ui.game.agent_only", false)

	// Terminal defaults
	v.SetDefault("terminal.step_delay", "150ms")

	// Audio defaults
	v.SetDefault("audio.enabled", false)
	v.SetDefault("audio.sample_rate", 44100)

	// Color defaults
	v.SetDefault("colors.cells.wall", []int{60, 60, 70})
	v.SetDefault("colors.cells.path", []int{220, 220, 220})
	v.SetDefault("colors.cells.target", []int{50, 200, 80})
	v.SetDefault("colors.cells.start", []int{220, 200, 60})
	v.SetDefault("colors.cells.player", []int{60, 160, 230})

	v.SetDefault("colors.ui.background", []int{0, 0, 0})
	v.SetDefault("colors.ui.grid_lines", []int{40, 40, 40})
	v.SetDefault("colors.ui.text", []int{255, 255, 255})

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// Init initializes the configuration
func Init(configPath string) error {
	mu.Lock()
	defer mu.Unlock()

	v = viper.New()
	setViperDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/labyrinth-rl")
	}

	// LAB_ENV_ROWS overrides env.rows
	v.SetEnvPrefix("LAB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// An unreadable explicit path falls back to defaults. In the search
		// path only a missing file does.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && configPath == "" {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	_, err := reloadLocked()
	return err
}

// Get returns the global config instance
func Get() *Config {
	mu.RLock()
	c := cfg
	mu.RUnlock()
	if c != nil {
		return c
	}

	if err := Init(""); err != nil {
		panic("failed to initialize config with defaults: " + err.Error())
	}
	mu.RLock()
	defer mu.RUnlock()
	return cfg
}

// LoadEnvironmentConfig merges config.<env>.yaml, found next to the loaded
// config file, over the loaded config
func LoadEnvironmentConfig(env string) error {
	if env == "" {
		return nil
	}

	mu.Lock()
	defer mu.Unlock()

	envFile := fmt.Sprintf("config.%s.yaml", env)
	if used := v.ConfigFileUsed(); used != "" {
		envFile = filepath.Join(filepath.Dir(used), envFile)
	}

	v.SetConfigFile(envFile)
	if err := v.MergeInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error merging environment config %s: %w", envFile, err)
		}
	}

	merged := &Config{}
	if err := v.Unmarshal(merged); err != nil {
		return fmt.Errorf("unable to decode merged config into struct: %w", err)
	}
	cfg = merged

	return nil
}

// reloadLocked decodes and validates the viper state into a new Config and
// swaps it in. On error the current config stays in effect.
func reloadLocked() (*Config, error) {
	next := &Config{}
	if err := v.Unmarshal(next); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	if err := Validate(next); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	cfg = next
	return next, nil
}

// Set overrides one key at runtime, for example from a command line flag.
func Set(key string, value interface{}) error {
	mu.Lock()
	defer mu.Unlock()

	v.Set(key, value)
	_, err := reloadLocked()
	return err
}

// ConfigFilePath returns the path of the loaded config file
func ConfigFilePath() string {
	mu.RLock()
	defer mu.RUnlock()
	return v.ConfigFileUsed()
}

// WatchConfig reloads the config file whenever it changes and hands the new
// config to onChange. A file that fails to decode or validate is logged and
// ignored.
func WatchConfig(logger zerolog.Logger, onChange func(*Config)) {
	mu.Lock()
	defer mu.Unlock()

	v.OnConfigChange(func(e fsnotify.Event) {
		mu.Lock()
		next, err := reloadLocked()
		mu.Unlock()

		if err != nil {
			logger.Error().Err(err).Str("path", e.Name).Msg("Ignoring config change")
			return
		}
		logger.Info().Str("path", e.Name).Msg("Config reloaded")
		if onChange != nil {
			onChange(next)
		}
	})
	v.WatchConfig()
}

// MazeConfig builds the generator configuration for the configured grid.
func (c *Config) MazeConfig() (mapgen.Config, error) {
	mc := mapgen.Config{
		RoomCount:             c.Maze.RoomCount,
		GlobalRoomRatio:       c.Maze.GlobalRoomRatio,
		AccessPointsPerRoom:   c.Maze.AccessPointsPerRoom,
		RoomRatio:             c.Maze.RoomRatio,
		MaxPlacementAttempts:  c.Maze.MaxPlacementAttempts,
		MaxGenerationAttempts: c.Maze.MaxGenerationAttempts,
	}
	for _, name := range c.Maze.RoomTypes {
		t, err := core.ParseRoomType(name)
		if err != nil {
			return mapgen.Config{}, fmt.Errorf("%w: maze.room_types: %v", mapgen.ErrInvalidConfig, err)
		}
		mc.RoomTypes = append(mc.RoomTypes, t)
	}
	// The room count maximum follows the grid so one file serves several sizes
	return mc.WithSize(c.Env.Rows, c.Env.Cols), nil
}

// EnvConfig builds the environment configuration. Collaborators such as the
// event bus and experience collector are left for the caller to attach.
func (c *Config) EnvConfig(logger zerolog.Logger) (game.EnvConfig, error) {
	mc, err := c.MazeConfig()
	if err != nil {
		return game.EnvConfig{}, err
	}
	ec := game.EnvConfig{
		Maze:            mc,
		Rewards:         c.Rewards,
		MaxEpisodeSteps: c.Env.MaxEpisodeSteps,
		Logger:          logger,
	}
	if c.Env.Seed >= 0 {
		ec.Seed = game.Seed(c.Env.Seed)
	}
	return ec, nil
}

// Validate validates the configuration values
func Validate(c *Config) error {
	if c.Env.Rows < 3 || c.Env.Cols < 3 {
		return fmt.Errorf("env.rows and env.cols must be at least 3")
	}
	if c.Env.MaxEpisodeSteps < 0 {
		return fmt.Errorf("env.max_episode_steps must be non-negative")
	}

	mc, err := c.MazeConfig()
	if err != nil {
		return err
	}
	if err := mc.Validate(); err != nil {
		return err
	}

	if c.Agent.Episodes < 1 {
		return fmt.Errorf("agent.episodes must be at least 1")
	}

	if c.Experience.BufferCapacity <= 0 {
		return fmt.Errorf("experience.buffer_capacity must be positive")
	}
	if c.Experience.Discount <= 0 || c.Experience.Discount > 1 {
		return fmt.Errorf("experience.discount must be in (0, 1], got %v", c.Experience.Discount)
	}
	switch c.Experience.Persistence.Type {
	case experience.PersistenceTypeNone, experience.PersistenceTypeFile, "":
	default:
		return fmt.Errorf("experience.persistence.type must be none or file, got %q", c.Experience.Persistence.Type)
	}

	if c.Server.GRPCServer.Port <= 0 || c.Server.GRPCServer.Port > 65535 {
		return fmt.Errorf("server.grpc_server.port must be between 1 and 65535")
	}
	if c.Server.GRPCServer.MaxEnvs <= 0 {
		return fmt.Errorf("server.grpc_server.max_envs must be positive")
	}
	if c.Server.GRPCServer.MaxRows < c.Env.Rows || c.Server.GRPCServer.MaxCols < c.Env.Cols {
		return fmt.Errorf("server.grpc_server.max_rows/max_cols %dx%d must hold the default %dx%d grid",
			c.Server.GRPCServer.MaxRows, c.Server.GRPCServer.MaxCols, c.Env.Rows, c.Env.Cols)
	}
	if c.Server.GRPCServer.IdleTimeout < 0 || c.Server.GRPCServer.CleanupInterval < 0 {
		return fmt.Errorf("server.grpc_server timeouts must be non-negative")
	}
	if c.Server.GRPCServer.GracefulShutdownDelay < 0 {
		return fmt.Errorf("server.grpc_server.graceful_shutdown_delay must be non-negative")
	}

	if c.UI.Window.Width <= 0 || c.UI.Window.Height <= 0 {
		return fmt.Errorf("ui.window dimensions must be positive")
	}
	if c.UI.Game.CellSize <= 0 {
		return fmt.Errorf("ui.game.cell_size must be positive")
	}
	if c.UI.Game.StepInterval <= 0 {
		return fmt.Errorf("ui.game.step_interval must be positive")
	}

	if c.Audio.SampleRate <= 0 {
		return fmt.Errorf("audio.sample_rate must be positive")
	}

	for name, rgb := range map[string][3]int{
		"colors.cells.wall":    c.Colors.Cells.Wall,
		"colors.cells.path":    c.Colors.Cells.Path,
		"colors.cells.target":  c.Colors.Cells.Target,
		"colors.cells.start":   c.Colors.Cells.Start,
		"colors.cells.player":  c.Colors.Cells.Player,
		"colors.ui.background": c.Colors.UI.Background,
		"colors.ui.grid_lines": c.Colors.UI.GridLines,
		"colors.ui.text":       c.Colors.UI.Text,
	} {
		if !common.ValidRGB(rgb) {
			return fmt.Errorf("%s channels must be between 0 and 255", name)
		}
	}

	if _, err := zerolog.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}

	return nil
}
