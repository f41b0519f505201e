package main

import (
	"context"
	"errors"
	"flag"
	"math/rand"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rs/zerolog/log"

	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/agent"
	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/audio"
	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/config"
	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/game"
	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/ui"
)

func main() {
	configPath := flag.String("config", "", "Path to config file")
	policyName := flag.String("policy", "", "Policy toggled with P (empty to use config default, \"none\" to disable)")
	seed := flag.Int64("seed", -1, "Seed of the first episode (-1 to use config default)")
	agentOnly := flag.Bool("agent", false, "Start with the agent in control")
	flag.Parse()

	cfg, logger, err := config.Bootstrap(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize config")
	}
	if *policyName == "" {
		*policyName = cfg.Agent.Policy
	}

	ec, err := cfg.EnvConfig(logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Invalid environment config")
	}
	if *seed >= 0 {
		ec.Seed = game.Seed(*seed)
	}

	env, err := game.NewEnv(context.Background(), ec)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create environment")
	}

	var autopilot agent.Policy
	if *policyName != "none" {
		autopilot, err = agent.ParsePolicy(*policyName, rand.New(rand.NewSource(env.Seed())))
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to create policy")
		}
	}

	opts := ui.OptionsFromConfig(cfg, autopilot)
	opts.AgentOnly = opts.AgentOnly || *agentOnly
	if err := opts.FitsWindow(cfg.Env.Rows, cfg.Env.Cols); err != nil {
		logger.Fatal().Err(err).Msg("Maze does not fit the window; raise ui.window or lower ui.game.cell_size")
	}

	if cfg.Audio.Enabled {
		sounds := audio.Attach(env.EventBus(), cfg.Audio.SampleRate, logger)
		defer sounds.Close()
	}

	session := agent.NewSession(env, nil)
	uiGame := ui.NewGame(session, opts, logger)

	ebiten.SetWindowSize(opts.Width, opts.Height)
	ebiten.SetWindowTitle(cfg.UI.Window.Title)

	if err := ebiten.RunGame(uiGame); err != nil && !errors.Is(err, ebiten.Termination) {
		logger.Fatal().Err(err).Msg("UI exited with error")
	}
	logger.Info().
		Int("episodes", session.Episodes()).
		Int("solved", session.Solved()).
		Msg("UI closed")
}
