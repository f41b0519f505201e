package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/agent"
	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/audio"
	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/config"
	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/game"
	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/terminal"
)

func main() {
	configPath := flag.String("config", "", "Path to config file")
	policyName := flag.String("policy", "", "Policy toggled with p (empty to use config default, \"none\" to disable)")
	seed := flag.Int64("seed", -1, "Seed of the first episode (-1 to use config default)")
	agentOnly := flag.Bool("agent", false, "Start with the agent in control")
	logFile := flag.String("log-file", "", "Write logs to this file; logs are dropped otherwise")
	flag.Parse()

	cfg, logger, err := config.Bootstrap(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize config")
	}

	// The screen owns the terminal, so logs go to a file or nowhere
	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to open log file")
		}
		defer f.Close()
		logger = logger.Output(zerolog.ConsoleWriter{Out: f, NoColor: true})
	} else {
		logger = zerolog.Nop()
	}

	if *policyName == "" {
		*policyName = cfg.Agent.Policy
	}

	ec, err := cfg.EnvConfig(logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid environment config")
	}
	if *seed >= 0 {
		ec.Seed = game.Seed(*seed)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env, err := game.NewEnv(ctx, ec)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create environment")
	}

	var autopilot agent.Policy
	if *policyName != "none" {
		autopilot, err = agent.ParsePolicy(*policyName, rand.New(rand.NewSource(env.Seed())))
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create policy")
		}
	}

	if cfg.Audio.Enabled {
		sounds := audio.Attach(env.EventBus(), cfg.Audio.SampleRate, logger)
		defer sounds.Close()
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create screen")
	}
	if err := screen.Init(); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize screen")
	}

	session := agent.NewSession(env, nil)
	app := terminal.NewApp(screen, session, terminal.Options{
		Palette:   cfg.Colors.Palette(),
		StepDelay: cfg.Terminal.StepDelay,
		Autopilot: autopilot,
		AgentOnly: *agentOnly,
	}, logger)

	err = app.Run(ctx)
	screen.Fini()

	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("Game failed")
	}
	fmt.Printf("Solved %d/%d episodes\n", session.Solved(), session.Episodes())
}
