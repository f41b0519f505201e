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

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/agent"
	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/config"
	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/experience"
	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/game"
	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/game/core"
	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/game/events"
	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/game/events/subscribers"
	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/grpc/envserver"
)

// episodeEnv is what the demo loop needs from a local or remote environment.
type episodeEnv interface {
	game.Environment
	Seed() int64
}

func main() {
	configPath := flag.String("config", "", "Path to config file")
	policyName := flag.String("policy", "", "Policy: random, legal or planner (empty to use config default)")
	episodes := flag.Int("episodes", -1, "Episodes to play (-1 to use config default)")
	seed := flag.Int64("seed", -1, "Seed of the first episode (-1 to use config default)")
	maxSteps := flag.Int("max-steps", 10000, "Stop an episode after this many steps (0 for no limit)")
	render := flag.Bool("render", false, "Print the maze after every step")
	color := flag.Bool("color", false, "Use ANSI colors when printing")
	collect := flag.Bool("collect", false, "Record transitions even if experience.enabled is false")
	remote := flag.String("remote", "", "Play against the env server at this address instead of a local environment")
	flag.Parse()

	cfg, logger, err := config.Bootstrap(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize config")
	}
	if *seed >= 0 {
		if err := config.Set("env.seed", *seed); err != nil {
			logger.Fatal().Err(err).Int64("seed", *seed).Msg("Invalid seed")
		}
		cfg = config.Get()
	}
	if *policyName == "" {
		*policyName = cfg.Agent.Policy
	}
	if *episodes == -1 {
		*episodes = cfg.Agent.Episodes
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *remote != "" {
		if err := playRemote(ctx, *remote, cfg, *policyName, *episodes, *maxSteps, *render, *color, logger); err != nil &&
			!errors.Is(err, context.Canceled) {
			logger.Fatal().Err(err).Msg("Remote demo failed")
		}
		return
	}

	ec, err := cfg.EnvConfig(logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Invalid environment config")
	}

	bus := events.NewEventBus()
	bus.SetLogger(logger)
	eventLog := subscribers.NewLoggerSubscriber("demo-events", logger, zerolog.DebugLevel)
	eventLog.SetDevMode(os.Getenv("APP_ENV") == "development")
	bus.Subscribe(eventLog)
	ec.EventBus = bus

	var collector *experience.Collector
	if cfg.Experience.Enabled || *collect {
		persistence, err := experience.NewPersistenceLayer(cfg.Experience.Persistence, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to open experience storage")
		}
		buffer := experience.NewBuffer(cfg.Experience.BufferCapacity, logger)
		collector = experience.NewCollector(buffer, persistence, logger)
		collector.SetDiscount(cfg.Experience.Discount)
		ec.ExperienceCollector = collector
	}

	env, err := game.NewEnv(ctx, ec)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create environment")
	}
	policy, err := agent.ParsePolicy(*policyName, rand.New(rand.NewSource(env.Seed())))
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create policy")
	}

	err = play(ctx, env, env.Observation(), policy, *episodes, *maxSteps, *render, *color, logger)
	if collector != nil {
		if cerr := collector.Close(); cerr != nil {
			logger.Error().Err(cerr).Msg("Failed to flush experience")
		}
		logger.Info().
			Int("episodes", len(collector.Episodes())).
			Int("buffered", collector.Buffer().Size()).
			Msg("Experience collected")
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Msg("Demo failed")
	}
}

// playRemote creates one environment on the server at addr, plays it and
// closes it again.
func playRemote(ctx context.Context, addr string, cfg *config.Config, policyName string, episodes, maxSteps int, render, color bool, logger zerolog.Logger) error {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	defer conn.Close()

	opts := envserver.CreateOptions{
		Rows:            cfg.Env.Rows,
		Cols:            cfg.Env.Cols,
		MaxEpisodeSteps: cfg.Env.MaxEpisodeSteps,
		Rewards:         &cfg.Rewards,
	}
	if cfg.Env.Seed >= 0 {
		opts.Seed = game.Seed(cfg.Env.Seed)
	}
	env, obs, err := envserver.CreateRemoteEnv(ctx, conn, opts)
	if err != nil {
		return err
	}
	defer func() {
		if err := env.Close(context.Background()); err != nil {
			logger.Warn().Err(err).Str("env_id", env.ID()).Msg("Failed to close remote environment")
		}
	}()
	logger.Info().Str("addr", addr).Str("env_id", env.ID()).Msg("Created remote environment")

	policy, err := agent.ParsePolicy(policyName, rand.New(rand.NewSource(env.Seed())))
	if err != nil {
		return err
	}
	return play(ctx, env, obs, policy, episodes, maxSteps, render, color, logger)
}

func play(ctx context.Context, env episodeEnv, obs *core.Grid, policy agent.Policy, episodes, maxSteps int, render, color bool, logger zerolog.Logger) error {
	solved := 0
	for ep := 1; ep <= episodes; ep++ {
		if ep > 1 {
			var err error
			if obs, err = env.Reset(nil); err != nil {
				return err
			}
		}
		fmt.Printf("Episode %d (seed %d, %dx%d)\n%s\n\n", ep, env.Seed(), obs.Rows(), obs.Cols(), game.Render(obs, color))

		// last tracks the observation so the final frame can be printed
		last := obs
		observe := func(action core.Action, result game.StepResult) {
			last = result.Observation
			if render {
				fmt.Printf("Step %d: %s -> %s (reward %.2f)\n%s\n\n",
					result.Info.Steps, action, result.Info.Outcome, result.Reward, game.Render(result.Observation, color))
			}
		}

		summary, err := agent.Run(ctx, env, policy, obs, maxSteps, observe)
		if err != nil {
			return err
		}
		if summary.Done {
			solved++
		}

		logger.Info().
			Int("episode", ep).
			Int64("seed", env.Seed()).
			Str("policy", policy.Name()).
			Int("steps", summary.Steps).
			Int("collisions", summary.Collisions).
			Float64("return", summary.Return).
			Bool("done", summary.Done).
			Bool("truncated", summary.Truncated).
			Msg("Episode finished")
		if !render {
			fmt.Printf("%s\n\n", game.Render(last, color))
		}
	}
	fmt.Printf("Solved %d/%d episodes with %s\n", solved, episodes, policy.Name())
	return nil
}
