// Package ui is the Ebitengine client. It draws the maze, takes keyboard
// and mouse input and can hand control to a policy.
package ui

import (
	"errors"
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/rs/zerolog"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/agent"
	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/common"
	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/config"
	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/ui/input"
	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/ui/renderer"
)

const (
	hudHeight   = 48
	boardMargin = 8
)

// Options configure a Game.
type Options struct {
	Width, Height int
	CellSize      int
	// StepInterval is the number of frames between agent steps.
	StepInterval int
	Palette      common.Palette
	// Autopilot is the policy toggled with P. Nil disables the toggle.
	Autopilot agent.Policy
	AgentOnly bool
}

// OptionsFromConfig reads the UI and color sections of c.
func OptionsFromConfig(c *config.Config, autopilot agent.Policy) Options {
	return Options{
		Width:        c.UI.Window.Width,
		Height:       c.UI.Window.Height,
		CellSize:     c.UI.Game.CellSize,
		StepInterval: c.UI.Game.StepInterval,
		Palette:      c.Colors.Palette(),
		Autopilot:    autopilot,
		AgentOnly:    c.UI.Game.AgentOnly,
	}
}

// Game holds the session and the UI-specific state. It implements ebiten.Game.
type Game struct {
	session     *agent.Session
	board       *renderer.OverlayRenderer
	input       *input.Handler
	defaultFont font.Face
	opts        Options
	logger      zerolog.Logger

	// agent pacing
	stepTimer int

	statusMessage string
	messageTimer  int
}

// NewGame creates a new Ebitengine game around session.
func NewGame(session *agent.Session, opts Options, logger zerolog.Logger) *Game {
	if opts.StepInterval <= 0 {
		opts.StepInterval = 1
	}
	g := &Game{
		session:     session,
		defaultFont: basicfont.Face7x13,
		opts:        opts,
		logger:      logger.With().Str("component", "ui").Logger(),
	}
	g.board = renderer.NewOverlayRenderer(opts.CellSize, boardMargin, hudHeight, opts.Palette, g.defaultFont)
	g.input = input.NewHandler(g.board.CellAt)

	if opts.AgentOnly && opts.Autopilot != nil {
		session.SetPolicy(opts.Autopilot)
	}
	return g
}

// Update proceeds the session by one frame.
func (g *Game) Update() error {
	g.input.SetPlayer(g.session.Env().Position())
	g.input.Update()
	for _, cmd := range g.input.Commands() {
		if err := g.apply(cmd); err != nil {
			return err
		}
	}

	if err := g.tickAgent(); err != nil {
		return err
	}

	if g.messageTimer > 0 {
		g.messageTimer--
	}
	env := g.session.Env()
	hover := g.input.Hover()
	g.board.SetHover(hover, hover.IsValid(env.Maze().Rows(), env.Maze().Cols()))
	if g.session.Policy() == nil && !g.session.Ended() {
		g.board.SetHints(env.Position(), env.LegalActionMask())
	} else {
		g.board.SetHints(env.Position(), nil)
	}
	g.board.Tick()
	return nil
}

// tickAgent steps the policy every StepInterval frames.
func (g *Game) tickAgent() error {
	if g.session.Policy() == nil {
		return nil
	}
	g.stepTimer++
	if g.stepTimer < g.opts.StepInterval {
		return nil
	}
	g.stepTimer = 0

	result, stepped, err := g.session.Advance()
	switch {
	case errors.Is(err, agent.ErrNoPlan):
		g.showMessage(err.Error(), 120)
		g.session.SetPolicy(nil)
		return nil
	case err != nil:
		return err
	case stepped:
		g.afterStep(result)
	}
	return nil
}

// Draw renders the game screen.
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(g.opts.Palette.Background)
	g.board.Draw(screen, g.session.Observation())

	text.Draw(screen, g.session.Status(), g.defaultFont, boardMargin, 16, g.opts.Palette.Text)

	msg := g.session.Message()
	if g.messageTimer > 0 && g.statusMessage != "" {
		msg = g.statusMessage
	}
	text.Draw(screen, msg, g.defaultFont, boardMargin, 34, g.opts.Palette.Text)

	help := "Arrows/WASD/HJKL: move  Click: step  R: reset  P: agent  Esc: quit"
	text.Draw(screen, help, g.defaultFont, boardMargin, g.opts.Height-8, g.opts.Palette.Text)
}

// Layout defines the Ebitengine screen size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (screenWidth, screenHeight int) {
	return g.opts.Width, g.opts.Height
}

// FitsWindow reports whether a rows x cols maze fits the configured window.
func (o Options) FitsWindow(rows, cols int) error {
	w := 2*boardMargin + cols*o.CellSize
	h := hudHeight + rows*o.CellSize + 2*boardMargin
	if w > o.Width || h > o.Height {
		return fmt.Errorf("a %dx%d maze at cell size %d needs a %dx%d window, have %dx%d",
			rows, cols, o.CellSize, w, h, o.Width, o.Height)
	}
	return nil
}
