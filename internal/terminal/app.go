// Package terminal is the tcell client: it draws the observation as
// colored glyphs and drives a Session from the keyboard or a policy.
package terminal

import (
	"context"
	"errors"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/agent"
	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/common"
	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/game/core"
)

const (
	// gridTop is the first screen row of the maze; the HUD sits above it.
	gridTop   = 2
	frameRate = 33 * time.Millisecond
)

// Options configure an App.
type Options struct {
	Palette common.Palette
	// StepDelay paces the agent. Zero steps once per frame.
	StepDelay time.Duration
	// Autopilot is the policy toggled with p. Nil disables the toggle.
	Autopilot agent.Policy
	// AgentOnly starts with the autopilot in control.
	AgentOnly bool
}

// App is one terminal session. Run owns the screen until it returns.
type App struct {
	screen  tcell.Screen
	session *agent.Session
	opts    Options
	styles  [core.NumCellCodes]tcell.Style
	hud     tcell.Style
	notice  string
	logger  zerolog.Logger
}

func NewApp(screen tcell.Screen, session *agent.Session, opts Options, logger zerolog.Logger) *App {
	a := &App{
		screen:  screen,
		session: session,
		opts:    opts,
		logger:  logger.With().Str("component", "terminal").Logger(),
	}

	bg := tcellColor(opts.Palette.Background)
	for code, c := range opts.Palette.Cells {
		a.styles[code] = tcell.StyleDefault.Foreground(tcellColor(c)).Background(bg)
	}
	a.styles[core.CellPlayer] = a.styles[core.CellPlayer].Bold(true)
	a.hud = tcell.StyleDefault.Foreground(tcellColor(opts.Palette.Text)).Background(bg)

	if opts.AgentOnly && opts.Autopilot != nil {
		session.SetPolicy(opts.Autopilot)
	}
	return a
}

// Run polls keyboard events and steps the agent until the user quits or ctx
// is cancelled. The caller owns Init and Fini of the screen.
func (a *App) Run(ctx context.Context) error {
	events := make(chan tcell.Event, 64)
	quit := make(chan struct{})
	defer close(quit)
	go func() {
		for {
			ev := a.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-quit:
				return
			}
		}
	}()

	frames := time.NewTicker(frameRate)
	defer frames.Stop()
	lastStep := time.Now()

	a.Draw()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-events:
			if !a.HandleEvent(ev) {
				return nil
			}
			a.Draw()
		case now := <-frames.C:
			if a.session.Policy() != nil && now.Sub(lastStep) >= a.opts.StepDelay {
				lastStep = now
				if err := a.advance(); err != nil {
					return err
				}
			}
			a.Draw()
		}
	}
}

func (a *App) advance() error {
	_, _, err := a.session.Advance()
	if errors.Is(err, agent.ErrNoPlan) {
		// the planner cannot reach the target; hand control back
		a.notice = err.Error()
		a.session.SetPolicy(nil)
		return nil
	}
	return err
}

// HandleEvent applies one terminal event and reports whether to keep running.
func (a *App) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return a.handleKey(ev.Key(), ev.Rune())
	case *tcell.EventResize:
		a.screen.Sync()
	}
	return true
}

func (a *App) handleKey(key tcell.Key, r rune) bool {
	cmd := KeyCommand(key, r)
	a.notice = ""
	switch cmd.Kind {
	case agent.CommandQuit:
		return false
	case agent.CommandMove:
		if a.session.Policy() != nil {
			a.notice = "agent in control, press p to take over"
			return true
		}
		if _, err := a.session.Move(cmd.Action); err != nil {
			a.notice = "episode over, press r for a new maze"
			if !errors.Is(err, core.ErrEpisodeDone) {
				a.logger.Warn().Err(err).Stringer("action", cmd.Action).Msg("Step failed")
				a.notice = err.Error()
			}
		}
	case agent.CommandReset:
		if err := a.session.Reset(nil); err != nil {
			a.logger.Error().Err(err).Msg("Reset failed")
			a.notice = err.Error()
		}
	case agent.CommandToggleAgent:
		switch {
		case a.opts.Autopilot == nil:
			a.notice = "no agent configured"
		case a.session.Policy() == nil:
			a.session.SetPolicy(a.opts.Autopilot)
		default:
			a.session.SetPolicy(nil)
		}
	}
	return true
}

// KeyCommand decodes a key press. Arrow keys move; Esc and Ctrl-C quit;
// letters follow agent.RuneCommand.
func KeyCommand(key tcell.Key, r rune) agent.Command {
	switch key {
	case tcell.KeyUp:
		return agent.Move(core.ActionUp)
	case tcell.KeyRight:
		return agent.Move(core.ActionRight)
	case tcell.KeyDown:
		return agent.Move(core.ActionDown)
	case tcell.KeyLeft:
		return agent.Move(core.ActionLeft)
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return agent.Command{Kind: agent.CommandQuit}
	case tcell.KeyRune:
		return agent.RuneCommand(r)
	}
	return agent.Command{}
}

// Draw renders the HUD and the current observation, one glyph per cell.
func (a *App) Draw() {
	a.screen.Clear()

	a.drawText(0, 0, a.session.Status())
	msg := a.session.Message()
	if a.notice != "" {
		msg = a.notice
	}
	a.drawText(0, 1, msg)

	obs := a.session.Observation()
	for r := 0; r < obs.Rows(); r++ {
		for c := 0; c < obs.Cols(); c++ {
			code := obs.At(core.NewCoordinate(r, c))
			style := a.styles[core.CellWall]
			if code.IsValid() {
				style = a.styles[code]
			}
			a.screen.SetContent(c, gridTop+r, code.Glyph(), nil, style)
		}
	}

	a.drawText(0, gridTop+obs.Rows()+1, "arrows/wasd/hjkl move  r reset  p agent  q quit")
	a.screen.Show()
}

func (a *App) drawText(x, y int, s string) {
	for i, r := range s {
		a.screen.SetContent(x+i, y, r, nil, a.hud)
	}
}
