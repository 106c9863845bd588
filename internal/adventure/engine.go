package adventure

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

// DefaultRestartDelay is the pause between a lost round and the next one.
const DefaultRestartDelay = 5 * time.Second

const continuePrompt = "Press Enter to continue..."

// Result reports how a game ended.
type Result int

const (
	// Won means the player found the treasure.
	Won Result = iota
	// Quit means input ran out before the game was won.
	Quit
)

// Game plays a Story over a line-oriented input and output.
type Game struct {
	story        Story
	in           *bufio.Reader
	out          io.Writer
	render       Renderer
	restartDelay time.Duration
	sleep        func(ctx context.Context, d time.Duration) error
	rounds       int
}

// Option customises a Game.
type Option func(*Game)

// WithRenderer sets the output styling.
func WithRenderer(r Renderer) Option {
	return func(g *Game) { g.render = r }
}

// WithRestartDelay sets the pause after a lost round. Zero disables it.
func WithRestartDelay(d time.Duration) Option {
	return func(g *Game) {
		if d >= 0 {
			g.restartDelay = d
		}
	}
}

// WithSleep replaces the context-aware pause, for tests.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(g *Game) {
		if sleep != nil {
			g.sleep = sleep
		}
	}
}

// NewGame validates story and binds it to in and out.
func NewGame(story Story, in io.Reader, out io.Writer, opts ...Option) (*Game, error) {
	if in == nil || out == nil {
		return nil, errors.New("adventure: input and output are required")
	}
	if err := story.Validate(); err != nil {
		return nil, err
	}

	g := &Game{
		story:        story,
		in:           bufio.NewReader(in),
		out:          out,
		restartDelay: DefaultRestartDelay,
		sleep:        sleepContext,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Rounds reports how many rounds have started.
func (g *Game) Rounds() int { return g.rounds }

// Run plays rounds until the story is won, input ends, or ctx is cancelled.
// Losing a round shows the game over banner, waits for Enter and the restart delay,
// then starts over. An unrecognised answer restarts the round without a banner.
func (g *Game) Run(ctx context.Context) (Result, error) {
	for {
		if err := ctx.Err(); err != nil {
			return Quit, err
		}

		g.rounds++
		outcome, err := g.playRound()
		if errors.Is(err, io.EOF) {
			return Quit, nil
		}
		if err != nil {
			return Quit, err
		}

		switch outcome {
		case Win:
			g.println(g.render.Victory(WinBanner))
			if _, err := g.ask(continuePrompt); err != nil && !errors.Is(err, io.EOF) {
				return Won, err
			}
			return Won, nil
		case Lose:
			g.println(g.render.Danger(GameOverBanner))
			if _, err := g.ask(continuePrompt); err != nil {
				if errors.Is(err, io.EOF) {
					return Quit, nil
				}
				return Quit, err
			}
			if g.restartDelay > 0 {
				if err := g.sleep(ctx, g.restartDelay); err != nil {
					return Quit, err
				}
			}
		}
	}
}

// playRound walks the scene graph once. A Continue outcome means the round was abandoned
// on an unrecognised answer.
func (g *Game) playRound() (Outcome, error) {
	g.println(g.render.Art(g.story.Banner))
	for _, line := range g.story.Intro {
		g.println(g.render.Text(line))
	}

	scene := g.story.Scenes[g.story.Start]
	for {
		g.println(g.render.Art(scene.Art))
		answer, err := g.ask(scene.Prompt)
		if err != nil {
			return Continue, err
		}

		choice, ok := scene.match(answer)
		if !ok {
			return Continue, nil
		}

		if choice.Art != "" {
			if choice.Outcome == Lose {
				g.println(g.render.Danger(choice.Art))
			} else {
				g.println(g.render.Art(choice.Art))
			}
		}
		if choice.Message != "" {
			g.println(g.render.Danger(choice.Message))
		}

		if choice.Outcome != Continue {
			return choice.Outcome, nil
		}
		scene = g.story.Scenes[choice.Next]
	}
}

// ask prints prompt and reads one line. A final line without a newline still counts.
func (g *Game) ask(prompt string) (string, error) {
	fmt.Fprint(g.out, g.render.Prompt(prompt))
	line, err := g.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimRight(line, "\r\n"), nil
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (g *Game) println(s string) {
	if s == "" {
		return
	}
	fmt.Fprintln(g.out, s)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
