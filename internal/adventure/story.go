package adventure

import (
	"fmt"
	"strings"
)

// Outcome says what happens after a choice.
type Outcome int

const (
	// Continue moves to the choice's Next scene.
	Continue Outcome = iota
	// Lose ends the round with the game over banner, then restarts.
	Lose
	// Win ends the game.
	Win
)

// Choice is one accepted answer to a scene prompt.
type Choice struct {
	Key     string
	Art     string
	Message string
	Next    string
	Outcome Outcome
}

// Scene is a node of the story graph.
type Scene struct {
	ID      string
	Art     string
	Prompt  string
	Choices []Choice
	// Otherwise handles unrecognised input. When nil the round restarts silently.
	Otherwise *Choice
}

// Story is a scene graph with an intro shown at the start of every round.
type Story struct {
	Title  string
	Intro  []string
	Banner string
	Start  string
	Scenes map[string]Scene
}

// match finds the choice for input, ignoring case and surrounding blanks.
func (s Scene) match(input string) (Choice, bool) {
	input = strings.TrimSpace(input)
	for _, choice := range s.Choices {
		if strings.EqualFold(choice.Key, input) {
			return choice, true
		}
	}
	if s.Otherwise != nil {
		return *s.Otherwise, true
	}
	return Choice{}, false
}

// Validate checks that every transition points at a known scene and that a winning
// ending is reachable.
func (s Story) Validate() error {
	if _, ok := s.Scenes[s.Start]; !ok {
		return fmt.Errorf("adventure: start scene %q not found", s.Start)
	}

	wins := 0
	check := func(sceneID string, choice Choice) error {
		switch choice.Outcome {
		case Continue:
			if _, ok := s.Scenes[choice.Next]; !ok {
				return fmt.Errorf("adventure: scene %q choice %q points at unknown scene %q", sceneID, choice.Key, choice.Next)
			}
		case Win:
			wins++
		}
		return nil
	}

	for id, scene := range s.Scenes {
		if id != scene.ID {
			return fmt.Errorf("adventure: scene %q registered as %q", scene.ID, id)
		}
		if len(scene.Choices) == 0 {
			return fmt.Errorf("adventure: scene %q has no choices", id)
		}
		for _, choice := range scene.Choices {
			if err := check(id, choice); err != nil {
				return err
			}
		}
		if scene.Otherwise != nil {
			if err := check(id, *scene.Otherwise); err != nil {
				return err
			}
		}
	}
	if wins == 0 {
		return fmt.Errorf("adventure: story %q cannot be won", s.Title)
	}
	return nil
}
