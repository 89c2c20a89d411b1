package director

import "github.com/ivlev/chatmotion/internal/config"

// Scenario is the complete description of one chat video.
type Scenario struct {
	Version  string             `yaml:"version"`
	Title    string             `yaml:"title"`
	Subtitle string             `yaml:"subtitle"`
	Scene    config.SceneConfig `yaml:"scene"`
	Timing   config.Timing      `yaml:"timing"`
	Motion   config.Motion      `yaml:"motion"`
	Layout   config.Layout      `yaml:"layout,omitempty"`
	Theme    config.Theme       `yaml:"theme"`
	// Background is an optional wallpaper image, scaled to cover the frame.
	Background string    `yaml:"background_image,omitempty"`
	Messages   []Message `yaml:"messages"`
}

// Message is one chat bubble. Sent bubbles enter from the right.
type Message struct {
	ID   string `yaml:"id"`
	Sent bool   `yaml:"sent"`
	Text string `yaml:"text"`
	Time string `yaml:"time,omitempty"` // Label under the text; derived from the index when empty
}

// DefaultScenario returns the built-in six message conversation.
func DefaultScenario() *Scenario {
	return &Scenario{
		Version:  "1.0",
		Title:    "WhatsApp Chat",
		Subtitle: "Messages appear one-by-one",
		Scene:    config.SceneConfig{FPS: 30, Width: 1280, Height: 720},
		Timing:   config.DefaultTiming(),
		Motion:   config.DefaultMotion(),
		Theme:    config.DefaultTheme(),
		Messages: []Message{
			{ID: "m1", Sent: false, Text: "Hey! Are we still on for later?"},
			{ID: "m2", Sent: true, Text: "Yep - 7pm works. I'll bring the laptop."},
			{ID: "m3", Sent: false, Text: "Perfect. Want me to grab snacks?"},
			{ID: "m4", Sent: true, Text: "Yes please. Anything spicy is a win."},
			{ID: "m5", Sent: false, Text: "Deal. See you soon!"},
			{ID: "m6", Sent: true, Text: "See you!"},
		},
	}
}

// Validate checks the scene, timing and motion sections.
func (s *Scenario) Validate() error {
	if err := s.Scene.Validate(); err != nil {
		return err
	}
	if err := s.Timing.Validate(); err != nil {
		return err
	}
	return s.Motion.Validate()
}
