// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package game

import "github.com/pkg/errors"

// Variant selects which demo a session runs.
type Variant int

const (
	VariantBall Variant = iota
	VariantMaze
)

func (v Variant) String() string {
	switch v {
	case VariantBall:
		return "ball"
	case VariantMaze:
		return "maze"
	}
	return "unknown"
}

func (v Variant) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

func (v *Variant) UnmarshalText(b []byte) error {
	parsed, err := ParseVariant(string(b))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// ParseVariant accepts "ball" or "maze".
func ParseVariant(s string) (Variant, error) {
	switch s {
	case "ball":
		return VariantBall, nil
	case "maze":
		return VariantMaze, nil
	}
	return 0, errors.Errorf("unknown game variant %q", s)
}

// Mode is the session state machine position.
type Mode int

const (
	ModeIdle Mode = iota
	ModeMenu
	ModePlaying
	ModeStopped
)

func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeMenu:
		return "menu"
	case ModePlaying:
		return "playing"
	case ModeStopped:
		return "stopped"
	}
	return "unknown"
}

func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Mode) UnmarshalText(b []byte) error {
	for c := ModeIdle; c <= ModeStopped; c++ {
		if c.String() == string(b) {
			*m = c
			return nil
		}
	}
	return errors.Errorf("unknown mode %q", b)
}

// BackAction tells the host what a back press did.
type BackAction int

const (
	// BackToMenu means the session left play and shows its menu.
	BackToMenu BackAction = iota
	// BackExit means the host should close the app.
	BackExit
)

func (b BackAction) String() string {
	if b == BackToMenu {
		return "menu"
	}
	return "exit"
}

// MenuItem is one entry of the maze menu.
type MenuItem struct {
	Label   string `json:"label"`
	Enabled bool   `json:"enabled"`
}

var mazeMenu = []MenuItem{
	{Label: "Classic", Enabled: true},
	{Label: "Procedural", Enabled: false},
}
