package prefabs

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/milk9111/platformkit/input"
	"github.com/milk9111/platformkit/motion"
	"gopkg.in/yaml.v3"
)

func LoadSpec[T any](filename string) (T, error) {
	var spec T
	if err := LoadSpecInto(filename, &spec); err != nil {
		var zero T
		return zero, err
	}
	return spec, nil
}

// LoadSpecInto decodes filename over the values already in out, so fields
// missing from the file keep their defaults.
func LoadSpecInto(filename string, out any) error {
	data, err := Load(filename)
	if err != nil {
		return fmt.Errorf("prefabs: load %s: %w", filename, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}
	return nil
}

type CharacterSpec struct {
	Name      string                 `yaml:"name"`
	Width     float64                `yaml:"width"`
	Height    float64                `yaml:"height"`
	Color     *YAMLColor             `yaml:"color"`
	Flow      string                 `yaml:"flow"`
	Detection motion.DetectionConfig `yaml:"detection"`
	Gravity   motion.GravityConfig   `yaml:"gravity"`
	Walk      motion.WalkConfig      `yaml:"walk"`
	Jump      motion.JumpConfig      `yaml:"jump"`
}

// DefaultCharacterSpec is the base every character file is decoded over.
func DefaultCharacterSpec() CharacterSpec {
	return CharacterSpec{
		Name:      "character",
		Width:     0.8,
		Height:    1.6,
		Flow:      "flow_character.yaml",
		Detection: motion.DefaultDetectionConfig(),
		Gravity:   motion.GravityConfig{Accel: -40, MaxFallSpeed: -30},
	}
}

func LoadCharacterSpec(filename string) (*CharacterSpec, error) {
	spec := DefaultCharacterSpec()
	if err := LoadSpecInto(filename, &spec); err != nil {
		return nil, err
	}
	spec.Jump.Curve.Sort()
	return &spec, nil
}

type LevelSpec struct {
	Name     string   `yaml:"name"`
	TileSize float64  `yaml:"tile_size"`
	Rows     []string `yaml:"rows"`
}

func LoadLevelSpec(filename string) (*LevelSpec, error) {
	spec := LevelSpec{TileSize: 1}
	if err := LoadSpecInto(filename, &spec); err != nil {
		return nil, err
	}
	return &spec, nil
}

type ScenarioSpec struct {
	Name      string       `yaml:"name"`
	Level     string       `yaml:"level"`
	Character string       `yaml:"character"`
	Ticks     int          `yaml:"ticks"`
	Input     []input.Step `yaml:"input"`
}

func LoadScenarioSpec(filename string) (*ScenarioSpec, error) {
	spec := ScenarioSpec{Character: "character.yaml", Ticks: 600}
	if err := LoadSpecInto(filename, &spec); err != nil {
		return nil, err
	}
	return &spec, nil
}

// FlowGraphSpec describes a flow graph; conditions are tengo expressions.
type FlowGraphSpec struct {
	Name              string                    `yaml:"name"`
	Helpers           string                    `yaml:"helpers"`
	Start             string                    `yaml:"start"`
	DefaultState      string                    `yaml:"default_state"`
	DefaultDescriptor string                    `yaml:"default_descriptor"`
	MaxFlowHops       int                       `yaml:"max_flow_hops"`
	Behaviors         map[string]BehaviorSpec   `yaml:"behaviors"`
	Begin             []NodeSpec                `yaml:"begin"`
	Flows             map[string][]NodeSpec     `yaml:"flows"`
	Descriptors       map[string]DescriptorSpec `yaml:"descriptors"`
}

type BehaviorSpec struct {
	Kind           string           `yaml:"kind"`
	Steps          []StepSpec       `yaml:"steps"`
	Count          int              `yaml:"count"`
	RestartOnEnter bool             `yaml:"restart_on_enter"`
	Cases          []CaseSpec       `yaml:"cases"`
	Wait           bool             `yaml:"wait"`
	To             []TransitionSpec `yaml:"to"`
}

type StepSpec struct {
	State      string `yaml:"state"`
	Descriptor string `yaml:"descriptor"`
	Done       string `yaml:"done"`
}

// CaseSpec is one choice entry; Next evaluates to a state name, or "" to finish.
type CaseSpec struct {
	State      string `yaml:"state"`
	Descriptor string `yaml:"descriptor"`
	Next       string `yaml:"next"`
}

type TransitionSpec struct {
	When string `yaml:"when"`
	Flow string `yaml:"flow"`
}

// NodeSpec is one flow rule. Exactly one of Do, ForceDo, To and ForceTo is set.
type NodeSpec struct {
	When    string `yaml:"when"`
	Do      string `yaml:"do"`
	ForceDo string `yaml:"force_do"`
	To      string `yaml:"to"`
	ForceTo string `yaml:"force_to"`
}

type DescriptorSpec struct {
	Restart bool `yaml:"restart"`
}

func LoadFlowGraphSpec(filename string) (*FlowGraphSpec, error) {
	spec, err := LoadSpec[FlowGraphSpec](filename)
	if err != nil {
		return nil, err
	}
	return &spec, nil
}

type YAMLColor struct {
	color.Color
}

func (c *YAMLColor) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("color must be a string")
	}

	s := strings.TrimPrefix(value.Value, "#")
	if len(s) != 6 && len(s) != 8 {
		return fmt.Errorf("invalid color format: %s", value.Value)
	}

	parse := func(start int) (uint8, error) {
		v, err := strconv.ParseUint(s[start:start+2], 16, 8)
		return uint8(v), err
	}

	var rgba [4]uint8
	rgba[3] = 255
	for i := 0; i < len(s)/2; i++ {
		v, err := parse(i * 2)
		if err != nil {
			return err
		}
		rgba[i] = v
	}

	c.Color = color.NRGBA{R: rgba[0], G: rgba[1], B: rgba[2], A: rgba[3]}
	return nil
}

// Or returns the color, or fallback when unset.
func (c *YAMLColor) Or(fallback color.Color) color.Color {
	if c == nil || c.Color == nil {
		return fallback
	}
	return c.Color
}
