package motion

import (
	"log"

	"github.com/milk9111/platformkit/common"
	"github.com/milk9111/platformkit/physics"
)

const (
	minWalkAngle = 1.0
	maxWalkAngle = 89.0
)

// DetectionConfig tunes a GroundDetector. It is read once by Init.
type DetectionConfig struct {
	MaxDetectCount int     `yaml:"max_detect_count"`
	MaxWalkAngle   float64 `yaml:"max_walk_angle"`
	SnapLength     float64 `yaml:"snap_length"`
	InnerGap       float64 `yaml:"inner_gap"`
	ContactOffset  float64 `yaml:"contact_offset"`
	FixedDelta     float64 `yaml:"fixed_delta"`

	SolidMask  physics.Layer `yaml:"solid_mask"`
	OneWayMask physics.Layer `yaml:"one_way_mask"`
}

// DefaultDetectionConfig returns the stock tuning.
func DefaultDetectionConfig() DetectionConfig {
	return DetectionConfig{
		MaxDetectCount: 50,
		MaxWalkAngle:   70,
		SnapLength:     0.1,
		InnerGap:       0.1,
		ContactOffset:  0.01,
		FixedDelta:     common.FixedDelta,
		SolidMask:      physics.LayerSolid,
		OneWayMask:     physics.LayerOneWay,
	}
}

// Clamped returns a copy of c with every field pulled into its valid range.
func (c DetectionConfig) Clamped() DetectionConfig {
	if c.MaxDetectCount < 0 {
		c.MaxDetectCount = 0
	}
	if c.MaxWalkAngle < minWalkAngle || c.MaxWalkAngle > maxWalkAngle {
		clamped := common.Clamp(c.MaxWalkAngle, minWalkAngle, maxWalkAngle)
		log.Printf("GroundDetector: max walk angle %.2f out of range, using %.2f", c.MaxWalkAngle, clamped)
		c.MaxWalkAngle = clamped
	}
	if c.SnapLength < 0 {
		c.SnapLength = 0
	}
	if c.InnerGap < 0 {
		c.InnerGap = 0
	}
	if c.ContactOffset < 0 {
		c.ContactOffset = 0
	}
	if c.FixedDelta <= 0 {
		c.FixedDelta = common.FixedDelta
	}
	return c
}

// GroundMask is the combined mask used for every ground cast.
func (c DetectionConfig) GroundMask() physics.Layer {
	return c.SolidMask | c.OneWayMask
}
