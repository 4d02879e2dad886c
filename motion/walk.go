package motion

import (
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/platformkit/common"
	"github.com/milk9111/platformkit/input"
)

type WalkConfig struct {
	MaxSpeed float64 `yaml:"max_speed"`
	MinSpeed float64 `yaml:"min_speed"`
	Accel    float64 `yaml:"accel"`
	Decel    float64 `yaml:"decel"`

	// ChangeDirPreserveSpeed is the share of speed kept when the walk direction flips.
	ChangeDirPreserveSpeed float64 `yaml:"change_dir_preserve_speed"`
}

// Walk turns left/right input into a velocity along the ground.
type Walk struct {
	WalkConfig

	CanWalk      common.CountedBool
	CurWalkSpeed float64

	inputDir   int
	moveDir    int
	walkDir    cp.Vector
	walkVector cp.Vector
	dt         float64
}

func NewWalk(cfg WalkConfig, dt float64) *Walk {
	w := &Walk{WalkConfig: cfg}
	w.Init(dt, true)
	return w
}

func (w *Walk) Init(dt float64, canWalk bool) {
	if w == nil {
		return
	}
	if dt <= 0 {
		dt = common.FixedDelta
	}
	w.dt = dt
	w.ChangeDirPreserveSpeed = common.Clamp(w.ChangeDirPreserveSpeed, 0, 1)
	if w.MinSpeed > w.MaxSpeed {
		w.MinSpeed = w.MaxSpeed
	}
	w.CanWalk.Reset()
	if canWalk {
		w.CanWalk.Set(true)
	}
}

func (w *Walk) InputDir() int {
	if w == nil {
		return 0
	}
	return w.inputDir
}

func (w *Walk) MoveDir() int {
	if w == nil {
		return 0
	}
	return w.moveDir
}

func (w *Walk) WalkDir() cp.Vector {
	if w == nil {
		return cp.Vector{}
	}
	return w.walkDir
}

func (w *Walk) WalkVector() cp.Vector {
	if w == nil {
		return cp.Vector{}
	}
	return w.walkVector
}

// GetInput reads the direction from two opposing actions. A fresh press wins,
// and releasing one of two held actions hands over to the other.
func (w *Walk) GetInput(src input.Source, plus, minus input.Action) {
	if w == nil || src == nil {
		return
	}
	if !w.CanWalk.Value() || (!src.Pressed(plus) && !src.Pressed(minus)) {
		w.inputDir = 0
		return
	}
	if src.JustPressed(plus) || (src.Pressed(plus) && src.JustReleased(minus)) {
		w.inputDir = 1
	}
	if src.JustPressed(minus) || (src.Pressed(minus) && src.JustReleased(plus)) {
		w.inputDir = -1
	}
}

func (w *Walk) ResetInput() {
	if w == nil {
		return
	}
	w.inputDir = 0
}

// CalcWalkVector updates the walk speed and projects it onto ground.
func (w *Walk) CalcWalkVector(ground GroundContact) {
	if w == nil {
		return
	}
	if w.inputDir != 0 {
		if w.moveDir != w.inputDir {
			w.CurWalkSpeed *= w.ChangeDirPreserveSpeed
		}
		w.moveDir = w.inputDir
	}

	if !ground.Valid() || ground.Normal == common.Up {
		w.walkDir = common.Right.Mult(float64(w.moveDir))
	} else if w.moveDir == 1 {
		w.walkDir = common.CrossBack(ground.Normal).Normalize()
	} else {
		w.walkDir = common.CrossForward(ground.Normal).Normalize()
	}

	if w.inputDir != 0 {
		w.CurWalkSpeed = common.Clamp(w.CurWalkSpeed+w.Accel*w.dt, w.MinSpeed, w.MaxSpeed)
	} else {
		w.CurWalkSpeed = math.Max(w.CurWalkSpeed-w.Decel*w.dt, 0)
	}

	w.walkVector = w.walkDir.Mult(w.CurWalkSpeed)
}
