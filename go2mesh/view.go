package go2mesh

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// Camera is a minimal View whose stamp is advanced explicitly, e.g. once per frame.
type Camera struct {
	EyePos r3.Vec
	stamp  uint64
}

func NewCamera(eye r3.Vec) *Camera {
	return &Camera{
		EyePos: eye,
		stamp:  1,
	}
}

func (cam *Camera) Eye() r3.Vec   { return cam.EyePos }
func (cam *Camera) Stamp() uint64 { return cam.stamp }

// Tick advances the frame stamp.
func (cam *Camera) Tick() uint64 {
	cam.stamp++
	return cam.stamp
}

// MoveTo places the eye at a new location and advances the frame stamp.
func (cam *Camera) MoveTo(eye r3.Vec) {
	cam.EyePos = eye
	cam.Tick()
}
