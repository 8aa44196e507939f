package math

import (
	m "math"
)

const (
	TWO_PI     = 2 * m.Pi
	TO_RADIANS = m.Pi / 180
	TO_DEGREES = 180 / m.Pi
)

// WrapAngle maps any angle into [0, 2π).
func WrapAngle(angle float64) float64 {
	wrapped := m.Mod(angle, TWO_PI)
	if wrapped < 0 {
		wrapped += TWO_PI
	}
	if wrapped >= TWO_PI {
		wrapped = 0
	}
	return wrapped
}

// ReflectVertical mirrors a heading off a wall parallel to the Y axis.
func ReflectVertical(angle float64) float64 {
	return WrapAngle(m.Pi - angle)
}

// ReflectHorizontal mirrors a heading off a wall parallel to the X axis.
func ReflectHorizontal(angle float64) float64 {
	return WrapAngle(TWO_PI - angle)
}
