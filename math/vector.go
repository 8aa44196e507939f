package math

import (
	m "math"
)

type Vector struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Unit returns the unit vector pointing at angle (radians, counter-clockwise from +X).
func Unit(angle float64) Vector {
	return Vector{X: m.Cos(angle), Y: m.Sin(angle)}
}

func (v Vector) Add(other Vector) Vector {
	return Vector{X: v.X + other.X, Y: v.Y + other.Y}
}

func (v Vector) Subtract(other Vector) Vector {
	return Vector{X: v.X - other.X, Y: v.Y - other.Y}
}

func (v Vector) Scale(factor float64) Vector {
	return Vector{X: v.X * factor, Y: v.Y * factor}
}

func (v Vector) Dot(other Vector) float64 {
	return v.X*other.X + v.Y*other.Y
}

func (v Vector) LengthSq() float64 {
	return v.Dot(v)
}

func (v Vector) Length() float64 {
	return m.Sqrt(v.LengthSq())
}

func (v Vector) DistanceTo(other Vector) float64 {
	return other.Subtract(v).Length()
}
