package math

import (
	m "math"
)

const (
	MIN_RAY_ROOT   = 1e-2 // roots this close to the origin are the origin itself
	MIN_RAY_DIR_SQ = 1e-9
)

type Circle struct {
	Center Vector  `json:"center"`
	Radius float64 `json:"radius"`
}

func (c Circle) Overlaps(other Circle) bool {
	return c.Center.DistanceTo(other.Center) < c.Radius+other.Radius
}

type Ray struct {
	Origin    Vector
	Direction Vector
}

// CircleIntersection returns the smallest ray parameter t > MIN_RAY_ROOT at
// which the ray crosses the circle boundary. With a unit direction t is the
// distance from the origin.
func (r Ray) CircleIntersection(circle Circle) (t float64, hit bool) {
	a := r.Direction.LengthSq()
	if a < MIN_RAY_DIR_SQ {
		return 0, false
	}
	oc := r.Origin.Subtract(circle.Center)
	b := 2 * r.Direction.Dot(oc)
	c := oc.LengthSq() - circle.Radius*circle.Radius

	disc := b*b - 4*a*c
	if disc < 0 {
		return 0, false
	}
	sq := m.Sqrt(disc)
	t1 := (-b - sq) / (2 * a)
	t2 := (-b + sq) / (2 * a)
	if t1 > MIN_RAY_ROOT {
		return t1, true
	}
	if t2 > MIN_RAY_ROOT {
		return t2, true
	}
	return 0, false
}

// Cast returns the distance to the nearest circle along the ray, or maxRange
// when nothing closer is hit or the direction is degenerate.
func (r Ray) Cast(circles []Circle, maxRange float64) float64 {
	if r.Direction.LengthSq() < MIN_RAY_DIR_SQ {
		return maxRange
	}
	scale := r.Direction.Length()
	nearest := maxRange
	for _, c := range circles {
		t, hit := r.CircleIntersection(c)
		if !hit {
			continue
		}
		if d := t * scale; d < nearest {
			nearest = d
		}
	}
	return nearest
}
