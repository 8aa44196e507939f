package math

type Box struct {
	Min Vector `json:"min"`
	Max Vector `json:"max"`
}

func NewBox(width, height float64) Box {
	return Box{Max: Vector{X: width, Y: height}}
}

func (b *Box) Width() float64 {
	return b.Max.X - b.Min.X
}

func (b *Box) Height() float64 {
	return b.Max.Y - b.Min.Y
}

func (b *Box) Center() Vector {
	return Vector{X: (b.Min.X + b.Max.X) / 2, Y: (b.Min.Y + b.Max.Y) / 2}
}

func (b *Box) PosInside(p Vector) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X && p.Y >= b.Min.Y && p.Y <= b.Max.Y
}

// CircleInside reports whether a circle fits entirely within the box.
func (b *Box) CircleInside(center Vector, radius float64) bool {
	return center.X-radius >= b.Min.X && center.X+radius <= b.Max.X &&
		center.Y-radius >= b.Min.Y && center.Y+radius <= b.Max.Y
}
