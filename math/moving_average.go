package math

// MovingAverage is a fixed capacity ring of the most recent samples. Until the
// ring fills the estimate is the mean of the samples seen so far.
type MovingAverage struct {
	values   []float64
	index    int
	size     int
	count    int
	Estimate float64
}

func (a *MovingAverage) Init(size int) {
	if size < 1 {
		size = 1
	}
	a.size = size
	a.values = make([]float64, size)
	a.Reset()
}

func (a *MovingAverage) Reset() {
	a.index = 0
	a.count = 0
	a.Estimate = 0
}

func (a *MovingAverage) Update(val float64) float64 {
	if a.size == 0 {
		a.Init(1)
	}
	a.values[a.index] = val
	a.index = (a.index + 1) % a.size
	if a.count < a.size {
		a.count++
	}
	total := 0.0
	for i := range a.count {
		total += a.values[i]
	}
	a.Estimate = total / float64(a.count)
	return a.Estimate
}

// Raw returns the most recently added sample.
func (a *MovingAverage) Raw() float64 {
	if a.count == 0 {
		return 0
	}
	return a.values[(a.index-1+a.size)%a.size]
}

func (a *MovingAverage) Len() int {
	return a.count
}

func (a *MovingAverage) Size() int {
	return a.size
}
