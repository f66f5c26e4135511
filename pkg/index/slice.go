package index

import "github.com/ajitpratap0/colkit/pkg/errors"

// Slice is a Python-style slice. Nil bounds are open; Stop is exclusive and
// negative bounds count from the end. Bounds outside the container are
// clipped, never rejected.
type Slice struct {
	Start *int
	Stop  *int
	Step  *int
}

// Range returns the slice [start:stop]
func Range(start, stop int) Slice {
	return Slice{Start: &start, Stop: &stop}
}

// From returns the slice [start:]
func From(start int) Slice {
	return Slice{Start: &start}
}

// To returns the slice [:stop]
func To(stop int) Slice {
	return Slice{Stop: &stop}
}

// All returns the slice [:]
func All() Slice {
	return Slice{}
}

// Every returns a copy of s with the given step
func (s Slice) Every(step int) Slice {
	s.Step = &step
	return s
}

// Bounds resolves the slice against length like Python's slice.indices
func (s Slice) Bounds(length int) (start, stop, step int, err error) {
	step = 1
	if s.Step != nil {
		step = *s.Step
	}
	if step == 0 {
		return 0, 0, 0, errors.New(errors.ErrorTypeInvalidIndex, "slice step cannot be zero")
	}

	lower, upper := 0, length
	if step < 0 {
		lower, upper = -1, length-1
	}

	clip := func(bound *int, def int) int {
		if bound == nil {
			return def
		}
		v := *bound
		if v < 0 {
			v += length
			if v < lower {
				v = lower
			}
		} else if v > upper {
			v = upper
		}
		return v
	}

	if step > 0 {
		start = clip(s.Start, lower)
		stop = clip(s.Stop, upper)
	} else {
		start = clip(s.Start, upper)
		stop = clip(s.Stop, lower)
	}
	return start, stop, step, nil
}

// Positions expands the slice into the positions it selects
func (s Slice) Positions(length int) ([]int, error) {
	start, stop, step, err := s.Bounds(length)
	if err != nil {
		return nil, err
	}

	var n int
	if step > 0 && start < stop {
		n = (stop - start + step - 1) / step
	} else if step < 0 && start > stop {
		n = (start - stop - step - 1) / -step
	}

	positions := make([]int, n)
	for i := range positions {
		positions[i] = start + i*step
	}
	return positions, nil
}
