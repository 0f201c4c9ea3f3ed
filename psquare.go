package serialqueue

import "math"

// pSquareQuantile streams a single quantile estimate in O(1) time and space
// per observation, without retaining the samples that produced it.
//
// Jain, R. and Chlamtac, I. (1985). "The P^2 Algorithm for Dynamic
// Calculation of Quantiles and Histograms Without Storing Observations".
// Communications of the ACM, 28(10), pp. 1076-1085.
//
// Not safe for concurrent use; Metrics owns the surrounding lock.
type pSquareQuantile struct {
	target float64 // the quantile this estimator tracks, in [0, 1]

	markers [5]pSquareMarker
	seeded  bool
	count   int
	seed    [5]float64 // first 5 raw observations, before markers can be placed
}

// pSquareMarker is one of the five tracked points in the P^2 histogram: its
// current height (the estimated value at that point), its actual position
// among observations seen so far, and the ideal position it is nudged
// toward on every update.
type pSquareMarker struct {
	height      float64
	position    int
	idealPos    float64
	idealPosInc float64 // added to idealPos on every observation
}

func newPSquareQuantile(p float64) *pSquareQuantile {
	switch {
	case p < 0:
		p = 0
	case p > 1:
		p = 1
	}
	ps := &pSquareQuantile{target: p}
	increments := [5]float64{0, p / 2, p, (1 + p) / 2, 1}
	for i := range ps.markers {
		ps.markers[i].idealPosInc = increments[i]
	}
	return ps
}

// Update folds one new observation into the estimate.
func (ps *pSquareQuantile) Update(x float64) {
	ps.count++

	if ps.count <= 5 {
		ps.seed[ps.count-1] = x
		if ps.count == 5 {
			ps.seedMarkers()
		}
		return
	}

	cell := ps.locateCell(x)
	for i := cell + 1; i < 5; i++ {
		ps.markers[i].position++
	}
	for i := range ps.markers {
		ps.markers[i].idealPos += ps.markers[i].idealPosInc
	}
	ps.adjustInteriorMarkers()
}

// locateCell finds k such that markers[k].height <= x < markers[k+1].height,
// extending the outer markers if x is a new minimum or maximum.
func (ps *pSquareQuantile) locateCell(x float64) int {
	switch {
	case x < ps.markers[0].height:
		ps.markers[0].height = x
		return 0
	case x >= ps.markers[4].height:
		ps.markers[4].height = x
		return 3
	default:
		for k := 0; k < 4; k++ {
			if ps.markers[k].height <= x && x < ps.markers[k+1].height {
				return k
			}
		}
	}
	return 3
}

// adjustInteriorMarkers nudges markers 1-3 toward their ideal positions,
// preferring a parabolic fit and falling back to a linear one when the
// parabolic estimate would violate marker ordering.
func (ps *pSquareQuantile) adjustInteriorMarkers() {
	for i := 1; i < 4; i++ {
		d := ps.markers[i].idealPos - float64(ps.markers[i].position)
		growing := d >= 1 && ps.markers[i+1].position-ps.markers[i].position > 1
		shrinking := d <= -1 && ps.markers[i-1].position-ps.markers[i].position < -1
		if !growing && !shrinking {
			continue
		}

		sign := 1
		if d < 0 {
			sign = -1
		}

		height := ps.parabolic(i, sign)
		if !(ps.markers[i-1].height < height && height < ps.markers[i+1].height) {
			height = ps.linear(i, sign)
		}
		ps.markers[i].height = height
		ps.markers[i].position += sign
	}
}

// parabolic applies the P^2 parabolic prediction formula for marker i,
// moving it by sign (+1 or -1) position.
func (ps *pSquareQuantile) parabolic(i, sign int) float64 {
	d := float64(sign)
	pos := float64(ps.markers[i].position)
	posPrev := float64(ps.markers[i-1].position)
	posNext := float64(ps.markers[i+1].position)

	left := (pos - posPrev + d) * (ps.markers[i+1].height - ps.markers[i].height) / (posNext - pos)
	right := (posNext - pos - d) * (ps.markers[i].height - ps.markers[i-1].height) / (pos - posPrev)

	return ps.markers[i].height + d/(posNext-posPrev)*(left+right)
}

// linear is the fallback adjustment when parabolic would cross a neighbor.
func (ps *pSquareQuantile) linear(i, sign int) float64 {
	if sign == 1 {
		step := ps.markers[i+1].position - ps.markers[i].position
		return ps.markers[i].height + (ps.markers[i+1].height-ps.markers[i].height)/float64(step)
	}
	step := ps.markers[i].position - ps.markers[i-1].position
	return ps.markers[i].height - (ps.markers[i].height-ps.markers[i-1].height)/float64(step)
}

// seedMarkers places the five markers once the first 5 observations have
// arrived, sorting them into initial ascending height order.
func (ps *pSquareQuantile) seedMarkers() {
	insertionSort(ps.seed[:])

	idealStart := [5]float64{0, 2 * ps.target, 4 * ps.target, 2 + 2*ps.target, 4}
	for i := range ps.markers {
		ps.markers[i].height = ps.seed[i]
		ps.markers[i].position = i
		ps.markers[i].idealPos = idealStart[i]
	}
	ps.seeded = true
}

// Quantile returns the current estimate. Before 5 observations have arrived
// there are no markers yet, so it falls back to indexing into the sorted
// seed buffer directly.
func (ps *pSquareQuantile) Quantile() float64 {
	if ps.count == 0 {
		return 0
	}
	if ps.count < 5 {
		sorted := append([]float64(nil), ps.seed[:ps.count]...)
		insertionSort(sorted)
		index := int(float64(ps.count-1) * ps.target)
		if index >= ps.count {
			index = ps.count - 1
		}
		return sorted[index]
	}
	return ps.markers[2].height
}

// Count reports how many observations have been folded in.
func (ps *pSquareQuantile) Count() int {
	return ps.count
}

// Max returns the largest observed value.
func (ps *pSquareQuantile) Max() float64 {
	if ps.count == 0 {
		return 0
	}
	if ps.count < 5 {
		max := ps.seed[0]
		for _, v := range ps.seed[1:ps.count] {
			if v > max {
				max = v
			}
		}
		return max
	}
	return ps.markers[4].height
}

// insertionSort sorts small in-place; fine for the 5-element buffers above.
func insertionSort(values []float64) {
	for i := 1; i < len(values); i++ {
		key := values[i]
		j := i - 1
		for j >= 0 && values[j] > key {
			values[j+1] = values[j]
			j--
		}
		values[j+1] = key
	}
}

// pSquareMultiQuantile tracks several quantiles of one stream at once, plus
// a running sum and max so Mean/Max are cheap and exact even though the
// quantiles themselves are estimates.
//
// Not safe for concurrent use; Metrics owns the surrounding lock.
type pSquareMultiQuantile struct {
	estimators []*pSquareQuantile
	sum        float64
	count      int
	max        float64
}

func newPSquareMultiQuantile(percentiles ...float64) *pSquareMultiQuantile {
	m := &pSquareMultiQuantile{
		estimators: make([]*pSquareQuantile, len(percentiles)),
		max:        -math.MaxFloat64,
	}
	for i, p := range percentiles {
		m.estimators[i] = newPSquareQuantile(p)
	}
	return m
}

func (m *pSquareMultiQuantile) Update(x float64) {
	m.count++
	m.sum += x
	if x > m.max {
		m.max = x
	}
	for _, est := range m.estimators {
		est.Update(x)
	}
}

func (m *pSquareMultiQuantile) Quantile(i int) float64 {
	if i < 0 || i >= len(m.estimators) {
		return 0
	}
	return m.estimators[i].Quantile()
}

func (m *pSquareMultiQuantile) Count() int {
	return m.count
}

func (m *pSquareMultiQuantile) Max() float64 {
	if m.count == 0 {
		return 0
	}
	return m.max
}

func (m *pSquareMultiQuantile) Mean() float64 {
	if m.count == 0 {
		return 0
	}
	return m.sum / float64(m.count)
}
