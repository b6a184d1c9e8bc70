package layout

import (
	"errors"
	"fmt"
	"math"

	"sphere-panels/internal/geometry"
)

var (
	// ErrRowMismatch is returned when the row counts do not add up to the panel count.
	ErrRowMismatch = errors.New("row counts do not sum to panel count")
	// ErrInvalidRows is returned for an empty row list or a row with fewer than one panel.
	ErrInvalidRows = errors.New("invalid row layout")
	// ErrInvalidGap is returned for a negative gap or one that would consume a whole patch.
	ErrInvalidGap = errors.New("invalid gap")
	// ErrInvalidBands is returned when caller-specified band boundaries are malformed.
	ErrInvalidBands = errors.New("invalid band boundaries")
)

// Options controls how the sphere's angle domain is split.
// Gap is the inward margin (radians) applied on all four sides of every region; 0 tiles seamlessly.
// Bands optionally sets the polar boundaries: len(rows)+1 ascending values from 0 to π.
// When nil, bands have equal angular height.
// Centered shifts each row by half a sector so that sector 0 straddles theta = 0 instead of starting there.
type Options struct {
	Gap      float64
	Bands    []float64
	Centered bool
}

// Region is one panel's slice of the sphere, independent of radius and tessellation.
// Index is the panel index within the body (row-major: row 0 first, then by sector).
type Region struct {
	Index       int
	Row         int
	Col         int
	PhiStart    float64
	PhiLength   float64
	ThetaStart  float64
	ThetaLength float64
}

// Patch returns the geometry input for this region on a sphere of the given radius and resolution.
func (r Region) Patch(radius float64, widthSegments, heightSegments int) geometry.AngularPatch {
	return geometry.AngularPatch{
		PhiStart:       r.PhiStart,
		PhiLength:      r.PhiLength,
		ThetaStart:     r.ThetaStart,
		ThetaLength:    r.ThetaLength,
		Radius:         radius,
		WidthSegments:  widthSegments,
		HeightSegments: heightSegments,
	}
}

// Allocate splits [0, π] into len(rows) equal bands and band i into rows[i] equal azimuth sectors,
// shrinking every region by gap on each side. sum(rows) must equal panelCount.
func Allocate(panelCount int, rows []int, gap float64) ([]Region, error) {
	return AllocateWith(panelCount, rows, Options{Gap: gap})
}

// AllocateWith is Allocate with explicit options.
func AllocateWith(panelCount int, rows []int, opts Options) ([]Region, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no rows", ErrInvalidRows)
	}
	sum := 0
	for i, n := range rows {
		if n < 1 {
			return nil, fmt.Errorf("%w: row %d has %d panels", ErrInvalidRows, i, n)
		}
		sum += n
	}
	if sum != panelCount {
		return nil, fmt.Errorf("%w: rows %v sum to %d, want %d", ErrRowMismatch, rows, sum, panelCount)
	}

	bands := opts.Bands
	if bands == nil {
		bands = EqualBands(len(rows))
	}
	if err := checkBands(bands, len(rows)); err != nil {
		return nil, err
	}

	gap := opts.Gap
	if gap < 0 || math.IsNaN(gap) {
		return nil, fmt.Errorf("%w: %g", ErrInvalidGap, gap)
	}

	regions := make([]Region, 0, panelCount)
	for row, n := range rows {
		phiStart, phiEnd := bands[row], bands[row+1]
		sector := 2 * math.Pi / float64(n)
		if 2*gap >= phiEnd-phiStart || 2*gap >= sector {
			return nil, fmt.Errorf("%w: gap %g leaves nothing of row %d", ErrInvalidGap, gap, row)
		}
		offset := 0.0
		if opts.Centered {
			offset = -sector / 2
		}
		for col := 0; col < n; col++ {
			regions = append(regions, Region{
				Index:       len(regions),
				Row:         row,
				Col:         col,
				PhiStart:    phiStart + gap,
				PhiLength:   (phiEnd - phiStart) - 2*gap,
				ThetaStart:  offset + float64(col)*sector + gap,
				ThetaLength: sector - 2*gap,
			})
		}
	}
	return regions, nil
}

// EqualBands returns n+1 evenly spaced polar boundaries from 0 to π.
func EqualBands(n int) []float64 {
	b := make([]float64, n+1)
	for i := range b {
		b[i] = math.Pi * float64(i) / float64(n)
	}
	b[n] = math.Pi
	return b
}

func checkBands(bands []float64, rows int) error {
	if len(bands) != rows+1 {
		return fmt.Errorf("%w: %d boundaries for %d rows", ErrInvalidBands, len(bands), rows)
	}
	if bands[0] != 0 || bands[rows] != math.Pi {
		return fmt.Errorf("%w: boundaries must run from 0 to π (got %g..%g)", ErrInvalidBands, bands[0], bands[rows])
	}
	for i := 1; i < len(bands); i++ {
		if !(bands[i] > bands[i-1]) {
			return fmt.Errorf("%w: boundaries must be strictly ascending at %d", ErrInvalidBands, i)
		}
	}
	return nil
}

// RowsFor returns a row layout for panelCount panels split into rows bands: a single row when
// rows <= 1, otherwise as even as possible with the remainder going to the middle rows first
// (7 panels in 3 rows gives [2 3 2]).
func RowsFor(panelCount, rows int) []int {
	if rows <= 1 || panelCount < rows {
		return []int{panelCount}
	}
	out := make([]int, rows)
	base, rem := panelCount/rows, panelCount%rows
	for i := range out {
		out[i] = base
	}
	mid := rows / 2
	for i := 0; i < rem; i++ {
		// mid, mid-1, mid+1, mid-2, ...
		off := (i + 1) / 2
		if i%2 == 1 {
			off = -off
		}
		out[mid+off]++
	}
	return out
}
