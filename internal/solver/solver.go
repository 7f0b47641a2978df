// Package solver searches encode parameters that fit a byte budget.
//
// Each round binary-searches quality at a fixed scale. When no quality fits,
// the next round shrinks the raster by a constant factor. After the last
// round the smallest output seen is returned with Fits set to false.
package solver

import (
	"context"
	"log/slog"

	"fileforge/internal/domain/transform"
)

// Subject is something that can be encoded at a scale and quality.
type Subject interface {
	// Dimensions returns the raster size at scale.
	Dimensions(scale float64) (int, int)
	// Encode renders the subject at scale with params.
	Encode(scale float64, params transform.EncodeParameters) ([]byte, error)
}

// Options bound the search.
type Options struct {
	QualityMin         int
	QualityMax         int
	DownscaleFactor    float64
	MaxDownscaleRounds int
}

// Solution is the chosen encode.
type Solution struct {
	Params transform.EncodeParameters
	Data   []byte
	Fits   bool
	Probes int
	Rounds int
}

// Size returns the encoded length.
func (s *Solution) Size() int64 {
	return int64(len(s.Data))
}

// Solver finds the highest quality, largest scale encode under a budget.
type Solver struct {
	opts   Options
	logger *slog.Logger
}

// New creates a new solver
func New(opts Options, logger *slog.Logger) *Solver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Solver{opts: opts, logger: logger}
}

type candidate struct {
	quality int
	width   int
	height  int
	data    []byte
}

func (c *candidate) size() int64 {
	return int64(len(c.data))
}

// Solve searches for an encode of subject no larger than budget bytes. The
// format and lossless flag of target are kept; quality and dimensions are
// chosen. The context is checked between probes.
func (s *Solver) Solve(ctx context.Context, subject Subject, target transform.EncodeParameters, budget int64) (*Solution, error) {
	var smallest *candidate
	probes := 0
	prevW, prevH := -1, -1
	scale := 1.0
	lastRound := 0

	for round := 0; round <= s.opts.MaxDownscaleRounds; round++ {
		if round > 0 {
			scale *= s.opts.DownscaleFactor
		}
		w, h := subject.Dimensions(scale)
		if w == prevW && h == prevH {
			break
		}
		prevW, prevH = w, h
		lastRound = round

		fit, small, n, err := s.searchRound(ctx, subject, target, scale, w, h, budget)
		probes += n
		if err != nil {
			return nil, err
		}
		if smallest == nil || small.size() < smallest.size() {
			smallest = small
		}
		if fit != nil {
			s.logger.Debug("Solver found fit", "quality", fit.quality, "width", w, "height", h, "round", round, "probes", probes)
			return s.solution(target, fit, true, probes, round), nil
		}
	}

	s.logger.Debug("Budget unreachable", "budget", budget, "smallest", smallest.size(), "probes", probes)
	return s.solution(target, smallest, false, probes, lastRound), nil
}

func (s *Solver) solution(target transform.EncodeParameters, c *candidate, fits bool, probes, rounds int) *Solution {
	params := target
	params.Width, params.Height = c.width, c.height
	if !target.Lossless {
		params.Quality = c.quality
	}
	return &Solution{Params: params, Data: c.data, Fits: fits, Probes: probes, Rounds: rounds}
}

func (s *Solver) searchRound(ctx context.Context, subject Subject, target transform.EncodeParameters, scale float64, w, h int, budget int64) (fit, smallest *candidate, probes int, err error) {
	probe := func(q int) (*candidate, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		params := target
		params.Quality = q
		params.Width, params.Height = w, h
		data, err := subject.Encode(scale, params)
		if err != nil {
			return nil, err
		}
		probes++
		return &candidate{quality: q, width: w, height: h, data: data}, nil
	}

	if target.Lossless {
		c, err := probe(target.Quality)
		if err != nil {
			return nil, nil, probes, err
		}
		if c.size() <= budget {
			return c, c, probes, nil
		}
		return nil, c, probes, nil
	}

	lo, hi := s.opts.QualityMin, s.opts.QualityMax
	for lo <= hi {
		mid := lo + (hi-lo)/2
		c, err := probe(mid)
		if err != nil {
			return nil, nil, probes, err
		}
		if smallest == nil || c.size() < smallest.size() {
			smallest = c
		}
		if c.size() <= budget {
			fit = prefer(fit, c)
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}
	return fit, smallest, probes, nil
}

// prefer keeps the higher quality fit. Size only decides between fits of
// the same quality, where the smaller output wins.
func prefer(a, b *candidate) *candidate {
	switch {
	case a == nil:
		return b
	case b.quality != a.quality:
		if b.quality > a.quality {
			return b
		}
		return a
	case b.size() < a.size():
		return b
	}
	return a
}
