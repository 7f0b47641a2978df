package solver

import (
	"context"
	"errors"
	"testing"

	"fileforge/internal/codec"
	"fileforge/internal/domain/transform"
	"fileforge/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSubject produces outputs whose size grows linearly with quality and
// with the pixel area.
type fakeSubject struct {
	side  int
	calls int
}

func (f *fakeSubject) Dimensions(scale float64) (int, int) {
	return codec.ScaledSize(f.side, f.side, scale)
}

func (f *fakeSubject) Encode(scale float64, params transform.EncodeParameters) ([]byte, error) {
	f.calls++
	q := params.Quality
	if params.Lossless {
		q = 100
	}
	w, h := f.Dimensions(scale)
	return make([]byte, q*w*h/100), nil
}

func defaultOptions() Options {
	return Options{QualityMin: 1, QualityMax: 100, DownscaleFactor: 0.75, MaxDownscaleRounds: 3}
}

func TestSolveHighestQualityThatFits(t *testing.T) {
	s := New(defaultOptions(), nil)
	subject := &fakeSubject{side: 100}

	sol, err := s.Solve(context.Background(), subject, transform.EncodeParameters{Format: transform.FormatJPEG}, 5000)
	require.NoError(t, err)

	assert.True(t, sol.Fits)
	assert.Equal(t, 50, sol.Params.Quality)
	assert.Equal(t, int64(5000), sol.Size())
	assert.Equal(t, 0, sol.Rounds)
	assert.Equal(t, 100, sol.Params.Width)
	assert.LessOrEqual(t, sol.Probes, 7)
	assert.Equal(t, subject.calls, sol.Probes)
}

func TestSolveDownscalesWhenQualityIsNotEnough(t *testing.T) {
	s := New(defaultOptions(), nil)

	sol, err := s.Solve(context.Background(), &fakeSubject{side: 100}, transform.EncodeParameters{Format: transform.FormatWebP}, 60)
	require.NoError(t, err)

	assert.True(t, sol.Fits)
	assert.Equal(t, 1, sol.Rounds)
	assert.Equal(t, 75, sol.Params.Width)
	assert.Equal(t, 1, sol.Params.Quality)
	assert.LessOrEqual(t, sol.Size(), int64(60))
}

func TestSolveBudgetUnreachable(t *testing.T) {
	s := New(defaultOptions(), nil)

	sol, err := s.Solve(context.Background(), &fakeSubject{side: 100}, transform.EncodeParameters{Format: transform.FormatJPEG}, 1)
	require.NoError(t, err)

	assert.False(t, sol.Fits)
	assert.Equal(t, 3, sol.Rounds)
	// 100 * 0.75^3 rounds to 42 pixels a side; quality 1 keeps 1% of that.
	assert.Equal(t, int64(42*42/100), sol.Size())
	assert.Equal(t, 1, sol.Params.Quality)
	assert.LessOrEqual(t, sol.Probes, 7*4)
}

func TestSolveLosslessProbesOncePerRound(t *testing.T) {
	s := New(defaultOptions(), nil)
	subject := &fakeSubject{side: 100}

	sol, err := s.Solve(context.Background(), subject, transform.EncodeParameters{Format: transform.FormatPNG, Lossless: true}, 3000)
	require.NoError(t, err)

	// 10000, 5625 and 3136 bytes miss; 42x42 fits.
	assert.True(t, sol.Fits)
	assert.Equal(t, 3, sol.Rounds)
	assert.Equal(t, 4, sol.Probes)
}

func TestSolveStopsWhenRasterCannotShrink(t *testing.T) {
	s := New(defaultOptions(), nil)
	subject := &fakeSubject{side: 1}

	sol, err := s.Solve(context.Background(), subject, transform.EncodeParameters{Format: transform.FormatPNG, Lossless: true}, 0)
	require.NoError(t, err)

	assert.False(t, sol.Fits)
	assert.Equal(t, 1, subject.calls)
}

func TestSolveAdjacentFitsKeepHigherQuality(t *testing.T) {
	tests := []struct {
		budget int64
		want   int
	}{
		{7200, 72},
		{5100, 51},
		{7199, 71},
	}

	for _, tt := range tests {
		s := New(defaultOptions(), nil)
		sol, err := s.Solve(context.Background(), &fakeSubject{side: 100}, transform.EncodeParameters{Format: transform.FormatJPEG}, tt.budget)
		require.NoError(t, err)

		assert.True(t, sol.Fits)
		assert.Equal(t, tt.want, sol.Params.Quality, "budget %d", tt.budget)
		assert.LessOrEqual(t, sol.Size(), tt.budget)
	}
}

func TestSolveCancelled(t *testing.T) {
	s := New(defaultOptions(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Solve(ctx, &fakeSubject{side: 10}, transform.EncodeParameters{Format: transform.FormatJPEG}, 10)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestPrefer(t *testing.T) {
	a := &candidate{quality: 50, data: make([]byte, 100)}
	b := &candidate{quality: 51, data: make([]byte, 90)}
	c := &candidate{quality: 70, data: make([]byte, 120)}
	larger := &candidate{quality: 51, data: make([]byte, 110)}
	smaller := &candidate{quality: 50, data: make([]byte, 80)}

	assert.Same(t, b, prefer(a, b))
	assert.Same(t, larger, prefer(a, larger))
	assert.Same(t, larger, prefer(larger, a))
	assert.Same(t, smaller, prefer(a, smaller))
	assert.Same(t, c, prefer(a, c))
	assert.Same(t, c, prefer(c, a))
	assert.Same(t, a, prefer(nil, a))
}

func TestSolveRealJPEG(t *testing.T) {
	s := New(defaultOptions(), nil)
	img := testutil.Noise(128, 128, 1)
	enc := codec.NewImageCodec(nil)

	const budget = 6000
	sol, err := s.Solve(context.Background(), NewImageSubject(img, enc), transform.EncodeParameters{Format: transform.FormatJPEG}, budget)
	require.NoError(t, err)

	assert.True(t, sol.Fits)
	assert.LessOrEqual(t, sol.Size(), int64(budget))

	again, err := enc.Encode(img, sol.Params)
	require.NoError(t, err)
	assert.Equal(t, sol.Data, again)
}

func TestPageSubjectKeepsPhysicalSize(t *testing.T) {
	pages := []transform.PageImage{{Image: testutil.Gradient(80, 40), WidthPt: 80, HeightPt: 40}}
	subject := NewPageSubject(pages, codec.NewPDFCodec(nil))

	w, h := subject.Dimensions(0.5)
	assert.Equal(t, 40, w)
	assert.Equal(t, 20, h)

	scaled := subject.scaled(0.5)
	assert.Equal(t, 80.0, scaled[0].WidthPt)
	assert.Equal(t, 40, scaled[0].Image.Bounds().Dx())
}
