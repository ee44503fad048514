package calculator

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"DexSentinel/internal/model"
)

func constant(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestEMA_SpanOneIsIdentity(t *testing.T) {
	in := []float64{3, 7, 1, 9, 4, 4, 12.5}
	ema := EMA(in, 1)
	require.Len(t, ema, len(in))
	for i, v := range in {
		got, ok := ema.At(i)
		assert.True(t, ok)
		assert.Equal(t, v, got)
	}
}

func TestEMA_RecursiveSmoothing(t *testing.T) {
	ema := EMA([]float64{1, 2, 3}, 3)

	_, ok := ema.At(0)
	assert.False(t, ok, "first span-1 points are not ready")
	_, ok = ema.At(1)
	assert.False(t, ok)

	last, ok := ema.Last()
	require.True(t, ok)
	// alpha = 0.5: 1 -> 1.5 -> 2.25
	assert.InDelta(t, 2.25, last, 1e-12)
	assert.InDelta(t, 1.5, ema[1].Value, 1e-12)
}

func TestEMA_InvalidSpan(t *testing.T) {
	ema := EMA([]float64{1, 2, 3}, 0)
	assert.Equal(t, 0, ema.Ready())
}

func TestRollingMean(t *testing.T) {
	m := RollingMean([]float64{1, 2, 3, 4, 5}, 3)
	assert.Equal(t, 3, m.Ready())
	_, ok := m.At(1)
	assert.False(t, ok)
	v, ok := m.Last()
	require.True(t, ok)
	assert.InDelta(t, 4.0, v, 1e-12)
}

func TestBollinger_UndefinedBeforeWindow(t *testing.T) {
	b := Bollinger([]float64{1, 2, 3, 4, 5}, 3, 2)
	for i := 0; i < 2; i++ {
		assert.False(t, b.Middle[i].Ready)
		assert.False(t, b.Upper[i].Ready)
		assert.False(t, b.Lower[i].Ready)
	}
	mid, _ := b.Middle.At(2)
	up, _ := b.Upper.At(2)
	assert.InDelta(t, 2.0, mid, 1e-12)
	// population std of {1,2,3} is sqrt(2/3)
	assert.InDelta(t, 2+2*math.Sqrt(2.0/3.0), up, 1e-12)
}

func TestBollinger_Symmetric(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	in := make([]float64, 200)
	p := 100.0
	for i := range in {
		p += rng.NormFloat64()
		in[i] = p
	}
	b := Bollinger(in, 20, 2)
	for i := range in {
		if !b.Middle[i].Ready {
			continue
		}
		m, up, lo := b.Middle[i].Value, b.Upper[i].Value, b.Lower[i].Value
		assert.InDelta(t, up-m, m-lo, 1e-9, "bar %d", i)
		assert.GreaterOrEqual(t, up, lo)
	}
	assert.Equal(t, len(in)-19, b.Middle.Ready())
}

func TestBandwidth_ConstantSeriesIsZero(t *testing.T) {
	bw := Bollinger(constant(25, 4), 20, 2).Bandwidth()
	v, ok := bw.Last()
	require.True(t, ok)
	assert.Equal(t, 0.0, v)
}

func TestRSI_ConstantSeries(t *testing.T) {
	r := RSI(constant(30, 10), 14)
	v, ok := r.Last()
	require.True(t, ok)
	assert.False(t, math.IsNaN(v))
	assert.False(t, math.IsInf(v, 0))
	assert.Equal(t, 0.0, v)
}

func TestRSI_ReadyFromWindow(t *testing.T) {
	r := RSI([]float64{1, 2, 3, 4, 5, 6}, 3)
	_, ok := r.At(2)
	assert.False(t, ok)
	_, ok = r.At(3)
	assert.True(t, ok)
}

func TestRSI_OnlyGainsApproachesHundred(t *testing.T) {
	in := make([]float64, 20)
	for i := range in {
		in[i] = float64(i)
	}
	v, ok := RSI(in, 14).Last()
	require.True(t, ok)
	assert.LessOrEqual(t, v, 100.0)
	assert.InDelta(t, 100.0, v, 1e-6)
}

func TestRSI_MixedMoves(t *testing.T) {
	// deltas over the window: +2, -1, +2, -1 -> avgGain 1, avgLoss 0.5 -> RS 2
	v, ok := RSI([]float64{10, 12, 11, 13, 12}, 4).Last()
	require.True(t, ok)
	assert.InDelta(t, 100-100/3.0, v, 1e-9)
}

func TestRSI_Bounded(t *testing.T) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	for trial := 0; trial < 50; trial++ {
		in := make([]float64, 15+rng.Intn(100))
		for i := range in {
			in[i] = rng.Float64()*1000 - 500
		}
		for i, p := range RSI(in, 14) {
			if !p.Ready {
				continue
			}
			assert.GreaterOrEqual(t, p.Value, 0.0, "trial %d bar %d", trial, i)
			assert.LessOrEqual(t, p.Value, 100.0, "trial %d bar %d", trial, i)
		}
	}
}

func TestOBV(t *testing.T) {
	o := OBV([]float64{1, 2, 2, 1, 3}, []float64{10, 20, 30, 40, 50})
	assert.Equal(t, []float64{0, 20, 20, -20, 30}, o.Values())
	assert.Equal(t, 5, o.Ready())
}

func TestOBV_ConstantPrice(t *testing.T) {
	o := OBV(constant(40, 2), constant(40, 1000))
	for _, p := range o {
		assert.Equal(t, 0.0, p.Value)
	}
}

func TestOBV_LengthMismatch(t *testing.T) {
	o := OBV([]float64{1, 2, 3}, []float64{1})
	assert.Equal(t, 0, o.Ready())
}

func TestRollingMax(t *testing.T) {
	m := RollingMax([]float64{3, 1, 4, 1, 5, 9, 2}, 3)
	assert.Equal(t, 5, m.Ready())
	v, _ := m.At(3)
	assert.Equal(t, 4.0, v)
	v, _ = m.At(-2)
	assert.Equal(t, 9.0, v)
}

func TestPctChange(t *testing.T) {
	p := PctChange([]float64{100, 0, 110, 50, 121}, 2)
	v, ok := p.At(2)
	require.True(t, ok)
	assert.InDelta(t, 0.10, v, 1e-12)
	_, ok = p.At(3)
	assert.False(t, ok, "zero base is not ready")
	v, ok = p.Last()
	require.True(t, ok)
	assert.InDelta(t, 0.10, v, 1e-12)
}

func TestPercentile_LinearInterpolation(t *testing.T) {
	assert.InDelta(t, 1.8, Percentile([]float64{5, 4, 3, 2, 1}, 20), 1e-12)
	assert.Equal(t, 1.0, Percentile([]float64{1, 2}, 0))
	assert.Equal(t, 2.0, Percentile([]float64{1, 2}, 100))
	assert.True(t, math.IsNaN(Percentile(nil, 50)))
}

func TestSeries_At(t *testing.T) {
	s := Series{{Value: 1, Ready: true}, {Value: 2}}
	_, ok := s.At(5)
	assert.False(t, ok)
	v, ok := s.At(-2)
	assert.True(t, ok)
	assert.Equal(t, 1.0, v)
	_, ok = s.Last()
	assert.False(t, ok)
}

func TestClosesAndVolumes(t *testing.T) {
	bars := []model.Candle{{Close: 1, Volume: 10}, {Close: 2, Volume: 20}}
	assert.Equal(t, []float64{1, 2}, Closes(bars))
	assert.Equal(t, []float64{10, 20}, Volumes(bars))
}
