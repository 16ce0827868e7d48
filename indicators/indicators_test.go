package indicators

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var closes = []float64{100, 102, 104, 103, 101, 99, 101, 105, 110, 108}

func TestSMAStreaming(t *testing.T) {
	t.Run("basic functionality", func(t *testing.T) {
		ma := NewSMA(3)
		assert.Equal(t, "SMA(3)", ma.Name())
		assert.Equal(t, 3, ma.Warmup())
		assert.False(t, ma.Ready())
		assert.True(t, math.IsNaN(ma.Value()))

		ma.Update(100)
		ma.Update(102)
		assert.False(t, ma.Ready())

		ma.Update(104)
		assert.True(t, ma.Ready())
		assert.InDelta(t, 102.0, ma.Value(), 1e-9)

		ma.Update(103)
		assert.InDelta(t, (102.0+104.0+103.0)/3.0, ma.Value(), 1e-9)
	})

	t.Run("reset functionality", func(t *testing.T) {
		ma := NewSMA(2)
		ma.Update(1)
		ma.Update(2)
		assert.True(t, ma.Ready())

		ma.Reset()
		assert.False(t, ma.Ready())
		ma.Update(10)
		ma.Update(20)
		assert.InDelta(t, 15.0, ma.Value(), 1e-9)
	})

	t.Run("non-positive period never ready", func(t *testing.T) {
		ma := NewSMA(0)
		ma.Update(1)
		ma.Update(2)
		assert.False(t, ma.Ready())
	})
}

func TestMovingAverage(t *testing.T) {
	out, err := MovingAverage(closes, 3)
	require.NoError(t, err)
	require.Len(t, out, len(closes))

	assert.True(t, math.IsNaN(out[0]))
	assert.True(t, math.IsNaN(out[1]))
	for i := 2; i < len(closes); i++ {
		want := (closes[i-2] + closes[i-1] + closes[i]) / 3
		assert.InDelta(t, want, out[i], 1e-9, "index %d", i)
	}

	_, err = MovingAverage(closes, 0)
	assert.Error(t, err)
}

func TestStdDev(t *testing.T) {
	t.Run("sample deviation", func(t *testing.T) {
		sd := NewStdDev(4)
		for _, v := range []float64{2, 4, 4, 4} {
			sd.Update(v)
		}
		// mean 3.5, squared deviations 2.25+0.25*3 = 3, /3 = 1
		assert.InDelta(t, 1.0, sd.Value(), 1e-12)

		sd.Update(5)
		// window 4,4,4,5: mean 4.25, ss = 0.1875+0.5625 = 0.75, /3 = 0.25
		assert.InDelta(t, 0.5, sd.Value(), 1e-12)
	})

	t.Run("constant window is zero", func(t *testing.T) {
		out, err := RollingStdDev([]float64{7, 7, 7, 7}, 3)
		require.NoError(t, err)
		assert.True(t, math.IsNaN(out[1]))
		assert.Equal(t, 0.0, out[2])
		assert.Equal(t, 0.0, out[3])
	})

	t.Run("period one rejected", func(t *testing.T) {
		_, err := RollingStdDev(closes, 1)
		assert.Error(t, err)
		assert.False(t, NewStdDev(1).Ready())
	})
}

func TestRSI(t *testing.T) {
	t.Run("warmup includes seed close", func(t *testing.T) {
		r := NewRSI(3)
		assert.Equal(t, "RSI(3)", r.Name())
		assert.Equal(t, 4, r.Warmup())
		for _, v := range []float64{10, 11, 12} {
			r.Update(v)
			assert.False(t, r.Ready())
		}
		r.Update(11)
		assert.True(t, r.Ready())
		// gains 1,1,0 losses 0,0,1: rs = (2/3)/(1/3) = 2, rsi = 100-100/3
		assert.InDelta(t, 100-100.0/3, r.Value(), 1e-9)
	})

	t.Run("no losses is 100", func(t *testing.T) {
		out, err := RelativeStrength([]float64{1, 2, 3, 4}, 2)
		require.NoError(t, err)
		assert.True(t, math.IsNaN(out[1]))
		assert.Equal(t, 100.0, out[2])
		assert.Equal(t, 100.0, out[3])
	})

	t.Run("flat prices are 100", func(t *testing.T) {
		out, err := RelativeStrength([]float64{5, 5, 5}, 2)
		require.NoError(t, err)
		assert.Equal(t, 100.0, out[2])
	})

	t.Run("no gains is 0", func(t *testing.T) {
		out, err := RelativeStrength([]float64{4, 3, 2, 1}, 3)
		require.NoError(t, err)
		assert.Equal(t, 0.0, out[3])
	})

	t.Run("bounded", func(t *testing.T) {
		out, err := RelativeStrength(closes, 4)
		require.NoError(t, err)
		for i, v := range out {
			if i < 4 {
				assert.True(t, math.IsNaN(v))
				continue
			}
			assert.GreaterOrEqual(t, v, 0.0)
			assert.LessOrEqual(t, v, 100.0)
		}
	})

	t.Run("reset functionality", func(t *testing.T) {
		r := NewRSI(1)
		r.Update(1)
		r.Update(2)
		assert.True(t, r.Ready())
		r.Reset()
		assert.False(t, r.Ready())
		r.Update(3)
		assert.False(t, r.Ready())
	})

	_, err := RelativeStrength(closes, 0)
	assert.Error(t, err)
}

func TestBollingerBands(t *testing.T) {
	upper, middle, lower, err := BollingerBands(closes, 3, 2)
	require.NoError(t, err)
	require.Len(t, upper, len(closes))

	sd, err := RollingStdDev(closes, 3)
	require.NoError(t, err)
	ma, err := MovingAverage(closes, 3)
	require.NoError(t, err)

	for i := range closes {
		if i < 2 {
			assert.True(t, math.IsNaN(upper[i]))
			assert.True(t, math.IsNaN(lower[i]))
			continue
		}
		assert.InDelta(t, ma[i], middle[i], 1e-12)
		assert.InDelta(t, ma[i]+2*sd[i], upper[i], 1e-12)
		assert.InDelta(t, ma[i]-2*sd[i], lower[i], 1e-12)
		assert.GreaterOrEqual(t, upper[i], lower[i])
	}

	_, _, _, err = BollingerBands(closes, 1, 2)
	assert.Error(t, err)
	_, _, _, err = BollingerBands(closes, 3, -1)
	assert.Error(t, err)
	_, _, _, err = BollingerBands(closes, 3, math.NaN())
	assert.Error(t, err)
}

func TestIndicatorInterface(t *testing.T) {
	var _ Indicator = &SMA{}
	var _ Indicator = &StdDev{}
	var _ Indicator = &RSI{}
	var _ Indicator = &Bollinger{}

	t.Run("all indicators have consistent interface", func(t *testing.T) {
		inds := []Indicator{
			NewSMA(3),
			NewStdDev(3),
			NewRSI(3),
			NewBollinger(3, 2),
		}

		for _, ind := range inds {
			assert.False(t, ind.Ready(), "indicator %s should not be ready initially", ind.Name())

			for _, c := range closes {
				ind.Update(c)
			}
			assert.True(t, ind.Ready(), "indicator %s should be ready after warmup", ind.Name())
			assert.False(t, math.IsNaN(ind.Value()), "indicator %s should have a value", ind.Name())

			ind.Reset()
			assert.False(t, ind.Ready(), "indicator %s should not be ready after reset", ind.Name())
		}
	})

	t.Run("ready exactly at warmup", func(t *testing.T) {
		for _, ind := range []Indicator{NewSMA(4), NewStdDev(4), NewRSI(4), NewBollinger(4, 1)} {
			for i := 0; i < ind.Warmup(); i++ {
				assert.False(t, ind.Ready(), "%s before update %d", ind.Name(), i)
				ind.Update(closes[i])
			}
			assert.True(t, ind.Ready(), ind.Name())
		}
	})
}

func TestStreamingVsBatchConsistency(t *testing.T) {
	ma := NewSMA(5)
	for _, c := range closes {
		ma.Update(c)
	}
	batch, err := MovingAverage(closes, 5)
	require.NoError(t, err)
	assert.InDelta(t, batch[len(batch)-1], ma.Value(), 1e-12)

	r := NewRSI(5)
	for _, c := range closes {
		r.Update(c)
	}
	rb, err := RelativeStrength(closes, 5)
	require.NoError(t, err)
	assert.InDelta(t, rb[len(rb)-1], r.Value(), 1e-12)
}
