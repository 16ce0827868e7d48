package strategies

// CrossoverGrid returns one Params per (fast, slow) pair with fast < slow,
// fast-major. Other sections are copied from base.
func CrossoverGrid(base Params, fasts, slows []int) []Params {
	var out []Params
	for _, f := range fasts {
		for _, s := range slows {
			if f <= 0 || f >= s {
				continue
			}
			p := base
			p.SMA = SMAParams{Fast: f, Slow: s}
			out = append(out, p)
		}
	}
	return out
}

// RSIGrid returns one Params per (period, oversold, overbought) triple with
// oversold < overbought.
func RSIGrid(base Params, periods []int, oversold, overbought []float64) []Params {
	var out []Params
	for _, n := range periods {
		for _, lo := range oversold {
			for _, hi := range overbought {
				if lo >= hi {
					continue
				}
				p := base
				p.RSI = RSIParams{Period: n, Oversold: lo, Overbought: hi}
				out = append(out, p)
			}
		}
	}
	return out
}

// BollingerGrid returns one Params per (period, std-devs) pair.
func BollingerGrid(base Params, periods []int, stdDevs []float64) []Params {
	var out []Params
	for _, n := range periods {
		for _, k := range stdDevs {
			p := base
			p.Bollinger = BollingerParams{Period: n, StdDevs: k}
			out = append(out, p)
		}
	}
	return out
}

// Range returns from, from+step, ... up to and including to.
func Range(from, to, step int) []int {
	if step <= 0 || to < from {
		return nil
	}
	out := make([]int, 0, (to-from)/step+1)
	for v := from; v <= to; v += step {
		out = append(out, v)
	}
	return out
}
