// Package strategies turns a price series into Buy/Sell/None signals.
//
// Three strategies share one SignalStrategy interface and are selected by
// Kind. ComputeSignals is pure: the same series and parameters always
// produce the same SignalSeries.
package strategies

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/rustyeddy/cryptobot/market"
	"github.com/rustyeddy/cryptobot/pkg/errs"
)

// Kind names a strategy.
type Kind string

const (
	KindSMACrossover Kind = "sma_crossover"
	KindRSI          Kind = "rsi"
	KindBollinger    Kind = "bollinger"
)

// SignalStrategy computes indicators and signals over closes.
type SignalStrategy interface {
	Kind() Kind

	// Name is a human label including parameters, e.g. "SMA(20/50)".
	Name() string

	// Validate rejects parameters with a *errs.ConfigError.
	Validate() error

	// Warmup returns how many leading bars have no complete indicator set
	// and are dropped from the output.
	Warmup() int

	// Evaluate returns one Indicators and one Signal per close. Entries
	// before Warmup() are undefined and are removed by Truncate.
	Evaluate(closes []float64) ([]Indicators, []Signal)
}

// Factory builds a strategy from parameters.
type Factory func(p Params) SignalStrategy

var (
	mu       sync.RWMutex
	registry = map[Kind]Factory{
		KindSMACrossover: func(p Params) SignalStrategy { return NewSMACrossover(p.SMA) },
		KindRSI:          func(p Params) SignalStrategy { return NewRSI(p.RSI) },
		KindBollinger:    func(p Params) SignalStrategy { return NewBollinger(p.Bollinger) },
	}

	aliases = map[string]Kind{
		"sma_crossover": KindSMACrossover,
		"sma-crossover": KindSMACrossover,
		"sma-cross":     KindSMACrossover,
		"smacross":      KindSMACrossover,
		"sma":           KindSMACrossover,
		"rsi":           KindRSI,
		"bollinger":     KindBollinger,
		"bb":            KindBollinger,
	}
)

// Register adds or replaces the factory for kind.
func Register(kind Kind, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	registry[kind] = f
}

// Kinds lists the registered strategy kinds in sorted order.
func Kinds() []Kind {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]Kind, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ParseKind resolves a strategy name, accepting a few common spellings.
func ParseKind(name string) (Kind, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if k, ok := aliases[key]; ok {
		return k, nil
	}
	mu.RLock()
	_, ok := registry[Kind(key)]
	mu.RUnlock()
	if ok {
		return Kind(key), nil
	}
	return "", errs.Configf("strategy.name", "unknown strategy %q (supported: %s)", name, kindList())
}

func kindList() string {
	kinds := Kinds()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}

// New builds and validates the strategy for kind.
func New(kind Kind, p Params) (SignalStrategy, error) {
	mu.RLock()
	f, ok := registry[kind]
	mu.RUnlock()
	if !ok {
		return nil, errs.Configf("strategy.name", "unknown strategy %q (supported: %s)", kind, kindList())
	}
	s := f(p)
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// StrategyByName is New after ParseKind.
func StrategyByName(name string, p Params) (SignalStrategy, error) {
	kind, err := ParseKind(name)
	if err != nil {
		return nil, err
	}
	return New(kind, p)
}

// ComputeSignals validates the inputs, evaluates the strategy for kind over
// series and truncates the warm-up rows.
func ComputeSignals(series market.Series, kind Kind, p Params) (SignalSeries, error) {
	s, err := New(kind, p)
	if err != nil {
		return nil, err
	}
	return Run(s, series)
}

// Run evaluates s over series.
//
// The output has exactly len(series) - s.Warmup() rows. A series shorter
// than the warm-up window is a DataError wrapping errs.ErrInsufficientData;
// a series exactly as long yields an empty, non-nil result.
func Run(s SignalStrategy, series market.Series) (SignalSeries, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if err := series.Validate(); err != nil {
		return nil, err
	}
	warmup := s.Warmup()
	if len(series) < warmup {
		return nil, &errs.DataError{
			Index:  -1,
			Reason: fmt.Sprintf("%s needs at least %d bars, got %d", s.Name(), warmup, len(series)),
			Err:    errs.ErrInsufficientData,
		}
	}

	ind, sig := s.Evaluate(series.Closes())
	rows := make(SignalSeries, len(series))
	for i, b := range series {
		rows[i] = SignalBar{Bar: b, Indicators: ind[i], Signal: sig[i]}
	}
	return Truncate(rows, warmup), nil
}

// Truncate drops the first warmup rows and returns a fresh slice so the
// caller never aliases rows that were cut.
func Truncate(rows SignalSeries, warmup int) SignalSeries {
	if warmup < 0 {
		warmup = 0
	}
	if warmup >= len(rows) {
		return SignalSeries{}
	}
	out := make(SignalSeries, len(rows)-warmup)
	copy(out, rows[warmup:])
	return out
}
