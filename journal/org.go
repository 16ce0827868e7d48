package journal

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"text/template"
	"time"

	"github.com/pkg/errors"
)

// FormatTradeOrg renders a fill as an Org-mode heading with the structured
// facts in a PROPERTIES drawer.
func FormatTradeOrg(t TradeRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*** %s %.4f (%s #%d)\n", t.Side, t.Price, shortID(t.RunID), t.Seq)
	b.WriteString(":PROPERTIES:\n")
	fmt.Fprintf(&b, ":RUN_ID: %s\n", t.RunID)
	fmt.Fprintf(&b, ":SEQ: %d\n", t.Seq)
	fmt.Fprintf(&b, ":BAR: %d\n", t.Index)
	fmt.Fprintf(&b, ":TIME: %s\n", t.Time.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, ":SIDE: %s\n", t.Side)
	fmt.Fprintf(&b, ":PRICE: %.6f\n", t.Price)
	fmt.Fprintf(&b, ":EQUITY: %.6f\n", t.Equity)
	b.WriteString(":END:\n")
	return b.String()
}

// FormatTradesOrg renders multiple fills separated by blank lines.
func FormatTradesOrg(trades []TradeRecord) string {
	var b strings.Builder
	for i, t := range trades {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(FormatTradeOrg(t))
	}
	return b.String()
}

func shortID(full string) string {
	if len(full) <= 8 {
		return full
	}
	return full[:8]
}

var backtestOrgFuncs = template.FuncMap{
	"mul100": func(x float64) float64 { return x * 100.0 },
	"orTime": func(t time.Time) time.Time {
		if t.IsZero() {
			return time.Now()
		}
		return t
	},
	"trades": FormatTradesOrg,
}

var backtestOrg = template.Must(template.New("backtest").Funcs(backtestOrgFuncs).Parse(BacktestOrgTemplate))

type orgView struct {
	BacktestRun
	Fills []TradeRecord
}

// RenderBacktestOrg renders a run summary and its fills as an Org entry.
func RenderBacktestOrg(run BacktestRun, fills []TradeRecord) (string, error) {
	buf := new(bytes.Buffer)
	if err := backtestOrg.Execute(buf, orgView{BacktestRun: run, Fills: fills}); err != nil {
		return "", errors.Wrap(err, "render org")
	}
	return buf.String(), nil
}

// WriteBacktestOrg renders the run to its OrgPath.
func (r BacktestRun) WriteBacktestOrg(fills []TradeRecord) error {
	if r.OrgPath == "" {
		return errors.New("org path not set")
	}
	s, err := RenderBacktestOrg(r, fills)
	if err != nil {
		return err
	}
	return errors.Wrapf(os.WriteFile(r.OrgPath, []byte(s), 0644), "write %s", r.OrgPath)
}

const BacktestOrgTemplate = `* BACKTEST: {{.Strategy}} {{if .Dataset}}{{.Dataset}}{{else}}(dataset?){{end}}
:PROPERTIES:
:RUN_ID:      {{if .RunID}}{{.RunID}}{{else}}(run-id?){{end}}
:STRATEGY:    {{.Kind}}
:TIMEFRAME:   {{if .Timeframe}}{{.Timeframe}}{{else}}(timeframe?){{end}}
:START_DATE:  {{.Start.Format "2006-01-02"}}
:END_DATE:    {{.End.Format "2006-01-02"}}
:BARS:        {{.Bars}}
:FEE_RATE:    {{printf "%g" .FeeRate}}
:SLIPPAGE:    {{printf "%g" .SlippageRate}}
:FINAL_EQ:    {{printf "%.6f" .FinalEquity}}
:RETURN_PCT:  {{printf "%.2f" .ReturnPct}}
:MAX_DD:      {{printf "%.6f" .MaxDrawdown}}
:TRADES:      {{.Trades}}
:ROUND_TRIPS: {{.RoundTrips}}
:WINS:        {{.Wins}}
:LOSSES:      {{.Losses}}
:OPEN:        {{if .OpenPosition}}yes{{else}}no{{end}}
:CREATED:     [{{(orTime .Created).Format "2006-01-02 Mon 15:04"}}]
:END:

** Strategy Parameters
{{- if .Params}}
#+begin_src json
{{printf "%s" .Params}}
#+end_src
{{- else}}
# (no parameters recorded)
{{- end}}

** Performance Summary
- Final equity:     *{{printf "%.6f" .FinalEquity}}*
- Return:           *{{printf "%.2f" .ReturnPct}}%*
- Max drawdown:     *{{printf "%.2f" (mul100 .MaxDrawdown)}}%*
- Win rate:         *{{printf "%.2f" (mul100 .WinRate)}}%*

** Trade Distribution
| Outcome | Count |
|---------+-------|
| Wins    | {{.Wins}} |
| Losses  | {{.Losses}} |
| Closed  | {{.RoundTrips}} |
| Fills   | {{.Trades}} |

{{- if .Fills}}

** Fills
{{trades .Fills}}
{{- end}}

{{- if .Notes }}

** Observations
{{- range .Notes }}
- {{.}}
{{- end }}
{{- end }}
`
