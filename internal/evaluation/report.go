package evaluation

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// WriteSummary prints one block per persona followed by the quality bars.
//
//nolint:errcheck // console output
func (r *Report) WriteSummary(w io.Writer, opts Options) {
	for _, res := range r.Results {
		fmt.Fprintf(w, "\n[evaluate] Persona: %s\n", res.Persona)
		fmt.Fprintf(w, "           p95 latency: %s\n", latencyText(res))
		fmt.Fprintf(w, "           error rate : %.2f%%\n", res.ErrorRate*100)
		fmt.Fprintf(w, "           plan ids   : [%s]\n", strings.Join(res.PlanIDs, ", "))
		if res.Coverage != nil {
			fmt.Fprintf(w, "           coverage   : %.0f%%\n", *res.Coverage)
		}
		if res.Diversity != nil {
			fmt.Fprintf(w, "           diversity  : %.2f\n", *res.Diversity)
		}
		if res.LastError != "" {
			fmt.Fprintf(w, "           last error : %s\n", res.LastError)
		}
	}

	fmt.Fprintln(w, "\n================= QUALITY BARS =================")
	fmt.Fprintf(w, "p95 latency (worst across personas): %d ms  [%s]  (bar <= %d ms)\n",
		r.WorstP95.Milliseconds(), passText(r.PassLatency), opts.P95Bar.Milliseconds())
	fmt.Fprintf(w, "Error rate (avg across personas)   : %.2f%% [%s]  (bar <= %.2f%%)\n",
		r.AvgErrorRate*100, passText(r.PassErrors), opts.ErrorBudget*100)
	fmt.Fprintln(w, "================================================")
}

// WriteCSV writes one row per persona. Missing coverage or diversity is an
// empty cell and plan ids are joined with "|".
func (r *Report) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"persona", "latency_p95_ms", "error_rate", "coverage_pct", "diversity", "plan_ids"}); err != nil {
		return err
	}
	for _, res := range r.Results {
		row := []string{
			res.Persona,
			strconv.FormatInt(res.LatencyP95.Milliseconds(), 10),
			strconv.FormatFloat(res.ErrorRate, 'f', 4, 64),
			optional(res.Coverage, 0),
			optional(res.Diversity, 2),
			strings.Join(res.PlanIDs, "|"),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func latencyText(res Result) string {
	if res.Successes == 0 {
		return "n/a (no successful calls)"
	}
	return fmt.Sprintf("%d ms", res.LatencyP95.Round(time.Millisecond).Milliseconds())
}

func passText(ok bool) string {
	if ok {
		return "PASS"
	}
	return "FAIL"
}

func optional(v *float64, prec int) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', prec, 64)
}
