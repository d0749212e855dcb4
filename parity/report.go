package parity

import (
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/stat"
)

// Report holds the outcome of one parity run.
type Report struct {
	Ticks     int
	Particles int
	Fields    []FieldReport

	// Pass is true when every gated field passed.
	Pass bool
}

// FieldReport holds the error summary for one compared field.
type FieldReport struct {
	Field string

	MaxAbs  float64
	MaxRel  float64
	MeanRel float64
	P99Rel  float64

	// Gated fields fail the run when out of threshold; ungated fields
	// (position, velocity) are informational.
	Gated      bool
	Pass       bool
	Violations int

	Offenders []Offender
}

// Offender is one out-of-threshold particle, ranked by relative error.
type Offender struct {
	Index    int
	Serial   float64
	Parallel float64
	AbsErr   float64
	RelErr   float64
}

// relErrStats summarizes a relative-error sample. The slice is sorted
// in place.
func relErrStats(relErrs []float64) (mean, p99 float64) {
	if len(relErrs) == 0 {
		return 0, 0
	}
	mean = stat.Mean(relErrs, nil)
	sort.Float64s(relErrs)
	p99 = stat.Quantile(0.99, stat.Empirical, relErrs, nil)
	return mean, p99
}

// topOffenders returns the k worst offenders by relative error.
func topOffenders(offenders []Offender, k int) []Offender {
	sort.Slice(offenders, func(i, j int) bool {
		return offenders[i].RelErr > offenders[j].RelErr
	})
	if k > 0 && len(offenders) > k {
		offenders = offenders[:k]
	}
	return offenders
}

// Log emits the report through slog: one summary line, one line per
// field, and the ranked offenders of every failed field.
func (r *Report) Log() {
	slog.Info("parity run",
		"ticks", r.Ticks,
		"particles", r.Particles,
		"pass", r.Pass,
	)

	for _, f := range r.Fields {
		attrs := []any{
			"field", f.Field,
			"max_abs", f.MaxAbs,
			"max_rel", f.MaxRel,
			"mean_rel", f.MeanRel,
			"p99_rel", f.P99Rel,
		}
		if !f.Gated {
			slog.Info("parity field (informational)", attrs...)
			continue
		}
		attrs = append(attrs, "pass", f.Pass, "violations", f.Violations)
		if f.Pass {
			slog.Info("parity field", attrs...)
			continue
		}
		slog.Error("parity field", attrs...)
		for _, o := range f.Offenders {
			slog.Error("parity offender",
				"field", f.Field,
				"particle", o.Index,
				"serial", o.Serial,
				"parallel", o.Parallel,
				"abs_err", o.AbsErr,
				"rel_err", o.RelErr,
			)
		}
	}
}

// fieldReportCSV is the flat CSV row for one field.
type fieldReportCSV struct {
	Field      string  `csv:"field"`
	MaxAbs     float64 `csv:"max_abs"`
	MaxRel     float64 `csv:"max_rel"`
	MeanRel    float64 `csv:"mean_rel"`
	P99Rel     float64 `csv:"p99_rel"`
	Gated      bool    `csv:"gated"`
	Pass       bool    `csv:"pass"`
	Violations int     `csv:"violations"`
}

// WriteCSV writes the per-field summary to path.
func (r *Report) WriteCSV(path string) error {
	rows := make([]fieldReportCSV, len(r.Fields))
	for i, f := range r.Fields {
		rows[i] = fieldReportCSV{
			Field:      f.Field,
			MaxAbs:     f.MaxAbs,
			MaxRel:     f.MaxRel,
			MeanRel:    f.MeanRel,
			P99Rel:     f.P99Rel,
			Gated:      f.Gated,
			Pass:       f.Pass,
			Violations: f.Violations,
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating parity report: %w", err)
	}
	defer f.Close()

	if err := gocsv.Marshal(rows, f); err != nil {
		return fmt.Errorf("writing parity report: %w", err)
	}
	return nil
}
