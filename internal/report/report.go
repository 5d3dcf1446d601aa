package report

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/gocarina/gocsv"

	"stock-sentiment-roi/internal/research/dataset"
	"stock-sentiment-roi/internal/types"
)

const (
	FormatCSV  = "csv"
	FormatJSON = "json"
)

// WriteCSV writes rows with a header line. An empty table still gets the header.
func WriteCSV(w io.Writer, rows []types.AnalysisRow) error {
	if rows == nil {
		rows = []types.AnalysisRow{}
	}
	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// WriteJSON writes rows as an indented JSON array.
func WriteJSON(w io.Writer, rows []types.AnalysisRow) error {
	if rows == nil {
		rows = []types.AnalysisRow{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rows); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}

// Save writes rows to path in the given format, creating parent directories.
func Save(path, format string, rows []types.AnalysisRow) error {
	var write func(io.Writer, []types.AnalysisRow) error
	switch strings.ToLower(format) {
	case FormatCSV, "":
		write = WriteCSV
	case FormatJSON:
		write = WriteJSON
	default:
		return fmt.Errorf("%w: unknown output format %q", types.ErrConfiguration, format)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	if err := write(f, rows); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// LabelStats is the mean forward return of the days a label dominated.
type LabelStats struct {
	Label   types.Label
	Days    int
	MeanROI float64
}

// Stats summarizes a run for the CLI.
type Stats struct {
	RunID             string
	KeysRequested     int
	KeysWithSentiment int
	KeysWithReturns   int
	JoinedRows        int
	Observations      int
	SentimentFailed   int
	ReturnsSkipped    int
	// ByDominant has one entry per label in types.Labels order, including
	// labels that never dominated.
	ByDominant []LabelStats
	// Correlation is Pearson's r between net sentiment (positive minus
	// negative share) and ROI. HasCorrelation is false with fewer than two
	// rows or zero variance.
	Correlation    float64
	HasCorrelation bool
}

// Summarize computes run statistics from a pipeline result.
func Summarize(res *dataset.Result) Stats {
	if res == nil {
		return Stats{ByDominant: emptyByDominant()}
	}
	st := Stats{
		RunID:             res.RunID,
		KeysRequested:     res.KeysRequested,
		KeysWithSentiment: len(res.Summary),
		KeysWithReturns:   len(res.Returns),
		JoinedRows:        len(res.Rows),
		Observations:      len(res.Observations),
		SentimentFailed:   len(res.SentimentFailed),
		ReturnsSkipped:    len(res.ReturnsSkipped),
	}

	sums := make(map[types.Label]float64, len(types.Labels))
	counts := make(map[types.Label]int, len(types.Labels))
	net := make([]float64, 0, len(res.Rows))
	roi := make([]float64, 0, len(res.Rows))
	for _, r := range res.Rows {
		l := dominant(r)
		sums[l] += r.ROI
		counts[l]++
		net = append(net, r.Positive-r.Negative)
		roi = append(roi, r.ROI)
	}

	st.ByDominant = make([]LabelStats, 0, len(types.Labels))
	for _, l := range types.Labels {
		ls := LabelStats{Label: l, Days: counts[l]}
		if ls.Days > 0 {
			ls.MeanROI = sums[l] / float64(ls.Days)
		}
		st.ByDominant = append(st.ByDominant, ls)
	}

	st.Correlation, st.HasCorrelation = pearson(net, roi)
	return st
}

func emptyByDominant() []LabelStats {
	out := make([]LabelStats, 0, len(types.Labels))
	for _, l := range types.Labels {
		out = append(out, LabelStats{Label: l})
	}
	return out
}

func dominant(r types.AnalysisRow) types.Label {
	return types.SentimentSummaryRow{
		Positive: r.Positive,
		Neutral:  r.Neutral,
		Negative: r.Negative,
		Unknown:  r.Unknown,
	}.Dominant()
}

func pearson(x, y []float64) (float64, bool) {
	n := len(x)
	if n < 2 || n != len(y) {
		return 0, false
	}
	var mx, my float64
	for i := range x {
		mx += x[i]
		my += y[i]
	}
	mx /= float64(n)
	my /= float64(n)

	var cov, vx, vy float64
	for i := range x {
		dx, dy := x[i]-mx, y[i]-my
		cov += dx * dy
		vx += dx * dx
		vy += dy * dy
	}
	if vx == 0 || vy == 0 {
		return 0, false
	}
	return cov / math.Sqrt(vx*vy), true
}
