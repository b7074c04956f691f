package stats

import (
	"fmt"
	"io"
	"math"
	"slices"
	"time"

	"github.com/aybabtme/uniplot/histogram"
	"gonum.org/v1/gonum/stat"
)

const (
	Epsilon = 1e-6
)

func FuzzyEqual(a, b float64) bool {
	return math.Abs(a-b) < Epsilon
}

// Sample is one finished engine search.
type Sample struct {
	Depth   int
	Column  int
	Score   int
	Nodes   uint64
	Elapsed time.Duration
}

// SearchLog collects the searches of a game.
type SearchLog struct {
	samples []Sample
}

func (l *SearchLog) Add(s Sample) {
	l.samples = append(l.samples, s)
}

func (l *SearchLog) Reset() {
	l.samples = l.samples[:0]
}

func (l *SearchLog) Len() int {
	return len(l.samples)
}

func (l *SearchLog) Samples() []Sample {
	return slices.Clone(l.samples)
}

// Summary of a SearchLog. Times are in seconds.
type Summary struct {
	Searches   int
	TotalNodes uint64
	MeanTime   float64
	StdevTime  float64
	MedianTime float64
	// CI95 is the half-width of the 95% confidence interval of MeanTime.
	CI95    float64
	MeanNPS float64
}

func (l *SearchLog) seconds() []float64 {
	secs := make([]float64, len(l.samples))
	for i, s := range l.samples {
		secs[i] = s.Elapsed.Seconds()
	}
	return secs
}

func (l *SearchLog) Summarize() Summary {
	sum := Summary{Searches: len(l.samples)}
	if sum.Searches == 0 {
		return sum
	}
	secs := l.seconds()
	nps := make([]float64, 0, len(l.samples))
	for i, s := range l.samples {
		sum.TotalNodes += s.Nodes
		if secs[i] > 0 {
			nps = append(nps, float64(s.Nodes)/secs[i])
		}
	}
	if sum.Searches > 1 {
		sum.MeanTime, sum.StdevTime = stat.MeanStdDev(secs, nil)
		sum.CI95 = ZVal(95) * sum.StdevTime / math.Sqrt(float64(sum.Searches))
	} else {
		sum.MeanTime = secs[0]
	}
	slices.Sort(secs)
	sum.MedianTime = stat.Quantile(0.5, stat.Empirical, secs, nil)
	if len(nps) > 0 {
		sum.MeanNPS = stat.Mean(nps, nil)
	}
	return sum
}

func (s Summary) String() string {
	return fmt.Sprintf("%d searches, %d nodes, mean %.3fs ± %.3fs (stdev %.3fs, median %.3fs), %.0f nodes/s",
		s.Searches, s.TotalNodes, s.MeanTime, s.CI95, s.StdevTime, s.MedianTime, s.MeanNPS)
}

// FprintHistogram writes a histogram of search times to w.
func (l *SearchLog) FprintHistogram(w io.Writer, bins int) error {
	if len(l.samples) == 0 {
		_, err := io.WriteString(w, "no searches yet\n")
		return err
	}
	hist := histogram.Hist(bins, l.seconds())
	return histogram.Fprintf(w, hist, histogram.Linear(20), func(v float64) string {
		return fmt.Sprintf("%.3fs", v)
	})
}
