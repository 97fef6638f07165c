package bench

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// Histogram bounds in microseconds: 1µs to 1 minute, 3 significant figures.
const (
	histogramMin     = 1
	histogramMax     = 60_000_000
	histogramSigFigs = 3
)

// Recorder collects latencies for one client run.
//
// Recorder is safe for concurrent use. Counters are atomic and the
// histogram is mutex protected since RecordValue is not thread-safe.
type Recorder struct {
	hist   *hdrhistogram.Histogram
	histMu sync.Mutex

	total  atomic.Int64
	failed atomic.Int64
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		hist: hdrhistogram.New(histogramMin, histogramMax, histogramSigFigs),
	}
}

// Record adds one call. Failed calls count towards Errors but their
// latency is not recorded.
func (r *Recorder) Record(d time.Duration, err error) {
	r.total.Add(1)
	if err != nil {
		r.failed.Add(1)
		return
	}

	micros := d.Microseconds()
	if micros < histogramMin {
		micros = histogramMin
	}
	if micros > histogramMax {
		micros = histogramMax
	}

	r.histMu.Lock()
	r.hist.RecordValue(micros)
	r.histMu.Unlock()
}

// Stats summarizes one client's run.
type Stats struct {
	Client     string        `json:"client" yaml:"client"`
	Requests   int64         `json:"requests" yaml:"requests"`
	Errors     int64         `json:"errors" yaml:"errors"`
	Min        time.Duration `json:"min" yaml:"min"`
	Mean       time.Duration `json:"mean" yaml:"mean"`
	P50        time.Duration `json:"p50" yaml:"p50"`
	P90        time.Duration `json:"p90" yaml:"p90"`
	P99        time.Duration `json:"p99" yaml:"p99"`
	Max        time.Duration `json:"max" yaml:"max"`
	Elapsed    time.Duration `json:"elapsed" yaml:"elapsed"`
	Throughput float64       `json:"throughput" yaml:"throughput"`
}

// Snapshot computes the statistics for a run that took elapsed.
func (r *Recorder) Snapshot(client string, elapsed time.Duration) Stats {
	r.histMu.Lock()
	defer r.histMu.Unlock()

	us := func(v int64) time.Duration { return time.Duration(v) * time.Microsecond }

	s := Stats{
		Client:   client,
		Requests: r.total.Load(),
		Errors:   r.failed.Load(),
		Elapsed:  elapsed,
	}
	if r.hist.TotalCount() > 0 {
		s.Min = us(r.hist.Min())
		s.Mean = us(int64(r.hist.Mean()))
		s.P50 = us(r.hist.ValueAtQuantile(50))
		s.P90 = us(r.hist.ValueAtQuantile(90))
		s.P99 = us(r.hist.ValueAtQuantile(99))
		s.Max = us(r.hist.Max())
	}
	if elapsed > 0 {
		s.Throughput = float64(s.Requests-s.Errors) / elapsed.Seconds()
	}
	return s
}
