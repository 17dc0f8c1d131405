package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/danmuck/pgmctl/internal/pgm"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	decodeFrames = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pgmctl",
			Subsystem: "decode",
			Name:      "frames_total",
			Help:      "Frames accepted by the decoder.",
		},
		[]string{"origin"},
	)
	decodeErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pgmctl",
			Subsystem: "decode",
			Name:      "errors_total",
			Help:      "Failed decodes by error kind.",
		},
		[]string{"kind"},
	)
	encodeFiles = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pgmctl",
			Subsystem: "encode",
			Name:      "files_total",
			Help:      "Frame files written by the encoder.",
		},
		[]string{"origin"},
	)
	encodeErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pgmctl",
			Subsystem: "encode",
			Name:      "errors_total",
			Help:      "Failed encodes by error kind.",
		},
		[]string{"kind"},
	)
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pgmctl",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pgmctl",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(decodeFrames, decodeErrors, encodeFiles, encodeErrors, httpRequests, httpDuration)
	})
}

// RecordDecode counts the frames of one decode call, including those accepted
// before a failure. origin must come from a fixed set such as "file" or
// "stream"; never pass a path.
func RecordDecode(origin string, frames int, err error) {
	RegisterMetrics()
	decodeFrames.WithLabelValues(origin).Add(float64(frames))
	if err != nil {
		decodeErrors.WithLabelValues(pgm.Kind(err)).Inc()
	}
}

func RecordEncode(origin string, files int, err error) {
	RegisterMetrics()
	encodeFiles.WithLabelValues(origin).Add(float64(files))
	if err != nil {
		encodeErrors.WithLabelValues(pgm.Kind(err)).Inc()
	}
}

func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(method, path, statusLabel).Observe(duration.Seconds())
}
