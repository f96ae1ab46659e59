package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var HttpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "http_requests_total",
	Help: "Total number of requests labelled by path and status",
}, []string{"path", "status"})

var countJobsInQueue = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "count_ingest_jobs_in_queue",
	Help: "Number of ingestion jobs waiting for the worker",
})

var activeWorkerCount = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "active_worker_count",
	Help: "Number of workers currently running an ingestion",
})

var documentsScraped = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "documents_scraped_total",
	Help: "Documents returned by source adapters after de-duplication",
}, []string{"source"})

var pointsStored = promauto.NewCounter(prometheus.CounterOpts{
	Name: "points_stored_total",
	Help: "Points upserted into the vector store",
})

var answerCache = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "answer_cache_lookups_total",
	Help: "Answer cache lookups labelled by result",
}, []string{"result"})

var ingestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "ingest_run_duration_seconds",
	Help:    "Total time spent in one ingestion run.",
	Buckets: []float64{1, 5, 15, 30, 60, 120, 300},
}, []string{"status"})

var dependencyLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "dependency_latency_seconds",
	Help:    "Latency of external service calls.",
	Buckets: []float64{.05, .1, .25, .5, 1, 2, 5, 10},
}, []string{"service"})

type HttpStatusRecorder struct {
	http.ResponseWriter
	Status int
}

func (r *HttpStatusRecorder) WriteHeader(code int) {
	r.Status = code
	r.ResponseWriter.WriteHeader(code)
}

// Flush keeps streaming responses working through the recorder.
func (r *HttpStatusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func IncrementJobsInQueue() {
	countJobsInQueue.Inc()
}

func DecrementJobsInQueue() {
	countJobsInQueue.Dec()
}

func IncrementActiveWorkerCount() {
	activeWorkerCount.Inc()
}

func DecrementActiveWorkerCount() {
	activeWorkerCount.Dec()
}

func AddDocumentsScraped(source string, n int) {
	documentsScraped.WithLabelValues(source).Add(float64(n))
}

func AddPointsStored(n int) {
	pointsStored.Add(float64(n))
}

func CacheHit() {
	answerCache.WithLabelValues("hit").Inc()
}

func CacheMiss() {
	answerCache.WithLabelValues("miss").Inc()
}

func CaptureExecutionMetrics(label string, timeElapsed time.Duration) {
	dependencyLatency.WithLabelValues(label).Observe(timeElapsed.Seconds())
}

func CaptureIngestMetrics(status string, timeElapsed time.Duration) {
	ingestDuration.WithLabelValues(status).Observe(timeElapsed.Seconds())
}
