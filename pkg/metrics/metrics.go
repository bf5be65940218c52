// Package metrics holds the Prometheus instruments of the recorder.
//
// Every method is safe on a nil *Metrics so components can run without
// instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "libstock"

type Metrics struct {
	RecordsDecoded *prometheus.CounterVec
	RecordsEncoded *prometheus.CounterVec
	CodecErrors    *prometheus.CounterVec

	FramesWritten prometheus.Counter
	BytesWritten  prometheus.Counter
	WriteErrors   prometheus.Counter
	QueueDropped  prometheus.Counter

	MessagesPublished *prometheus.CounterVec
	MessagesReceived  *prometheus.CounterVec

	// RecordLagMs is received time minus exchange time of each record.
	RecordLagMs prometheus.Histogram
}

// New registers every instrument on reg. Pass prometheus.DefaultRegisterer
// to expose them on the default /metrics handler.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		RecordsDecoded: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_decoded_total",
			Help:      "Records decoded, by kind",
		}, []string{"kind"}),
		RecordsEncoded: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_encoded_total",
			Help:      "Records encoded, by kind",
		}, []string{"kind"}),
		CodecErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "codec_errors_total",
			Help:      "Encode or decode failures, by kind and operation",
		}, []string{"kind", "op"}),

		FramesWritten: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "file_frames_written_total",
			Help:      "Length-prefixed frames appended to dated files",
		}),
		BytesWritten: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "file_bytes_written_total",
			Help:      "Bytes appended to dated files, prefixes included",
		}),
		WriteErrors: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "file_write_errors_total",
			Help:      "Entries skipped because the file write failed",
		}),
		QueueDropped: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "file_queue_rejected_total",
			Help:      "Entries rejected before queueing",
		}),

		MessagesPublished: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_published_total",
			Help:      "Payloads published, by transport",
		}, []string{"transport"}),
		MessagesReceived: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_received_total",
			Help:      "Payloads received, by transport",
		}, []string{"transport"}),

		RecordLagMs: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "record_lag_ms",
			Help:      "Received minus exchange timestamp in milliseconds",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 5000},
		}),
	}
}

func (m *Metrics) Decoded(kind string) {
	if m == nil {
		return
	}
	m.RecordsDecoded.WithLabelValues(kind).Inc()
}

func (m *Metrics) Encoded(kind string) {
	if m == nil {
		return
	}
	m.RecordsEncoded.WithLabelValues(kind).Inc()
}

// CodecError counts a failure; op is "encode" or "decode".
func (m *Metrics) CodecError(kind, op string) {
	if m == nil {
		return
	}
	m.CodecErrors.WithLabelValues(kind, op).Inc()
}

// FrameWritten counts one frame of n bytes including its prefix.
func (m *Metrics) FrameWritten(n int) {
	if m == nil {
		return
	}
	m.FramesWritten.Inc()
	m.BytesWritten.Add(float64(n))
}

func (m *Metrics) WriteFailed() {
	if m == nil {
		return
	}
	m.WriteErrors.Inc()
}

func (m *Metrics) Rejected() {
	if m == nil {
		return
	}
	m.QueueDropped.Inc()
}

func (m *Metrics) Published(transport string) {
	if m == nil {
		return
	}
	m.MessagesPublished.WithLabelValues(transport).Inc()
}

func (m *Metrics) Received(transport string) {
	if m == nil {
		return
	}
	m.MessagesReceived.WithLabelValues(transport).Inc()
}

func (m *Metrics) Lag(ms int64) {
	if m == nil || ms < 0 {
		return
	}
	m.RecordLagMs.Observe(float64(ms))
}
