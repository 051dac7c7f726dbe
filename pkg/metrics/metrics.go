package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Room registry
	RoomsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "classroom_rooms_active",
			Help: "Rooms currently held in the registry",
		},
	)

	RoomsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "classroom_rooms_created_total",
			Help: "Total rooms registered",
		},
		[]string{"source"}, // "local" or "provider"
	)

	RoomsEvicted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "classroom_rooms_evicted_total",
			Help: "Total empty rooms removed by the janitor",
		},
	)

	ParticipantsJoined = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "classroom_participants_joined_total",
			Help: "Total distinct participants added to rooms",
		},
	)

	ProviderLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "classroom_provider_lookups_total",
			Help: "Room lookups that fell back to the media provider",
		},
		[]string{"result"}, // "found", "not_found" or "error"
	)

	// Credentials
	TokensIssued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "classroom_tokens_issued_total",
			Help: "Total join credentials issued",
		},
		[]string{"role"},
	)

	// Transcription
	TranscriptionRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "classroom_transcription_requests_total",
			Help: "Total chunks sent to the speech to text provider",
		},
		[]string{"provider", "result"}, // result: "ok", "empty" or "error"
	)

	TranscriptionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "classroom_transcription_duration_seconds",
			Help:    "Speech to text request duration",
			Buckets: []float64{.25, .5, 1, 2, 5, 10, 20, 40},
		},
		[]string{"provider"},
	)
)
