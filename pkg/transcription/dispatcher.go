package transcription

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gammazero/workerpool"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/pkg/config"
	"github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/pkg/metrics"
	"github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/pkg/roomstate"
)

const segmentTimeLayout = "15:04:05"

// Result is handed to the dispatch callback once a chunk is done.
// Segment is nil when the provider returned no text or failed.
type Result struct {
	Index   int
	Segment *roomstate.Segment
	Err     error
}

type Dispatcher struct {
	mu       sync.RWMutex
	closed   bool
	ctx      context.Context
	cancel   context.CancelFunc
	provider Provider
	pool     *workerpool.WorkerPool
	timeout  time.Duration
	inFlight atomic.Int32
	logger   *logrus.Entry
}

func NewDispatcher(provider Provider, cnf *config.TranscriptionInfo, logger *logrus.Logger) *Dispatcher {
	workers := cnf.MaxWorkers
	if workers <= 0 {
		workers = config.DefaultTranscriptionWorkers
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &Dispatcher{
		ctx:      ctx,
		cancel:   cancel,
		provider: provider,
		pool:     workerpool.New(workers),
		timeout:  cnf.RequestTimeout,
		logger:   logger.WithField("model", "transcription"),
	}
}

// Dispatch queues chunk for transcription and returns immediately.
// onDone runs on a worker goroutine.
func (d *Dispatcher) Dispatch(chunk *Chunk, onDone func(*Result)) error {
	if chunk == nil || len(chunk.Data) == 0 {
		return ErrEmptyAudio
	}
	if d.provider == nil {
		return ErrNotConfigured
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrDispatcherClosed
	}

	d.inFlight.Add(1)
	d.pool.Submit(func() {
		defer d.inFlight.Add(-1)
		res := d.process(chunk)
		if onDone != nil {
			onDone(res)
		}
	})
	return nil
}

func (d *Dispatcher) InFlight() int {
	return int(d.inFlight.Load())
}

// Close waits for queued chunks to finish. With abort the running requests
// are cancelled instead.
func (d *Dispatcher) Close(abort bool) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	d.mu.Unlock()

	if abort {
		d.cancel()
	}
	d.pool.StopWait()
	d.cancel()
}

func (d *Dispatcher) process(chunk *Chunk) *Result {
	name := d.provider.Name()
	log := d.logger.WithFields(logrus.Fields{
		"provider": name,
		"index":    chunk.Index,
		"bytes":    len(chunk.Data),
	})

	ctx := d.ctx
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	start := time.Now()
	text, err := d.provider.Transcribe(ctx, newAudio(chunk))
	metrics.TranscriptionDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.TranscriptionRequests.WithLabelValues(name, "error").Inc()
		log.WithError(err).Errorln("transcription failed")
		return &Result{Index: chunk.Index, Err: err}
	}

	text = strings.TrimSpace(text)
	if text == "" {
		metrics.TranscriptionRequests.WithLabelValues(name, "empty").Inc()
		log.Debugln("no speech in chunk")
		return &Result{Index: chunk.Index}
	}

	metrics.TranscriptionRequests.WithLabelValues(name, "ok").Inc()
	log.Debugln("chunk transcribed")
	return &Result{
		Index: chunk.Index,
		Segment: &roomstate.Segment{
			Id:        uuid.NewString(),
			Text:      text,
			Order:     chunk.Index,
			Timestamp: chunk.CreatedAt.Format(segmentTimeLayout),
		},
	}
}

// newAudio fills in mime type and file name, sniffing the data when the
// chunk doesn't say what it is.
func newAudio(chunk *Chunk) *Audio {
	var mt *mimetype.MIME
	if chunk.MimeType != "" {
		mt = mimetype.Lookup(chunk.MimeType)
	}
	if mt == nil {
		mt = mimetype.Detect(chunk.Data)
	}

	mimeType := chunk.MimeType
	if mimeType == "" {
		mimeType = mt.String()
	}
	ext := mt.Extension()
	if ext == "" {
		ext = ".bin"
	}

	return &Audio{
		Data:     chunk.Data,
		MimeType: mimeType,
		FileName: "audio" + ext,
	}
}
