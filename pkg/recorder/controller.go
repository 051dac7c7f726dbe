package recorder

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/sirupsen/logrus"
	"github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/pkg/config"
	"github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/pkg/roomcode"
	"github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/pkg/roomstate"
	"github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/pkg/transcription"
)

const persistTimeout = 10 * time.Second

type Options struct {
	RoomCode   string
	CodeCase   string // lower when empty
	Settings   *config.RecorderSettings
	Source     AudioSource
	Dispatcher Dispatcher
	Store      StateStore
	// Clock defaults to the wall clock.
	Clock clock.Clock
	// OnStop is called after every finished session, manual or automatic.
	OnStop func(Status)
}

// Controller is the recording state machine of one room. The accounting
// and flush tickers live in a single goroutine per session.
type Controller struct {
	mu sync.Mutex
	// persistMu orders writes so a stale snapshot never overwrites a newer one.
	persistMu sync.Mutex

	roomCode      string
	quota         time.Duration
	tickInterval  time.Duration
	flushInterval time.Duration
	source        AudioSource
	dispatcher    Dispatcher
	store         StateStore
	clock         clock.Clock
	onStop        func(Status)
	logger        *logrus.Entry

	state     State
	closed    bool
	totalUsed time.Duration
	startedAt time.Time
	elapsed   time.Duration
	session   uint64
	capture   io.Closer
	buf       []byte
	stopCh    chan struct{}
	doneCh    chan struct{}

	transcript []roomstate.Segment
	nextOrder  int
	// segments of chunks cut before the last clear are dropped
	clearedBelow int
	lastErr      error
}

// NewController loads the persisted state of the room and returns an idle
// controller initialized from it.
func NewController(ctx context.Context, opts *Options, logger *logrus.Logger) (*Controller, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("state store is required")
	}
	code, err := roomcode.New(opts.CodeCase).Normalize(opts.RoomCode)
	if err != nil {
		return nil, err
	}
	st, err := opts.Store.Load(ctx, code)
	if err != nil {
		return nil, err
	}

	s := opts.Settings
	c := &Controller{
		roomCode:      code,
		quota:         s.Quota,
		tickInterval:  s.TickInterval,
		flushInterval: s.FlushInterval,
		source:        opts.Source,
		dispatcher:    opts.Dispatcher,
		store:         opts.Store,
		clock:         opts.Clock,
		onStop:        opts.OnStop,
		logger: logger.WithFields(logrus.Fields{
			"model":    "recorder",
			"roomCode": code,
		}),
		state:      StateIdle,
		totalUsed:  min(st.TotalUsed(), s.Quota),
		transcript: st.Transcript,
		nextOrder:  st.NextOrder(),
	}
	if c.clock == nil {
		c.clock = clock.New()
	}
	if c.transcript == nil {
		c.transcript = []roomstate.Segment{}
	}

	c.logger.WithFields(logrus.Fields{
		"totalUsed": c.totalUsed,
		"segments":  len(c.transcript),
	}).Infoln("loaded room state")
	return c, nil
}

// Start begins a recording session. It is a no-op while recording.
func (c *Controller) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case c.closed:
		return ErrClosed
	case c.state == StateRecording:
		return nil
	case c.totalUsed >= c.quota:
		return ErrQuotaExhausted
	case c.source == nil:
		return ErrNoAudioSource
	case c.dispatcher == nil:
		return ErrNotConfigured
	}

	c.session++
	session := c.session
	capture, err := c.source.Open(func(b []byte) {
		c.onAudio(session, b)
	})
	if err != nil {
		c.lastErr = err
		return fmt.Errorf("%w: %v", ErrNoAudioSource, err)
	}

	c.state = StateRecording
	c.capture = capture
	c.startedAt = c.clock.Now()
	c.elapsed = 0
	c.buf = nil
	c.lastErr = nil
	c.stopCh = make(chan struct{})
	c.doneCh = make(chan struct{})

	tick := c.clock.Ticker(c.tickInterval)
	flush := c.clock.Ticker(c.flushInterval)
	go c.run(tick, flush, c.stopCh, c.doneCh)

	c.logger.WithField("remaining", c.quota-c.totalUsed).Infoln("recording started")
	return nil
}

func (c *Controller) run(tick, flush *clock.Ticker, stop, done chan struct{}) {
	defer close(done)
	defer tick.Stop()
	defer flush.Stop()

	for {
		select {
		case <-stop:
			return
		case <-tick.C:
			if c.onTick() {
				return
			}
		case <-flush.C:
			c.onFlush()
		}
	}
}

// onTick returns true once the session has ended.
func (c *Controller) onTick() bool {
	c.mu.Lock()
	if c.state != StateRecording {
		c.mu.Unlock()
		return true
	}
	c.elapsed = c.clock.Now().Sub(c.startedAt)
	if c.totalUsed+c.elapsed < c.quota {
		c.mu.Unlock()
		return false
	}

	c.logger.Infoln("quota limit reached, stopping")
	f := c.finishLocked()
	c.mu.Unlock()

	c.complete(f)
	return true
}

// onFlush sends the buffered audio and checkpoints the usage of the running
// session.
func (c *Controller) onFlush() {
	c.mu.Lock()
	if c.state != StateRecording {
		c.mu.Unlock()
		return
	}
	var chunk *transcription.Chunk
	if len(c.buf) > 0 {
		chunk = c.cutChunkLocked()
	}
	c.mu.Unlock()

	if chunk != nil {
		c.dispatch(chunk)
	}
	if err := c.persist(); err != nil {
		c.logger.WithError(err).Warnln("failed to checkpoint recording usage")
	}
}

func (c *Controller) onAudio(session uint64, b []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateRecording || session != c.session {
		return
	}
	c.buf = append(c.buf, b...)
}

// Stop ends the session: the elapsed time is added to the quota usage, the
// remaining audio goes out as the final chunk and the usage is persisted.
// Once Stop returns nothing more is dispatched for the session.
func (c *Controller) Stop() {
	c.mu.Lock()
	done := c.doneCh
	var f *finish
	if c.state == StateRecording {
		f = c.finishLocked()
	}
	c.mu.Unlock()

	if f != nil {
		c.complete(f)
	}
	if done != nil {
		<-done
	}
}

// ClearTranscript empties the transcript and persists it. Quota usage is
// left untouched.
func (c *Controller) ClearTranscript() error {
	c.mu.Lock()
	c.transcript = []roomstate.Segment{}
	c.clearedBelow = c.nextOrder
	c.lastErr = nil
	c.mu.Unlock()

	return c.persist()
}

// Close stops any session and waits for in flight transcriptions, so their
// segments are persisted before it returns.
func (c *Controller) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	c.Stop()

	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	if c.dispatcher != nil {
		c.dispatcher.Close(false)
	}
	return nil
}

func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.statusLocked()
}

func (c *Controller) statusLocked() Status {
	s := Status{
		RoomCode:  c.roomCode,
		State:     c.state,
		TotalUsed: c.totalUsed,
		QuotaMax:  c.quota,
		Segments:  len(c.transcript),
	}
	if c.state == StateRecording {
		s.Elapsed = c.elapsed
	}
	s.Remaining = max(c.quota-c.totalUsed-s.Elapsed, 0)
	if c.dispatcher != nil {
		s.InFlight = c.dispatcher.InFlight()
	}
	if c.lastErr != nil {
		s.LastError = c.lastErr.Error()
	}
	return s
}

// Transcript returns a copy of the ordered segments.
func (c *Controller) Transcript() []roomstate.Segment {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]roomstate.Segment, len(c.transcript))
	copy(out, c.transcript)
	return out
}

type finish struct {
	capture io.Closer
	final   *transcription.Chunk
	status  Status
}

// finishLocked moves to idle and collects the work to do once unlocked.
func (c *Controller) finishLocked() *finish {
	elapsed := c.clock.Now().Sub(c.startedAt)
	c.totalUsed = min(c.totalUsed+elapsed, c.quota)
	c.state = StateIdle
	c.elapsed = 0
	close(c.stopCh)

	f := &finish{capture: c.capture}
	c.capture = nil
	if len(c.buf) > 0 {
		f.final = c.cutChunkLocked()
	}
	c.buf = nil
	f.status = c.statusLocked()

	c.logger.WithFields(logrus.Fields{
		"session":   elapsed,
		"totalUsed": c.totalUsed,
	}).Infoln("recording stopped")
	return f
}

func (c *Controller) complete(f *finish) {
	if f.capture != nil {
		if err := f.capture.Close(); err != nil {
			c.logger.WithError(err).Warnln("failed to close audio capture")
		}
	}
	if f.final != nil {
		c.dispatch(f.final)
	}
	if err := c.persist(); err != nil {
		c.logger.WithError(err).Errorln("failed to persist recording usage")
	}
	if c.onStop != nil {
		c.onStop(f.status)
	}
}

func (c *Controller) cutChunkLocked() *transcription.Chunk {
	data, mimeType := c.source.Encode(c.buf)
	c.buf = nil

	chunk := &transcription.Chunk{
		Index:     c.nextOrder,
		Data:      data,
		MimeType:  mimeType,
		CreatedAt: c.clock.Now(),
	}
	c.nextOrder++
	return chunk
}

func (c *Controller) dispatch(chunk *transcription.Chunk) {
	err := c.dispatcher.Dispatch(chunk, c.onTranscribed)
	if err != nil {
		c.logger.WithError(err).WithField("index", chunk.Index).Errorln("failed to dispatch chunk")
		c.mu.Lock()
		c.lastErr = err
		c.mu.Unlock()
	}
}

func (c *Controller) onTranscribed(res *transcription.Result) {
	c.mu.Lock()
	if res.Err != nil {
		c.lastErr = res.Err
		c.mu.Unlock()
		return
	}
	if res.Segment == nil || res.Segment.Order < c.clearedBelow {
		c.mu.Unlock()
		return
	}
	c.transcript = roomstate.InsertSegment(c.transcript, *res.Segment)
	c.mu.Unlock()

	if err := c.persist(); err != nil {
		c.logger.WithError(err).Errorln("failed to persist transcript")
	}
}

// usedLocked counts the running session too, so a crash loses at most one
// flush interval of usage.
func (c *Controller) usedLocked() time.Duration {
	if c.state != StateRecording {
		return c.totalUsed
	}
	return min(c.totalUsed+c.clock.Now().Sub(c.startedAt), c.quota)
}

// persist writes the current usage and transcript.
func (c *Controller) persist() error {
	c.persistMu.Lock()
	defer c.persistMu.Unlock()

	c.mu.Lock()
	total := c.usedLocked()
	tr := make([]roomstate.Segment, len(c.transcript))
	copy(tr, c.transcript)
	c.mu.Unlock()

	p := roomstate.Patch{TotalUsed: &total}
	if len(tr) == 0 {
		p.ClearTranscript = true
	} else {
		p.Transcript = tr
	}

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	_, err := c.store.Save(ctx, c.roomCode, p)
	return err
}
