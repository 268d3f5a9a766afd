package mixer

import (
	"context"
	"errors"
	"io"
	"math"
	"math/rand/v2"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/lepinkainen/audioconcat/audio"
	"github.com/lepinkainen/audioconcat/utils"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// DefaultWorkers is the number of inputs decoded concurrently
const DefaultWorkers = 4

// eventBuffer lets a run with a handful of inputs finish without a reader
const eventBuffer = 16

// errCanceled is returned internally once a run has observed a cancel request
var errCanceled = errors.New("canceled")

// Decoder loads one input file
type Decoder func(path string) (*audio.Clip, error)

// Encoder writes the combined clip to path
type Encoder func(clip *audio.Clip, path string, format audio.OutputFormat) error

// Option configures a Task
type Option func(*Task)

// WithWorkers bounds the number of concurrent decodes. Values below 1 are ignored.
func WithWorkers(n int) Option {
	return func(t *Task) {
		if n > 0 {
			t.workers = n
		}
	}
}

// WithRand sets the random source used for Random ordering
func WithRand(rng *rand.Rand) Option {
	return func(t *Task) { t.rng = rng }
}

// WithLogger sets the logger for run diagnostics. Logs are discarded by default.
func WithLogger(log logrus.FieldLogger) Option {
	return func(t *Task) {
		if log != nil {
			t.log = log
		}
	}
}

// WithDecoder replaces audio.Decode
func WithDecoder(d Decoder) Option {
	return func(t *Task) { t.decode = d }
}

// WithEncoder replaces audio.Encode
func WithEncoder(e Encoder) Option {
	return func(t *Task) { t.encode = e }
}

// Task runs one mix in the background. It is started once and reports
// through the channel returned by Start.
type Task struct {
	req     Request
	id      string
	workers int
	rng     *rand.Rand
	log     logrus.FieldLogger
	decode  Decoder
	encode  Encoder

	started  atomic.Bool
	canceled atomic.Bool

	mu   sync.Mutex
	stop context.CancelFunc
}

// NewTask prepares a run for req. The request is copied.
func NewTask(req Request, opts ...Option) *Task {
	req.Files = append([]string(nil), req.Files...)

	quiet := logrus.New()
	quiet.SetOutput(io.Discard)

	t := &Task{
		req:     req,
		id:      uuid.NewString(),
		workers: DefaultWorkers,
		log:     quiet,
		decode:  audio.Decode,
		encode:  audio.Encode,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.log = t.log.WithField("run", t.id)
	return t
}

// ID identifies the run in logs
func (t *Task) ID() string {
	return t.id
}

// Request returns the request the task was created with
func (t *Task) Request() Request {
	return t.req
}

// Start launches the run and returns its event channel. The channel carries
// Progress events followed by exactly one terminal event, and is closed after
// it. Canceling ctx has the same effect as Cancel. Start panics if called twice.
func (t *Task) Start(ctx context.Context) <-chan Event {
	if !t.started.CompareAndSwap(false, true) {
		panic("mixer: task started twice")
	}

	ctx, cancel := context.WithCancel(ctx)
	t.mu.Lock()
	t.stop = cancel
	t.mu.Unlock()
	if t.canceled.Load() {
		cancel()
	}

	events := make(chan Event, eventBuffer)
	go func() {
		defer close(events)
		defer cancel()
		t.run(ctx, events)
	}()
	return events
}

// Cancel asks the run to stop. It is safe to call from any goroutine, any
// number of times, before or after Start. Decodes already in flight finish
// but their results are dropped.
func (t *Task) Cancel() {
	t.canceled.Store(true)
	t.mu.Lock()
	stop := t.stop
	t.mu.Unlock()
	if stop != nil {
		stop()
	}
}

// stopped reports whether the run should wind down without output
func (t *Task) stopped(ctx context.Context) bool {
	return t.canceled.Load() || ctx.Err() != nil
}

func (t *Task) run(ctx context.Context, events chan<- Event) {
	start := time.Now()
	path, err := t.execute(ctx, events)

	switch {
	case err == nil:
		t.log.WithFields(logrus.Fields{
			"output":   path,
			"duration": time.Since(start).Round(time.Millisecond),
		}).Info("mix completed")
		events <- Completed{OutputPath: path}
	case errors.Is(err, errCanceled):
		t.log.Info("mix canceled")
		events <- Canceled{}
	default:
		t.log.WithError(err).Warn("mix failed")
		events <- Failed{Err: err}
	}
}

func (t *Task) execute(ctx context.Context, events chan<- Event) (string, error) {
	if t.stopped(ctx) {
		return "", errCanceled
	}
	if err := t.req.Validate(); err != nil {
		return "", err
	}

	inputs, err := t.req.Inputs()
	if err != nil {
		return "", err
	}
	arranged := audio.Arrange(inputs, t.req.Order, t.rng)

	t.log.WithFields(logrus.Fields{
		"inputs":  len(arranged),
		"order":   t.req.Order,
		"delay":   t.req.Delay,
		"workers": t.workers,
		"format":  t.req.Format,
	}).Info("starting mix")

	combined, err := t.assemble(ctx, arranged, events)
	if err != nil {
		return "", err
	}
	if t.stopped(ctx) {
		return "", errCanceled
	}

	staged := t.req.StagingPath()
	t.log.WithFields(logrus.Fields{
		"path":     staged,
		"duration": combined.Duration(),
	}).Debug("encoding output")
	if err := t.encode(combined, staged, t.req.Format); err != nil {
		return "", err
	}

	if !t.req.WriteToSource {
		return staged, nil
	}

	final := t.req.OutputPath()
	if filepath.Clean(staged) == filepath.Clean(final) {
		return final, nil
	}
	t.log.WithFields(logrus.Fields{"from": staged, "to": final}).Debug("moving output to source directory")
	if err := utils.MoveFile(staged, final); err != nil {
		return "", &RelocateError{From: staged, To: final, Err: err}
	}
	return final, nil
}

// assemble decodes paths on a bounded pool and folds the results in path
// order, sending a Progress event after each one.
func (t *Task) assemble(ctx context.Context, paths []string, events chan<- Event) (*audio.Clip, error) {
	poolCtx, abort := context.WithCancel(ctx)
	defer abort()

	g, gctx := errgroup.WithContext(poolCtx)
	g.SetLimit(t.workers)

	// Capacity 1 so a finished decode never waits on the fold
	slots := make([]chan *audio.Clip, len(paths))
	for i := range slots {
		slots[i] = make(chan *audio.Clip, 1)
	}

	dispatched := make(chan struct{})
	go func() {
		defer close(dispatched)
		for i, path := range paths {
			if t.stopped(gctx) {
				return
			}
			// Go blocks while the pool is full, so the run may have been
			// stopped by the time this slot starts
			g.Go(func() error {
				if t.stopped(gctx) {
					return nil
				}
				clip, err := t.decode(path)
				if err != nil {
					return err
				}
				t.log.WithField("input", path).Debug("decoded")
				slots[i] <- clip
				return nil
			})
		}
	}()

	// Wait must not race with Go, so the dispatcher has to finish first
	wait := func() error {
		<-dispatched
		return g.Wait()
	}
	bail := func(err error) (*audio.Clip, error) {
		abort()
		waitErr := wait()
		if t.stopped(ctx) {
			return nil, errCanceled
		}
		if err == nil {
			err = waitErr
		}
		if err == nil {
			err = gctx.Err()
		}
		return nil, err
	}

	joiner := audio.NewJoiner(t.req.Delay)
	for i := range paths {
		var clip *audio.Clip
		select {
		case clip = <-slots[i]:
		case <-gctx.Done():
			return bail(nil)
		}

		if err := joiner.Add(clip); err != nil {
			return bail(err)
		}
		if t.stopped(ctx) {
			return bail(errCanceled)
		}
		if !t.progress(ctx, events, percent(joiner.Count(), len(paths))) {
			return bail(errCanceled)
		}
	}

	if err := wait(); err != nil {
		return nil, err
	}
	return joiner.Clip(), nil
}

func (t *Task) progress(ctx context.Context, events chan<- Event, pct int) bool {
	if t.stopped(ctx) {
		return false
	}
	select {
	case events <- Progress{Percent: pct}:
		return true
	case <-ctx.Done():
		return false
	}
}

func percent(done, total int) int {
	return int(math.Round(float64(done) / float64(total) * 100))
}
