// Package session owns one dice form: the typed sequence, the spell level and
// the result slot, and dispatches compute requests on submit.
//
// All state changes run on a single event-loop goroutine. Compute calls run
// in their own goroutines and post their outcome back onto the loop, so
// handlers never interleave and no other locking is needed.
package session

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/rcliao/d6calc/internal/compute"
	"github.com/rcliao/d6calc/internal/dice"
	"github.com/rcliao/d6calc/internal/level"
	"github.com/rcliao/d6calc/internal/model"
	"github.com/rcliao/d6calc/internal/store"
)

// ErrClosed is returned by operations on a closed session.
var ErrClosed = errors.New("session closed")

// Journal records dispatched requests. store.Store satisfies it.
type Journal interface {
	Begin(ctx context.Context, p store.BeginParams) (*model.Dispatch, error)
	Finish(ctx context.Context, p store.FinishParams) error
}

// Snapshot is a copy of the session state at one point of the loop.
type Snapshot struct {
	ID       string
	Dice     dice.Sequence
	Level    level.Level
	Result   Result
	InFlight int
}

// Option configures a Session.
type Option func(*Session)

// WithLatestOnly discards responses to any submission other than the most
// recent one. Without it the last response to arrive wins.
func WithLatestOnly() Option {
	return func(s *Session) { s.latestOnly = true }
}

// WithJournal records every dispatch in j.
func WithJournal(j Journal) Option {
	return func(s *Session) { s.journal = j }
}

// WithLogger sets the logger for dispatch diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// Session is one UI form bound to a compute service.
type Session struct {
	id         string
	svc        compute.Service
	journal    Journal
	logger     *log.Logger
	latestOnly bool

	ctx    context.Context
	cancel context.CancelFunc
	events chan func()
	done   chan struct{}
	calls  sync.WaitGroup

	// loop-owned
	dice     dice.Sequence
	level    level.Selector
	result   Result
	submits  uint64
	inflight int
	settled  []chan Snapshot
	subs     map[int]chan Snapshot
	nextSub  int
}

// New starts a session that sends submissions to svc.
func New(svc compute.Service, opts ...Option) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		id:     ulid.Make().String(),
		svc:    svc,
		logger: log.New(io.Discard, "", 0),
		ctx:    ctx,
		cancel: cancel,
		events: make(chan func()),
		done:   make(chan struct{}),
		subs:   make(map[int]chan Snapshot),
	}
	for _, o := range opts {
		o(s)
	}
	go s.loop()
	return s
}

// ID identifies the session in the journal.
func (s *Session) ID() string { return s.id }

func (s *Session) loop() {
	defer close(s.done)
	for {
		select {
		case fn := <-s.events:
			fn()
		case <-s.ctx.Done():
			for id, ch := range s.subs {
				close(ch)
				delete(s.subs, id)
			}
			return
		}
	}
}

// Close stops the loop. In-flight calls see their context canceled and
// their responses are dropped; Close returns once they have all returned.
func (s *Session) Close() {
	s.cancel()
	<-s.done
	s.calls.Wait()
}

// do runs fn on the loop and waits for it.
func (s *Session) do(fn func()) error {
	ran := make(chan struct{})
	select {
	case s.events <- func() { fn(); close(ran) }:
	case <-s.done:
		return ErrClosed
	}
	<-ran
	return nil
}

// post queues fn on the loop without waiting. It reports false when the
// session is closed.
func (s *Session) post(fn func()) bool {
	select {
	case s.events <- fn:
		return true
	case <-s.done:
		return false
	}
}

func (s *Session) snapshot() Snapshot {
	return Snapshot{
		ID:       s.id,
		Dice:     s.dice,
		Level:    s.level.Value(),
		Result:   s.result,
		InFlight: s.inflight,
	}
}

// Snapshot returns the current state. A closed session returns the zero
// Snapshot.
func (s *Session) Snapshot() Snapshot {
	var snap Snapshot
	s.do(func() { snap = s.snapshot() })
	return snap
}

// SetRaw replaces the dice input with text.
func (s *Session) SetRaw(text string) Snapshot {
	seq := dice.Parse(text)
	var snap Snapshot
	s.do(func() {
		s.dice = seq
		snap = s.publish()
	})
	return snap
}

// SetLevel moves the level selector to n, clamped to its range.
func (s *Session) SetLevel(n int) Snapshot {
	var snap Snapshot
	s.do(func() {
		s.level.Set(n)
		snap = s.publish()
	})
	return snap
}

// StepLevel moves the level selector by delta stops.
func (s *Session) StepLevel(delta int) Snapshot {
	var snap Snapshot
	s.do(func() {
		s.level.Step(delta)
		snap = s.publish()
	})
	return snap
}

// Submit dispatches the current input. An empty sequence is rejected
// without contacting the service; anything else, valid or not, is sent.
func (s *Session) Submit() Snapshot {
	var snap Snapshot
	s.do(func() {
		s.submits++
		if s.dice.Len() == 0 {
			s.result = Result{Kind: Rejected, Text: EmptyInputMessage}
			snap = s.publish()
			return
		}

		req := compute.Request{
			InputD6: s.dice.Join(),
			InputLv: s.level.Value().String(),
		}
		s.result = Result{Kind: Pending}
		s.inflight++
		s.calls.Add(1)
		go s.call(s.submits, req, s.dice.Valid())
		snap = s.publish()
	})
	return snap
}

// Settled blocks until no request is in flight and returns the state at
// that moment.
func (s *Session) Settled(ctx context.Context) (Snapshot, error) {
	ch := make(chan Snapshot, 1)
	err := s.do(func() {
		if s.inflight == 0 {
			ch <- s.snapshot()
			return
		}
		s.settled = append(s.settled, ch)
	})
	if err != nil {
		return Snapshot{}, err
	}
	select {
	case snap := <-ch:
		return snap, nil
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	case <-s.done:
		return Snapshot{}, ErrClosed
	}
}

// Subscribe returns a channel receiving a snapshot after every change. Slow
// readers miss intermediate snapshots but always see the newest one. The
// channel is closed by the returned cancel func or by Close.
func (s *Session) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 16)
	var id int
	if err := s.do(func() {
		id = s.nextSub
		s.nextSub++
		s.subs[id] = ch
	}); err != nil {
		close(ch)
		return ch, func() {}
	}
	return ch, func() {
		s.do(func() {
			if c, ok := s.subs[id]; ok {
				close(c)
				delete(s.subs, id)
			}
		})
	}
}

func (s *Session) publish() Snapshot {
	snap := s.snapshot()
	for _, ch := range s.subs {
		select {
		case ch <- snap:
			continue
		default:
		}
		// full: drop the oldest so the newest state is delivered
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
		}
	}
	return snap
}

// call runs one compute request off the loop.
func (s *Session) call(seq uint64, req compute.Request, valid bool) {
	defer s.calls.Done()

	var rec *model.Dispatch
	if s.journal != nil {
		var err error
		rec, err = s.journal.Begin(context.Background(), store.BeginParams{
			Session: s.id,
			Seq:     seq,
			InputD6: req.InputD6,
			InputLv: req.InputLv,
			Valid:   valid,
		})
		if err != nil {
			s.logger.Printf("journal begin #%d: %v", seq, err)
		}
	}

	text, callErr := s.svc.Compute(s.ctx, req)

	applied := make(chan bool, 1)
	ok := false
	if s.post(func() { applied <- s.resolve(seq, text, callErr) }) {
		ok = <-applied
	} else {
		s.logger.Printf("dispatch #%d resolved after close", seq)
	}

	if rec == nil {
		return
	}
	fin := store.FinishParams{ID: rec.ID, Status: model.StatusCompleted, Result: text}
	switch {
	case !ok:
		fin.Status = model.StatusDiscarded
		if callErr != nil {
			fin.Error = callErr.Error()
		}
	case callErr != nil:
		fin.Status = model.StatusFailed
		fin.Error = callErr.Error()
	}
	if err := s.journal.Finish(context.Background(), fin); err != nil {
		s.logger.Printf("journal finish #%d: %v", seq, err)
	}
}

// resolve applies a response on the loop. It reports whether the response
// reached the result slot.
func (s *Session) resolve(seq uint64, text string, err error) bool {
	s.inflight--
	defer s.notifySettled()

	if s.latestOnly && seq != s.submits {
		s.logger.Printf("discarding stale response #%d (latest #%d)", seq, s.submits)
		s.publish()
		return false
	}

	// failures are not a separate state; they surface as result text
	if err != nil {
		s.logger.Printf("dispatch #%d: %v", seq, err)
		text = "error: " + err.Error()
	}
	s.result = Result{Kind: Completed, Text: text}
	s.publish()
	return true
}

func (s *Session) notifySettled() {
	if s.inflight > 0 || len(s.settled) == 0 {
		return
	}
	snap := s.snapshot()
	for _, ch := range s.settled {
		ch <- snap
	}
	s.settled = nil
}
