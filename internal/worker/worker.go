package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"mysteryweb/internal/logger"
	"mysteryweb/internal/physics"
)

const (
	outboxSize = 32
	// tickCount is roughly how many progress ticks a run emits.
	tickCount = 20
)

var ErrClosed = errors.New("worker is closed")

// Worker owns at most one active simulation. A new init supersedes the
// active run, which then reports cancel.
type Worker struct {
	log     logger.Logger
	threads int

	out    chan Message
	ctx    context.Context
	stop   context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
	mu     sync.Mutex
	closed bool

	activeID     string
	activeCancel context.CancelFunc
}

type Option func(*Worker)

// WithThreads lets each simulation split its pairwise passes.
func WithThreads(n int) Option {
	return func(w *Worker) {
		w.threads = n
	}
}

func New(ctx context.Context, log logger.Logger, opts ...Option) *Worker {
	ctx, stop := context.WithCancel(ctx)
	w := &Worker{
		log:  logger.OrNop(log),
		out:  make(chan Message, outboxSize),
		ctx:  ctx,
		stop: stop,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Messages delivers tick, complete, error and cancel frames. It is closed by Close.
func (w *Worker) Messages() <-chan Message {
	return w.out
}

// Post decodes, validates and handles a raw incoming frame. Malformed
// frames are answered with an error message and never reach the simulation.
func (w *Worker) Post(raw []byte) error {
	msg, err := DecodeIncoming(raw)
	if err != nil {
		return w.reject("", err)
	}
	return w.handle(msg)
}

// PostMessage validates and handles an in-process frame.
func (w *Worker) PostMessage(msg Message) error {
	if err := ValidateIncoming(&msg); err != nil {
		return w.reject(msg.RunID, err)
	}
	return w.handle(&msg)
}

// reject answers a malformed frame with an error message and returns err.
func (w *Worker) reject(runID string, err error) error {
	w.log.Warn("rejected worker message", "err", err)
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return err
	}
	w.wg.Add(1)
	w.mu.Unlock()
	defer w.wg.Done()
	w.emit(w.ctx, Message{Type: TypeError, RunID: runID, Error: err.Error()})
	return err
}

func (w *Worker) handle(msg *Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}

	switch msg.Type {
	case TypeCancel:
		if w.activeCancel == nil {
			w.log.Debug("cancel with no active run")
			return nil
		}
		w.log.Debug("cancelling run", "run", w.activeID)
		w.activeCancel()
		return nil
	case TypeInit:
	default:
		return fmt.Errorf("%w: %s", ErrUnexpectedType, msg.Type)
	}

	if w.activeCancel != nil {
		w.activeCancel()
	}
	runID := msg.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	params := SanitizeConfig(msg.Config)
	params.Threads = w.threads
	nodes, links := toSimulation(msg.Nodes, msg.Edges)

	runCtx, cancel := context.WithCancel(w.ctx)
	w.activeID = runID
	w.activeCancel = cancel
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer w.finish(runID, cancel)
		w.run(runCtx, runID, nodes, links, params)
	}()
	return nil
}

func (w *Worker) finish(runID string, cancel context.CancelFunc) {
	cancel()
	w.mu.Lock()
	if w.activeID == runID {
		w.activeID = ""
		w.activeCancel = nil
	}
	w.mu.Unlock()
}

func (w *Worker) run(ctx context.Context, runID string, nodes []physics.Node, links []physics.Link, params physics.Params) {
	w.log.Debug("starting force simulation",
		"run", runID,
		"nodes", len(nodes),
		"links", len(links),
		"iterations", params.Iterations)

	sim := physics.New(nodes, links, params)
	every := max(1, sim.Iterations()/tickCount)
	lastProgress := 0.0

	err := sim.Run(ctx, func(s *physics.Simulation) error {
		if s.Iteration()%every != 0 || s.Done() {
			return nil
		}
		progress := s.Progress()
		if progress < lastProgress {
			progress = lastProgress
		}
		lastProgress = progress
		return w.send(ctx, Message{Type: TypeTick, RunID: runID, Progress: progress, Nodes: toWire(s.Nodes())})
	})

	switch {
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		w.log.Debug("force simulation cancelled", "run", runID, "iteration", sim.Iteration())
		w.emit(w.ctx, Message{Type: TypeCancel, RunID: runID})
	case err != nil:
		w.emit(w.ctx, Message{Type: TypeError, RunID: runID, Error: err.Error()})
	default:
		w.send(w.ctx, Message{Type: TypeComplete, RunID: runID, Progress: 100, Nodes: toWire(sim.Nodes())})
	}
}

// send validates msg and delivers it, giving up when ctx ends.
func (w *Worker) send(ctx context.Context, msg Message) error {
	if err := ValidateOutgoing(&msg); err != nil {
		w.log.Error("dropping invalid outgoing message", "type", msg.Type, "err", err)
		msg = Message{Type: TypeError, RunID: msg.RunID, Error: err.Error()}
	}
	select {
	case w.out <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Worker) emit(ctx context.Context, msg Message) {
	if err := w.send(ctx, msg); err != nil {
		w.log.Debug("worker message not delivered", "type", msg.Type, "err", err)
	}
}

// Close cancels any active run, waits for it and closes Messages.
func (w *Worker) Close() {
	w.once.Do(func() {
		w.mu.Lock()
		w.closed = true
		if w.activeCancel != nil {
			w.activeCancel()
		}
		w.mu.Unlock()

		done := make(chan struct{})
		go func() {
			w.wg.Wait()
			close(done)
		}()
		// drain so a blocked run can observe cancellation and exit
		for {
			select {
			case <-done:
				w.stop()
				close(w.out)
				return
			case <-w.out:
			}
		}
	})
}

func toSimulation(wireNodes []WireNode, wireEdges []WireEdge) ([]physics.Node, []physics.Link) {
	index := make(map[string]int, len(wireNodes))
	nodes := make([]physics.Node, 0, len(wireNodes))
	for _, n := range wireNodes {
		if _, dup := index[n.ID]; dup {
			continue
		}
		node := physics.Node{ID: n.ID, Type: n.Type, Cluster: -1}
		if n.X != nil && n.Y != nil && finite(*n.X) && finite(*n.Y) {
			node.X, node.Y, node.Positioned = *n.X, *n.Y, true
		}
		if n.Cluster != nil {
			node.Cluster = *n.Cluster
		}
		index[n.ID] = len(nodes)
		nodes = append(nodes, node)
	}
	links := make([]physics.Link, 0, len(wireEdges))
	for _, e := range wireEdges {
		s, okS := index[e.Source]
		t, okT := index[e.Target]
		if !okS || !okT {
			continue
		}
		links = append(links, physics.Link{Source: s, Target: t, Weight: e.Weight})
	}
	return nodes, links
}

func toWire(nodes []physics.Node) []WireNode {
	out := make([]WireNode, len(nodes))
	for i, n := range nodes {
		x, y := n.X, n.Y
		out[i] = WireNode{ID: n.ID, Type: n.Type, X: &x, Y: &y}
		if n.Cluster >= 0 {
			c := n.Cluster
			out[i].Cluster = &c
		}
	}
	return out
}
