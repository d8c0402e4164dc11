package notification

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"todo-backend/internal/task/scheduler"
	"todo-backend/pkg/clock"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// ErrCenterStopped is returned when scheduling on a center that has been stopped
var ErrCenterStopped = errors.New("alert center stopped")

const deliveryTimeout = 15 * time.Second

// Options tunes the due check and the delivery pool
type Options struct {
	CheckInterval time.Duration // rounded up to whole seconds
	Workers       int
	QueueSize     int
}

// Center holds pending alerts and fires them once due.
// It satisfies scheduler.AlertCenter.
type Center struct {
	clock   clock.Clock
	logger  zerolog.Logger
	senders []Sender
	opts    Options

	mu       sync.Mutex
	pending  map[string]scheduler.Alert
	queue    chan scheduler.Alert
	cron     *cron.Cron
	workerWg sync.WaitGroup
	started  bool
	stopped  bool
}

// NewCenter creates a center delivering through the given senders
func NewCenter(clk clock.Clock, logger zerolog.Logger, opts Options, senders ...Sender) *Center {
	if opts.CheckInterval <= 0 {
		opts.CheckInterval = time.Second
	}
	if opts.Workers <= 0 {
		opts.Workers = 2
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 100
	}

	return &Center{
		clock:   clk,
		logger:  logger,
		senders: senders,
		opts:    opts,
		pending: make(map[string]scheduler.Alert),
		queue:   make(chan scheduler.Alert, opts.QueueSize),
	}
}

// Schedule stores alert, replacing any alert with the same id
func (c *Center) Schedule(alert scheduler.Alert) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopped {
		return ErrCenterStopped
	}
	c.pending[alert.ID] = alert
	return nil
}

// Cancel drops the alert for id if there is one
func (c *Center) Cancel(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.pending, id)
	return nil
}

// Pending returns the alerts not fired yet, soonest first
func (c *Center) Pending() []scheduler.Alert {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]scheduler.Alert, 0, len(c.pending))
	for _, a := range c.pending {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].FireAt.Equal(out[j].FireAt) {
			return out[i].FireAt.Before(out[j].FireAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Start launches the delivery workers and the periodic due check.
// The center stops by itself when ctx is done.
func (c *Center) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopped {
		return ErrCenterStopped
	}
	if c.started {
		return nil
	}

	c.cron = cron.New(cron.WithLogger(cronLogger{logger: c.logger}))
	c.cron.Schedule(cron.Every(c.opts.CheckInterval), cron.FuncJob(func() { c.FireDue() }))

	for i := 0; i < c.opts.Workers; i++ {
		c.workerWg.Add(1)
		go c.worker(i)
	}
	c.cron.Start()
	c.started = true

	go func() {
		<-ctx.Done()
		c.Stop()
	}()

	c.logger.Info().
		Int("workers", c.opts.Workers).
		Dur("interval", c.opts.CheckInterval).
		Msg("alert center started")
	return nil
}

// Stop halts the due check, delivers what is already queued and waits for
// the workers. Alerts still pending are dropped.
func (c *Center) Stop() {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	c.stopped = true
	cr := c.cron
	c.mu.Unlock()

	if cr != nil {
		<-cr.Stop().Done()
	}

	c.mu.Lock()
	close(c.queue)
	c.mu.Unlock()

	c.workerWg.Wait()
	c.logger.Info().Msg("alert center stopped")
}

// FireDue moves every alert whose time has come to the delivery queue and
// returns how many were queued. A full queue drops the alert.
func (c *Center) FireDue() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopped {
		return 0
	}

	now := c.clock.Now()
	var due []scheduler.Alert
	for id, a := range c.pending {
		if !a.FireAt.After(now) {
			due = append(due, a)
			delete(c.pending, id)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].FireAt.Before(due[j].FireAt) })

	queued := 0
	for _, a := range due {
		select {
		case c.queue <- a:
			queued++
		default:
			c.logger.Warn().Str("task_id", a.ID).Msg("delivery queue is full, alert dropped")
		}
	}
	return queued
}

func (c *Center) worker(id int) {
	defer c.workerWg.Done()

	for alert := range c.queue {
		c.deliver(alert)
	}

	c.logger.Debug().Int("worker", id).Msg("delivery worker stopped")
}

func (c *Center) deliver(alert scheduler.Alert) {
	ctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
	defer cancel()

	for _, s := range c.senders {
		if err := s.Send(ctx, alert); err != nil {
			c.logger.Error().Err(err).Str("sender", s.Name()).Str("task_id", alert.ID).Msg("alert delivery failed")
		}
	}
}

// cronLogger routes cron's own messages into zerolog
type cronLogger struct {
	logger zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	withFields(l.logger.Debug(), keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	withFields(l.logger.Error().Err(err), keysAndValues).Msg(msg)
}

func withFields(e *zerolog.Event, keysAndValues []interface{}) *zerolog.Event {
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		e = e.Interface(fmt.Sprint(keysAndValues[i]), keysAndValues[i+1])
	}
	return e
}
