package notification

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"todo-backend/internal/task/scheduler"
	"todo-backend/pkg/clock"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	mu   sync.Mutex
	sent []scheduler.Alert
	err  error
}

func (s *recordingSender) Name() string { return "recording" }

func (s *recordingSender) Send(_ context.Context, a scheduler.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, a)
	return s.err
}

func (s *recordingSender) ids() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.sent))
	for _, a := range s.sent {
		out = append(out, a.ID)
	}
	return out
}

var start = time.Date(2024, 11, 22, 12, 0, 0, 0, time.UTC)

func alert(id string, in time.Duration) scheduler.Alert {
	return scheduler.Alert{ID: id, Title: "title " + id, FireAt: start.Add(in)}
}

func TestCenter_ScheduleReplacesAndCancelIsIdempotent(t *testing.T) {
	c := NewCenter(clock.NewFake(start), zerolog.Nop(), Options{})

	require.NoError(t, c.Schedule(alert("a", 2*time.Hour)))
	require.NoError(t, c.Schedule(alert("b", time.Hour)))
	require.NoError(t, c.Schedule(scheduler.Alert{ID: "a", Title: "moved", FireAt: start.Add(3 * time.Hour)}))

	pending := c.Pending()
	require.Len(t, pending, 2)
	assert.Equal(t, "b", pending[0].ID)
	assert.Equal(t, "moved", pending[1].Title)

	require.NoError(t, c.Cancel("a"))
	require.NoError(t, c.Cancel("a"))
	require.NoError(t, c.Cancel("unknown"))
	assert.Len(t, c.Pending(), 1)
}

func TestCenter_FireDueDeliversToEverySender(t *testing.T) {
	clk := clock.NewFake(start)
	first := &recordingSender{err: errors.New("offline")}
	second := &recordingSender{}
	c := NewCenter(clk, zerolog.Nop(), Options{CheckInterval: time.Hour, Workers: 2}, first, second)
	require.NoError(t, c.Start(context.Background()))

	require.NoError(t, c.Schedule(alert("soon", time.Minute)))
	require.NoError(t, c.Schedule(alert("later", 2*time.Hour)))

	assert.Equal(t, 0, c.FireDue())
	clk.Advance(time.Minute)
	assert.Equal(t, 1, c.FireDue())
	assert.Equal(t, 0, c.FireDue())

	c.Stop()

	assert.Equal(t, []string{"soon"}, first.ids())
	assert.Equal(t, []string{"soon"}, second.ids())
	require.Len(t, c.Pending(), 1)
	assert.Equal(t, "later", c.Pending()[0].ID)
}

func TestCenter_FullQueueDropsAlert(t *testing.T) {
	clk := clock.NewFake(start)
	c := NewCenter(clk, zerolog.Nop(), Options{QueueSize: 1})

	require.NoError(t, c.Schedule(alert("a", time.Minute)))
	require.NoError(t, c.Schedule(alert("b", 2*time.Minute)))
	clk.Advance(time.Hour)

	assert.Equal(t, 1, c.FireDue())
	assert.Empty(t, c.Pending())
	c.Stop()
}

func TestCenter_StoppedCenterRejectsWork(t *testing.T) {
	c := NewCenter(clock.NewFake(start), zerolog.Nop(), Options{})
	require.NoError(t, c.Start(context.Background()))
	c.Stop()
	c.Stop()

	assert.ErrorIs(t, c.Schedule(alert("a", time.Minute)), ErrCenterStopped)
	assert.ErrorIs(t, c.Start(context.Background()), ErrCenterStopped)
	assert.NoError(t, c.Cancel("a"))
	assert.Equal(t, 0, c.FireDue())
}

func TestCenter_PeriodicCheckFiresDueAlerts(t *testing.T) {
	clk := clock.NewFake(start)
	sender := &recordingSender{}
	c := NewCenter(clk, zerolog.Nop(), Options{CheckInterval: time.Second, Workers: 1}, sender)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, c.Start(ctx))
	defer c.Stop()

	require.NoError(t, c.Schedule(alert("a", -time.Second)))

	assert.Eventually(t, func() bool {
		return len(sender.ids()) == 1
	}, 5*time.Second, 50*time.Millisecond)
}

func TestCenter_SubSecondIntervalStillChecks(t *testing.T) {
	sender := &recordingSender{}
	c := NewCenter(clock.NewFake(start), zerolog.Nop(), Options{CheckInterval: 200 * time.Millisecond, Workers: 1}, sender)

	require.NoError(t, c.Start(context.Background()))
	defer c.Stop()
	require.NoError(t, c.Schedule(alert("a", -time.Second)))

	assert.Eventually(t, func() bool {
		return len(sender.ids()) == 1
	}, 5*time.Second, 50*time.Millisecond)
}

func TestCenter_StartTwiceKeepsOnePool(t *testing.T) {
	sender := &recordingSender{}
	c := NewCenter(clock.NewFake(start), zerolog.Nop(), Options{CheckInterval: time.Hour, Workers: 1}, sender)

	require.NoError(t, c.Start(context.Background()))
	require.NoError(t, c.Start(context.Background()))

	require.NoError(t, c.Schedule(alert("a", -time.Second)))
	assert.Equal(t, 1, c.FireDue())
	c.Stop()

	assert.Equal(t, []string{"a"}, sender.ids())
}

func TestCenter_StopsWhenContextEnds(t *testing.T) {
	c := NewCenter(clock.NewFake(start), zerolog.Nop(), Options{CheckInterval: time.Hour})
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, c.Start(ctx))

	cancel()

	assert.Eventually(t, func() bool {
		return errors.Is(c.Schedule(alert("a", time.Minute)), ErrCenterStopped)
	}, 2*time.Second, 10*time.Millisecond)
}

func TestCenter_WorksWithReminderScheduler(t *testing.T) {
	clk := clock.NewFake(start)
	c := NewCenter(clk, zerolog.Nop(), Options{})
	var _ scheduler.AlertCenter = c

	s := scheduler.NewReminderScheduler(c, clk, zerolog.Nop())
	require.NoError(t, s.Cancel("nothing"))
	assert.Empty(t, c.Pending())
}
