package app

import (
	"context"
	"testing"
	"time"

	"todo-backend/internal/task/domain"
	"todo-backend/pkg/config"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T, driver string) *config.Config {
	dir := t.TempDir()
	return &config.Config{
		StorageDriver:         driver,
		DataDir:               dir,
		SQLitePath:            dir + "/todo.db",
		TasksSlot:             "tasks",
		DevicesSlot:           "devices",
		DayLabelFormat:        "02.01.2006",
		ReminderCheckInterval: time.Hour,
		ReminderWorkers:       1,
		ReminderQueueSize:     10,
	}
}

func TestOpenStore_Drivers(t *testing.T) {
	for _, driver := range []string{"memory", "file", "sqlite"} {
		t.Run(driver, func(t *testing.T) {
			store, err := OpenStore(testConfig(t, driver))
			require.NoError(t, err)
			require.NoError(t, store.Put("k", []byte("v")))
			require.NoError(t, store.Close())
		})
	}

	_, err := OpenStore(testConfig(t, "postgres"))
	assert.ErrorContains(t, err, "DATABASE_URL")

	_, err = OpenStore(testConfig(t, "redis"))
	assert.ErrorContains(t, err, "unknown storage driver")
}

func TestNew_PersistsAcrossRestarts(t *testing.T) {
	cfg := testConfig(t, "sqlite")

	first, err := New(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	reminder := time.Now().Add(time.Hour)
	task, err := first.Tasks.AddTask(domain.Draft{Title: "Call dentist", Reminder: &reminder})
	require.NoError(t, err)
	assert.Len(t, first.Center.Pending(), 1)
	assert.False(t, first.PushEnabled)
	require.NoError(t, first.Close())

	second, err := New(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	defer second.Close()

	got, err := second.Tasks.GetTask(task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Call dentist", got.Title)
	require.Len(t, second.Center.Pending(), 1)
	assert.Equal(t, task.ID, second.Center.Pending()[0].ID)
}

func TestNew_SecondProcessIsLockedOut(t *testing.T) {
	for _, driver := range []string{"file", "sqlite"} {
		t.Run(driver, func(t *testing.T) {
			cfg := testConfig(t, driver)

			server, err := New(context.Background(), cfg, zerolog.Nop())
			require.NoError(t, err)

			_, err = New(context.Background(), cfg, zerolog.Nop())
			require.ErrorIs(t, err, ErrDataLocked)

			_, err = server.Tasks.AddTask(domain.Draft{Title: "added via HTTP"})
			require.NoError(t, err)
			require.NoError(t, server.Close())

			cli, err := New(context.Background(), cfg, zerolog.Nop())
			require.NoError(t, err)
			_, err = cli.Tasks.AddTask(domain.Draft{Title: "added via CLI"})
			require.NoError(t, err)
			require.NoError(t, cli.Close())

			reopened, err := New(context.Background(), cfg, zerolog.Nop())
			require.NoError(t, err)
			defer reopened.Close()

			var titles []string
			for _, task := range reopened.Tasks.Tasks() {
				titles = append(titles, task.Title)
			}
			assert.ElementsMatch(t, []string{"added via HTTP", "added via CLI"}, titles)
		})
	}
}

func TestNew_MemoryDriverIsNotLocked(t *testing.T) {
	cfg := testConfig(t, "memory")

	first, err := New(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	defer first.Close()

	second, err := New(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, second.Close())
}

func TestNew_UnknownTimezoneIsRejected(t *testing.T) {
	cfg := testConfig(t, "file")
	cfg.Timezone = "Mars/Olympus_Mons"

	_, err := New(context.Background(), cfg, zerolog.Nop())
	assert.ErrorContains(t, err, "invalid TIMEZONE")
}
