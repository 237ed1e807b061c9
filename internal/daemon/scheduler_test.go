package daemon

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/rosterd/internal/config"
	"git.home.luguber.info/inful/rosterd/internal/notify"
	"git.home.luguber.info/inful/rosterd/internal/roster"
)

type memStore struct{}

func (memStore) Load() (*roster.Roster, error) { return roster.New(), nil }
func (memStore) Save(*roster.Roster) error     { return nil }

func newEngine(t *testing.T) *roster.Engine {
	t.Helper()
	e, err := roster.NewEngine(memStore{}, []int{12, 15})
	require.NoError(t, err)
	return e
}

func TestSchedulerWithNoJobs(t *testing.T) {
	s, err := NewScheduler(config.ScheduleConfig{}, newEngine(t), notify.Noop{})
	require.NoError(t, err)
	s.Start(context.Background())
	require.NoError(t, s.Stop(context.Background()))
}

func TestSchedulerRegistersConfiguredJobs(t *testing.T) {
	cfg := config.ScheduleConfig{
		ReminderCron: "0 18 * * 5",
		ResetCron:    "0 3 * * 1",
	}
	s, err := NewScheduler(cfg, newEngine(t), notify.Noop{})
	require.NoError(t, err)
	require.NoError(t, s.Stop(context.Background()))
}

func TestSchedulerRejectsInvalidCron(t *testing.T) {
	cfg := config.ScheduleConfig{ReminderCron: "not a cron"}
	_, err := NewScheduler(cfg, newEngine(t), notify.Noop{})
	require.Error(t, err)
}

type broadcastSpy struct {
	notify.Noop
	texts []string
}

func (b *broadcastSpy) Broadcast(_ context.Context, n roster.Notification) error {
	b.texts = append(b.texts, n.Text)
	return nil
}

func TestReminderUsesConfiguredText(t *testing.T) {
	spy := &broadcastSpy{}
	s, err := NewScheduler(config.ScheduleConfig{}, newEngine(t), spy)
	require.NoError(t, err)

	s.sendReminder("Завтра игра!")
	require.Equal(t, []string{"Завтра игра!"}, spy.texts)
}

func TestScheduledResetClearsRoster(t *testing.T) {
	engine := newEngine(t)
	_, _, err := engine.SetStatus(context.Background(), roster.Participant{ID: 1}, roster.StatusPlaying)
	require.NoError(t, err)

	s, err := NewScheduler(config.ScheduleConfig{}, engine, notify.Noop{})
	require.NoError(t, err)

	s.resetRoster()
	require.Zero(t, engine.Stats().Playing)
}
