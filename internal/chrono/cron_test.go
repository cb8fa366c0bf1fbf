package chrono

import (
	"bountywatch/internal/telemetry"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStandardCron(t *testing.T) {
	cron := NewStandardCron(FixedTime{At: time.Now().UTC()}, telemetry.NewRecorder())
	defer cron.Stop()

	ran := make(chan struct{}, 1)
	err := cron.Cron("@every 1s", func() {
		select {
		case ran <- struct{}{}:
		default:
		}
	})
	require.NoError(t, err)

	select {
	case <-ran:
	case <-time.After(5 * time.Second):
		t.Fatal("job did not run")
	}
}

func TestStandardCronRecoversPanics(t *testing.T) {
	tel := telemetry.NewRecorder()
	cron := NewStandardCron(FixedTime{At: time.Now().UTC()}, tel)

	require.NoError(t, cron.Cron("@every 1s", func() { panic("boom") }))
	require.Eventually(t, func() bool {
		return len(tel.Find(telemetry.KindBroken, "cron")) > 0
	}, 5*time.Second, 50*time.Millisecond)
	<-cron.Stop().Done()
}

func TestStandardCronRejectsInvalidSpec(t *testing.T) {
	cron := NewStandardCron(FixedTime{At: time.Now().UTC()}, telemetry.NewRecorder())
	defer cron.Stop()
	require.Error(t, cron.Cron("every tuesday", func() {}))
}

func TestStandardTime(t *testing.T) {
	utc, err := NewStandardTime("")
	require.NoError(t, err)
	require.Equal(t, time.UTC, utc.Location())

	_, err = NewStandardTime("Not/AZone")
	require.Error(t, err)
}
