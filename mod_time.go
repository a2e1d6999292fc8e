package gekko

import (
	"time"
)

type Time struct {
	Time    time.Time
	Dt      time.Duration
	Elapsed time.Duration
}

// ElapsedSeconds is the time since startup in seconds.
func (t *Time) ElapsedSeconds() float32 {
	return float32(t.Elapsed.Seconds())
}

// TimeModule keeps the Time resource current. A non-zero FixedStep advances
// time by that amount every frame instead of reading the wall clock, which
// keeps headless runs reproducible.
type TimeModule struct {
	FixedStep time.Duration
}

func (mod TimeModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(&Time{Time: time.Now()})

	step := mod.FixedStep
	cmd.UseSystem(System(func(t *Time) {
		advanceTime(t, step)
	}).InStage(Prelude).RunAlways())
}

func advanceTime(t *Time, fixedStep time.Duration) {
	now := time.Now()
	if fixedStep > 0 {
		now = t.Time.Add(fixedStep)
	}

	t.Dt = now.Sub(t.Time)
	t.Elapsed += t.Dt
	t.Time = now
}
