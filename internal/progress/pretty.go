package progress

import (
	"io"
	"time"

	pretty "github.com/jedib0t/go-pretty/v6/progress"
)

// Pretty renders stages as go-pretty progress trackers
type Pretty struct {
	pw pretty.Writer
}

// NewPretty starts rendering trackers to out
func NewPretty(out io.Writer) *Pretty {
	pw := pretty.NewWriter()
	pw.SetOutputWriter(out)
	pw.SetMessageLength(32)
	pw.SetNumTrackersExpected(2)
	pw.SetStyle(pretty.StyleDefault)
	pw.SetTrackerLength(25)
	pw.SetTrackerPosition(pretty.PositionRight)
	pw.SetUpdateFrequency(time.Millisecond * 100)
	pw.Style().Colors = pretty.StyleColorsExample
	pw.Style().Options.PercentFormat = "%4.1f%%"
	go pw.Render()
	return &Pretty{pw: pw}
}

func (p *Pretty) BeginStage(name string, total int) Stage {
	tracker := &pretty.Tracker{
		Message: name,
		Total:   int64(total),
		Units:   pretty.UnitsDefault,
	}
	p.pw.AppendTracker(tracker)
	tracker.Start()
	return prettyStage{tracker: tracker}
}

// Stop flushes the trackers and waits for the renderer to exit
func (p *Pretty) Stop() {
	p.pw.Stop()
	for p.pw.IsRenderInProgress() {
		time.Sleep(50 * time.Millisecond)
	}
}

type prettyStage struct {
	tracker *pretty.Tracker
}

func (s prettyStage) Report(units int) {
	s.tracker.Increment(int64(units))
}

func (s prettyStage) Done() {
	s.tracker.MarkAsDone()
}
