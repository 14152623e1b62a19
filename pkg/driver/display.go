package driver

import (
	"io"
	"time"

	"github.com/fatih/color"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/j-f1/forked-engine262/pkg/errors"
)

// Summary counts the results of a fixture run.
type Summary struct {
	Total, Passed, Failed, Internal int
	Duration                        time.Duration
}

func Summarize(results []Result) Summary {
	var s Summary
	for _, r := range results {
		s.Total++
		s.Duration += r.Duration
		switch {
		case r.Passed():
			s.Passed++
		case r.Internal():
			s.Internal++
		default:
			s.Failed++
		}
	}
	return s
}

// Display writes colourised fixture results.
type Display struct {
	w       io.Writer
	pass    *color.Color
	fail    *color.Color
	dim     *color.Color
	printer *message.Printer
}

func NewDisplay(w io.Writer, noColor bool) *Display {
	d := &Display{
		w:       w,
		pass:    color.New(color.FgGreen, color.Bold),
		fail:    color.New(color.FgRed, color.Bold),
		dim:     color.New(color.Faint),
		printer: message.NewPrinter(language.English),
	}
	if noColor {
		for _, c := range []*color.Color{d.pass, d.fail, d.dim} {
			c.DisableColor()
		}
	}
	return d
}

// Result writes one line per fixture, followed by the failure for failed
// ones.
func (d *Display) Result(r Result) {
	if r.Passed() {
		d.pass.Fprint(d.w, "PASS")
	} else {
		d.fail.Fprint(d.w, "FAIL")
	}
	d.printer.Fprintf(d.w, " %s ", r.Fixture.Name)
	d.dim.Fprintf(d.w, "(%s)\n", r.Duration.Round(time.Microsecond))
	if r.Err == nil {
		return
	}
	if ee, ok := r.Err.(errors.EngineError); ok {
		errors.DisplayErrors(d.w, []errors.EngineError{ee})
		return
	}
	d.printer.Fprintf(d.w, "  %v\n", r.Err)
}

// Errors writes decoding or other engine errors with source excerpts.
func (d *Display) Errors(errs []errors.EngineError) {
	errors.DisplayErrors(d.w, errs)
}

// Summary writes the totals line.
func (d *Display) Summary(s Summary) {
	d.printer.Fprintf(d.w, "\n%d fixtures, ", s.Total)
	d.pass.Fprint(d.w, d.printer.Sprintf("%d passed", s.Passed))
	if s.Failed > 0 {
		io.WriteString(d.w, ", ")
		d.fail.Fprint(d.w, d.printer.Sprintf("%d failed", s.Failed))
	}
	if s.Internal > 0 {
		io.WriteString(d.w, ", ")
		d.fail.Fprint(d.w, d.printer.Sprintf("%d internal errors", s.Internal))
	}
	d.printer.Fprintf(d.w, " in %s\n", s.Duration.Round(time.Millisecond))
}
