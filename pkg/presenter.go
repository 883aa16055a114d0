package pkg

import (
	"bufio"
	"fmt"
	gio "io"

	"github.com/rs/zerolog/log"
)

// Presenter is the interactive side of training. Its methods run on the goroutine that called
// Serve, never on the training worker.
type Presenter interface {
	EpochCompleted(p Progress)
	PlateauReached(r PlateauRequest) Decision
}

// Serve trains on a dedicated worker and forwards its notifications to presenter until the loop
// finishes. A panic on the worker is returned as an error.
func Serve(t *Trainer, presenter Presenter) (*TrainingResult, error) {
	done := t.start()
	for {
		select {
		case progress := <-t.progress:
			presenter.EpochCompleted(progress)
		case request := <-t.plateaus:
			request.Response <- presenter.PlateauReached(request)
		case o := <-done:
			select {
			case progress := <-t.progress:
				presenter.EpochCompleted(progress)
			default:
			}
			return o.result, o.err
		}
	}
}

// progressLogger logs an epoch whenever at least interval epochs passed since the last one it
// logged.
type progressLogger struct {
	interval int
	last     int
}

func (l *progressLogger) EpochCompleted(p Progress) {
	if l.interval <= 0 || p.Epoch-l.last < l.interval {
		return
	}
	l.last = p.Epoch
	log.Info().Int("Epoch", p.Epoch).Float64("Error", p.Error).Msg("")
}

// PolicyPresenter answers every plateau with the same decision.
type PolicyPresenter struct {
	progressLogger
	Decision Decision
}

func NewPolicyPresenter(decision Decision, reportInterval int) *PolicyPresenter {
	return &PolicyPresenter{progressLogger: progressLogger{interval: reportInterval}, Decision: decision}
}

func (p *PolicyPresenter) PlateauReached(r PlateauRequest) Decision {
	log.Info().Int("Epoch", r.Epoch).Str("Decision", p.Decision.String()).Msg("plateau policy applied")
	return p.Decision
}

// ConsolePresenter asks the operator what to do on a plateau. End of input counts as Stop.
type ConsolePresenter struct {
	progressLogger
	in  *bufio.Reader
	out gio.Writer
}

func NewConsolePresenter(in gio.Reader, out gio.Writer, reportInterval int) *ConsolePresenter {
	return &ConsolePresenter{
		progressLogger: progressLogger{interval: reportInterval},
		in:             bufio.NewReader(in),
		out:            out,
	}
}

func (c *ConsolePresenter) PlateauReached(r PlateauRequest) Decision {
	fmt.Fprintf(c.out, "Plateau at epoch %d (error %.10f, stddev %.3g, learning rate %g)\n",
		r.Epoch, r.Error, r.StdDev, r.LearningRate)
	for {
		fmt.Fprint(c.out, "[s]top, [c]ontinue or [r]educe learning rate? ")
		line, err := c.in.ReadString('\n')
		if line != "" {
			decision, parseErr := ParseDecision(line)
			if parseErr == nil {
				return decision
			}
			fmt.Fprintln(c.out, parseErr)
		}
		if err != nil {
			fmt.Fprintln(c.out)
			return Stop
		}
	}
}
