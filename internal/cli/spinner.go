package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 80 * time.Millisecond

// spinner draws a status line on w while a slow step runs, such as
// connecting to a remote store or rendering SVG. Nothing is drawn when w is
// not a terminal, so redirected stderr stays clean.
type spinner struct {
	w       io.Writer
	message string

	parent context.Context
	cancel context.CancelFunc
	exited chan struct{}
	once   sync.Once

	mu    sync.Mutex
	drawn bool
}

// startSpinner starts a spinner that stops on its own when ctx ends.
func startSpinner(ctx context.Context, w io.Writer, message string) *spinner {
	return newSpinner(ctx, w, message, isTerminal(w))
}

func newSpinner(ctx context.Context, w io.Writer, message string, animate bool) *spinner {
	runCtx, cancel := context.WithCancel(ctx)
	s := &spinner{
		w:       w,
		message: message,
		parent:  ctx,
		cancel:  cancel,
		exited:  make(chan struct{}),
	}
	if animate {
		go s.run(runCtx)
	} else {
		close(s.exited)
	}
	return s
}

func (s *spinner) run(ctx context.Context) {
	defer close(s.exited)
	ticker := time.NewTicker(spinnerInterval)
	defer ticker.Stop()

	for i := 0; ; i++ {
		select {
		case <-ctx.Done():
			s.clear()
			return
		case <-ticker.C:
			s.mu.Lock()
			fmt.Fprintf(s.w, "\r%s %s", styleSpinner.Render(spinnerFrames[i%len(spinnerFrames)]), StyleDim.Render(s.message))
			s.drawn = true
			s.mu.Unlock()
		}
	}
}

// stop ends the animation and clears the line. It may be called repeatedly.
func (s *spinner) stop() {
	s.once.Do(s.cancel)
	<-s.exited
	s.clear()
}

// fail stops the spinner and leaves an error line in its place.
func (s *spinner) fail(format string, args ...any) {
	s.stop()
	printError(s.w, format, args...)
}

// cancelled reports whether the spinner ended because its context did.
func (s *spinner) cancelled() bool {
	return s.parent.Err() != nil
}

func (s *spinner) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.drawn {
		return
	}
	fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", len([]rune(s.message))+2))
	s.drawn = false
}

// spin runs fn under a spinner. If fn fails, failure is printed in place of
// the spinner and fn's error is returned.
func spin(ctx context.Context, w io.Writer, message, failure string, fn func() error) error {
	s := startSpinner(ctx, w, message)
	if err := fn(); err != nil {
		s.fail("%s", failure)
		return err
	}
	s.stop()
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
