package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

const spinnerInterval = 80 * time.Millisecond

var spinnerFrames = []rune("⠋⠙⠹⠸⠼⠴⠦⠧⠇⠏")

// Spinner animates a single status line until Stop is called or its context
// ends. The message may change while it runs.
type Spinner struct {
	ctx   context.Context
	w     io.Writer
	start time.Time

	quit     chan struct{}
	finished chan struct{}
	stopOnce sync.Once

	mu       sync.Mutex
	message  string
	width    int // widest line drawn, for clearing
	canceled bool
}

// newSpinner returns a spinner drawing on uiOut.
func newSpinner(ctx context.Context, message string) *Spinner {
	return newSpinnerTo(ctx, uiOut, message)
}

func newSpinnerTo(ctx context.Context, w io.Writer, message string) *Spinner {
	return &Spinner{
		ctx:      ctx,
		w:        w,
		message:  message,
		quit:     make(chan struct{}),
		finished: make(chan struct{}),
	}
}

// Start launches the animation goroutine.
func (s *Spinner) Start() {
	s.start = time.Now()
	go s.loop()
}

func (s *Spinner) loop() {
	defer close(s.finished)
	tick := time.NewTicker(spinnerInterval)
	defer tick.Stop()

	for frame := 0; ; frame++ {
		select {
		case <-s.quit:
			s.clear()
			return
		case <-s.ctx.Done():
			s.mu.Lock()
			s.canceled = true
			s.mu.Unlock()
			s.clear()
			return
		case <-tick.C:
			s.draw(spinnerFrames[frame%len(spinnerFrames)])
		}
	}
}

func (s *Spinner) draw(frame rune) {
	s.mu.Lock()
	defer s.mu.Unlock()
	text := s.message
	if elapsed := time.Since(s.start); elapsed >= time.Second {
		text += fmt.Sprintf(" (%ds)", int(elapsed.Seconds()))
	}
	s.width = max(s.width, len(text)+2)
	fmt.Fprintf(s.w, "\r%s %s", styleSpinner.Render(string(frame)), StyleDim.Render(text))
}

func (s *Spinner) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.width > 0 {
		fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", s.width))
	}
}

// SetMessage replaces the text shown next to the spinner.
func (s *Spinner) SetMessage(format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.message = fmt.Sprintf(format, args...)
}

// Stop ends the animation and clears the line. It is safe to call more than
// once, after Start.
func (s *Spinner) Stop() {
	s.stopOnce.Do(func() { close(s.quit) })
	<-s.finished
}

// StopWithSuccess stops the spinner and prints message as a success line.
func (s *Spinner) StopWithSuccess(message string) {
	s.Stop()
	printSuccess("%s", message)
}

// StopWithError stops the spinner and prints message as a failure line.
func (s *Spinner) StopWithError(message string) {
	s.Stop()
	printError("%s", message)
}

// Canceled reports whether the context ended before Stop.
func (s *Spinner) Canceled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canceled
}
