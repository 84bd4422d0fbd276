package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// InterruptHandler cancels an interactive classification on SIGINT or
// SIGTERM and tells the user how to resume it.
type InterruptHandler struct {
	writer      io.Writer
	sessionID   string
	interrupted bool
	mu          sync.Mutex
}

// NewInterruptHandler creates a handler that writes its notice to w.
func NewInterruptHandler(w io.Writer) *InterruptHandler {
	if w == nil {
		w = os.Stdout
	}
	return &InterruptHandler{writer: w}
}

// SetSession records the session to mention in the resume hint.
func (h *InterruptHandler) SetSession(id string) {
	h.mu.Lock()
	h.sessionID = id
	h.mu.Unlock()
}

// HandleInterrupts returns a context canceled on the first interrupt. The
// returned stop function releases the signal subscription.
func (h *InterruptHandler) HandleInterrupts(ctx context.Context) (context.Context, func()) {
	ctx, cancel := context.WithCancel(ctx)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case <-sigChan:
			h.interrupt()
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigChan)
		cancel()
	}
}

func (h *InterruptHandler) interrupt() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.interrupted {
		return
	}
	h.interrupted = true

	msg := "\n\n" + FormatWarning("Classification interrupted.")
	if h.sessionID != "" {
		msg += "\n" + FormatInfo("Resume with: hts classify --session "+h.sessionID)
	}
	if _, err := fmt.Fprintln(h.writer, msg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write interrupt message: %v\n", err)
	}
}

// WasInterrupted reports whether an interrupt was received.
func (h *InterruptHandler) WasInterrupted() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.interrupted
}
