package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInterruptHandler_ResumeHint(t *testing.T) {
	var buf bytes.Buffer
	h := NewInterruptHandler(&buf)
	h.SetSession("abc-123")

	assert.False(t, h.WasInterrupted())
	h.interrupt()
	h.interrupt()

	assert.True(t, h.WasInterrupted())
	assert.Contains(t, buf.String(), "Classification interrupted.")
	assert.Contains(t, buf.String(), "hts classify --session abc-123")
	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte("interrupted")))
}

func TestInterruptHandler_StopCancels(t *testing.T) {
	h := NewInterruptHandler(&bytes.Buffer{})
	ctx, stop := h.HandleInterrupts(context.Background())
	stop()

	<-ctx.Done()
	assert.False(t, h.WasInterrupted())
}
