package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/Veraticus/hts-classify/internal/common"
	"github.com/Veraticus/hts-classify/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	id      string
	message string
}

type fakeHandler struct {
	err       error
	responses []model.Response
	calls     []call
}

func (f *fakeHandler) Handle(_ context.Context, id, message string) (model.Response, error) {
	f.calls = append(f.calls, call{id: id, message: message})
	if f.err != nil {
		return model.Response{}, f.err
	}
	if len(f.responses) == 0 {
		return model.Response{}, fmt.Errorf("unexpected message %q", message)
	}
	resp := f.responses[0]
	f.responses = f.responses[1:]
	return resp, nil
}

func withSession(id string, resp model.Response) model.Response {
	resp.Session = &model.ClassificationSession{ID: id, Status: resp.Status}
	return resp
}

func TestConversation_Run(t *testing.T) {
	final := model.MatchCandidate{Code: "4011.10.10", Description: "Radial tyres for motor cars"}
	handler := &fakeHandler{responses: []model.Response{
		withSession("s1", model.Response{Status: model.SessionAwaitingClarification, Question: "What material?"}),
		withSession("s1", model.Response{Status: model.SessionAwaitingSelection, Message: "Pick one:", Options: []model.MatchCandidate{final}}),
		withSession("s1", model.Response{Status: model.SessionComplete, Message: "Classification complete.", FinalResult: &final}),
	}}

	var out bytes.Buffer
	conv := NewConversation(handler, strings.NewReader("rubber\n\n1\nquit\n"), &out, "")
	var seen []string
	conv.OnSession(func(id string) { seen = append(seen, id) })

	require.NoError(t, conv.Run(context.Background(), "car tires"))

	assert.Equal(t, []call{
		{id: "", message: "car tires"},
		{id: "s1", message: "rubber"},
		{id: "s1", message: "1"},
	}, handler.calls)
	assert.Equal(t, []string{"s1"}, seen)
	assert.Equal(t, "s1", conv.SessionID())

	text := out.String()
	assert.Contains(t, text, "What material?")
	assert.Contains(t, text, "Answer")
	assert.Contains(t, text, "Select")
	assert.Contains(t, text, "Classification complete.")
	assert.Contains(t, text, "Describe another product")
}

func TestConversation_EndOfInput(t *testing.T) {
	handler := &fakeHandler{}
	var out bytes.Buffer

	err := NewConversation(handler, strings.NewReader(""), &out, "resume-me").Run(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, handler.calls)
}

func TestConversation_InvalidInputContinues(t *testing.T) {
	handler := &fakeHandler{err: fmt.Errorf("%w: empty message", common.ErrInvalidInput)}
	var out bytes.Buffer

	err := NewConversation(handler, strings.NewReader("x\n"), &out, "").Run(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, handler.calls, 1)
	assert.Contains(t, out.String(), "empty message")
}

func TestConversation_HandlerFailureStops(t *testing.T) {
	boom := errors.New("store offline")
	handler := &fakeHandler{err: boom}

	err := NewConversation(handler, strings.NewReader("x\ny\n"), &bytes.Buffer{}, "").Run(context.Background(), "")
	assert.ErrorIs(t, err, boom)
	assert.Len(t, handler.calls, 1)
}
