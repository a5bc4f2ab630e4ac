package passes

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
)

// stubCaller returns canned replies keyed by the user prompt's record id, or
// a fixed reply for everything.
type stubCaller struct {
	mu    sync.Mutex
	calls int
	reply func(req ChatRequest) (string, error)
}

func (s *stubCaller) Complete(_ context.Context, req ChatRequest) (string, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	return s.reply(req)
}

func (s *stubCaller) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func observerPass(t *testing.T) *Pass {
	t.Helper()
	return New(Observer{}, Settings{PromptsDir: t.TempDir(), OntologiesDir: t.TempDir()})
}

func TestRunnerRun_SkipsSatisfiedRecords(t *testing.T) {
	t.Parallel()

	satisfied := Record(`{"id": "done", "ofnr": {"observation": [], "evaluations_detected": []}}`)
	pending := Record(`{"id": "todo", "input": {"prompt": "p"}}`)

	caller := &stubCaller{reply: func(ChatRequest) (string, error) {
		return `{"observation": ["seen"], "evaluations_detected": []}`, nil
	}}
	runner := &Runner{Caller: caller}

	out := runner.Run(context.Background(), observerPass(t), []Record{satisfied, pending})
	if len(out) != 2 {
		t.Fatalf("len(out)=%d", len(out))
	}
	if string(out[0]) != string(satisfied) {
		t.Fatalf("satisfied record changed: %s", out[0])
	}
	if got, _ := out[1].Get("ofnr.observation"); got.Get("0").String() != "seen" {
		t.Fatalf("pending record not updated: %s", out[1])
	}
	if caller.callCount() != 1 {
		t.Fatalf("calls=%d, want 1", caller.callCount())
	}
}

func TestRunnerRun_FailedCallLeavesRecordUnchanged(t *testing.T) {
	t.Parallel()

	recs := []Record{
		Record(`{"id": "a", "input": {"prompt": "p"}}`),
		Record(`{"id": "b", "input": {"prompt": "p"}}`),
		Record(`{"id": "c", "input": {"prompt": "p"}}`),
	}

	caller := &stubCaller{reply: func(ChatRequest) (string, error) {
		return "", errors.New("deadline exceeded")
	}}
	runner := &Runner{Caller: caller, BatchSize: 2}

	out := runner.Run(context.Background(), observerPass(t), recs)
	if len(out) != 3 {
		t.Fatalf("len(out)=%d, want 3", len(out))
	}
	for i := range recs {
		if string(out[i]) != string(recs[i]) {
			t.Fatalf("record %d changed after failed call: %s", i, out[i])
		}
	}
}

func TestRunnerRun_MixedOutcomeSlice(t *testing.T) {
	t.Parallel()

	recs := []Record{
		Record(`{"id": "a", "input": {"prompt": "pa"}}`),
		Record(`{"id": "b", "input": {"prompt": "pb"}}`),
		Record(`{"id": "c", "input": {"prompt": "pc"}}`),
	}

	// The middle record's call times out; its siblings in the slice succeed.
	caller := &stubCaller{reply: func(req ChatRequest) (string, error) {
		if strings.Contains(req.User, "pb") {
			return "", context.DeadlineExceeded
		}
		return `{"observation": ["seen"], "evaluations_detected": []}`, nil
	}}
	runner := &Runner{Caller: caller, BatchSize: 3}

	out := runner.Run(context.Background(), observerPass(t), recs)
	if len(out) != 3 {
		t.Fatalf("len(out)=%d, want 3", len(out))
	}
	if string(out[1]) != string(recs[1]) {
		t.Fatalf("failed record changed: %s", out[1])
	}
	for _, i := range []int{0, 2} {
		if got, ok := out[i].Get("ofnr.observation"); !ok || got.Get("0").String() != "seen" {
			t.Fatalf("record %d not merged: %s", i, out[i])
		}
	}
	if caller.callCount() != 3 {
		t.Fatalf("calls=%d, want 3", caller.callCount())
	}
}

func TestRunnerRun_EmptyReplyLeavesRecordUnchanged(t *testing.T) {
	t.Parallel()

	rec := Record(`{"id": "a", "input": {"prompt": "p"}}`)
	caller := &stubCaller{reply: func(ChatRequest) (string, error) { return "   \n", nil }}
	runner := &Runner{Caller: caller}

	out := runner.Run(context.Background(), observerPass(t), []Record{rec})
	if string(out[0]) != string(rec) {
		t.Fatalf("record changed after empty reply: %s", out[0])
	}
}

func TestRunnerRun_SecondRunConverges(t *testing.T) {
	t.Parallel()

	recs := []Record{Record(`{"id": "a", "input": {"prompt": "p"}}`)}
	caller := &stubCaller{reply: func(ChatRequest) (string, error) {
		return `{"observation": [], "evaluations_detected": ["always"]}`, nil
	}}
	runner := &Runner{Caller: caller}
	p := observerPass(t)

	first := runner.Run(context.Background(), p, recs)
	second := runner.Run(context.Background(), p, first)

	if caller.callCount() != 1 {
		t.Fatalf("calls=%d, want 1 (second run should skip)", caller.callCount())
	}
	if string(second[0]) != string(first[0]) {
		t.Fatalf("second run changed a satisfied record")
	}
}

func TestRunnerRun_StrictSchemaSendsSchema(t *testing.T) {
	t.Parallel()

	var gotSchema map[string]any
	var gotName string
	var mu sync.Mutex
	caller := &stubCaller{reply: func(req ChatRequest) (string, error) {
		mu.Lock()
		gotSchema = req.Schema
		gotName = req.SchemaName
		mu.Unlock()
		return `{"observation": [], "evaluations_detected": []}`, nil
	}}
	runner := &Runner{Caller: caller, StrictSchema: true}

	runner.Run(context.Background(), observerPass(t), []Record{Record(`{"input": {"prompt": "p"}}`)})

	mu.Lock()
	defer mu.Unlock()
	if gotSchema == nil {
		t.Fatalf("schema not sent")
	}
	if gotName != "observer_reply" {
		t.Fatalf("schema name=%q", gotName)
	}
}

func TestRunnerRun_PreservesOrderAcrossSlices(t *testing.T) {
	t.Parallel()

	var recs []Record
	for _, id := range []string{"r0", "r1", "r2", "r3", "r4"} {
		recs = append(recs, Record(`{"id": "`+id+`", "input": {"prompt": "`+id+`"}}`))
	}
	caller := &stubCaller{reply: func(ChatRequest) (string, error) {
		return `{"observation": ["x"], "evaluations_detected": []}`, nil
	}}
	runner := &Runner{Caller: caller, BatchSize: 2}

	out := runner.Run(context.Background(), observerPass(t), recs)
	for i, id := range []string{"r0", "r1", "r2", "r3", "r4"} {
		got, _ := out[i].Get("id")
		if got.String() != id {
			t.Fatalf("out[%d].id=%q, want %q", i, got.String(), id)
		}
	}
	if caller.callCount() != 5 {
		t.Fatalf("calls=%d, want 5", caller.callCount())
	}
}
