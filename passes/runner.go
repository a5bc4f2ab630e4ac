package passes

import (
	"context"
	"log/slog"
	"strings"
	"sync"
)

// DefaultBatchSize bounds how many records one slice holds, which is also the
// number of in-flight model calls while that slice runs.
const DefaultBatchSize = 64

// Runner executes one pass over a record set in fixed-size slices. Records
// whose owned fields are already filled skip the model entirely and pass
// through untouched.
type Runner struct {
	Caller       ChatCaller
	BatchSize    int
	StrictSchema bool
	Logger       *slog.Logger
}

// Run processes every record through the pass and returns the updated set,
// same length and order as the input. Failed and empty-reply records come
// back unchanged; the caller decides whether a rerun is worth it.
func (r *Runner) Run(ctx context.Context, p *Pass, recs []Record) []Record {
	batch := r.BatchSize
	if batch <= 0 {
		batch = DefaultBatchSize
	}
	log := r.Logger
	if log == nil {
		log = slog.Default()
	}
	log = log.With("pass", p.Name())

	// Assembling the system prompt loads ontology files; do it before the
	// first slice so workers never race the caches.
	p.SystemPrompt()

	out := make([]Record, len(recs))
	for start := 0; start < len(recs); start += batch {
		end := start + batch
		if end > len(recs) {
			end = len(recs)
		}
		merged := r.runSlice(ctx, p, log, recs[start:end], out[start:end])
		log.Info("slice done",
			"from", start, "to", end, "total", len(recs), "merged", merged)
	}
	return out
}

// runSlice fans pending records out to one goroutine each and writes results
// into dst by position. Returns how many records actually merged an update.
func (r *Runner) runSlice(ctx context.Context, p *Pass, log *slog.Logger, src, dst []Record) int {
	var wg sync.WaitGroup
	mergedFlags := make([]bool, len(src))

	for i, rec := range src {
		if p.AlreadySatisfied(rec) {
			dst[i] = rec
			continue
		}
		wg.Add(1)
		go func(i int, rec Record) {
			defer wg.Done()
			updated, merged := r.process(ctx, p, log, rec)
			dst[i] = updated
			mergedFlags[i] = merged
		}(i, rec)
	}
	wg.Wait()

	merged := 0
	for _, ok := range mergedFlags {
		if ok {
			merged++
		}
	}
	return merged
}

// process makes the single model attempt for one record. Any failure mode,
// transport error, empty reply, unextractable JSON, merge error, leaves the
// record exactly as it came in.
func (r *Runner) process(ctx context.Context, p *Pass, log *slog.Logger, rec Record) (Record, bool) {
	req := ChatRequest{
		System: p.SystemPrompt(),
		User:   p.BuildUserPrompt(rec),
	}
	if r.StrictSchema {
		req.SchemaName = p.Name() + "_reply"
		req.Schema = p.ReplySchema()
	}

	text, err := r.Caller.Complete(ctx, req)
	if err != nil {
		log.Warn("model call failed, record unchanged", "error", err)
		return rec, false
	}
	if strings.TrimSpace(text) == "" {
		log.Warn("empty model reply, record unchanged")
		return rec, false
	}

	upd := p.ParseReply(text)
	if len(upd) == 0 {
		log.Warn("no fields recovered from reply, record unchanged")
		return rec, false
	}
	updated, err := p.Apply(rec, upd)
	if err != nil {
		log.Warn("merge failed, record unchanged", "error", err)
		return rec, false
	}
	return updated, true
}
