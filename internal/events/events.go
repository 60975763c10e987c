// Package events emits one structured event per pipeline stage so behavior
// can be asserted in tests and observed in production without parsing log
// lines. The production emitter writes through zap; tests use Recorder.
package events

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Stage identifies a pipeline stage.
type Stage string

const (
	StageClassified         Stage = "classified"
	StageTierSelected       Stage = "tier_selected"
	StageProviderResult     Stage = "provider_result"
	StageGateDecision       Stage = "gate_decision"
	StageVerificationResult Stage = "verification_result"
)

// Event is one pipeline stage observation for one request.
type Event struct {
	RequestID string
	Stage     Stage
	At        time.Time
	Fields    map[string]interface{}
}

// Emitter receives pipeline events. Implementations must be cheap and
// non-blocking; the pipeline never waits on observability.
type Emitter interface {
	Emit(requestID string, stage Stage, fields map[string]interface{})
}

// ZapEmitter logs each event at debug level with structured fields.
type ZapEmitter struct {
	logger *zap.Logger
}

func NewZapEmitter(logger *zap.Logger) *ZapEmitter {
	return &ZapEmitter{logger: logger}
}

func (z *ZapEmitter) Emit(requestID string, stage Stage, fields map[string]interface{}) {
	zf := make([]zap.Field, 0, len(fields)+2)
	zf = append(zf, zap.String("request_id", requestID), zap.String("stage", string(stage)))
	for k, v := range fields {
		zf = append(zf, zap.Any(k, v))
	}
	z.logger.Debug("pipeline event", zf...)
}

// Recorder keeps events in memory for test assertions.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Emit(requestID string, stage Stage, fields map[string]interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Event{
		RequestID: requestID,
		Stage:     stage,
		At:        time.Now(),
		Fields:    fields,
	})
}

// Events returns a copy of everything recorded so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Stages returns just the stage sequence, in emission order.
func (r *Recorder) Stages() []Stage {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Stage, len(r.events))
	for i, e := range r.events {
		out[i] = e.Stage
	}
	return out
}

// Nop discards everything.
type Nop struct{}

func (Nop) Emit(string, Stage, map[string]interface{}) {}
