// Package elevtrace records what the simulated actors do.
//
// Every actor emits while holding its own lock, and Trace assigns sequence numbers under its own lock,
// so the recorded order is the order in which the state changes actually happened.
package elevtrace

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/aymen-Dahmoun/elevatorcontroller/internal/logger"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var Log = logger.GetLogger()

type Category rune

const (
	Rider    Category = '#'
	Door     Category = '*'
	Elevator Category = '+'
)

func (c Category) String() string {
	switch c {
	case Rider:
		return "Rider"
	case Door:
		return "Door"
	case Elevator:
		return "Elevator"
	default:
		return "Unknown"
	}
}

type Event struct {
	ID       uuid.UUID
	RunID    uuid.UUID
	Seq      uint64
	Time     time.Time
	Category Category
	Actor    string
	Action   string
}

// Format renders the event the way the trace is printed: "<seq>.<marker> <actor>: <marker> <action>".
func (e Event) Format() string {
	return fmt.Sprintf("%d.%c %s: %c %s", e.Seq, rune(e.Category), e.Actor, rune(e.Category), e.Action)
}

type Sink interface {
	Emit(e Event)
}

// Emit builds an event and hands it to the sink. A nil sink discards.
func Emit(sink Sink, category Category, actor string, action string) {
	if sink == nil {
		return
	}
	sink.Emit(Event{Category: category, Actor: actor, Action: action})
}

func Emitf(sink Sink, category Category, actor string, format string, args ...any) {
	if sink == nil {
		return
	}
	Emit(sink, category, actor, fmt.Sprintf(format, args...))
}

// Trace is an in-memory, ordered event log.
type Trace struct {
	mu     sync.Mutex
	runID  uuid.UUID
	seq    uint64
	start  time.Time
	events []Event
}

func NewTrace(runID uuid.UUID) *Trace {
	return &Trace{runID: runID, start: time.Now()}
}

func (t *Trace) RunID() uuid.UUID {
	return t.runID
}

// Elapsed is the time from trace creation to the event.
func (t *Trace) Elapsed(e Event) time.Duration {
	return e.Time.Sub(t.start)
}

func (t *Trace) Emit(e Event) {
	t.record(e)
}

// record stores the event and returns it with Seq, Time, ID and RunID filled in.
func (t *Trace) record(e Event) Event {
	t.mu.Lock()
	defer t.mu.Unlock()

	e.Seq = t.seq
	t.seq++
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.RunID == uuid.Nil {
		e.RunID = t.runID
	}
	t.events = append(t.events, e)
	return e
}

func (t *Trace) Events() []Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	events := make([]Event, len(t.events))
	copy(events, t.events)
	return events
}

func (t *Trace) ByCategory(category Category) []Event {
	return t.filter(func(e Event) bool { return e.Category == category })
}

func (t *Trace) ByActor(actor string) []Event {
	return t.filter(func(e Event) bool { return e.Actor == actor })
}

func (t *Trace) filter(keep func(Event) bool) []Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	var events []Event
	for _, e := range t.events {
		if keep(e) {
			events = append(events, e)
		}
	}
	return events
}

func (t *Trace) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.events)
}

// Clear drops all events. Sequence numbers keep counting.
func (t *Trace) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.events = nil
}

func (t *Trace) Format() string {
	var sb strings.Builder
	for _, e := range t.Events() {
		sb.WriteString(e.Format())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// LogSink writes every event to a zerolog logger at debug level.
type LogSink struct {
	log *zerolog.Logger
}

func NewLogSink(log *zerolog.Logger) *LogSink {
	if log == nil {
		log = Log
	}
	return &LogSink{log: log}
}

func (s *LogSink) Emit(e Event) {
	s.log.Debug().
		Str("category", e.Category.String()).
		Str("actor", e.Actor).
		Uint64("seq", e.Seq).
		Msg(e.Action)
}

// MultiSink fans out to several sinks in order. Put the Trace first so sequence numbers reach the log.
type MultiSink []Sink

func (m MultiSink) Emit(e Event) {
	for _, sink := range m {
		if trace, ok := sink.(*Trace); ok {
			e = trace.record(e)
			continue
		}
		sink.Emit(e)
	}
}

type discard struct{}

func (discard) Emit(Event) {}

var Discard Sink = discard{}
