package sptr

import (
	"context"
	"log/slog"

	"github.com/boboxa2010/SmartPointers/internal/ctrlblock"
)

// Observer receives control block lifecycle events. Implementations run
// synchronously inside the handle operation that caused the event and
// must not use handles of the block being reported.
type Observer = ctrlblock.Observer

// BlockInfo describes a control block at the time of an event.
type BlockInfo = ctrlblock.Info

// BlockEvent is a control block lifecycle event.
type BlockEvent = ctrlblock.Event

// BlockKind is the control block representation.
type BlockKind = ctrlblock.Kind

// BlockState is the lifecycle phase of a control block.
type BlockState = ctrlblock.State

// Lifecycle events.
const (
	EventAllocated        = ctrlblock.EventAllocated
	EventPayloadDestroyed = ctrlblock.EventPayloadDestroyed
	EventFreed            = ctrlblock.EventFreed
)

// Block kinds.
const (
	KindPointer = ctrlblock.KindPointer
	KindHolder  = ctrlblock.KindHolder
)

// Block states.
const (
	StateCreated     = ctrlblock.StateCreated
	StateLive        = ctrlblock.StateLive
	StatePayloadDead = ctrlblock.StatePayloadDead
	StateFreed       = ctrlblock.StateFreed
)

// MultiObserver returns an observer delivering every event to each of
// obs in order.
func MultiObserver(obs ...Observer) Observer {
	return ctrlblock.Multi(obs)
}

// logObserver writes block events at debug level.
type logObserver struct {
	l *slog.Logger
}

// NewLogObserver returns an observer logging every block event at debug
// level to l, or to the package logger if l is nil.
func NewLogObserver(l *slog.Logger) Observer {
	return logObserver{l: l}
}

// OnBlockEvent implements Observer.
func (o logObserver) OnBlockEvent(ev BlockEvent, info BlockInfo) {
	l := o.l
	if l == nil {
		l = log()
	}
	if !l.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	l.LogAttrs(context.Background(), slog.LevelDebug, "sptr: block event",
		slog.String("event", ev.String()),
		slog.Uint64("block", info.ID),
		slog.String("kind", info.Kind.String()),
		slog.String("type", info.TypeName),
		slog.Uint64("strong", uint64(info.Strong)),
		slog.Uint64("weak", uint64(info.Weak)),
	)
}
