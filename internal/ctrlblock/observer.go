package ctrlblock

// Event is a block lifecycle event delivered to the installed Observer.
type Event uint8

const (
	// EventAllocated fires once the block and its payload exist.
	EventAllocated Event = iota + 1
	// EventPayloadDestroyed fires after DestroyPayload returned.
	EventPayloadDestroyed
	// EventFreed fires when both counters reached zero.
	EventFreed
)

// String returns the event name.
func (e Event) String() string {
	switch e {
	case EventAllocated:
		return "allocated"
	case EventPayloadDestroyed:
		return "payload-destroyed"
	case EventFreed:
		return "freed"
	default:
		return "unknown"
	}
}

// Info is a snapshot of a block taken when an event fires.
type Info struct {
	ID       uint64
	Kind     Kind
	State    State
	TypeName string
	Strong   uint
	Weak     uint

	block Block
}

// Current re-reads the block the snapshot was taken from. Observers that
// keep an Info past the event use it to see counter changes, which do not
// generate events of their own.
func (i Info) Current() Info {
	if i.block == nil {
		return i
	}
	return Describe(i.block)
}

// Observer receives block lifecycle events.
//
// OnBlockEvent runs synchronously inside the handle operation that caused
// the event and must not touch handles of the block it is told about.
type Observer interface {
	OnBlockEvent(ev Event, info Info)
}

// observer is the process-wide hook; nil means no reporting.
var observer Observer

// SetObserver installs o and returns the previously installed observer.
// Passing nil disables reporting.
func SetObserver(o Observer) Observer {
	prev := observer
	observer = o
	return prev
}

// CurrentObserver returns the installed observer, or nil.
func CurrentObserver() Observer {
	return observer
}

// Describe snapshots b.
func Describe(b Block) Info {
	return Info{
		ID:       b.ID(),
		Kind:     b.Kind(),
		State:    b.State(),
		TypeName: b.TypeName(),
		Strong:   b.UseCount(),
		Weak:     b.WeakCount(),
		block:    b,
	}
}

func notify(ev Event, b Block) {
	if observer == nil {
		return
	}
	observer.OnBlockEvent(ev, Describe(b))
}

// Multi fans events out to several observers in order. Nil entries are
// skipped.
type Multi []Observer

// OnBlockEvent implements Observer.
func (m Multi) OnBlockEvent(ev Event, info Info) {
	for _, o := range m {
		if o != nil {
			o.OnBlockEvent(ev, info)
		}
	}
}
