package ctrlblock

// State is the lifecycle phase of a control block.
type State uint8

const (
	// StateCreated: strong=1, weak=0, no handle has been copied yet.
	StateCreated State = iota
	// StateLive: strong>0 after at least one counter increment.
	StateLive
	// StatePayloadDead: strong=0, weak>0. Payload destroyed, block alive.
	StatePayloadDead
	// StateFreed: strong=0, weak=0. Terminal.
	StateFreed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateLive:
		return "live"
	case StatePayloadDead:
		return "payload-dead"
	case StateFreed:
		return "freed"
	default:
		return "unknown"
	}
}

// Kind identifies the block representation.
type Kind uint8

const (
	// KindPointer is a block adopting an independently allocated payload.
	KindPointer Kind = iota + 1
	// KindHolder is a block embedding its payload.
	KindHolder
)

// String returns the kind name used in reports and metric labels.
func (k Kind) String() string {
	switch k {
	case KindPointer:
		return "pointer"
	case KindHolder:
		return "holder"
	default:
		return "unknown"
	}
}
