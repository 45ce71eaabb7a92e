package sptr

import (
	"io"

	"github.com/boboxa2010/SmartPointers/internal/allocsite"
	"github.com/boboxa2010/SmartPointers/internal/config"
	"github.com/boboxa2010/SmartPointers/internal/ctrlblock"
	"github.com/boboxa2010/SmartPointers/internal/leak"
)

const modulePath = "github.com/boboxa2010/SmartPointers/"

// internalFrames is the number of frames between a constructor call in
// user code and the tracker's stack capture. Reserved on top of the
// configured depth so user frames are not crowded out.
const internalFrames = 6

// allocFramePrefixes hides the allocation machinery in leak reports.
var allocFramePrefixes = []string{
	modulePath + "internal/",
	modulePath + "sptr.NewShared",
	modulePath + "sptr.MakeShared",
	modulePath + "sptr.(*SharedPtr[",
}

// The installed ctrlblock observer is composed from three parts so that
// SetObserver and EnableTracking do not replace each other.
var (
	userObserver  Observer
	debugObserver Observer
	tracker       *leak.Tracker
	stackDepth    = allocsite.DefaultDepth
)

func init() {
	cfg := config.FromEnv()
	stackDepth = cfg.StackDepth
	if cfg.Log {
		debugObserver = NewLogObserver(nil)
	}
	if cfg.Track {
		tracker = newTracker()
	}
	reinstall()
}

func newTracker() *leak.Tracker {
	return leak.NewTracker(allocsite.NewDepot(stackDepth+internalFrames, allocFramePrefixes...))
}

func reinstall() {
	var m ctrlblock.Multi
	if tracker != nil {
		m = append(m, tracker)
	}
	if debugObserver != nil {
		m = append(m, debugObserver)
	}
	if userObserver != nil {
		m = append(m, userObserver)
	}
	switch len(m) {
	case 0:
		ctrlblock.SetObserver(nil)
	case 1:
		ctrlblock.SetObserver(m[0])
	default:
		ctrlblock.SetObserver(m)
	}
}

// SetObserver installs o to receive block lifecycle events and returns the
// observer installed before. nil removes it. The allocation tracker and
// the SMARTPTR_DEBUG log observer keep running independently.
//
// Configure observers at start-up; the setting is process wide and not
// synchronized.
func SetObserver(o Observer) Observer {
	prev := userObserver
	userObserver = o
	reinstall()
	return prev
}

// EnableTracking starts recording every control block allocated from now
// on, with its allocation stack. The returned function restores the
// previous tracking state; blocks recorded so far are forgotten.
//
//	defer sptr.EnableTracking()()
func EnableTracking() (restore func()) {
	prev := tracker
	tracker = newTracker()
	reinstall()
	return func() {
		tracker = prev
		reinstall()
	}
}

// Tracking reports whether allocation tracking is active.
func Tracking() bool { return tracker != nil }

// LiveBlocks returns the tracked control blocks that are not yet freed,
// in allocation order. It returns nil when tracking is off.
func LiveBlocks() []BlockInfo {
	if tracker == nil {
		return nil
	}
	recs := tracker.Live()
	out := make([]BlockInfo, len(recs))
	for i, rec := range recs {
		out[i] = rec.Info
	}
	return out
}

// WriteLeakReport writes every tracked control block that is still
// referenced, with its allocation stack, and returns how many there are.
// Call it at the end of a test or before exit:
//
//	if n := sptr.WriteLeakReport(os.Stderr); n > 0 {
//		os.Exit(1)
//	}
func WriteLeakReport(w io.Writer) int {
	if tracker == nil {
		return 0
	}
	return tracker.WriteReport(w)
}
