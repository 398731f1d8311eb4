package notify_test

import (
	"runtime"
	"testing"

	"github.com/delaneyj/reactor/notify"
	"github.com/stretchr/testify/assert"
)

// weakTarget is padded past the runtime's 16-byte tiny-allocation size, so
// each target is its own heap object and is reclaimed once unreachable
// instead of living on with whatever shares its tiny block.
type weakTarget struct {
	seen int
	_    [16]byte
}

func TestWeakListDeliversToLiveTarget(t *testing.T) {
	l := notify.NewWeakList[weakTarget, notify.Args]()
	target := &weakTarget{}
	l.Add(target, func(t *weakTarget, a notify.Args) { t.seen++ })

	l.Notify(notify.Args{Name: "X"})
	assert.Equal(t, 1, target.seen)
	assert.Equal(t, 1, l.Len())
}

func TestWeakListSelfRemovesReclaimedTarget(t *testing.T) {
	l := notify.NewWeakList[weakTarget, notify.Args]()
	func() {
		target := &weakTarget{}
		l.Add(target, func(t *weakTarget, a notify.Args) { t.seen++ })
	}()

	runtime.GC()
	runtime.GC()
	l.Notify(notify.Args{Name: "X"})
	assert.Equal(t, 0, l.Len())
}

func TestWeakListRemoveIsEager(t *testing.T) {
	l := notify.NewWeakList[weakTarget, notify.Args]()
	target := &weakTarget{}
	remove := l.Add(target, func(t *weakTarget, a notify.Args) { t.seen++ })
	remove()

	l.Notify(notify.Args{Name: "X"})
	assert.Equal(t, 0, target.seen)
}
