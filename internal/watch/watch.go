// Package watch wraps fsnotify with channel-based delivery for the
// verity-contracts watch mode.
package watch

import (
	"github.com/fsnotify/fsnotify"
)

// Op is a bitmask of filesystem operations observed on a path.
type Op uint32

const (
	OpCreate Op = 1 << iota
	OpWrite
	OpRemove
	OpRename
	OpChmod
)

// Event is a single filesystem notification.
type Event struct {
	Path string
	Op   Op
}

// Has reports whether the event includes the given operation.
func (e Event) Has(op Op) bool { return e.Op&op != 0 }

// Watcher delivers OS-native file notifications over channels.
type Watcher struct {
	w   *fsnotify.Watcher
	evC chan Event
	erC chan error
}

// New creates a Watcher and starts its delivery loop.
func New() (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	fw := &Watcher{w: w, evC: make(chan Event, 128), erC: make(chan error, 1)}
	go fw.loop()
	return fw, nil
}

func (fw *Watcher) loop() {
	for {
		select {
		case ev, ok := <-fw.w.Events:
			if !ok {
				close(fw.evC)
				return
			}
			var op Op
			if ev.Op&fsnotify.Create != 0 {
				op |= OpCreate
			}
			if ev.Op&fsnotify.Write != 0 {
				op |= OpWrite
			}
			if ev.Op&fsnotify.Remove != 0 {
				op |= OpRemove
			}
			if ev.Op&fsnotify.Rename != 0 {
				op |= OpRename
			}
			if ev.Op&fsnotify.Chmod != 0 {
				op |= OpChmod
			}
			fw.evC <- Event{Path: ev.Name, Op: op}
		case err, ok := <-fw.w.Errors:
			if !ok {
				return
			}
			fw.erC <- err
		}
	}
}

// Events returns the event delivery channel.
func (fw *Watcher) Events() <-chan Event { return fw.evC }

// Errors returns the error delivery channel.
func (fw *Watcher) Errors() <-chan error { return fw.erC }

// Add starts watching the named file or directory.
func (fw *Watcher) Add(name string) error { return fw.w.Add(name) }

// Remove stops watching the named file or directory.
func (fw *Watcher) Remove(name string) error { return fw.w.Remove(name) }

// Close shuts the watcher down.
func (fw *Watcher) Close() error { return fw.w.Close() }
