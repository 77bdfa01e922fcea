package bridge

import (
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watch observes dir and emits a ping whenever its contents change, so the
// file browser can refresh without polling. Bursts of events coalesce into a
// single pending ping. The returned stop function releases the watcher.
func (b *Bridge) Watch(dir string) (<-chan struct{}, func(), error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, err
	}
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, nil, err
	}

	pings := make(chan struct{}, 1)
	go func() {
		defer close(pings)
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename|fsnotify.Write) == 0 {
					continue
				}
				select {
				case pings <- struct{}{}:
				default:
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				b.log.Warn("directory watch error", zap.String("dir", dir), zap.Error(err))
			}
		}
	}()

	stop := func() {
		_ = watcher.Close()
	}
	return pings, stop, nil
}
