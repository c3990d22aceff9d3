// monitor.go
package file

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// FileMonitor 监听数据目录，数据集文件被写入或重新创建时回调
type FileMonitor struct {
	watchDir string
	watcher  *fsnotify.Watcher
	names    map[string]struct{} // 只关心这些文件名
	lastMod  map[string]time.Time
	mu       sync.Mutex
}

func NewFileMonitor(dir string, files ...string) (*FileMonitor, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, err
	}

	names := make(map[string]struct{}, len(files))
	for _, f := range files {
		names[filepath.Base(f)] = struct{}{}
	}

	return &FileMonitor{
		watchDir: dir,
		watcher:  watcher,
		names:    names,
		lastMod:  make(map[string]time.Time),
	}, nil
}

// Watch 阻塞直到Close或watcher出错
func (m *FileMonitor) Watch(handler func(string)) error {
	for {
		select {
		case event, ok := <-m.watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if !m.interested(event.Name) {
				continue
			}
			info, err := os.Stat(event.Name)
			if err != nil || info.IsDir() {
				continue
			}

			m.mu.Lock()
			if info.ModTime().After(m.lastMod[event.Name]) {
				m.lastMod[event.Name] = info.ModTime()
				go handler(event.Name)
			}
			m.mu.Unlock()
		case err, ok := <-m.watcher.Errors:
			if !ok {
				return nil
			}
			return err
		}
	}
}

func (m *FileMonitor) interested(name string) bool {
	if len(m.names) == 0 {
		return true
	}
	_, ok := m.names[filepath.Base(name)]
	return ok
}

func (m *FileMonitor) Close() error {
	return m.watcher.Close()
}
