package config

import (
	"log"

	"github.com/fsnotify/fsnotify"
)

// Watcher hot-reloads gametypes.toml (and the non-latched parts of
// server.yaml) on write, calling onGametypes/onRotation with the freshly
// parsed values. Listen address and MaxClients are never re-read here —
// those changes only take effect on the next map_restart.
type Watcher struct {
	fsw           *fsnotify.Watcher
	serverPath    string
	gametypesPath string
	onRotation    func([]MapRotationEntry)
	onGametypes   func(Gametypes)
}

// NewWatcher starts watching serverPath and gametypesPath for writes.
func NewWatcher(serverPath, gametypesPath string, onRotation func([]MapRotationEntry), onGametypes func(Gametypes)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(serverPath); err != nil {
		fsw.Close()
		return nil, err
	}
	if err := fsw.Add(gametypesPath); err != nil {
		fsw.Close()
		return nil, err
	}

	w := &Watcher{
		fsw:           fsw,
		serverPath:    serverPath,
		gametypesPath: gametypesPath,
		onRotation:    onRotation,
		onGametypes:   onGametypes,
	}
	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.reload(event.Name)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			log.Printf("config: watch error: %v", err)
		}
	}
}

func (w *Watcher) reload(path string) {
	switch path {
	case w.serverPath:
		cfg, err := LoadServer(w.serverPath)
		if err != nil {
			log.Printf("config: reload %s failed: %v", path, err)
			return
		}
		if w.onRotation != nil {
			w.onRotation(cfg.Rotation)
		}
	case w.gametypesPath:
		gt, err := LoadGametypes(w.gametypesPath)
		if err != nil {
			log.Printf("config: reload %s failed: %v", path, err)
			return
		}
		if w.onGametypes != nil {
			w.onGametypes(gt)
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error { return w.fsw.Close() }
