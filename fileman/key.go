package fileman

import "github.com/hupe1980/gridgo/engine"

// Key identifies one logical open file: which engine, which path, which
// mode and which canonicalized open options. Managers with equal keys
// share a single native handle.
type Key struct {
	Engine  string
	Path    string
	Mode    engine.Mode
	Options string
}

// KeyFor builds the cache key for an open request.
func KeyFor(eng engine.Engine, path string, mode engine.Mode, opts engine.Options) Key {
	return Key{
		Engine:  eng.Name(),
		Path:    path,
		Mode:    mode,
		Options: opts.Canonical(),
	}
}

// id returns the singleflight group key.
func (k Key) id() string {
	return k.Engine + "\x00" + k.Path + "\x00" + string(k.Mode) + "\x00" + k.Options
}
