package inflector

import "sync/atomic"

// Reloadable hands out the current engine while a new one may be swapped in
// at any time. Engines themselves are never modified.
type Reloadable struct {
	current atomic.Pointer[Engine]
}

func NewReloadable(engine *Engine) *Reloadable {
	var r Reloadable
	r.current.Store(engine)
	return &r
}

func (r *Reloadable) Get() *Engine {
	return r.current.Load()
}

// Swap stores engine and returns the previous one.
func (r *Reloadable) Swap(engine *Engine) *Engine {
	return r.current.Swap(engine)
}
