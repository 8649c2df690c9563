// Package store keeps the locally held entity collections consistent with the
// remote source of truth under optimistic mutation. Collections are mutated
// only through this package; every other layer reads snapshots and emits
// intents.
package store

import "sync"

// Entity is anything with a stable identifier.
type Entity interface {
	EntityID() string
}

// Collection is an in-memory entity collection supporting staged optimistic
// mutations. Each stage captures its rollback data before the optimistic
// patch is applied, and carries a per-entity sequence number so that a
// mutation superseded by a later stage for the same entity ignores its own
// commit and rollback: per-entity changes land in the order the server
// accepted them, not the order the client fired them.
type Collection[T Entity] struct {
	mu         sync.RWMutex
	items      []T
	index      map[string]int
	seq        map[string]uint64
	epoch      uint64
	generation uint64
}

func NewCollection[T Entity]() *Collection[T] {
	return &Collection[T]{
		index: make(map[string]int),
		seq:   make(map[string]uint64),
	}
}

// Snapshot returns a copy of the current items.
func (c *Collection[T]) Snapshot() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

// Get returns the entity with the given id.
func (c *Collection[T]) Get(id string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i, ok := c.index[id]; ok {
		return c.items[i], true
	}
	var zero T
	return zero, false
}

// Len returns the number of items held.
func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Replace swaps in an authoritative full snapshot. All staged mutations are
// superseded: their later commits and rollbacks become no-ops.
func (c *Collection[T]) Replace(items []T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make([]T, len(items))
	copy(c.items, items)
	c.rebuildIndex()
	c.epoch++
	c.seq = make(map[string]uint64)
	c.generation++
}

// Generation is a monotonically increasing counter bumped on every Replace
// and Invalidate. Views compare generations to decide whether to re-render.
func (c *Collection[T]) Generation() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.generation
}

// Invalidate marks the collection stale, signalling that a full re-fetch is
// wanted. Returns the new generation.
func (c *Collection[T]) Invalidate() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	return c.generation
}

// Mutation is a staged optimistic change awaiting server confirmation.
type Mutation[T Entity] struct {
	col     *Collection[T]
	id      string
	seq     uint64
	epoch   uint64
	restore func()
	done    bool
}

// StageUpsert optimistically inserts or replaces the entity and returns the
// staged mutation. Rollback data is captured before the patch is applied.
func (c *Collection[T]) StageUpsert(item T) *Mutation[T] {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := item.EntityID()
	m := c.stage(id)
	if i, ok := c.index[id]; ok {
		prev := c.items[i]
		m.restore = func() {
			if j, ok := c.index[id]; ok {
				c.items[j] = prev
			}
		}
		c.items[i] = item
	} else {
		c.items = append(c.items, item)
		c.index[id] = len(c.items) - 1
		m.restore = func() { c.removeLocked(id) }
	}
	return m
}

// StageRemove optimistically removes the entity.
func (c *Collection[T]) StageRemove(id string) *Mutation[T] {
	c.mu.Lock()
	defer c.mu.Unlock()

	m := c.stage(id)
	if i, ok := c.index[id]; ok {
		prev := c.items[i]
		m.restore = func() {
			c.items = append(c.items, prev)
			c.rebuildIndex()
		}
		c.removeLocked(id)
	} else {
		m.restore = func() {}
	}
	return m
}

func (c *Collection[T]) stage(id string) *Mutation[T] {
	c.seq[id]++
	return &Mutation[T]{col: c, id: id, seq: c.seq[id], epoch: c.epoch}
}

func (c *Collection[T]) removeLocked(id string) {
	i, ok := c.index[id]
	if !ok {
		return
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
	c.rebuildIndex()
}

func (c *Collection[T]) rebuildIndex() {
	c.index = make(map[string]int, len(c.items))
	for i, it := range c.items {
		c.index[it.EntityID()] = i
	}
}

func (m *Mutation[T]) superseded() bool {
	return m.epoch != m.col.epoch || m.col.seq[m.id] != m.seq
}

// Commit replaces the optimistic guess with the authoritative server object.
// No-op when the mutation was superseded.
func (m *Mutation[T]) Commit(server T) {
	c := m.col
	c.mu.Lock()
	defer c.mu.Unlock()
	if m.done || m.superseded() {
		return
	}
	m.done = true
	id := server.EntityID()
	if i, ok := c.index[id]; ok {
		c.items[i] = server
	} else {
		c.items = append(c.items, server)
		c.index[id] = len(c.items) - 1
	}
	c.generation++
}

// CommitRemoval confirms a staged removal. No-op when superseded.
func (m *Mutation[T]) CommitRemoval() {
	c := m.col
	c.mu.Lock()
	defer c.mu.Unlock()
	if m.done || m.superseded() {
		return
	}
	m.done = true
	c.removeLocked(m.id)
	c.generation++
}

// Rollback reverts the optimistic patch. No-op when the mutation already
// committed or was superseded; local state never silently diverges from the
// server.
func (m *Mutation[T]) Rollback() {
	c := m.col
	c.mu.Lock()
	defer c.mu.Unlock()
	if m.done || m.superseded() {
		return
	}
	m.done = true
	m.restore()
}
