//go:build linux
// +build linux

package tinyhttpd

import (
	"github.com/bits-and-blooms/bitset"
	"github.com/pkg/errors"
)

// Slot is an occupied entry of a SlotTable.
type Slot struct {
	Index int
	Conn  *Conn
}

// SlotTable is a fixed capacity registry of active client connections. A new
// connection always takes the lowest free index. It is not safe for
// concurrent use, the server loop is its only user.
type SlotTable struct {
	conns []*Conn
	free  *bitset.BitSet
	byFd  map[int]int
}

// NewSlotTable returns an empty table with the given capacity.
func NewSlotTable(capacity int) (*SlotTable, error) {
	if capacity < 1 {
		return nil, errors.Errorf("invalid slot capacity %d", capacity)
	}
	free := bitset.New(uint(capacity))
	for i := 0; i < capacity; i++ {
		free.Set(uint(i))
	}
	return &SlotTable{
		conns: make([]*Conn, capacity),
		free:  free,
		byFd:  make(map[int]int, capacity),
	}, nil
}

// TryAcquire stores c in the first empty slot and returns its index. It
// returns ErrTableFull when no slot is empty.
func (t *SlotTable) TryAcquire(c *Conn) (int, error) {
	if c == nil {
		return -1, errors.New("nil connection")
	}
	if _, ok := t.byFd[c.Fd()]; ok {
		return -1, ErrDuplicateConn
	}
	idx, ok := t.free.NextSet(0)
	if !ok || int(idx) >= len(t.conns) {
		return -1, ErrTableFull
	}
	t.free.Clear(idx)
	t.conns[idx] = c
	t.byFd[c.Fd()] = int(idx)
	return int(idx), nil
}

// Release empties the slot at idx and returns the connection it held. The
// connection is not closed. Releasing an empty or out of range slot returns
// false and changes nothing.
func (t *SlotTable) Release(idx int) (*Conn, bool) {
	if idx < 0 || idx >= len(t.conns) {
		return nil, false
	}
	c := t.conns[idx]
	if c == nil {
		return nil, false
	}
	t.conns[idx] = nil
	delete(t.byFd, c.Fd())
	t.free.Set(uint(idx))
	return c, true
}

// Occupied returns the occupied slots in table order.
func (t *SlotTable) Occupied() []Slot {
	slots := make([]Slot, 0, t.Len())
	for i, c := range t.conns {
		if c != nil {
			slots = append(slots, Slot{Index: i, Conn: c})
		}
	}
	return slots
}

// Len returns the number of occupied slots.
func (t *SlotTable) Len() int {
	return len(t.conns) - int(t.free.Count())
}

// Cap returns the capacity of the table.
func (t *SlotTable) Cap() int {
	return len(t.conns)
}
