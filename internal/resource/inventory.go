// Package resource provides interned resource identifiers and the inventory
// ledger shared by spaces, structures, and units.
package resource

import (
	"fmt"
	"sort"
	"strings"
)

// ID is an interned resource identifier. Only IDs handed out by a Registry
// are meaningful to the engine.
type ID string

// Fuel is the distinguished resource spent on movement.
const Fuel ID = "fuel"

// Registry holds the closed set of resource IDs known to a game.
type Registry struct {
	ids    map[ID]bool
	byName map[string]ID // lower-cased name → ID
	order  []ID
}

// NewRegistry builds a registry from resource names. Fuel is always present.
func NewRegistry(names []string) *Registry {
	r := &Registry{
		ids:    make(map[ID]bool, len(names)+1),
		byName: make(map[string]ID, len(names)+1),
	}
	for _, n := range names {
		r.add(ID(n))
	}
	r.add(Fuel)
	return r
}

func (r *Registry) add(id ID) {
	if r.ids[id] {
		return
	}
	r.ids[id] = true
	r.byName[strings.ToLower(string(id))] = id
	r.order = append(r.order, id)
}

// Lookup resolves a resource name to its ID. Exact matches win; otherwise
// the match is case-insensitive.
func (r *Registry) Lookup(name string) (ID, bool) {
	if r.ids[ID(name)] {
		return ID(name), true
	}
	id, ok := r.byName[strings.ToLower(name)]
	return id, ok
}

// Known reports whether id belongs to the registry.
func (r *Registry) Known(id ID) bool {
	return r.ids[id]
}

// IDs returns the registered IDs in registration order.
func (r *Registry) IDs() []ID {
	out := make([]ID, len(r.order))
	copy(out, r.order)
	return out
}

// Inventory maps resource IDs to non-negative counts. A missing key means zero.
type Inventory map[ID]int

// Get returns the count held for id.
func (inv Inventory) Get(id ID) int {
	return inv[id]
}

// Add increases id by n. n must be non-negative.
func (inv Inventory) Add(id ID, n int) {
	if n < 0 {
		panic(fmt.Sprintf("resource: negative add %d of %s", n, id))
	}
	if n == 0 {
		return
	}
	inv[id] += n
}

// Take removes n of id, failing without change when fewer are held.
func (inv Inventory) Take(id ID, n int) error {
	if n < 0 {
		return fmt.Errorf("resource: negative take %d of %s", n, id)
	}
	if inv[id] < n {
		return fmt.Errorf("resource: have %d %s, need %d", inv[id], id, n)
	}
	if n == 0 {
		return nil
	}
	inv[id] -= n
	if inv[id] == 0 {
		delete(inv, id)
	}
	return nil
}

// Shortfall returns, for every resource in req the inventory cannot cover,
// how many more are needed. An empty result means req is affordable.
func (inv Inventory) Shortfall(req Inventory) Inventory {
	missing := Inventory{}
	for id, need := range req {
		if have := inv[id]; have < need {
			missing[id] = need - have
		}
	}
	return missing
}

// Covers reports whether the inventory holds at least req.
func (inv Inventory) Covers(req Inventory) bool {
	return len(inv.Shortfall(req)) == 0
}

// Pay removes every entry of req, or nothing at all. On failure the shortfall
// is returned.
func (inv Inventory) Pay(req Inventory) (Inventory, bool) {
	if missing := inv.Shortfall(req); len(missing) > 0 {
		return missing, false
	}
	for id, n := range req {
		if n == 0 {
			continue
		}
		inv[id] -= n
		if inv[id] == 0 {
			delete(inv, id)
		}
	}
	return nil, true
}

// Transfer moves n of id from src to dst. Nothing moves if src holds fewer.
func Transfer(src, dst Inventory, id ID, n int) error {
	if err := src.Take(id, n); err != nil {
		return err
	}
	dst.Add(id, n)
	return nil
}

// Total sums every count except fuel, which does not occupy cargo space.
func (inv Inventory) Total() int {
	total := 0
	for id, n := range inv {
		if id != Fuel {
			total += n
		}
	}
	return total
}

// Clone returns an independent copy without zero entries.
func (inv Inventory) Clone() Inventory {
	out := make(Inventory, len(inv))
	for id, n := range inv {
		if n != 0 {
			out[id] = n
		}
	}
	return out
}

// Keys returns the held resource IDs in sorted order so callers iterate
// deterministically.
func (inv Inventory) Keys() []ID {
	keys := make([]ID, 0, len(inv))
	for id, n := range inv {
		if n > 0 {
			keys = append(keys, id)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// String renders the inventory in sorted key order.
func (inv Inventory) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, id := range inv.Keys() {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s:%d", id, inv[id])
	}
	b.WriteByte('}')
	return b.String()
}
