// Package intern maps strings to small integer symbols. The router interns
// path parameter names so repeated lookups compare integers instead of
// strings. Tables only grow; nothing is ever evicted.
package intern

import (
	"sync"
)

// Symbol identifies an interned string. The zero Symbol is never issued.
type Symbol uint32

// Interner is a concurrent string table. Lookups of known strings take no
// lock; inserting a new string serializes with other inserts only.
type Interner struct {
	forward sync.Map // string -> Symbol

	mu      sync.RWMutex
	reverse []string
}

// New returns an empty Interner.
func New() *Interner {
	return &Interner{reverse: []string{""}}
}

var (
	defaultOnce     sync.Once
	defaultInterner *Interner
)

// Default returns the process-wide table, creating it on first use.
func Default() *Interner {
	defaultOnce.Do(func() {
		defaultInterner = New()
	})
	return defaultInterner
}

// GetOrIntern returns the symbol for s, allocating one if s is new.
func (in *Interner) GetOrIntern(s string) Symbol {
	if sym, ok := in.forward.Load(s); ok {
		return sym.(Symbol)
	}

	in.mu.Lock()
	defer in.mu.Unlock()

	// Another goroutine may have won the race between Load and Lock.
	if sym, ok := in.forward.Load(s); ok {
		return sym.(Symbol)
	}

	sym := Symbol(len(in.reverse))
	in.reverse = append(in.reverse, s)
	in.forward.Store(s, sym)
	return sym
}

// Get returns the symbol for s without interning it.
func (in *Interner) Get(s string) (Symbol, bool) {
	sym, ok := in.forward.Load(s)
	if !ok {
		return 0, false
	}
	return sym.(Symbol), true
}

// Resolve returns the string behind sym.
func (in *Interner) Resolve(sym Symbol) (string, bool) {
	in.mu.RLock()
	defer in.mu.RUnlock()

	if sym == 0 || int(sym) >= len(in.reverse) {
		return "", false
	}
	return in.reverse[sym], true
}

// MustResolve is Resolve for symbols known to come from this table.
func (in *Interner) MustResolve(sym Symbol) string {
	s, ok := in.Resolve(sym)
	if !ok {
		panic("intern: unknown symbol")
	}
	return s
}

// Len returns the number of interned strings.
func (in *Interner) Len() int {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return len(in.reverse) - 1
}
