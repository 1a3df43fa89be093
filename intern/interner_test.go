package intern

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterner_GetOrIntern(t *testing.T) {
	in := New()

	id := in.GetOrIntern("id")
	name := in.GetOrIntern("name")

	assert.NotEqual(t, Symbol(0), id)
	assert.NotEqual(t, id, name)
	assert.Equal(t, id, in.GetOrIntern("id"))
	assert.Equal(t, 2, in.Len())
}

func TestInterner_Get(t *testing.T) {
	in := New()

	_, ok := in.Get("missing")
	assert.False(t, ok)
	assert.Equal(t, 0, in.Len(), "Get must not intern")

	sym := in.GetOrIntern("present")
	got, ok := in.Get("present")
	require.True(t, ok)
	assert.Equal(t, sym, got)
}

func TestInterner_Resolve(t *testing.T) {
	in := New()
	sym := in.GetOrIntern("owner")

	s, ok := in.Resolve(sym)
	require.True(t, ok)
	assert.Equal(t, "owner", s)

	_, ok = in.Resolve(0)
	assert.False(t, ok)

	_, ok = in.Resolve(sym + 1)
	assert.False(t, ok)

	assert.Equal(t, "owner", in.MustResolve(sym))
	assert.Panics(t, func() { in.MustResolve(sym + 10) })
}

func TestInterner_EmptyString(t *testing.T) {
	in := New()
	sym := in.GetOrIntern("")
	assert.NotEqual(t, Symbol(0), sym)

	s, ok := in.Resolve(sym)
	require.True(t, ok)
	assert.Equal(t, "", s)
}

func TestInterner_Isolation(t *testing.T) {
	a := New()
	b := New()

	a.GetOrIntern("only-in-a")
	_, ok := b.Get("only-in-a")
	assert.False(t, ok)
}

func TestDefault(t *testing.T) {
	assert.Same(t, Default(), Default())
}

func TestInterner_Concurrent(t *testing.T) {
	in := New()
	const workers = 16
	const names = 64

	results := make([][]Symbol, workers)
	var wg sync.WaitGroup
	for w := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			syms := make([]Symbol, names)
			for i := range names {
				syms[i] = in.GetOrIntern(fmt.Sprintf("param-%d", i))
			}
			results[w] = syms
		}()
	}
	wg.Wait()

	assert.Equal(t, names, in.Len())
	for w := 1; w < workers; w++ {
		assert.Equal(t, results[0], results[w])
	}
	for i, sym := range results[0] {
		assert.Equal(t, fmt.Sprintf("param-%d", i), in.MustResolve(sym))
	}
}
