package router

import (
	"context"
	"iter"
	"net/http"

	"github.com/azizndao/gexpress/intern"
	"github.com/azizndao/gexpress/trie"
)

// Param is one bound path parameter. Names are interned symbols; values are
// the raw path text.
type Param struct {
	Key   intern.Symbol
	Value string
}

// Params holds the path parameters bound for a single request. Later
// bindings of the same name replace earlier ones, so route parameters win
// over middleware parameters.
type Params struct {
	names *intern.Interner
	list  []Param
}

func newParams(names *intern.Interner) Params {
	return Params{names: names}
}

func (p *Params) bind(matched []trie.Binding) {
	for _, mp := range matched {
		p.set(p.names.GetOrIntern(mp.Name), mp.Value)
	}
}

func (p *Params) set(key intern.Symbol, value string) {
	for i := range p.list {
		if p.list[i].Key == key {
			p.list[i].Value = value
			return
		}
	}
	p.list = append(p.list, Param{Key: key, Value: value})
}

// Get returns the value bound to name.
func (p Params) Get(name string) (string, bool) {
	if p.names == nil {
		return "", false
	}
	key, ok := p.names.Get(name)
	if !ok {
		return "", false
	}
	for _, param := range p.list {
		if param.Key == key {
			return param.Value, true
		}
	}
	return "", false
}

// Value returns the value bound to name, or "".
func (p Params) Value(name string) string {
	v, _ := p.Get(name)
	return v
}

func (p Params) Len() int {
	return len(p.list)
}

// All iterates over name/value pairs in binding order.
func (p Params) All() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for _, param := range p.list {
			if !yield(p.names.MustResolve(param.Key), param.Value) {
				return
			}
		}
	}
}

// Map copies the parameters into a map.
func (p Params) Map() map[string]string {
	out := make(map[string]string, len(p.list))
	for k, v := range p.All() {
		out[k] = v
	}
	return out
}

type paramsKey struct{}

// ParamsFrom returns the parameters stored in ctx by the router.
func ParamsFrom(ctx context.Context) Params {
	p, _ := ctx.Value(paramsKey{}).(Params)
	return p
}

// URLParam returns a path parameter from a request dispatched by the router.
// It lets plain http.Handlers mounted with HTTPHandler read parameters.
func URLParam(r *http.Request, name string) string {
	return ParamsFrom(r.Context()).Value(name)
}
