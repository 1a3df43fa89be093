package router

import (
	"encoding/json"
	"fmt"

	"github.com/samber/lo"

	"github.com/azizndao/gexpress/trie"
)

// LayerKind tells middleware layers from route layers.
type LayerKind uint8

const (
	MiddlewareLayer LayerKind = iota
	RouteLayer
)

func (k LayerKind) String() string {
	if k == RouteLayer {
		return "route"
	}
	return "middleware"
}

func (k LayerKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

func (k *LayerKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "route":
		*k = RouteLayer
	case "middleware":
		*k = MiddlewareLayer
	default:
		return fmt.Errorf("router: unknown layer kind %q", s)
	}
	return nil
}

// Layer is one registered unit of dispatchable behaviour. A middleware layer
// runs for every request whose path matches its pattern, whatever the
// method. A route layer holds a stack of handlers, each bound to a method;
// for a request only the handlers of its method run, in registration order.
type Layer struct {
	kind    LayerKind
	pattern trie.Pattern
	handler Handler
	stack   []methodHandler
}

type methodHandler struct {
	method  string
	handler Handler
}

func newMiddlewareLayer(p trie.Pattern, h Handler) *Layer {
	return &Layer{kind: MiddlewareLayer, pattern: p, handler: h}
}

func newRouteLayer(p trie.Pattern) *Layer {
	return &Layer{kind: RouteLayer, pattern: p}
}

func (l *Layer) Kind() LayerKind {
	return l.kind
}

func (l *Layer) Pattern() string {
	return l.pattern.String()
}

// Methods returns the methods a route layer answers, in registration order.
func (l *Layer) Methods() []string {
	return lo.Uniq(lo.Map(l.stack, func(mh methodHandler, _ int) string {
		return mh.method
	}))
}

// HasMethod reports whether the route layer has a handler for method.
func (l *Layer) HasMethod(method string) bool {
	return lo.ContainsBy(l.stack, func(mh methodHandler) bool {
		return mh.method == method
	})
}

func (l *Layer) push(method string, handlers ...Handler) {
	for _, h := range handlers {
		l.stack = append(l.stack, methodHandler{method: method, handler: h})
	}
}

// appendSteps adds the handlers this layer contributes for method.
func (l *Layer) appendSteps(steps []step, method string) []step {
	if l.kind == MiddlewareLayer {
		return append(steps, step{handler: l.handler})
	}
	for _, mh := range l.stack {
		if mh.method == method {
			steps = append(steps, step{handler: mh.handler, route: true})
		}
	}
	return steps
}

// Registry is the append-only list of layers a router dispatches. Matchers
// hold indices into it; a layer never moves once appended.
type Registry struct {
	layers []*Layer
}

// Append adds l and returns its index.
func (r *Registry) Append(l *Layer) int {
	r.layers = append(r.layers, l)
	return len(r.layers) - 1
}

// Get returns the layer at index.
func (r *Registry) Get(index int) *Layer {
	return r.layers[index]
}

// Len returns the number of layers.
func (r *Registry) Len() int {
	return len(r.layers)
}

// Info describes every layer in registration order.
func (r *Registry) Info() []RouteInfo {
	return lo.Map(r.layers, func(l *Layer, i int) RouteInfo {
		info := RouteInfo{Index: i, Kind: l.kind, Pattern: l.Pattern()}
		if l.kind == RouteLayer {
			info.Methods = l.Methods()
		}
		return info
	})
}
