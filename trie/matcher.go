package trie

import (
	"slices"
	"strings"
)

// Binding is a single bound path parameter.
type Binding struct {
	Name  string
	Value string
}

// Match is the result of matching a path against one registered pattern.
// Indices is shared with the matcher and must not be modified.
type Match struct {
	Pattern string
	Indices []int
	Params  []Binding
}

type leaf struct {
	pattern string
	names   []string
	indices []int
}

type node struct {
	static   map[string]*node
	param    *node
	catchAll *node
	wildcard *node
	leaf     *leaf
}

// Matcher maps patterns to layer indices. Insert is not safe for concurrent
// use; once building is done any number of goroutines may match concurrently.
type Matcher struct {
	root   node
	leaves int
}

// New returns an empty Matcher.
func New() *Matcher {
	return &Matcher{}
}

// Insert registers index under pattern. Inserting a pattern whose shape is
// already registered appends index to the existing entry, so several layers
// can share one pattern; they are reported in insertion order.
func (m *Matcher) Insert(pattern string, index int) error {
	p, err := ParsePattern(pattern)
	if err != nil {
		return err
	}
	return m.InsertPattern(p, index)
}

// InsertPattern is Insert for an already parsed pattern.
func (m *Matcher) InsertPattern(p Pattern, index int) error {
	n := &m.root
	for _, s := range p.segments {
		switch s.Kind {
		case Static:
			if n.static == nil {
				n.static = make(map[string]*node)
			}
			child, ok := n.static[s.Value]
			if !ok {
				child = &node{}
				n.static[s.Value] = child
			}
			n = child
		case Param:
			if n.param == nil {
				n.param = &node{}
			}
			n = n.param
		case CatchAll:
			if n.catchAll == nil {
				n.catchAll = &node{}
			}
			n = n.catchAll
		case Wildcard:
			if n.wildcard == nil {
				n.wildcard = &node{}
			}
			n = n.wildcard
		}
	}

	names := p.ParamNames()
	if n.leaf == nil {
		n.leaf = &leaf{pattern: p.raw, names: names, indices: []int{index}}
		m.leaves++
		return nil
	}

	if !slices.Equal(n.leaf.names, names) {
		return &PatternError{Pattern: p.raw, Segment: n.leaf.pattern, Err: ErrConflictingParamSet}
	}
	if last := n.leaf.indices[len(n.leaf.indices)-1]; last != index {
		n.leaf.indices = append(n.leaf.indices, index)
	}
	return nil
}

// Len returns the number of distinct pattern shapes registered.
func (m *Matcher) Len() int {
	return m.leaves
}

// MatchOne returns the single most specific pattern matching path. At every
// node a static edge is preferred over a parameter, a parameter over a
// catch-all and a catch-all over a wildcard; a failed branch backtracks.
func (m *Matcher) MatchOne(path string) (Match, bool) {
	l, values := m.root.matchOne(splitPath(path), nil)
	if l == nil {
		return Match{}, false
	}
	return l.match(values), true
}

// MatchAll returns every registered pattern that matches path, in no
// particular order.
func (m *Matcher) MatchAll(path string) []Match {
	var out []Match
	m.root.matchAll(splitPath(path), nil, &out)
	return out
}

func (n *node) matchOne(segs []string, values []string) (*leaf, []string) {
	if len(segs) == 0 {
		if n.leaf != nil {
			return n.leaf, values
		}
		if n.wildcard != nil {
			return n.wildcard.leaf, values
		}
		return nil, nil
	}

	seg := segs[0]
	if child := n.static[seg]; child != nil {
		if l, v := child.matchOne(segs[1:], values); l != nil {
			return l, v
		}
	}
	if n.param != nil && seg != "" {
		if l, v := n.param.matchOne(segs[1:], append(values, seg)); l != nil {
			return l, v
		}
	}
	if n.catchAll != nil && seg != "" {
		return n.catchAll.leaf, append(values, strings.Join(segs, "/"))
	}
	if n.wildcard != nil {
		return n.wildcard.leaf, values
	}
	return nil, nil
}

func (n *node) matchAll(segs []string, values []string, out *[]Match) {
	if len(segs) == 0 && n.leaf != nil {
		*out = append(*out, n.leaf.match(values))
	}
	if n.wildcard != nil {
		*out = append(*out, n.wildcard.leaf.match(values))
	}
	if len(segs) == 0 {
		return
	}

	seg := segs[0]
	if child := n.static[seg]; child != nil {
		child.matchAll(segs[1:], values, out)
	}
	if seg == "" {
		return
	}
	if n.param != nil {
		n.param.matchAll(segs[1:], append(values, seg), out)
	}
	if n.catchAll != nil {
		*out = append(*out, n.catchAll.leaf.match(append(values, strings.Join(segs, "/"))))
	}
}

func (l *leaf) match(values []string) Match {
	m := Match{Pattern: l.pattern, Indices: l.indices}
	if len(l.names) > 0 {
		m.Params = make([]Binding, len(l.names))
		for i, name := range l.names {
			m.Params[i] = Binding{Name: name, Value: values[i]}
		}
	}
	return m
}
