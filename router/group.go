package router

import (
	"net/http"

	"github.com/azizndao/gexpress/trie"
)

// Group registers layers on a router under a common prefix. Group
// middleware is ordinary middleware on prefix/*, so like any layer it only
// runs before routes registered after it.
type Group struct {
	router *Router
	prefix string
}

// Prefix returns the full prefix of the group.
func (g *Group) Prefix() string {
	return g.prefix
}

// Group returns a nested group.
func (g *Group) Group(prefix string) *Group {
	return &Group{router: g.router, prefix: trie.Join(g.prefix, prefix)}
}

// Use adds middleware for every path under the group prefix.
func (g *Group) Use(handlers ...Handler) *Group {
	g.router.UseWith(trie.Join(g.prefix, "*"), handlers...)
	return g
}

// UseWith adds middleware for pattern, relative to the group prefix.
func (g *Group) UseWith(pattern string, handlers ...Handler) *Group {
	g.router.UseWith(trie.Join(g.prefix, pattern), handlers...)
	return g
}

// UseHTTP adds standard net/http middleware under the group prefix.
func (g *Group) UseHTTP(middlewares ...func(http.Handler) http.Handler) *Group {
	for _, mw := range middlewares {
		g.Use(HTTPMiddleware(mw))
	}
	return g
}

func (g *Group) Route(pattern, method string, handlers ...Handler) *RouteEntry {
	return g.router.Route(trie.Join(g.prefix, pattern), method, handlers...)
}

func (g *Group) Get(pattern string, handlers ...Handler) *RouteEntry {
	return g.Route(pattern, http.MethodGet, handlers...)
}

func (g *Group) Head(pattern string, handlers ...Handler) *RouteEntry {
	return g.Route(pattern, http.MethodHead, handlers...)
}

func (g *Group) Post(pattern string, handlers ...Handler) *RouteEntry {
	return g.Route(pattern, http.MethodPost, handlers...)
}

func (g *Group) Put(pattern string, handlers ...Handler) *RouteEntry {
	return g.Route(pattern, http.MethodPut, handlers...)
}

func (g *Group) Patch(pattern string, handlers ...Handler) *RouteEntry {
	return g.Route(pattern, http.MethodPatch, handlers...)
}

func (g *Group) Delete(pattern string, handlers ...Handler) *RouteEntry {
	return g.Route(pattern, http.MethodDelete, handlers...)
}

func (g *Group) Options(pattern string, handlers ...Handler) *RouteEntry {
	return g.Route(pattern, http.MethodOptions, handlers...)
}
