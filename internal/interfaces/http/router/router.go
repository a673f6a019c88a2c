// Package router groups the HTTP routes and mounts them on the engine.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Router mounts DomainGroups under /api/{version}
type Router struct {
	engine  *gin.Engine
	version string
	groups  []*DomainGroup
}

// NewRouter returns a Router for the v1 API
func NewRouter(engine *gin.Engine) *Router {
	return &Router{engine: engine, version: "v1"}
}

// Register queues a group for Setup
func (r *Router) Register(g *DomainGroup) *Router {
	r.groups = append(r.groups, g)
	return r
}

// Setup adds every registered group to the engine
func (r *Router) Setup() {
	api := r.engine.Group(r.BasePath())
	for _, g := range r.groups {
		g.mount(api)
	}
}

// BasePath is the prefix shared by all groups, e.g. "/api/v1"
func (r *Router) BasePath() string {
	return "/api/" + r.version
}

// Groups returns the registered group names with their route counts
func (r *Router) Groups() map[string]int {
	out := make(map[string]int, len(r.groups))
	for _, g := range r.groups {
		out[g.name] += g.Len()
	}
	return out
}

// DomainGroup collects the routes of one area of the API, such as billing.
// Its middleware applies to its own routes and those of its subgroups only.
type DomainGroup struct {
	name       string
	prefix     string
	middleware []gin.HandlerFunc
	routes     []route
	children   []*DomainGroup
}

type route struct {
	method   string
	path     string
	handlers []gin.HandlerFunc
}

// NewDomainGroup creates a group mounted at prefix under the API base path
func NewDomainGroup(name, prefix string) *DomainGroup {
	return &DomainGroup{name: name, prefix: prefix}
}

// Use appends group middleware
func (g *DomainGroup) Use(mw ...gin.HandlerFunc) *DomainGroup {
	g.middleware = append(g.middleware, mw...)
	return g
}

// GET adds a GET route
func (g *DomainGroup) GET(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	g.routes = append(g.routes, route{http.MethodGet, path, handlers})
	return g
}

// POST adds a POST route
func (g *DomainGroup) POST(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	g.routes = append(g.routes, route{http.MethodPost, path, handlers})
	return g
}

// Group adds a nested group and returns it
func (g *DomainGroup) Group(name, prefix string) *DomainGroup {
	child := NewDomainGroup(name, prefix)
	g.children = append(g.children, child)
	return child
}

// Name is the group name
func (g *DomainGroup) Name() string { return g.name }

// Prefix is the group path relative to its parent
func (g *DomainGroup) Prefix() string { return g.prefix }

// Len counts the routes of the group and its subgroups
func (g *DomainGroup) Len() int {
	n := len(g.routes)
	for _, c := range g.children {
		n += c.Len()
	}
	return n
}

func (g *DomainGroup) mount(parent *gin.RouterGroup) {
	rg := parent.Group(g.prefix, g.middleware...)
	for _, rt := range g.routes {
		rg.Handle(rt.method, rt.path, rt.handlers...)
	}
	for _, c := range g.children {
		c.mount(rg)
	}
}
