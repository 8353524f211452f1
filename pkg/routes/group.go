// Package routes declares HTTP routes as nested prefix groups and registers
// them on a ServeMux using method-qualified patterns.
package routes

import "net/http"

// Route binds a method and a path relative to its group to a handler.
type Route struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
}

// Group organizes routes under a common prefix. Children inherit the prefix.
type Group struct {
	Prefix   string
	Routes   []Route
	Children []Group
}

// Register adds all routes from the given groups to the mux.
func Register(mux *http.ServeMux, groups ...Group) {
	walk(groups, func(pattern string, route Route) {
		mux.HandleFunc(pattern, route.Handler)
	})
}

// Patterns returns the "METHOD /path" pattern of every route in groups, in
// registration order.
func Patterns(groups ...Group) []string {
	var out []string
	walk(groups, func(pattern string, _ Route) {
		out = append(out, pattern)
	})
	return out
}

func walk(groups []Group, visit func(pattern string, route Route)) {
	for _, group := range groups {
		walkGroup("", group, visit)
	}
}

func walkGroup(parentPrefix string, group Group, visit func(string, Route)) {
	prefix := parentPrefix + group.Prefix
	for _, route := range group.Routes {
		visit(route.Method+" "+prefix+route.Pattern, route)
	}
	for _, child := range group.Children {
		walkGroup(prefix, child, visit)
	}
}
