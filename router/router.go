package router

import "net/http"

// Router is the minimal routing surface the application registers against.
// Implementations dispatch by method and exact path.
type Router interface {
	http.Handler
	Get(path string, handler http.Handler)
	Post(path string, handler http.Handler)
}
