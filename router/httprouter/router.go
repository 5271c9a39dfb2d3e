package httprouter

import (
	"net/http"

	"github.com/quillhq/quill/router"

	jshttprouter "github.com/julienschmidt/httprouter"
)

// Router implements router.Router on julienschmidt/httprouter.
type Router struct {
	rt *jshttprouter.Router
}

var _ router.Router = (*Router)(nil)

func New() *Router {
	return &Router{rt: jshttprouter.New()}
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.rt.ServeHTTP(w, req)
}

func (r *Router) Get(path string, handler http.Handler) {
	r.rt.Handler(http.MethodGet, path, handler)
}

func (r *Router) Post(path string, handler http.Handler) {
	r.rt.Handler(http.MethodPost, path, handler)
}
