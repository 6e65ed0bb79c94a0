package contracts

import "github.com/julienschmidt/httprouter"

// Handler is an HTTP surface that mounts its own routes.
type Handler interface {
	RegisterRoutes(router *httprouter.Router)
}

// Register mounts every handler on router, in order.
func Register(router *httprouter.Router, handlers ...Handler) {
	for _, h := range handlers {
		h.RegisterRoutes(router)
	}
}
