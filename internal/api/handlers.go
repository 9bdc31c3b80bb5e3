package api

// Handlers bundles all HTTP handlers over the shared dependency container.
type Handlers struct {
	deps *Dependencies
}

func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{deps: deps}
}
