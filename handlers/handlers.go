package handlers

import (
	"cms/rbac"
	"cms/storage"
	"cms/uploads"
)

type Response struct {
	Error string `json:"error"`
}

var (
	// Predefined errors
	OKResponse       = Response{}
	DBError1Response = Response{"DB Error 1"}
	DBError2Response = Response{"DB Error 2"}
)

var (
	engine      *rbac.Engine
	broker      *uploads.Broker
	reconciler  *uploads.Reconciler
	objectStore storage.ObjectStore
)

// Setup wires the handler package to its collaborators. Called once from main.
func Setup(e *rbac.Engine, b *uploads.Broker, r *uploads.Reconciler, s storage.ObjectStore) {
	engine = e
	broker = b
	reconciler = r
	objectStore = s
}
