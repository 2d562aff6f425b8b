package api

import (
	"github.com/cadenceworks/foreman/internal/core"
	"github.com/cadenceworks/foreman/pkg/database"
	"github.com/cadenceworks/foreman/pkg/structs"
)

// Exec runs tasks claimed inline by immediate dispatch. The worker daemon
// implements this; API-only deployments pass nil and immediate dispatch is
// rejected.
type Exec interface {
	Name() string
	Run(t *structs.Task)
}

func NewAPI(db database.Database, exec Exec) (API, error) {
	return core.NewService(db, exec), nil
}
