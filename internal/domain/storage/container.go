package storage

import (
	"github.com/rana-ox/testing-d1/internal/domain/feedback"
	"github.com/rana-ox/testing-d1/internal/infra/dbx"
)

// Container groups the repositories handed to the HTTP layer.
type Container struct {
	Feedback feedback.Store
}

func NewContainer(db dbx.Querier) *Container {
	return &Container{
		Feedback: feedback.NewRepository(db),
	}
}
