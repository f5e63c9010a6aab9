package workflow

import (
	"context"

	"github.com/sandeepkv93/symbio/internal/model"
)

type DisputeBackend interface {
	Disputes(ctx context.Context) ([]model.Dispute, error)
}

// Disputes is read-only; disputes are opened and resolved elsewhere.
type Disputes struct {
	backend DisputeBackend
}

func NewDisputes(backend DisputeBackend) *Disputes {
	return &Disputes{backend: backend}
}

func (d *Disputes) List(ctx context.Context) ([]model.Dispute, error) {
	return d.backend.Disputes(ctx)
}
