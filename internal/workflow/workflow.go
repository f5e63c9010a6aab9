// Package workflow interprets server listings into client state and guards
// every mutation with the derived eligibility rules. Mutations never patch
// local state; they re-list from the server.
package workflow

import (
	"context"

	"github.com/sandeepkv93/symbio/internal/apperr"
	"github.com/sandeepkv93/symbio/internal/model"
)

// Identity is the slice of the session the workflows need.
type Identity interface {
	Viewer() model.Viewer
	ResolveUserID(ctx context.Context) (int64, error)
}

// resolveViewer returns the trusted viewer, running the own-id lookup when it
// has not happened yet.
func resolveViewer(ctx context.Context, ident Identity) (model.Viewer, error) {
	if v := ident.Viewer(); v.Known {
		return v, nil
	}
	id, err := ident.ResolveUserID(ctx)
	if err != nil {
		if apperr.KindOf(err) == "" {
			return model.Viewer{}, apperr.Permission("identity", err.Error())
		}
		return model.Viewer{}, err
	}
	return model.KnownViewer(id), nil
}
