package storage

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("storage: not found")

type Repository interface {
	GetPreference(ctx context.Context, key string) (Preference, error)
	PutPreference(ctx context.Context, in Preference) error
	DeletePreference(ctx context.Context, key string) error
	ListPreferences(ctx context.Context, filter PreferenceListFilter) ([]Preference, error)

	GetReadMark(ctx context.Context, kind string, threadID int64) (ReadMark, error)
	PutReadMark(ctx context.Context, in ReadMark) error
	ListReadMarks(ctx context.Context, kind string) ([]ReadMark, error)
}
