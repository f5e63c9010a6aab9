package workflow

import (
	"context"
	"log/slog"
	"sync"

	"github.com/sandeepkv93/symbio/internal/api"
	"github.com/sandeepkv93/symbio/internal/model"
)

const ProfilePageSize = 5

type DirectoryBackend interface {
	Profiles(ctx context.Context, limit, offset int) (api.ProfilePage, error)
	ProfileByID(ctx context.Context, userID int64) (model.Profile, error)
	OwnProfile(ctx context.Context) (model.Profile, error)
	UpdateProfile(ctx context.Context, u model.ProfileUpdate) error
	UserReviews(ctx context.Context, userID int64) ([]model.Review, error)
}

// ProfileList accumulates /profiles pages.
type ProfileList struct {
	Offset int
	Items  []model.Profile
	Total  int
}

func (l ProfileList) HasMore() bool {
	return len(l.Items) < l.Total
}

func (l ProfileList) NextOffset() int {
	return len(l.Items)
}

type FreelancerReviews struct {
	UserID   int64
	Username string
	Reviews  []model.Review
}

// Directory serves profile reads. Usernames are cached until Reset.
type Directory struct {
	backend DirectoryBackend
	logger  *slog.Logger

	mu    sync.Mutex
	names map[int64]string
}

func NewDirectory(backend DirectoryBackend, logger *slog.Logger) *Directory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Directory{backend: backend, logger: logger, names: make(map[int64]string)}
}

// Page loads offset; offset 0 starts over, any other offset appends.
func (d *Directory) Page(ctx context.Context, list ProfileList, offset int) (ProfileList, error) {
	page, err := d.backend.Profiles(ctx, ProfilePageSize, offset)
	if err != nil {
		return list, err
	}
	out := ProfileList{Offset: offset, Total: page.Total}
	if offset > 0 {
		out.Items = append(append([]model.Profile(nil), list.Items...), page.Items...)
	} else {
		out.Items = append([]model.Profile(nil), page.Items...)
	}
	d.mu.Lock()
	for _, p := range page.Items {
		if p.UserID != 0 && p.Username != "" {
			d.names[p.UserID] = p.Username
		}
	}
	d.mu.Unlock()
	return out, nil
}

// Username never fails; an unknown user gets a synthetic name.
func (d *Directory) Username(ctx context.Context, userID int64) string {
	d.mu.Lock()
	name, ok := d.names[userID]
	d.mu.Unlock()
	if ok {
		return name
	}
	p, err := d.backend.ProfileByID(ctx, userID)
	if err != nil {
		d.logger.Debug("username lookup failed", slog.Int64("user_id", userID), slog.String("error", err.Error()))
		return model.Profile{UserID: userID}.DisplayName()
	}
	p.UserID = userID
	name = p.DisplayName()
	if p.Username != "" {
		d.mu.Lock()
		d.names[userID] = name
		d.mu.Unlock()
	}
	return name
}

func (d *Directory) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.names = make(map[int64]string)
}

func (d *Directory) Own(ctx context.Context) (model.Profile, error) {
	return d.backend.OwnProfile(ctx)
}

// Update posts the edit and reads the profile back.
func (d *Directory) Update(ctx context.Context, u model.ProfileUpdate) (model.Profile, error) {
	if err := d.backend.UpdateProfile(ctx, u); err != nil {
		return model.Profile{}, err
	}
	return d.backend.OwnProfile(ctx)
}

func (d *Directory) FreelancerReviews(ctx context.Context, userID int64) (FreelancerReviews, error) {
	reviews, err := d.backend.UserReviews(ctx, userID)
	if err != nil {
		return FreelancerReviews{}, err
	}
	return FreelancerReviews{UserID: userID, Username: d.Username(ctx, userID), Reviews: reviews}, nil
}
