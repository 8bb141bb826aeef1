package services

import (
	"context"

	"github.com/anonto42/nano-midea/interactions/internal/models"
	"github.com/anonto42/nano-midea/interactions/internal/repositories"
)

// Directory resolves user ids to the compact profile embedded in responses.
type Directory struct {
	users repositories.UserRepository
}

func NewDirectory(users repositories.UserRepository) *Directory {
	return &Directory{users: users}
}

// Summaries returns the profiles it could find; unknown ids are absent from the map.
func (d *Directory) Summaries(ctx context.Context, ids []uint) (map[uint]models.UserCompact, error) {
	out := make(map[uint]models.UserCompact, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	users, err := d.users.GetUsersByIDs(ctx, unique(ids))
	if err != nil {
		return nil, err
	}
	for i := range users {
		out[users[i].ID] = users[i].ToCompact()
	}
	return out, nil
}

// Summary returns the profile of id, or a bare {ID} when the user is unknown.
func (d *Directory) Summary(ctx context.Context, id uint) models.UserCompact {
	user, err := d.users.GetUserByID(ctx, id)
	if err != nil {
		return models.UserCompact{ID: id}
	}
	return user.ToCompact()
}

func unique(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
