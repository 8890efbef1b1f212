package services

import (
	"context"
	"testing"

	"github.com/anonto42/vidshelf/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type followSet map[[2]uint]bool

func (s followSet) IsFollowing(_ context.Context, follower, followed uint) (bool, error) {
	return s[[2]uint{follower, followed}], nil
}

func TestVisibleTo(t *testing.T) {
	const actor, target, fan, stranger = 1, 2, 3, 4
	follows := followSet{{fan, actor}: true}

	entry := func(v models.Visibility) *models.ActivityLog {
		return &models.ActivityLog{ActorID: uintPtr(actor), TargetUserID: uintPtr(target), Visibility: v}
	}

	tests := []struct {
		name   string
		v      models.Visibility
		viewer *uint
		want   bool
	}{
		{"public anonymous", models.VisibilityPublic, nil, true},
		{"public stranger", models.VisibilityPublic, uintPtr(stranger), true},
		{"private anonymous", models.VisibilityPrivate, nil, false},
		{"private actor", models.VisibilityPrivate, uintPtr(actor), true},
		{"private target", models.VisibilityPrivate, uintPtr(target), true},
		{"private follower", models.VisibilityPrivate, uintPtr(fan), false},
		{"private stranger", models.VisibilityPrivate, uintPtr(stranger), false},
		{"followers anonymous", models.VisibilityFollowers, nil, false},
		{"followers actor", models.VisibilityFollowers, uintPtr(actor), true},
		{"followers target", models.VisibilityFollowers, uintPtr(target), true},
		{"followers follower", models.VisibilityFollowers, uintPtr(fan), true},
		{"followers stranger", models.VisibilityFollowers, uintPtr(stranger), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := VisibleTo(context.Background(), entry(tt.v), tt.viewer, follows)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestVisibleToSystemEntry(t *testing.T) {
	e := &models.ActivityLog{Visibility: models.VisibilityFollowers}
	got, err := VisibleTo(context.Background(), e, uintPtr(9), followSet{})
	require.NoError(t, err)
	assert.False(t, got)
}
