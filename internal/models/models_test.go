package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"
)

func TestParseSubjectType(t *testing.T) {
	tests := []struct {
		in   string
		want SubjectType
		ok   bool
	}{
		{"collection", SubjectCollection, true},
		{"Collection", SubjectCollection, true},
		{" video ", SubjectVideo, true},
		{"comment", SubjectComment, true},
		{"User", SubjectUser, true},
		{"playlist", "playlist", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseSubjectType(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTagWords(t *testing.T) {
	assert.Equal(t, []string{"collection", "video", "added"}, TagWords("collection.video_added"))
	assert.Equal(t, []string{"playlist", "synced"}, TagWords("playlist:synced"))
	assert.Equal(t, []string{"a", "b"}, TagWords("-a--b."))
	assert.Empty(t, TagWords(""))
}

func TestShareIsExpired(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	future := now.Add(time.Hour)

	assert.True(t, CollectionShare{ShareType: ShareTemporary, ExpiresAt: &past}.IsExpiredAt(now))
	assert.False(t, CollectionShare{ShareType: ShareTemporary, ExpiresAt: &future}.IsExpiredAt(now))
	assert.False(t, CollectionShare{ShareType: SharePublic}.IsExpiredAt(now))
}

func TestActivityLogHasFolded(t *testing.T) {
	actor, other, stranger := uint(1), uint(2), uint(3)
	entry := ActivityLog{
		ActorID: &actor,
		Properties: datatypes.NewJSONType(ActivityProperties{
			OtherUsers: []ActorIdentity{{ID: other}},
		}),
	}

	assert.True(t, entry.HasFolded(actor))
	assert.True(t, entry.HasFolded(other))
	assert.False(t, entry.HasFolded(stranger))
	assert.True(t, entry.Involves(actor))
	assert.False(t, entry.Involves(other))
}

func TestUserDisplayName(t *testing.T) {
	assert.Equal(t, "Ada", User{Name: "Ada", Username: "ada"}.DisplayName())
	assert.Equal(t, "ada", User{Username: "ada"}.DisplayName())
}
