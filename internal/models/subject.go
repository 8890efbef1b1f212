package models

import (
	"fmt"
	"strings"
)

// SubjectType tags the entity kind a polymorphic reference points at
type SubjectType string

const (
	SubjectCollection SubjectType = "collection"
	SubjectVideo      SubjectType = "video"
	SubjectComment    SubjectType = "comment"
	SubjectUser       SubjectType = "user"
)

// SubjectTypes lists every kind a reference may resolve to
var SubjectTypes = []SubjectType{SubjectCollection, SubjectVideo, SubjectComment, SubjectUser}

// Valid reports whether t belongs to the closed set of entity kinds
func (t SubjectType) Valid() bool {
	switch t {
	case SubjectCollection, SubjectVideo, SubjectComment, SubjectUser:
		return true
	}
	return false
}

// ParseSubjectType accepts the lower-case tag as well as the capitalised model name ("Collection").
func ParseSubjectType(s string) (SubjectType, bool) {
	t := SubjectType(strings.ToLower(strings.TrimSpace(s)))
	return t, t.Valid()
}

// SubjectRef is a non-owning (kind, id) pointer to a collection, video, comment or user.
// It may dangle once the referenced row is gone.
type SubjectRef struct {
	Type SubjectType `json:"type"`
	ID   uint        `json:"id"`
}

// Ref builds a SubjectRef
func Ref(t SubjectType, id uint) SubjectRef {
	return SubjectRef{Type: t, ID: id}
}

func (r SubjectRef) String() string {
	return fmt.Sprintf("%s:%d", r.Type, r.ID)
}

// Valid reports whether the reference names a known kind and a non-zero id
func (r SubjectRef) Valid() bool {
	return r.Type.Valid() && r.ID != 0
}

// Visibility is the audience scope of an activity entry
type Visibility string

const (
	VisibilityPublic    Visibility = "public"
	VisibilityPrivate   Visibility = "private"
	VisibilityFollowers Visibility = "followers"
)

func (v Visibility) Valid() bool {
	switch v {
	case VisibilityPublic, VisibilityPrivate, VisibilityFollowers:
		return true
	}
	return false
}

var tagSeparators = strings.NewReplacer(".", " ", "_", " ", "-", " ", ":", " ")

// TagWords splits an action or notification tag such as "collection.video_added" into words
func TagWords(tag string) []string {
	return strings.Fields(tagSeparators.Replace(tag))
}
