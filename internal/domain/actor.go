package domain

import "time"

// Actor is the authenticated user operations run on behalf of.
type Actor struct {
	ID          string
	DisplayName string
}

type Profile struct {
	ID           string
	Email        string
	Username     string
	FullName     string
	AvatarURL    string
	Bio          string
	Website      string
	PasswordHash string
	CreatedAt    time.Time
}

// Actor projects the profile onto the identity the feed works with.
func (p Profile) Actor() Actor {
	return Actor{ID: p.ID, DisplayName: p.Username}
}

// Like is the (post, actor) relation. At most one exists per pair.
type Like struct {
	PostID    string
	ActorID   string
	CreatedAt time.Time
}
