package models

import "time"

type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityFriends Visibility = "friends"
	VisibilityPrivate Visibility = "private"
)

// Photo is a feed post.
type Photo struct {
	ID          string     `json:"id"`
	UserID      string     `json:"userId"`
	Username    string     `json:"username"`
	DisplayName string     `json:"displayName"`
	AvatarURL   string     `json:"avatarUrl,omitempty"`
	ImageURL    string     `json:"imageUrl"`
	Caption     string     `json:"caption,omitempty"`
	Visibility  Visibility `json:"visibility"`
	CreatedAt   string     `json:"createdAt"`
	IsOwnPost   bool       `json:"isOwnPost"`
}

// now is replaced in tests.
var now = time.Now

// Timestamp parses CreatedAt as RFC 3339. Unparseable values yield the
// current time.
func (p Photo) Timestamp() time.Time {
	t, err := time.Parse(time.RFC3339Nano, p.CreatedAt)
	if err != nil {
		return now()
	}
	return t
}

type Pagination struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// FeedPage is one page of the media feed.
type FeedPage struct {
	Items      []Photo    `json:"data"`
	Pagination Pagination `json:"pagination"`
}

type RelationshipStatus string

const (
	RelationshipPending  RelationshipStatus = "pending"
	RelationshipAccepted RelationshipStatus = "accepted"
	RelationshipBlocked  RelationshipStatus = "blocked"
)

type Relationship struct {
	ID        string             `json:"id"`
	User1ID   string             `json:"user1Id"`
	User2ID   string             `json:"user2Id"`
	Status    RelationshipStatus `json:"status"`
	Initiator string             `json:"initiator"`
	CreatedAt string             `json:"createdAt"`
	UpdatedAt string             `json:"updatedAt"`
}

type FriendRequestBody struct {
	TargetUserID string `json:"targetUserId"`
}
