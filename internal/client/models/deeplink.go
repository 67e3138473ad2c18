package models

// DeepLinkEvent is an event produced by an incoming deep link.
type DeepLinkEvent interface {
	deepLinkEvent()
}

// FriendRequest asks the UI to show the friend-request overlay for UserName.
type FriendRequest struct {
	UserName string
}

func (FriendRequest) deepLinkEvent() {}
