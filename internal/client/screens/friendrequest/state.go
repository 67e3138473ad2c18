package friendrequest

import (
	"fmt"

	"github.com/snaplet/snaplet/internal/client/models"
)

// UiState is the overlay state: Hidden, Loading, Visible or Error.
type UiState interface {
	uiState()
}

// Hidden means no overlay is shown. Only in this state are new friend
// request events accepted.
type Hidden struct{}

// Loading means the profile of UserName is being fetched.
type Loading struct {
	UserName string
}

// Visible shows Profile. IsLoading is set while the request is being sent.
type Visible struct {
	Profile   models.UserProfile
	IsLoading bool
}

// Error shows Message until the overlay is dismissed.
type Error struct {
	Message string
}

func (Hidden) uiState()  {}
func (Loading) uiState() {}
func (Visible) uiState() {}
func (Error) uiState()   {}

// Describe renders s for logs and the shell.
func Describe(s UiState) string {
	switch s := s.(type) {
	case Hidden:
		return "hidden"
	case Loading:
		return fmt.Sprintf("loading %s", s.UserName)
	case Visible:
		if s.IsLoading {
			return fmt.Sprintf("visible %s (sending)", s.Profile.UserName)
		}
		return fmt.Sprintf("visible %s", s.Profile.UserName)
	case Error:
		return fmt.Sprintf("error: %s", s.Message)
	default:
		panic(fmt.Sprintf("friendrequest: unknown state %T", s))
	}
}
