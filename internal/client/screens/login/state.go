package login

import "github.com/snaplet/snaplet/internal/client/models"

type Step int

const (
	StepEmail Step = iota
	StepPassword
)

func (s Step) String() string {
	if s == StepPassword {
		return "password"
	}
	return "email"
}

// UiState is the two-step login form. Empty error strings mean no error.
type UiState struct {
	Step              Step
	Email             string
	Password          string
	IsLoading         bool
	ErrorMessage      string
	EmailError        string
	PasswordError     string
	IsPasswordVisible bool
}

type Event interface {
	loginEvent()
}

// LoggedIn is emitted once per successful login.
type LoggedIn struct {
	Profile models.UserProfile
}

func (LoggedIn) loginEvent() {}
