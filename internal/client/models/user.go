package models

// UserProfile is an immutable user record. It is only ever replaced whole.
type UserProfile struct {
	ID          string `json:"id"`
	UserName    string `json:"userName"`
	DisplayName string `json:"displayName"`
	AvatarURL   string `json:"avatarUrl,omitempty"`
	Email       string `json:"email"`
	CreatedAt   string `json:"createdAt"`
}

// Name returns the display name, falling back to the user name.
func (p UserProfile) Name() string {
	if p.DisplayName != "" {
		return p.DisplayName
	}
	return p.UserName
}

// Session is a snapshot of the locally stored credentials.
// Empty strings and a nil profile mean absent.
type Session struct {
	AccessToken  string
	RefreshToken string
	UserProfile  *UserProfile
}

// Complete reports whether all three parts are present.
func (s Session) Complete() bool {
	return s.AccessToken != "" && s.RefreshToken != "" && s.UserProfile != nil
}

type AuthState int

const (
	Unauthenticated AuthState = iota
	Authenticated
)

func (s AuthState) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case Authenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Token is the credential pair issued on login.
type Token struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResult struct {
	Token Token       `json:"token"`
	User  UserProfile `json:"user"`
}
