package mockapi

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/snaplet/snaplet/internal/client/models"
)

// FixturePassword is the password of every fixture user.
const FixturePassword = "snaplet123"

const fixtureAvatar = "https://images.unsplash.com/photo-1522335789203-aabd1fc54bc9"

type user struct {
	profile      models.UserProfile
	passwordHash []byte
}

type userStore struct {
	byName  map[string]*user
	byID    map[string]*user
	byEmail map[string]*user
	order   []*user
}

// UserID returns the stable id of a fixture user.
func UserID(userName string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("snaplet:user:"+strings.ToLower(userName))).String()
}

func newUserStore(cost int) (*userStore, error) {
	fixtures := []struct {
		name, display, avatar string
	}{
		{"thuong", "Thuong Thuong", fixtureAvatar},
		{"john", "John Doe", fixtureAvatar},
		{"alice", "Alice Smith", fixtureAvatar},
		{"bob", "Bob Johnson", fixtureAvatar},
		{"emma", "Emma Wilson", fixtureAvatar},
		{"david", "David Brown", ""},
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(FixturePassword), cost)
	if err != nil {
		return nil, fmt.Errorf("hash fixture password: %w", err)
	}

	s := &userStore{
		byName:  make(map[string]*user),
		byID:    make(map[string]*user),
		byEmail: make(map[string]*user),
	}
	created := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

	for i, f := range fixtures {
		u := &user{
			profile: models.UserProfile{
				ID:          UserID(f.name),
				UserName:    f.name,
				DisplayName: f.display,
				AvatarURL:   f.avatar,
				Email:       f.name + "@snaplet.dev",
				CreatedAt:   created.Add(time.Duration(i) * 24 * time.Hour).Format(time.RFC3339),
			},
			passwordHash: hash,
		}
		s.byName[f.name] = u
		s.byID[u.profile.ID] = u
		s.byEmail[u.profile.Email] = u
		s.order = append(s.order, u)
	}
	return s, nil
}

func (s *userStore) findByName(userName string) (*user, bool) {
	u, ok := s.byName[strings.ToLower(userName)]
	return u, ok
}

func (s *userStore) findByID(id string) (*user, bool) {
	u, ok := s.byID[id]
	return u, ok
}

// authenticate returns the user when email and password match.
func (s *userStore) authenticate(email, password string) (*user, bool) {
	u, ok := s.byEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		// burn comparable time for unknown emails
		_ = bcrypt.CompareHashAndPassword(s.order[0].passwordHash, []byte(password))
		return nil, false
	}
	if bcrypt.CompareHashAndPassword(u.passwordHash, []byte(password)) != nil {
		return nil, false
	}
	return u, true
}
