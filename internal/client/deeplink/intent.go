package deeplink

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/snaplet/snaplet/internal/client/models"
	"github.com/snaplet/snaplet/internal/logging"
)

// ActionView is the only intent action that produces events.
const ActionView = "view"

// UserNameParam is the query parameter naming the friend-request target.
const UserNameParam = "userName"

var ErrInvalidURI = errors.New("invalid deep link uri")

// Intent is an incoming request to open the app at Data.
type Intent struct {
	Action string
	Data   string
}

// Link is a parsed deep link.
type Link struct {
	Scheme   string
	Host     string
	Path     string
	UserName string
}

// ParseURI parses scheme://host/path?userName=<name>. UserName is returned
// verbatim and may be empty.
func ParseURI(raw string) (Link, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return Link{}, fmt.Errorf("%w: %v", ErrInvalidURI, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return Link{}, fmt.Errorf("%w: %q needs scheme and host", ErrInvalidURI, raw)
	}

	return Link{
		Scheme:   u.Scheme,
		Host:     u.Host,
		Path:     u.Path,
		UserName: u.Query().Get(UserNameParam),
	}, nil
}

// Emitter is satisfied by *Bus.
type Emitter interface {
	Emit(ctx context.Context, ev models.DeepLinkEvent) error
}

// Handler turns intents into bus events. When Scheme or Host is set, links
// for other schemes or hosts are ignored.
type Handler struct {
	bus    Emitter
	scheme string
	host   string
	log    logging.Logger
}

func NewHandler(bus Emitter, scheme, host string, log logging.Logger) *Handler {
	return &Handler{bus: bus, scheme: scheme, host: host, log: log.With("module", "deeplink")}
}

// HandleIntent emits one FriendRequest for a view intent carrying a
// non-blank userName. It reports whether an event was emitted; anything
// else is logged and dropped.
func (h *Handler) HandleIntent(ctx context.Context, in Intent) (bool, error) {
	if in.Action != ActionView {
		h.log.Debug(ctx, "ignoring intent", "action", in.Action)
		return false, nil
	}

	link, err := ParseURI(in.Data)
	if err != nil {
		h.log.Warn(ctx, "unparseable deep link", "uri", in.Data, "error", err)
		return false, nil
	}
	if h.scheme != "" && !strings.EqualFold(link.Scheme, h.scheme) ||
		h.host != "" && !strings.EqualFold(link.Host, h.host) {
		h.log.Warn(ctx, "deep link for another app", "uri", in.Data)
		return false, nil
	}
	if strings.TrimSpace(link.UserName) == "" {
		h.log.Warn(ctx, "deep link missing userName", "uri", in.Data)
		return false, nil
	}

	h.log.Info(ctx, "deep link received", "user", link.UserName)
	if err := h.bus.Emit(ctx, models.FriendRequest{UserName: link.UserName}); err != nil {
		return false, fmt.Errorf("emit friend request: %w", err)
	}
	return true, nil
}
