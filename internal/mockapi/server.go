package mockapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/snaplet/snaplet/internal/client/models"
	"github.com/snaplet/snaplet/internal/common"
	"github.com/snaplet/snaplet/internal/logging"
)

// APIPrefix is the path every API route lives under.
const APIPrefix = "/api/v1"

type ctxKey string

const userIDKey ctxKey = "userID"

// Server holds the in-memory state of the mock backend.
type Server struct {
	cfg     *Config
	log     logging.Logger
	users   *userStore
	feed    []models.Photo
	metrics *metrics
	now     func() time.Time

	mu            sync.Mutex
	relationships map[string]models.Relationship
}

func NewServer(cfg *Config, log logging.Logger) (*Server, error) {
	users, err := newUserStore(cfg.BcryptCost)
	if err != nil {
		return nil, err
	}
	return &Server{
		cfg:           cfg,
		log:           log.With("module", "mockapi"),
		users:         users,
		feed:          buildFeed(users),
		metrics:       newMetrics(),
		now:           time.Now,
		relationships: make(map[string]models.Relationship),
	}, nil
}

// Router builds the HTTP routes.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Handle("/metrics", s.metrics.handler()).Methods(http.MethodGet)
	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodGet)

	api := r.PathPrefix(APIPrefix).Subrouter()
	api.Use(s.metrics.middleware, s.logRequests, s.delay)
	api.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)

	authed := api.NewRoute().Subrouter()
	authed.Use(s.requireAuth)
	authed.HandleFunc("/users/profile/{username}", s.handleProfile).Methods(http.MethodGet)
	authed.HandleFunc("/posts/feed", s.handleFeed).Methods(http.MethodGet)
	authed.HandleFunc("/relationships", s.handleCreateRelationship).Methods(http.MethodPost)

	api.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Route not found: "+r.URL.Path)
	})
	return r
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Malformed request body")
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	u, ok := s.users.authenticate(req.Email, req.Password)
	if !ok {
		s.metrics.logins.WithLabelValues("rejected").Inc()
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	access, err := GenerateToken(u.profile.ID, u.profile.UserName, []byte(s.cfg.SecretKey), s.cfg.AccessTokenTTL, s.now())
	if err != nil {
		s.log.Error(r.Context(), "sign token", "error", err)
		writeError(w, http.StatusInternalServerError, "Could not issue token")
		return
	}

	s.metrics.logins.WithLabelValues("ok").Inc()
	writeOK(w, models.LoginResult{
		Token: models.Token{AccessToken: access, RefreshToken: uuid.NewString()},
		User:  u.profile,
	})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["username"]

	u, ok := s.users.findByName(name)
	if !ok {
		writeError(w, http.StatusNotFound, "User not found: "+name)
		return
	}
	writeOK(w, u.profile)
}

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", defaultFeedSize)
	if err != nil || limit < 1 || limit > maxFeedLimit {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("limit must be between 1 and %d", maxFeedLimit))
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil || offset < 0 {
		writeError(w, http.StatusBadRequest, "offset must be non-negative")
		return
	}

	writeOK(w, pageOf(s.feed, userIDFrom(r.Context()), limit, offset))
}

func (s *Server) handleCreateRelationship(w http.ResponseWriter, r *http.Request) {
	var req models.FriendRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TargetUserID == "" {
		writeError(w, http.StatusBadRequest, "targetUserId is required")
		return
	}

	me := userIDFrom(r.Context())
	if req.TargetUserID == me {
		writeError(w, http.StatusBadRequest, "Cannot send a friend request to yourself")
		return
	}
	if _, ok := s.users.findByID(req.TargetUserID); !ok {
		writeError(w, http.StatusNotFound, "User not found: "+req.TargetUserID)
		return
	}

	rel, ok := s.createRelationship(me, req.TargetUserID)
	if !ok {
		writeError(w, http.StatusConflict, "Friend request already sent")
		return
	}

	s.metrics.friends.Inc()
	writeOK(w, rel)
}

// createRelationship reports false when the pair already has one.
func (s *Server) createRelationship(from, to string) (models.Relationship, bool) {
	key := pairKey(from, to)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.relationships[key]; ok {
		return models.Relationship{}, false
	}

	ts := s.now().UTC().Format(time.RFC3339)
	rel := models.Relationship{
		ID:        uuid.NewString(),
		User1ID:   from,
		User2ID:   to,
		Status:    models.RelationshipPending,
		Initiator: from,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	s.relationships[key] = rel
	return rel, true
}

// pairKey is order-independent so a reverse request counts as a duplicate.
func pairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "|" + b
}

func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get(common.AuthorizationHeaderName)
		token, ok := strings.CutPrefix(header, common.BearerPrefix)
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, "Missing bearer token")
			return
		}

		userID, err := UserIDFromToken(token, []byte(s.cfg.SecretKey))
		if err != nil {
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reqID := r.Header.Get(common.RequestIDHeaderName)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set(common.RequestIDHeaderName, reqID)

		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		s.log.Info(r.Context(), "request",
			"request_id", reqID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			"duration", time.Since(start))
	})
}

func (s *Server) delay(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.Latency > 0 {
			select {
			case <-time.After(s.cfg.Latency):
			case <-r.Context().Done():
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func userIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

func queryInt(r *http.Request, name string, def int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}

func writeOK(w http.ResponseWriter, data any) {
	writeEnvelope(w, http.StatusOK, models.Envelope[any]{
		Status: models.Status{Code: models.StatusOK, Message: "OK"},
		Data:   data,
	})
}

func writeError(w http.ResponseWriter, httpStatus int, message string) {
	writeEnvelope(w, httpStatus, models.Envelope[any]{
		Status: models.Status{Code: httpStatus, Message: message},
	})
}

func writeEnvelope(w http.ResponseWriter, httpStatus int, env models.Envelope[any]) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	_ = json.NewEncoder(w).Encode(env)
}
