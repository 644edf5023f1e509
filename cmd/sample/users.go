package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bjaus/dispatch"
)

// User is the core domain entity.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type userInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

var roles = []string{"admin", "member"}

type userStore struct {
	mu     sync.RWMutex
	users  map[string]*User
	nextID int
}

func newUserStore() *userStore {
	now := time.Now()
	return &userStore{
		users: map[string]*User{
			"1": {ID: "1", Name: "Alice", Email: "alice@example.com", Role: "admin", CreatedAt: now},
			"2": {ID: "2", Name: "Bob", Email: "bob@example.com", Role: "member", CreatedAt: now},
		},
		nextID: 3,
	}
}

func (s *userStore) list(role string) []User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]User, 0, len(s.users))
	for _, u := range s.users {
		if role != "" && u.Role != role {
			continue
		}
		out = append(out, *u)
	}
	slices.SortFunc(out, func(a, b User) int { return strings.Compare(a.ID, b.ID) })
	return out
}

func (s *userStore) get(id string) (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return User{}, false
	}
	return *u, true
}

func (s *userStore) create(in userInput) User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := &User{
		ID:        strconv.Itoa(s.nextID),
		Name:      in.Name,
		Email:     in.Email,
		Role:      in.Role,
		CreatedAt: time.Now(),
	}
	s.nextID++
	s.users[u.ID] = u
	return *u
}

func (s *userStore) update(id string, in userInput) (User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return User{}, false
	}
	if in.Name != "" {
		u.Name = in.Name
	}
	if in.Email != "" {
		u.Email = in.Email
	}
	if in.Role != "" {
		u.Role = in.Role
	}
	return *u, true
}

func (s *userStore) delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return false
	}
	delete(s.users, id)
	return true
}

var (
	usersCollection = dispatch.NewPath(dispatch.MethodGet, "/users")
	usersCreate     = dispatch.NewPath(dispatch.MethodPost, "/users")
	userGet         = dispatch.NewPath(dispatch.MethodGet, "/users/:id")
	userUpdate      = dispatch.NewPath(dispatch.MethodPut, "/users/:id")
	userDelete      = dispatch.NewPath(dispatch.MethodDelete, "/users/:id")
)

// usersAction serves the users collection and its members.
type usersAction struct {
	store *userStore
}

func (a *usersAction) Name() string { return "users" }

func (a *usersAction) Routes() []dispatch.Path {
	return []dispatch.Path{usersCollection, usersCreate, userGet, userUpdate, userDelete}
}

func (a *usersAction) Docs() dispatch.Docs {
	tags := []string{"users"}
	byID := dispatch.RequiredInput("id", "User ID")
	body := []dispatch.Input{
		dispatch.NewInput("name", dispatch.WithInputDescription("Display name")),
		dispatch.NewInput("email", dispatch.WithInputDescription("Email address")),
		dispatch.NewInput("role", dispatch.WithInputDescription("Role"), dispatch.WithInputValues(roles...)),
	}

	return dispatch.Docs{
		Summaries: map[dispatch.Path]string{
			usersCollection: "List users",
			usersCreate:     "Create user",
			userGet:         "Get user by ID",
			userUpdate:      "Update user",
			userDelete:      "Delete user",
		},
		Descriptions: map[dispatch.Path]string{
			usersCollection: "Returns all users, optionally filtered by role.",
		},
		Tags: map[dispatch.Path][]string{
			usersCollection: tags,
			usersCreate:     tags,
			userGet:         tags,
			userUpdate:      tags,
			userDelete:      tags,
		},
		Inputs: map[dispatch.Path][]dispatch.Input{
			usersCollection: {dispatch.NewInput("role", dispatch.WithInputDescription("Filter by role"), dispatch.WithInputValues(roles...))},
			usersCreate:     body,
			userGet:         {byID},
			userUpdate:      append([]dispatch.Input{byID}, body...),
			userDelete:      {byID},
		},
		Responses: map[dispatch.Path]map[int]string{
			usersCollection: {http.StatusOK: "Users"},
			usersCreate:     {http.StatusCreated: "Created user", http.StatusBadRequest: "Invalid body"},
			userGet:         {http.StatusOK: "User", http.StatusNotFound: "Unknown user"},
			userUpdate:      {http.StatusOK: "Updated user", http.StatusNotFound: "Unknown user"},
			userDelete:      {http.StatusNoContent: "Deleted", http.StatusNotFound: "Unknown user"},
		},
	}
}

func (a *usersAction) OnGet(ex *dispatch.Exchange) {
	if ex.Answered() {
		return
	}
	if ex.Template() == userGet.Template {
		u, ok := a.store.get(ex.Param("id"))
		if !ok {
			notFound(ex)
			return
		}
		reply(ex, http.StatusOK, u)
		return
	}
	reply(ex, http.StatusOK, map[string]any{"users": a.store.list(ex.Query("role"))})
}

func (a *usersAction) OnPost(ex *dispatch.Exchange) {
	if ex.Answered() {
		return
	}
	in, ok := decodeUser(ex)
	if !ok {
		return
	}
	if in.Name == "" || in.Email == "" {
		badRequest(ex, "name and email are required")
		return
	}
	if in.Role == "" {
		in.Role = "member"
	}
	reply(ex, http.StatusCreated, a.store.create(in))
}

func (a *usersAction) OnPut(ex *dispatch.Exchange) {
	if ex.Answered() {
		return
	}
	in, ok := decodeUser(ex)
	if !ok {
		return
	}
	u, ok := a.store.update(ex.Param("id"), in)
	if !ok {
		notFound(ex)
		return
	}
	reply(ex, http.StatusOK, u)
}

func (a *usersAction) OnDelete(ex *dispatch.Exchange) {
	if ex.Answered() {
		return
	}
	if !a.store.delete(ex.Param("id")) {
		notFound(ex)
		return
	}
	ex.SetStatus(http.StatusNoContent)
	ex.Answer()
}

func decodeUser(ex *dispatch.Exchange) (userInput, bool) {
	var in userInput
	if err := json.NewDecoder(ex.Request().Body).Decode(&in); err != nil {
		badRequest(ex, "invalid JSON body")
		return in, false
	}
	if in.Role != "" && !slices.Contains(roles, in.Role) {
		badRequest(ex, "unknown role "+strconv.Quote(in.Role))
		return in, false
	}
	return in, true
}

func reply(ex *dispatch.Exchange, status int, v any) {
	ex.SetStatus(status)
	if err := ex.SetJSON(v); err != nil {
		slog.ErrorContext(ex.Context(), "encode response", "err", err)
		ex.SetError(http.StatusInternalServerError, problem(http.StatusInternalServerError, ""))
	}
}

func notFound(ex *dispatch.Exchange) {
	ex.SetError(http.StatusNotFound, problem(http.StatusNotFound, "user "+strconv.Quote(ex.Param("id"))+" not found"))
}

func badRequest(ex *dispatch.Exchange, detail string) {
	ex.SetError(http.StatusBadRequest, problem(http.StatusBadRequest, detail))
}

func problem(status int, detail string) *dispatch.ProblemDetail {
	return &dispatch.ProblemDetail{
		Type:   "about:blank",
		Title:  http.StatusText(status),
		Status: status,
		Detail: detail,
	}
}

var healthPath = dispatch.NewPath(dispatch.MethodGet, "/health")

const pprofPrefix = "/debug/pprof"

func newHealthAction() *dispatch.SimpleAction {
	return dispatch.NewSimpleAction("health",
		func(ex *dispatch.Exchange) {
			if ex.Answered() {
				return
			}
			reply(ex, http.StatusOK, map[string]string{
				"status": "ok",
				"time":   time.Now().UTC().Format(time.RFC3339),
			})
		},
		dispatch.WithRoutes(healthPath),
		dispatch.WithSummary(healthPath, "Health check"),
		dispatch.WithTags(healthPath, "ops"),
		dispatch.WithResponses(healthPath, map[int]string{http.StatusOK: "Server is healthy"}),
		dispatch.WithHeaders(dispatch.Header{Name: "Cache-Control", Value: "no-store"}),
	)
}

// newServer assembles the sample server. The documentation snapshot is taken
// last so that it sees every route.
func newServer(cfg Config, logger *slog.Logger, store *userStore) (*dispatch.Server, error) {
	srv := dispatch.New(
		dispatch.WithLogger(logger),
		dispatch.WithInfo(cfg.Info),
		dispatch.WithSwagger(cfg.Swagger),
		dispatch.WithHeaders(dispatch.SecureHeaders()...),
		dispatch.WithMiddleware(dispatch.Recovery(logger), dispatch.BodyLimit(1<<20), dispatch.Timeout(30*time.Second)),
	)

	srv.Use(dispatch.RequestID(), dispatch.AccessLog(logger), dispatch.CORS())
	if cfg.RateLimit.Rate > 0 {
		srv.Use(dispatch.RateLimit(dispatch.RateLimitConfig{
			Rate:  cfg.RateLimit.Rate,
			Burst: cfg.RateLimit.Burst,
		}))
	}
	if cfg.Redis.Addr != "" {
		srv.Use(dispatch.RedisRateLimit(dispatch.RedisRateLimitConfig{
			Client: redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr}),
			Limit:  cfg.Redis.Limit,
			Window: cfg.Redis.Window,
			Logger: logger,
		}))
	}
	if len(cfg.Admins) > 0 {
		users := make(map[string][]byte, len(cfg.Admins))
		for name, hash := range cfg.Admins {
			users[name] = []byte(hash)
		}
		srv.Use(dispatch.BasicAuth(dispatch.BasicAuthConfig{
			Users: users,
			Realm: "admin",
			Skip: func(ex *dispatch.Exchange) bool {
				return !strings.HasPrefix(ex.Template(), pprofPrefix)
			},
		}))
	}
	if cfg.JWTKey != "" {
		srv.Use(dispatch.BearerAuth(dispatch.BearerAuthConfig{
			Key: []byte(cfg.JWTKey),
			Skip: func(ex *dispatch.Exchange) bool {
				tmpl := ex.Template()
				return tmpl == healthPath.Template || tmpl == "/healthz" || tmpl == "/swagger" ||
					strings.HasPrefix(tmpl, pprofPrefix)
			},
		}))
	}

	health := newHealthAction()
	if err := srv.Add(health); err != nil {
		return nil, err
	}
	// Load balancer probe; served but undocumented.
	dispatch.RegisterRoute(srv, health, dispatch.MethodGet, "/healthz", dispatch.Hide)

	if err := srv.Add(&usersAction{store: store}); err != nil {
		return nil, err
	}

	if cfg.Pprof {
		if err := dispatch.Pprof(srv.Registry(), pprofPrefix); err != nil {
			return nil, err
		}
	}

	if _, err := srv.ServeSwagger(); err != nil {
		return nil, err
	}
	return srv, nil
}
