package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/csportugues/portal/internal/auth"
	"github.com/csportugues/portal/internal/moderation"
	"github.com/csportugues/portal/internal/notify"
	"github.com/csportugues/portal/internal/player"
	"github.com/csportugues/portal/internal/streamer"
	"github.com/csportugues/portal/internal/team"
	"github.com/csportugues/portal/internal/user"
	"golang.org/x/crypto/bcrypt"
)

// ---------------------------------------------------------------------------
// Fakes
// ---------------------------------------------------------------------------

// fakeSessions resolves fixed tokens to users.
type fakeSessions struct {
	users map[string]*auth.User
}

func (f *fakeSessions) LookupSession(_ context.Context, token string) (*auth.User, error) {
	u, ok := f.users[token]
	if !ok {
		return nil, errors.New("session not found")
	}
	return u, nil
}

// fakeTeamService returns canned results per call.
type fakeTeamService struct {
	approved    []*team.PublicTeam
	pending     []*team.Team
	owned       []*team.OwnerTeam
	submitted   *team.PublicTeam
	joinRequest *team.JoinRequest
	err         error
}

func (f *fakeTeamService) SubmitTeam(_ context.Context, caller *auth.User, _ team.CreateTeamInput) (*team.PublicTeam, error) {
	if caller == nil {
		return nil, moderation.ErrUnauthorized
	}
	return f.submitted, f.err
}

func (f *fakeTeamService) ApproveTeam(_ context.Context, _ *auth.User, _ int64) (*team.PublicTeam, error) {
	return f.submitted, f.err
}

func (f *fakeTeamService) RejectTeam(_ context.Context, _ *auth.User, _ int64, _ string) error {
	return f.err
}

func (f *fakeTeamService) RequestToJoinTeam(_ context.Context, _ *auth.User, _ int64) (*team.JoinRequest, error) {
	return f.joinRequest, f.err
}

func (f *fakeTeamService) ApproveTeamMember(_ context.Context, _ *auth.User, _, _ int64) (*team.PublicTeam, error) {
	return f.submitted, f.err
}

func (f *fakeTeamService) ListApprovedTeams(_ context.Context) ([]*team.PublicTeam, error) {
	return f.approved, f.err
}

func (f *fakeTeamService) GetApprovedTeam(_ context.Context, id int64) (*team.PublicTeam, error) {
	for _, t := range f.approved {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, moderation.ErrNotFound
}

func (f *fakeTeamService) ListOwnTeams(_ context.Context, _ *auth.User) ([]*team.OwnerTeam, error) {
	return f.owned, f.err
}

func (f *fakeTeamService) ListPendingTeams(_ context.Context, _ *auth.User) ([]*team.Team, error) {
	return f.pending, f.err
}

type fakeStreamerService struct {
	verified  []*streamer.PublicStreamer
	pending   []*streamer.Streamer
	submitted *streamer.PublicStreamer
	err       error
}

func (f *fakeStreamerService) SubmitStreamerApplication(_ context.Context, caller *auth.User, _ streamer.CreateStreamerInput) (*streamer.PublicStreamer, error) {
	if caller == nil {
		return nil, moderation.ErrUnauthorized
	}
	return f.submitted, f.err
}

func (f *fakeStreamerService) VerifyStreamer(_ context.Context, _ *auth.User, _ int64) (*streamer.PublicStreamer, error) {
	return f.submitted, f.err
}

func (f *fakeStreamerService) RejectStreamerApplication(_ context.Context, _ *auth.User, _ int64, _ string) error {
	return f.err
}

func (f *fakeStreamerService) ListVerifiedStreamers(_ context.Context) ([]*streamer.PublicStreamer, error) {
	return f.verified, f.err
}

func (f *fakeStreamerService) ListPendingStreamers(_ context.Context, _ *auth.User) ([]*streamer.Streamer, error) {
	return f.pending, f.err
}

type fakeUserStore struct {
	users     map[string]*user.User
	createErr error
	sessions  int
}

func (f *fakeUserStore) Create(_ context.Context, in user.CreateUserInput) (*user.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	u := &user.User{ID: 1, Username: in.Username, Role: in.Role}
	return u, nil
}

func (f *fakeUserStore) GetByUsername(_ context.Context, username string) (*user.User, error) {
	u, ok := f.users[username]
	if !ok {
		return nil, user.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserStore) CreateSession(_ context.Context, userID int64) (string, *user.Session, error) {
	f.sessions++
	return "tok-test", &user.Session{
		UserID:    userID,
		ExpiresAt: time.Now().Add(time.Hour),
	}, nil
}

func (f *fakeUserStore) DeleteSession(_ context.Context, _ string) error { return nil }

type fakeNotifications struct {
	items   []*notify.Notification
	readErr error
}

func (f *fakeNotifications) ListByUser(_ context.Context, _ int64) ([]*notify.Notification, error) {
	return f.items, nil
}

func (f *fakeNotifications) MarkRead(_ context.Context, _, _ int64) error {
	return f.readErr
}

type fakePlayerStore struct {
	profiles  []*player.Profile
	createErr error
}

func (f *fakePlayerStore) List(_ context.Context) ([]*player.Profile, error) {
	return f.profiles, nil
}

func (f *fakePlayerStore) GetByID(_ context.Context, id int64) (*player.Profile, error) {
	for _, p := range f.profiles {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, player.ErrNotFound
}

func (f *fakePlayerStore) Create(_ context.Context, userID int64, in player.Input) (*player.Profile, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &player.Profile{ID: 1, UserID: userID, Position: in.Position}, nil
}

func (f *fakePlayerStore) Update(_ context.Context, id, userID int64, in player.Input) (*player.Profile, error) {
	for _, p := range f.profiles {
		if p.ID == id && p.UserID == userID {
			return &player.Profile{ID: id, UserID: userID, Position: in.Position}, nil
		}
	}
	return nil, player.ErrNotFound
}

// ---------------------------------------------------------------------------
// Harness
// ---------------------------------------------------------------------------

const (
	userToken  = "tok-user"
	adminToken = "tok-admin"
)

func testSessions() *fakeSessions {
	return &fakeSessions{users: map[string]*auth.User{
		userToken:  {ID: 1, Username: "u1", Role: "user"},
		adminToken: {ID: 10, Username: "a1", Role: "admin"},
	}}
}

func testRouter(deps RouterDeps) http.Handler {
	if deps.Sessions == nil {
		deps.Sessions = testSessions()
	}
	if deps.AllowedOrigins == nil {
		deps.AllowedOrigins = []string{"*"}
	}
	return NewRouter(deps)
}

func doRequest(t *testing.T, handler http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorDetail {
	t.Helper()
	var env errorEnvelope
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decoding error envelope: %v", err)
	}
	return env.Error
}

// ---------------------------------------------------------------------------
// Health and plumbing
// ---------------------------------------------------------------------------

func TestHealthCheck_OK(t *testing.T) {
	handler := testRouter(RouterDeps{})

	rec := doRequest(t, handler, http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status=ok, got %q", body["status"])
	}
	if body["database"] != "connected" {
		t.Errorf("expected database=connected, got %q", body["database"])
	}
}

func TestHealthCheck_DatabaseDown(t *testing.T) {
	handler := testRouter(RouterDeps{
		DBPing: func(context.Context) error { return errors.New("connection refused") },
	})

	rec := doRequest(t, handler, http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", rec.Code)
	}
}

func TestRequestIDHeader(t *testing.T) {
	handler := testRouter(RouterDeps{})

	rec := doRequest(t, handler, http.MethodGet, "/health", "", nil)
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header on the response")
	}

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "fixed-id")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-ID"); got != "fixed-id" {
		t.Errorf("expected caller-supplied request id to be echoed, got %q", got)
	}
}

// ---------------------------------------------------------------------------
// Teams
// ---------------------------------------------------------------------------

func TestListTeams_Public(t *testing.T) {
	svc := &fakeTeamService{approved: []*team.PublicTeam{{ID: 1, Name: "Phoenix"}}}
	handler := testRouter(RouterDeps{Teams: svc})

	rec := doRequest(t, handler, http.MethodGet, "/api/teams", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var teams []map[string]interface{}
	if err := json.NewDecoder(rec.Body).Decode(&teams); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(teams) != 1 || teams[0]["name"] != "Phoenix" {
		t.Errorf("unexpected body: %+v", teams)
	}
	if _, ok := teams[0]["status"]; ok {
		t.Error("public listing must not expose a status field")
	}
}

func TestCreateTeam_RequiresAuth(t *testing.T) {
	handler := testRouter(RouterDeps{Teams: &fakeTeamService{}})

	rec := doRequest(t, handler, http.MethodPost, "/api/teams", "", map[string]string{"name": "X"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
	if detail := decodeError(t, rec); detail.Code != "unauthorized" {
		t.Errorf("expected code unauthorized, got %q", detail.Code)
	}
}

func TestCreateTeam(t *testing.T) {
	svc := &fakeTeamService{submitted: &team.PublicTeam{ID: 7, Name: "Phoenix", OwnerID: 1}}
	handler := testRouter(RouterDeps{Teams: svc})

	rec := doRequest(t, handler, http.MethodPost, "/api/teams", userToken, map[string]string{"name": "Phoenix"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestCreateTeam_ValidationError(t *testing.T) {
	svc := &fakeTeamService{err: moderation.ErrTeamNameRequired}
	handler := testRouter(RouterDeps{Teams: svc})

	rec := doRequest(t, handler, http.MethodPost, "/api/teams", userToken, map[string]string{"name": ""})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
	if detail := decodeError(t, rec); detail.Code != "validation_error" {
		t.Errorf("expected code validation_error, got %q", detail.Code)
	}
}

func TestApproveTeam_RequiresAdmin(t *testing.T) {
	handler := testRouter(RouterDeps{Teams: &fakeTeamService{}})

	rec := doRequest(t, handler, http.MethodPut, "/api/teams/1/approve", userToken, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", rec.Code)
	}
}

func TestApproveTeam_NotFound(t *testing.T) {
	svc := &fakeTeamService{err: moderation.ErrNotFound}
	handler := testRouter(RouterDeps{Teams: svc})

	rec := doRequest(t, handler, http.MethodPut, "/api/teams/99/approve", adminToken, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}

func TestApproveTeam_Conflict(t *testing.T) {
	svc := &fakeTeamService{err: moderation.ErrConflict}
	handler := testRouter(RouterDeps{Teams: svc})

	rec := doRequest(t, handler, http.MethodPut, "/api/teams/1/approve", adminToken, nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", rec.Code)
	}
	if detail := decodeError(t, rec); detail.Code != "conflict" {
		t.Errorf("expected code conflict, got %q", detail.Code)
	}
}

func TestRejectTeam_Success(t *testing.T) {
	handler := testRouter(RouterDeps{Teams: &fakeTeamService{}})

	rec := doRequest(t, handler, http.MethodPut, "/api/teams/1/reject", adminToken,
		map[string]string{"reason": "Nome duplicado"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var body map[string]interface{}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["success"] != true {
		t.Errorf("expected success=true, got %+v", body)
	}
}

func TestJoinTeam_InvalidState(t *testing.T) {
	svc := &fakeTeamService{err: moderation.ErrInvalidState}
	handler := testRouter(RouterDeps{Teams: svc})

	rec := doRequest(t, handler, http.MethodPost, "/api/teams/1/join", userToken, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
	if detail := decodeError(t, rec); detail.Code != "invalid_state" {
		t.Errorf("expected code invalid_state, got %q", detail.Code)
	}
}

func TestJoinTeam_Duplicate(t *testing.T) {
	svc := &fakeTeamService{err: moderation.ErrConflict}
	handler := testRouter(RouterDeps{Teams: svc})

	rec := doRequest(t, handler, http.MethodPost, "/api/teams/1/join", userToken, nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", rec.Code)
	}
}

func TestApproveMember_Forbidden(t *testing.T) {
	svc := &fakeTeamService{err: moderation.ErrForbidden}
	handler := testRouter(RouterDeps{Teams: svc})

	rec := doRequest(t, handler, http.MethodPut, "/api/teams/1/members/2/approve", userToken, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", rec.Code)
	}
}

func TestGetTeam_InvalidID(t *testing.T) {
	handler := testRouter(RouterDeps{Teams: &fakeTeamService{}})

	rec := doRequest(t, handler, http.MethodGet, "/api/teams/abc", "", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestListPendingTeams_AdminOnly(t *testing.T) {
	svc := &fakeTeamService{pending: []*team.Team{{ID: 1, Name: "Fila", Status: team.StatusPending}}}
	handler := testRouter(RouterDeps{Teams: svc})

	rec := doRequest(t, handler, http.MethodGet, "/api/teams/pending", userToken, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status 403 for non-admin, got %d", rec.Code)
	}

	rec = doRequest(t, handler, http.MethodGet, "/api/teams/pending", adminToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 for admin, got %d", rec.Code)
	}
}

// ---------------------------------------------------------------------------
// Streamers
// ---------------------------------------------------------------------------

func TestApplyStreamer(t *testing.T) {
	svc := &fakeStreamerService{submitted: &streamer.PublicStreamer{ID: 3, Name: "CasterPT"}}
	handler := testRouter(RouterDeps{Streamers: svc})

	rec := doRequest(t, handler, http.MethodPost, "/api/streamers/apply", userToken,
		map[string]string{"name": "CasterPT"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", rec.Code)
	}
}

func TestVerifyStreamer_Conflict(t *testing.T) {
	svc := &fakeStreamerService{err: moderation.ErrConflict}
	handler := testRouter(RouterDeps{Streamers: svc})

	rec := doRequest(t, handler, http.MethodPut, "/api/streamers/1/verify", adminToken, nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", rec.Code)
	}
}

func TestListStreamers_Public(t *testing.T) {
	svc := &fakeStreamerService{verified: []*streamer.PublicStreamer{{ID: 1, Name: "Verificado"}}}
	handler := testRouter(RouterDeps{Streamers: svc})

	rec := doRequest(t, handler, http.MethodGet, "/api/streamers", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
}

// ---------------------------------------------------------------------------
// Auth
// ---------------------------------------------------------------------------

func TestRegister_Validation(t *testing.T) {
	handler := testRouter(RouterDeps{Users: &fakeUserStore{}})

	rec := doRequest(t, handler, http.MethodPost, "/api/auth/register", "",
		map[string]string{"username": "", "password": ""})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestRegister_UsernameTaken(t *testing.T) {
	handler := testRouter(RouterDeps{Users: &fakeUserStore{createErr: user.ErrUsernameTaken}})

	rec := doRequest(t, handler, http.MethodPost, "/api/auth/register", "",
		map[string]string{"username": "u1", "password": "secret1"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", rec.Code)
	}
}

func TestLogin(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	store := &fakeUserStore{users: map[string]*user.User{
		"u1": {ID: 1, Username: "u1", PasswordHash: string(hash), Role: user.RoleUser},
	}}
	handler := testRouter(RouterDeps{Users: store})

	rec := doRequest(t, handler, http.MethodPost, "/api/auth/login", "",
		map[string]string{"username": "u1", "password": "secret1"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body map[string]interface{}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["token"] != "tok-test" {
		t.Errorf("expected session token in body, got %+v", body)
	}

	foundCookie := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.SessionCookieName && c.Value == "tok-test" {
			foundCookie = true
		}
	}
	if !foundCookie {
		t.Error("expected a session cookie on login")
	}
}

func TestLogin_BadPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	store := &fakeUserStore{users: map[string]*user.User{
		"u1": {ID: 1, Username: "u1", PasswordHash: string(hash), Role: user.RoleUser},
	}}
	handler := testRouter(RouterDeps{Users: store})

	rec := doRequest(t, handler, http.MethodPost, "/api/auth/login", "",
		map[string]string{"username": "u1", "password": "wrong"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
	if store.sessions != 0 {
		t.Error("no session may be created on a failed login")
	}
}

func TestMe(t *testing.T) {
	handler := testRouter(RouterDeps{Users: &fakeUserStore{}})

	rec := doRequest(t, handler, http.MethodGet, "/api/auth/me", userToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var body map[string]interface{}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["username"] != "u1" {
		t.Errorf("unexpected body: %+v", body)
	}
}

// ---------------------------------------------------------------------------
// Notifications
// ---------------------------------------------------------------------------

func TestListNotifications_RequiresAuth(t *testing.T) {
	handler := testRouter(RouterDeps{Notifications: &fakeNotifications{}})

	rec := doRequest(t, handler, http.MethodGet, "/api/notifications", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
}

func TestListNotifications_EmptyIsArray(t *testing.T) {
	handler := testRouter(RouterDeps{Notifications: &fakeNotifications{}})

	rec := doRequest(t, handler, http.MethodGet, "/api/notifications", userToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if got := rec.Body.String(); got != "[]\n" {
		t.Errorf("expected empty JSON array, got %q", got)
	}
}

func TestMarkNotificationRead_NotOwned(t *testing.T) {
	handler := testRouter(RouterDeps{Notifications: &fakeNotifications{readErr: notify.ErrNotFound}})

	rec := doRequest(t, handler, http.MethodPut, "/api/notifications/5/read", userToken, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}

// ---------------------------------------------------------------------------
// Player directory
// ---------------------------------------------------------------------------

func TestGetPlayerProfile(t *testing.T) {
	store := &fakePlayerStore{profiles: []*player.Profile{
		{ID: 1, UserID: 2, Position: "IGL"},
	}}
	handler := testRouter(RouterDeps{Players: store})

	rec := doRequest(t, handler, http.MethodGet, "/api/players/1", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var body map[string]interface{}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["position"] != "IGL" {
		t.Errorf("unexpected body: %+v", body)
	}
}

func TestGetPlayerProfile_NotFound(t *testing.T) {
	handler := testRouter(RouterDeps{Players: &fakePlayerStore{}})

	rec := doRequest(t, handler, http.MethodGet, "/api/players/42", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
	if detail := decodeError(t, rec); detail.Code != "not_found" {
		t.Errorf("expected code not_found, got %q", detail.Code)
	}
}

func TestCreatePlayerProfile_Duplicate(t *testing.T) {
	handler := testRouter(RouterDeps{Players: &fakePlayerStore{createErr: player.ErrAlreadyExists}})

	rec := doRequest(t, handler, http.MethodPost, "/api/players", userToken, player.Input{Position: "Support"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", rec.Code)
	}
	if detail := decodeError(t, rec); detail.Code != "conflict" {
		t.Errorf("expected code conflict, got %q", detail.Code)
	}
}
