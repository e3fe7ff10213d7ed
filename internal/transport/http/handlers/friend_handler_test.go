package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tandemhq/tandem/internal/domain"
	"github.com/tandemhq/tandem/internal/repository"
	"github.com/tandemhq/tandem/internal/service"
	"github.com/tandemhq/tandem/internal/transport/http/middleware"
)

const testSecret = "test-secret"

// stub repositories shared across the handler tests

type stubStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]domain.User
	reqs  map[uuid.UUID]*domain.FriendRequest
	edges map[string]bool
}

func pairKey(a, b uuid.UUID) string {
	if a.String() > b.String() {
		a, b = b, a
	}
	return a.String() + ":" + b.String()
}

func (s *stubStore) addUser(name string, onboarded bool) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := domain.User{ID: uuid.New(), FullName: name, Email: name + "@example.com", IsOnboarded: onboarded, CreatedAt: time.Now()}
	s.users[u.ID] = u
	return u.ID
}

type stubUsers struct{ s *stubStore }

func (r *stubUsers) Create(ctx context.Context, u *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.users[u.ID] = *u
	return nil
}

func (r *stubUsers) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if u, ok := r.s.users[id]; ok {
		return &u, nil
	}
	return nil, nil
}

func (r *stubUsers) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return nil, nil
}

func (r *stubUsers) UpdateProfile(ctx context.Context, u *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.users[u.ID] = *u
	return nil
}

func (r *stubUsers) ListOnboarded(ctx context.Context, excludeID uuid.UUID) ([]domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var users []domain.User
	for _, u := range r.s.users {
		if u.IsOnboarded && u.ID != excludeID {
			users = append(users, u)
		}
	}
	return users, nil
}

type stubRequests struct{ s *stubStore }

func (r *stubRequests) Create(ctx context.Context, req *domain.FriendRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	// The pair is unique across the whole lifecycle, matching the index.
	for _, existing := range r.s.reqs {
		if pairKey(existing.SenderID, existing.RecipientID) == pairKey(req.SenderID, req.RecipientID) {
			return repository.ErrDuplicatePair
		}
	}
	cp := *req
	r.s.reqs[req.ID] = &cp
	return nil
}

func (r *stubRequests) GetByID(ctx context.Context, id uuid.UUID) (*domain.FriendRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if req, ok := r.s.reqs[id]; ok {
		cp := *req
		return &cp, nil
	}
	return nil, nil
}

func (r *stubRequests) HasPendingBetween(ctx context.Context, a, b uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, req := range r.s.reqs {
		if req.Status == domain.RequestStatusPending && pairKey(req.SenderID, req.RecipientID) == pairKey(a, b) {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubRequests) Accept(ctx context.Context, id uuid.UUID) (*domain.FriendRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	req, ok := r.s.reqs[id]
	if !ok || req.Status != domain.RequestStatusPending {
		return nil, nil
	}
	req.Status = domain.RequestStatusAccepted
	r.s.edges[pairKey(req.SenderID, req.RecipientID)] = true
	cp := *req
	return &cp, nil
}

func (r *stubRequests) ListIncoming(ctx context.Context, userID uuid.UUID) ([]domain.FriendRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var reqs []domain.FriendRequest
	for _, req := range r.s.reqs {
		if req.RecipientID == userID {
			cp := *req
			if sender, ok := r.s.users[req.SenderID]; ok {
				sender := sender
				cp.Sender = &sender
			}
			reqs = append(reqs, cp)
		}
	}
	return reqs, nil
}

func (r *stubRequests) ListOutgoing(ctx context.Context, userID uuid.UUID) ([]domain.FriendRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var reqs []domain.FriendRequest
	for _, req := range r.s.reqs {
		if req.SenderID == userID && req.Status == domain.RequestStatusPending {
			cp := *req
			if recipient, ok := r.s.users[req.RecipientID]; ok {
				recipient := recipient
				cp.Recipient = &recipient
			}
			reqs = append(reqs, cp)
		}
	}
	return reqs, nil
}

type stubFriendships struct{ s *stubStore }

func (r *stubFriendships) AddEdge(ctx context.Context, a, b uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.edges[pairKey(a, b)] = true
	return nil
}

func (r *stubFriendships) IsFriend(ctx context.Context, a, b uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.edges[pairKey(a, b)], nil
}

func (r *stubFriendships) FriendIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	users, err := r.ListFriends(ctx, userID)
	if err != nil {
		return nil, err
	}
	var ids []uuid.UUID
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	return ids, nil
}

func (r *stubFriendships) ListFriends(ctx context.Context, userID uuid.UUID) ([]domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var users []domain.User
	for _, u := range r.s.users {
		if u.ID != userID && r.s.edges[pairKey(userID, u.ID)] {
			users = append(users, u)
		}
	}
	return users, nil
}

func newTestServer() (*http.ServeMux, *stubStore) {
	store := &stubStore{
		users: make(map[uuid.UUID]domain.User),
		reqs:  make(map[uuid.UUID]*domain.FriendRequest),
		edges: make(map[string]bool),
	}

	log := logrus.New()
	log.SetOutput(io.Discard)

	friendService := service.NewFriendService(&stubRequests{s: store}, &stubFriendships{s: store}, &stubUsers{s: store})
	recommendService := service.NewRecommendService(&stubUsers{s: store}, &stubFriendships{s: store})

	friendHandler := NewFriendHandler(friendService, log)
	recommendHandler := NewRecommendHandler(recommendService, log)

	auth := middleware.Auth(testSecret)
	mux := http.NewServeMux()
	mux.Handle("POST /friend-requests/{recipientId}", auth(http.HandlerFunc(friendHandler.SendRequest)))
	mux.Handle("PUT /friend-requests/{requestId}/accept", auth(http.HandlerFunc(friendHandler.AcceptRequest)))
	mux.Handle("GET /friend-requests/incoming", auth(http.HandlerFunc(friendHandler.ListIncoming)))
	mux.Handle("GET /friend-requests/outgoing", auth(http.HandlerFunc(friendHandler.ListOutgoing)))
	mux.Handle("GET /friends", auth(http.HandlerFunc(friendHandler.ListFriends)))
	mux.Handle("GET /recommendations", auth(http.HandlerFunc(recommendHandler.Recommend)))
	return mux, store
}

func tokenFor(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub": userID.String(),
		"exp": time.Now().Add(time.Hour).Unix(),
		"iat": time.Now().Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func do(t *testing.T, mux *http.ServeMux, method, path string, userID uuid.UUID) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, userID))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, body string) string {
	t.Helper()
	var resp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &resp))
	return resp.Error.Code
}

func TestSendRequestEndpoint(t *testing.T) {
	mux, store := newTestServer()
	u1 := store.addUser("alice", true)
	u2 := store.addUser("bob", true)

	w := do(t, mux, http.MethodPost, "/friend-requests/"+u2.String(), u1)
	require.Equal(t, http.StatusCreated, w.Code)

	var req domain.FriendRequest
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &req))
	assert.Equal(t, domain.RequestStatusPending, req.Status)
	assert.Equal(t, u1, req.SenderID)
	assert.Equal(t, u2, req.RecipientID)
}

func TestSendRequestEndpointFailures(t *testing.T) {
	mux, store := newTestServer()
	u1 := store.addUser("alice", true)
	u2 := store.addUser("bob", true)

	w := do(t, mux, http.MethodPost, "/friend-requests/"+u1.String(), u1)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "SELF_REQUEST", errorCode(t, w.Body.String()))

	w = do(t, mux, http.MethodPost, "/friend-requests/"+uuid.NewString(), u1)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, mux, http.MethodPost, "/friend-requests/not-a-uuid", u1)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_ID", errorCode(t, w.Body.String()))

	w = do(t, mux, http.MethodPost, "/friend-requests/"+u2.String(), u1)
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(t, mux, http.MethodPost, "/friend-requests/"+u2.String(), u1)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "DUPLICATE_REQUEST", errorCode(t, w.Body.String()))
}

func TestAcceptRequestEndpoint(t *testing.T) {
	mux, store := newTestServer()
	u1 := store.addUser("alice", true)
	u2 := store.addUser("bob", true)
	u3 := store.addUser("carol", true)

	w := do(t, mux, http.MethodPost, "/friend-requests/"+u2.String(), u1)
	require.Equal(t, http.StatusCreated, w.Code)
	var req domain.FriendRequest
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &req))

	acceptPath := "/friend-requests/" + req.ID.String() + "/accept"

	// only the recipient may accept
	w = do(t, mux, http.MethodPut, acceptPath, u3)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(t, mux, http.MethodPut, acceptPath, u2)
	require.Equal(t, http.StatusOK, w.Code)
	var accepted domain.FriendRequest
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &accepted))
	assert.Equal(t, domain.RequestStatusAccepted, accepted.Status)

	w = do(t, mux, http.MethodPut, acceptPath, u2)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "ALREADY_ACCEPTED", errorCode(t, w.Body.String()))

	w = do(t, mux, http.MethodPut, "/friend-requests/"+uuid.NewString()+"/accept", u2)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// both sides now see each other through /friends
	for _, id := range []uuid.UUID{u1, u2} {
		w = do(t, mux, http.MethodGet, "/friends", id)
		require.Equal(t, http.StatusOK, w.Code)
		var friends []domain.User
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &friends))
		assert.Len(t, friends, 1)
	}
}

func TestListEndpointsReturnArrays(t *testing.T) {
	mux, store := newTestServer()
	u1 := store.addUser("alice", true)

	for _, path := range []string{
		"/friend-requests/incoming",
		"/friend-requests/outgoing",
		"/friends",
		"/recommendations",
	} {
		w := do(t, mux, http.MethodGet, path, u1)
		require.Equal(t, http.StatusOK, w.Code, path)
		// empty lists serialize as [], never null
		assert.Equal(t, "[]\n", w.Body.String(), path)
	}
}

func TestEndpointsRequireAuth(t *testing.T) {
	mux, store := newTestServer()
	u1 := store.addUser("alice", true)

	req := httptest.NewRequest(http.MethodGet, "/friends", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/friend-requests/"+u1.String(), nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRecommendationsEndpoint(t *testing.T) {
	mux, store := newTestServer()
	u1 := store.addUser("alice", true)
	u2 := store.addUser("bob", true)
	store.addUser("lurker", false)

	w := do(t, mux, http.MethodGet, "/recommendations", u1)
	require.Equal(t, http.StatusOK, w.Code)

	var users []domain.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &users))
	require.Len(t, users, 1)
	assert.Equal(t, u2, users[0].ID)
}
