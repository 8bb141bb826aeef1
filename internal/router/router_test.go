package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/anonto42/nano-midea/interactions/internal/auth"
	"github.com/anonto42/nano-midea/interactions/internal/events"
	"github.com/anonto42/nano-midea/interactions/internal/metrics"
	"github.com/anonto42/nano-midea/interactions/internal/models"
	"github.com/anonto42/nano-midea/interactions/internal/realtime"
	"github.com/anonto42/nano-midea/interactions/internal/repositories/memory"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "router-test-secret"

type apiResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

type testServer struct {
	echo   *echo.Echo
	logs   *test.Hook
	postID string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	posts := memory.NewPostRepository()
	postID := posts.Add(models.Post{AuthorID: 2, Content: "sunset", CreatedAt: time.Now()})
	repos := MemoryRepositories()
	repos.Users = memory.NewUserRepository(
		models.User{ID: 1, Name: "Ursula"},
		models.User{ID: 2, Name: "Amir"},
		models.User{ID: 3, Name: "Bea"},
	)
	repos.Posts = posts

	bus := events.NewBus(logger)
	t.Cleanup(func() { _ = bus.Close() })

	verifier := auth.NewJWTVerifier(testSecret)
	svc := NewServices(repos, bus, verifier, realtime.GatewayConfig{}, metrics.New(prometheus.NewRegistry()), logger)

	e := echo.New()
	SetupMiddleware(e, logger)
	SetupRoutes(e, svc, verifier, logger)
	e.Validator = svc.Validator

	return &testServer{echo: e, logs: hook, postID: postID}
}

func token(t *testing.T, userID uint) string {
	t.Helper()
	claims := &models.JwtCustomClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

func (s *testServer) do(t *testing.T, method, path string, userID uint, body interface{}) (int, apiResponse) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if userID != 0 {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token(t, userID))
	}
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	var res apiResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res), rec.Body.String())
	return rec.Code, res
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

func TestHealthIsPublic(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}

func TestProtectedRoutesRequireCredential(t *testing.T) {
	s := newTestServer(t)

	code, res := s.do(t, http.MethodGet, "/api/v1/notifications", 0, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.NotEmpty(t, res.Message)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer not-a-jwt")
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "malformed token")
}

func TestLiveChannelRefusesMissingCredential(t *testing.T) {
	s := newTestServer(t)
	code, _ := s.do(t, http.MethodGet, "/ws", 0, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestAccessLogOmitsQueryCredential(t *testing.T) {
	s := newTestServer(t)
	tok := token(t, 1)

	req := httptest.NewRequest(http.MethodGet, "/ws?token="+tok, nil)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	var sawAccessLog bool
	for _, entry := range s.logs.AllEntries() {
		line, err := entry.String()
		require.NoError(t, err)
		assert.NotContains(t, line, tok)
		if entry.Message == "request" {
			sawAccessLog = true
			assert.Equal(t, "/ws", entry.Data["path"])
		}
	}
	assert.True(t, sawAccessLog)
}

func TestFollowToggleOverHTTP(t *testing.T) {
	s := newTestServer(t)

	code, res := s.do(t, http.MethodPost, "/api/v1/users/2/follow", 1, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, map[string]bool{"following": true}, decode[map[string]bool](t, res.Data))

	code, res = s.do(t, http.MethodGet, "/api/v1/users/2/follow-status", 1, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, map[string]bool{"following": true}, decode[map[string]bool](t, res.Data))

	code, res = s.do(t, http.MethodGet, "/api/v1/users/2/followers", 3, nil)
	require.Equal(t, http.StatusOK, code)
	followers := decode[struct {
		Count int `json:"count"`
	}](t, res.Data)
	assert.Equal(t, 1, followers.Count)

	code, res = s.do(t, http.MethodPost, "/api/v1/users/2/follow", 1, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, map[string]bool{"following": false}, decode[map[string]bool](t, res.Data))

	code, _ = s.do(t, http.MethodPost, "/api/v1/users/1/follow", 1, nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = s.do(t, http.MethodPost, "/api/v1/users/abc/follow", 1, nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestLikeTogglesOverHTTP(t *testing.T) {
	s := newTestServer(t)

	code, _ := s.do(t, http.MethodPost, "/api/v1/posts/000000000000000000000000/like", 1, nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, res := s.do(t, http.MethodPost, "/api/v1/posts/"+s.postID+"/like", 1, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, map[string]bool{"liked": true}, decode[map[string]bool](t, res.Data))

	code, res = s.do(t, http.MethodGet, "/api/v1/likes/post/"+s.postID, 1, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(res.Data), `"liked":true`)

	code, _ = s.do(t, http.MethodPost, "/api/v1/comments/nope/like", 1, nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestNotificationLifecycleOverHTTP(t *testing.T) {
	s := newTestServer(t)

	code, _ := s.do(t, http.MethodPost, "/api/v1/users/2/follow", 1, nil)
	require.Equal(t, http.StatusOK, code)
	code, _ = s.do(t, http.MethodPost, "/api/v1/posts/"+s.postID+"/comments", 3, map[string]string{"content": "  lovely  "})
	require.Equal(t, http.StatusCreated, code)

	code, res := s.do(t, http.MethodGet, "/api/v1/notifications", 2, nil)
	require.Equal(t, http.StatusOK, code)
	list := decode[struct {
		Notifications []struct {
			ID      uint   `json:"id"`
			Type    string `json:"type"`
			Message string `json:"message"`
			Actor   struct {
				Name string `json:"name"`
			} `json:"actor"`
		} `json:"notifications"`
		Total       int64 `json:"total"`
		UnreadCount int64 `json:"unread_count"`
	}](t, res.Data)
	require.Len(t, list.Notifications, 2)
	assert.Equal(t, int64(2), list.UnreadCount)
	assert.Equal(t, "comment", list.Notifications[0].Type)
	assert.Equal(t, "Bea", list.Notifications[0].Actor.Name)
	assert.Equal(t, "Ursula started following you", list.Notifications[1].Message)

	code, _ = s.do(t, http.MethodGet, "/api/v1/notifications?type=poke", 2, nil)
	assert.Equal(t, http.StatusBadRequest, code)

	target := list.Notifications[1].ID
	code, _ = s.do(t, http.MethodPut, "/api/v1/notifications/999/read", 2, nil)
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = s.do(t, http.MethodPut, "/api/v1/notifications/"+itoa(target)+"/read", 3, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, res = s.do(t, http.MethodPut, "/api/v1/notifications/"+itoa(target)+"/read", 2, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, map[string]int64{"unread_count": 1}, decode[map[string]int64](t, res.Data))

	code, _ = s.do(t, http.MethodPut, "/api/v1/notifications/read-all", 2, nil)
	require.Equal(t, http.StatusOK, code)
	code, res = s.do(t, http.MethodGet, "/api/v1/notifications/unread-count", 2, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, map[string]int64{"count": 0}, decode[map[string]int64](t, res.Data))

	code, _ = s.do(t, http.MethodDelete, "/api/v1/notifications/"+itoa(target), 2, nil)
	require.Equal(t, http.StatusOK, code)
	code, _ = s.do(t, http.MethodDelete, "/api/v1/notifications/"+itoa(target), 2, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestStoriesOverHTTP(t *testing.T) {
	s := newTestServer(t)

	code, _ := s.do(t, http.MethodPost, "/api/v1/stories", 1, map[string]string{"media_url": "https://cdn.example.com/a.jpg", "media_type": "gif"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, res := s.do(t, http.MethodPost, "/api/v1/stories", 1, map[string]string{"media_url": "https://cdn.example.com/a.jpg", "media_type": "image"})
	require.Equal(t, http.StatusCreated, code)
	story := decode[struct {
		ID string `json:"id"`
	}](t, res.Data)
	require.NotEmpty(t, story.ID)

	code, _ = s.do(t, http.MethodPost, "/api/v1/users/1/follow", 2, nil)
	require.Equal(t, http.StatusOK, code)
	code, _ = s.do(t, http.MethodPost, "/api/v1/stories/"+story.ID+"/view", 2, nil)
	require.Equal(t, http.StatusOK, code)

	code, _ = s.do(t, http.MethodGet, "/api/v1/stories/"+story.ID+"/viewers", 2, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, res = s.do(t, http.MethodGet, "/api/v1/stories/"+story.ID+"/viewers", 1, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(res.Data), `"count":1`)

	code, res = s.do(t, http.MethodGet, "/api/v1/stories", 2, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(res.Data), `"has_unviewed":false`)
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
