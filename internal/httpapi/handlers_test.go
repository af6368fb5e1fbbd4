package httpapi_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/foxobr/ficha-rpg/internal/auth"
	"github.com/foxobr/ficha-rpg/internal/config"
	"github.com/foxobr/ficha-rpg/internal/game/catalog"
	"github.com/foxobr/ficha-rpg/internal/game/character"
	"github.com/foxobr/ficha-rpg/internal/game/session"
	"github.com/foxobr/ficha-rpg/internal/httpapi"
	"github.com/foxobr/ficha-rpg/internal/storage/memory"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cat, err := catalog.Default()
	require.NoError(t, err)

	users := memory.NewUserStore(bcrypt.MinCost)
	store := memory.NewSessionStore()
	svc := session.NewService(store, session.NewTracker(2*time.Minute), zap.NewNop())

	tokens := auth.NewTokenManager(config.AuthConfig{
		JWTSecret: "test-secret-0123456789abcdef0123",
		TokenTTL:  time.Hour,
	})
	h := httpapi.NewHandlers(svc, users, tokens, cat, nil, zap.NewNop())
	mw := auth.NewMiddleware(tokens, users)
	return httpapi.NewRouter(h, mw, zap.NewNop())
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}

// signupUser registers a user through the API and returns their id and token.
func signupUser(t *testing.T, r *gin.Engine, email, role string) (string, string) {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/auth/signup", "", gin.H{
		"email":    email,
		"password": "segredo123",
		"name":     "Jogador",
		"role":     role,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		User  session.User `json:"user"`
		Token string       `json:"token"`
	}
	decode(t, w, &resp)
	return resp.User.ID, resp.Token
}

func TestHealth(t *testing.T) {
	r := newTestRouter(t)
	w := doJSON(t, r, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSignupAndLogin(t *testing.T) {
	r := newTestRouter(t)
	signupUser(t, r, "ana@mesa.dev", session.RolePlayer)

	w := doJSON(t, r, http.MethodPost, "/auth/signup", "", gin.H{
		"email": "ana@mesa.dev", "password": "segredo123", "name": "Ana",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, r, http.MethodPost, "/auth/login", "", gin.H{
		"email": "ana@mesa.dev", "password": "segredo123",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodPost, "/auth/login", "", gin.H{
		"email": "ana@mesa.dev", "password": "errada",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSignup_RejectsBadInput(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/auth/signup", "", gin.H{
		"email": "not-an-email", "password": "segredo123", "name": "X",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPost, "/auth/signup", "", gin.H{
		"email": "x@mesa.dev", "password": "curta", "name": "X",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPost, "/auth/signup", "", gin.H{
		"email": "x@mesa.dev", "password": "segredo123", "name": "X", "role": "editor",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRequireUser(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/api/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/me", "garbage-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	id, token := signupUser(t, r, "ana@mesa.dev", session.RolePlayer)
	w = doJSON(t, r, http.MethodGet, "/api/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var me session.User
	decode(t, w, &me)
	assert.Equal(t, id, me.ID)
	assert.Equal(t, session.RolePlayer, me.Role)
}

func TestCreateSession_PlayerForbidden(t *testing.T) {
	r := newTestRouter(t)
	_, token := signupUser(t, r, "ana@mesa.dev", session.RolePlayer)

	w := doJSON(t, r, http.MethodPost, "/api/sessions", token, gin.H{"name": "Mesa"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	var resp struct {
		Reason string `json:"reason"`
	}
	decode(t, w, &resp)
	assert.Equal(t, "forbidden-role", resp.Reason)
}

func TestSessionFlow(t *testing.T) {
	r := newTestRouter(t)
	_, gmToken := signupUser(t, r, "gm@mesa.dev", session.RoleAdmin)
	playerID, playerToken := signupUser(t, r, "ana@mesa.dev", session.RolePlayer)

	w := doJSON(t, r, http.MethodPost, "/api/sessions", gmToken, gin.H{"name": "Campaign"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created session.Session
	decode(t, w, &created)

	w = doJSON(t, r, http.MethodPost, "/api/sessions/"+created.ID+"/join", playerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	sheet := character.New()
	sheet.CharacterName = "Kael"
	sheet.Level = 1
	sheet.Vigor = 2
	w = doJSON(t, r, http.MethodPut, "/api/sessions/"+created.ID+"/character", playerToken, sheet)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var saved character.Character
	decode(t, w, &saved)
	assert.NotEmpty(t, saved.ID)
	assert.Equal(t, 10, saved.MaxHP)

	charPath := fmt.Sprintf("/api/sessions/%s/players/%s/character", created.ID, playerID)
	w = doJSON(t, r, http.MethodGet, charPath, playerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	condPath := fmt.Sprintf("/api/sessions/%s/players/%s/conditions", created.ID, playerID)
	w = doJSON(t, r, http.MethodPost, condPath, playerToken, gin.H{"condition": "Envenenado", "action": "add"})
	assert.Equal(t, http.StatusForbidden, w.Code, "players must not apply conditions")

	w = doJSON(t, r, http.MethodPost, condPath, gmToken, gin.H{"condition": "Envenenado", "action": "add"})
	require.Equal(t, http.StatusOK, w.Code)
	var afterCond character.Character
	decode(t, w, &afterCond)
	assert.Equal(t, []string{"Envenenado"}, afterCond.ActiveConditions)

	w = doJSON(t, r, http.MethodPost, condPath, gmToken, gin.H{"condition": "Envenenado", "action": "toggle"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/sessions", gmToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var mine []session.Session
	decode(t, w, &mine)
	require.Len(t, mine, 1)
	assert.Equal(t, "Campaign", mine[0].Name)

	w = doJSON(t, r, http.MethodGet, "/api/sessions", playerToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestGetSession_NotFound(t *testing.T) {
	r := newTestRouter(t)
	_, token := signupUser(t, r, "ana@mesa.dev", session.RolePlayer)

	w := doJSON(t, r, http.MethodGet, "/api/sessions/inexistente", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCatalogEndpoints(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/catalog/classes", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var classes []map[string]any
	decode(t, w, &classes)
	assert.Len(t, classes, 7)

	w = doJSON(t, r, http.MethodGet, "/catalog/skills", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var categories []map[string]any
	decode(t, w, &categories)
	assert.Len(t, categories, 10)

	w = doJSON(t, r, http.MethodGet, "/catalog/conditions", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var conditions []map[string]any
	decode(t, w, &conditions)
	assert.Len(t, conditions, 10)
}
