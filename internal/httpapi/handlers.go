// Package httpapi exposes the game service over a REST surface.
package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/foxobr/ficha-rpg/internal/auth"
	"github.com/foxobr/ficha-rpg/internal/game/catalog"
	"github.com/foxobr/ficha-rpg/internal/game/character"
	"github.com/foxobr/ficha-rpg/internal/game/session"
	"github.com/foxobr/ficha-rpg/internal/storage/postgres"
)

// UserStore is the user persistence surface the API needs.
type UserStore interface {
	Create(ctx context.Context, email, password, name, role string) (session.User, error)
	Authenticate(ctx context.Context, email, password string) (session.User, error)
	GetByID(ctx context.Context, id string) (session.User, error)
}

// HealthCheck reports whether a backing dependency is reachable.
type HealthCheck func(ctx context.Context) error

// Handlers holds the request handlers and their collaborators.
type Handlers struct {
	sessions *session.Service
	users    UserStore
	tokens   *auth.TokenManager
	catalog  *catalog.Catalog
	health   HealthCheck
	logger   *zap.Logger
}

// NewHandlers creates the handler set.
//
// Precondition: all collaborators must be non-nil; health may be nil for
// deployments without a backing database.
func NewHandlers(sessions *session.Service, users UserStore, tokens *auth.TokenManager, cat *catalog.Catalog, health HealthCheck, logger *zap.Logger) *Handlers {
	return &Handlers{
		sessions: sessions,
		users:    users,
		tokens:   tokens,
		catalog:  cat,
		health:   health,
		logger:   logger,
	}
}

// Health reports service liveness and, when configured, database
// reachability.
func (h *Handlers) Health(c *gin.Context) {
	if h.health != nil {
		if err := h.health(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type signupRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name" binding:"required"`
	Role     string `json:"role"`
}

// Signup registers a user and returns it with a fresh token. The role is
// fixed at signup; omitting it yields a player account.
func (h *Handlers) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Role == "" {
		req.Role = session.RolePlayer
	}

	user, err := h.users.Create(c.Request.Context(), req.Email, req.Password, req.Name, req.Role)
	if err != nil {
		switch {
		case errors.Is(err, postgres.ErrEmailTaken):
			c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
		case errors.Is(err, postgres.ErrInvalidRole):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid role"})
		default:
			h.serverError(c, "creating user", err)
		}
		return
	}

	token, err := h.tokens.Mint(user.ID)
	if err != nil {
		h.serverError(c, "minting token", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": user, "token": token})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login verifies credentials and returns the user with a fresh token.
func (h *Handlers) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, postgres.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		h.serverError(c, "authenticating", err)
		return
	}

	token, err := h.tokens.Mint(user.ID)
	if err != nil {
		h.serverError(c, "minting token", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user, "token": token})
}

// CurrentUser returns the authenticated caller.
func (h *Handlers) CurrentUser(c *gin.Context) {
	c.JSON(http.StatusOK, auth.Caller(c))
}

type createSessionRequest struct {
	Name string `json:"name" binding:"required"`
}

// CreateSession creates a game session owned by the caller.
func (h *Handlers) CreateSession(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess, err := h.sessions.Create(c.Request.Context(), auth.Caller(c), req.Name)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sess)
}

// ListSessions returns the sessions owned by the caller.
func (h *Handlers) ListSessions(c *gin.Context) {
	sessions, err := h.sessions.ListAdminSessions(c.Request.Context(), auth.Caller(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessions)
}

// GetSession returns one session with fresh liveness markers.
func (h *Handlers) GetSession(c *gin.Context) {
	sess, err := h.sessions.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

// JoinSession adds the caller to the session.
func (h *Handlers) JoinSession(c *gin.Context) {
	sess, err := h.sessions.Join(c.Request.Context(), auth.Caller(c), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

// SaveCharacter stores the caller's character sheet in the session.
func (h *Handlers) SaveCharacter(c *gin.Context) {
	var sheet character.Character
	if err := c.ShouldBindJSON(&sheet); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	saved, err := h.sessions.SaveCharacter(c.Request.Context(), auth.Caller(c), c.Param("id"), &sheet)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

// GetCharacter returns the sheet of the given player in the session.
func (h *Handlers) GetCharacter(c *gin.Context) {
	sheet, err := h.sessions.GetCharacter(c.Request.Context(), c.Param("id"), c.Param("userId"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	if sheet == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "character not saved yet"})
		return
	}
	c.JSON(http.StatusOK, sheet)
}

type conditionRequest struct {
	Condition string `json:"condition" binding:"required"`
	Action    string `json:"action" binding:"required"`
}

// ApplyCondition adds or removes a status condition on the target
// player's character.
func (h *Handlers) ApplyCondition(c *gin.Context) {
	var req conditionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sheet, err := h.sessions.ApplyCondition(
		c.Request.Context(), auth.Caller(c),
		c.Param("id"), c.Param("userId"),
		req.Condition, session.ConditionAction(req.Action),
	)
	if err != nil {
		if errors.Is(err, session.ErrInvalidAction) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "action must be add or remove"})
			return
		}
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sheet)
}

// ListClasses returns the playable class catalog.
func (h *Handlers) ListClasses(c *gin.Context) {
	names := h.catalog.ClassNames()
	classes := make([]gin.H, 0, len(names))
	for _, name := range names {
		cls, _ := h.catalog.Class(name)
		classes = append(classes, gin.H{
			"name":             cls.Name,
			"grantedSkills":    cls.GrantedSkills,
			"additionalPoints": cls.AdditionalPoints,
		})
	}
	c.JSON(http.StatusOK, classes)
}

// ListSkills returns the skill catalog grouped by category, in display
// order.
func (h *Handlers) ListSkills(c *gin.Context) {
	categories := make([]gin.H, 0)
	for _, cat := range h.catalog.SkillCategories() {
		skills := make([]gin.H, 0)
		for _, sk := range h.catalog.SkillsInCategory(cat) {
			skills = append(skills, gin.H{
				"name":       sk.Name,
				"attributes": sk.Attributes,
			})
		}
		categories = append(categories, gin.H{"category": cat, "skills": skills})
	}
	c.JSON(http.StatusOK, categories)
}

// ListConditions returns the condition catalog with display metadata.
func (h *Handlers) ListConditions(c *gin.Context) {
	out := make([]gin.H, 0)
	for _, name := range h.catalog.ConditionNames() {
		cond, _ := h.catalog.Condition(name)
		out = append(out, gin.H{"name": name, "icon": cond.Icon, "color": cond.Color})
	}
	c.JSON(http.StatusOK, out)
}

// writeError maps service errors to HTTP responses. Denials carry their
// machine-readable reason so clients can branch without string matching.
func (h *Handlers) writeError(c *gin.Context, err error) {
	if d, ok := session.AsDenial(err); ok {
		status := http.StatusForbidden
		switch d.Reason {
		case session.ReasonUnauthenticated:
			status = http.StatusUnauthorized
		case session.ReasonNotFound:
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": d.Error(), "reason": string(d.Reason)})
		return
	}
	if errors.Is(err, character.ErrNilCharacter) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "character payload required"})
		return
	}
	h.serverError(c, "handling request", err)
}

func (h *Handlers) serverError(c *gin.Context, msg string, err error) {
	h.logger.Error(msg, zap.Error(err), zap.String("path", c.FullPath()))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
