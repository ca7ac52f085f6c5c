package handler

import (
    "context"
    "errors"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/rs/zerolog"

    "github.com/iliyamo/hotel-room-service/internal/middleware"
    "github.com/iliyamo/hotel-room-service/internal/model"
    "github.com/iliyamo/hotel-room-service/internal/repository"
    "github.com/iliyamo/hotel-room-service/internal/utils"
)

type StaffStore interface {
    GetByEmail(ctx context.Context, email string) (model.StaffUser, error)
    GetByID(ctx context.Context, id uint64) (model.StaffUser, error)
}

type RefreshStore interface {
    StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error
    ConsumeRefresh(ctx context.Context, tokenHash string, now time.Time) (uint64, error)
    RevokeAllForUser(ctx context.Context, userID uint64) error
}

// AuthOptions carries the token settings from configuration.
type AuthOptions struct {
    JWTSecret      string
    AccessTTLMin   int
    RefreshTTLDays int
}

// AuthHandler issues and revokes staff credentials for the back office.
type AuthHandler struct {
    Users  StaffStore
    Tokens RefreshStore
    Opts   AuthOptions
    Logger zerolog.Logger
}

func NewAuthHandler(users StaffStore, tokens RefreshStore, opts AuthOptions, logger zerolog.Logger) *AuthHandler {
    if users == nil || tokens == nil {
        panic("nil repository passed to NewAuthHandler")
    }
    return &AuthHandler{Users: users, Tokens: tokens, Opts: opts, Logger: logger.With().Str("component", "auth").Logger()}
}

// ----- DTOs -----

type loginReq struct {
    Email    string `json:"email"`
    Password string `json:"password"`
}
type refreshReq struct {
    RefreshToken string `json:"refresh_token"`
}

type tokenPart struct {
    Token   string    `json:"token"`
    Expires time.Time `json:"expires"`
}
type userPart struct {
    ID    uint64 `json:"id"`
    Email string `json:"email"`
    Role  string `json:"role"`
}
type authResp struct {
    User    userPart  `json:"user"`
    Access  tokenPart `json:"access"`
    Refresh tokenPart `json:"refresh"`
}

// issue signs an access token and stores a fresh refresh token for u.
func (h *AuthHandler) issue(ctx context.Context, u model.StaffUser) (authResp, error) {
    access, err := utils.NewAccessToken(h.Opts.JWTSecret, u.ID, u.Role, h.Opts.AccessTTLMin)
    if err != nil {
        return authResp{}, err
    }
    refresh, err := utils.NewRefreshToken(h.Opts.RefreshTTLDays)
    if err != nil {
        return authResp{}, err
    }
    if err := h.Tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
        return authResp{}, err
    }
    return authResp{
        User:    userPart{ID: u.ID, Email: u.Email, Role: u.Role},
        Access:  tokenPart{Token: access.Token, Expires: access.Exp},
        Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp}, // raw back to client
    }, nil
}

// Login handles POST /admin/api/login.
func (h *AuthHandler) Login(c echo.Context) error {
    var req loginReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.Email = strings.ToLower(strings.TrimSpace(req.Email))
    if req.Email == "" || req.Password == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    u, err := h.Users.GetByEmail(ctx, req.Email)
    if err != nil {
        if errors.Is(err, repository.ErrNotFound) {
            return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
        }
        h.Logger.Error().Err(err).Msg("staff lookup failed")
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    if !u.IsActive || !utils.VerifyPassword(u.PasswordHash, req.Password) {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
    }

    resp, err := h.issue(ctx, u)
    if err != nil {
        h.Logger.Error().Err(err).Uint64("user_id", u.ID).Msg("token issue failed")
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue tokens failed"})
    }
    h.Logger.Info().Uint64("user_id", u.ID).Str("role", u.Role).Msg("staff login")
    return c.JSON(http.StatusOK, resp)
}

// Refresh handles POST /admin/api/refresh: the presented refresh token is
// consumed and a new pair is returned.
func (h *AuthHandler) Refresh(c echo.Context) error {
    var req refreshReq
    if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
    }
    hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    userID, err := h.Tokens.ConsumeRefresh(ctx, hash, time.Now())
    if err != nil {
        if errors.Is(err, repository.ErrNotFound) {
            return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
        }
        h.Logger.Error().Err(err).Msg("refresh consume failed")
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "refresh failed"})
    }
    u, err := h.Users.GetByID(ctx, userID)
    if err != nil || !u.IsActive {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
    }
    resp, err := h.issue(ctx, u)
    if err != nil {
        h.Logger.Error().Err(err).Uint64("user_id", u.ID).Msg("token issue failed")
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue tokens failed"})
    }
    return c.JSON(http.StatusOK, resp)
}

// Logout handles POST /admin/api/logout (JWT protected) and revokes every
// refresh token of the caller.
func (h *AuthHandler) Logout(c echo.Context) error {
    uid, ok := c.Get(middleware.CtxUserID).(uint64)
    if !ok || uid == 0 {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    if err := h.Tokens.RevokeAllForUser(c.Request().Context(), uid); err != nil {
        h.Logger.Error().Err(err).Uint64("user_id", uid).Msg("logout failed")
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
    }
    return c.NoContent(http.StatusNoContent)
}

// Me returns the identity carried by the access token.
func (h *AuthHandler) Me(c echo.Context) error {
    return c.JSON(http.StatusOK, echo.Map{
        "user_id": c.Get(middleware.CtxUserID),
        "role":    c.Get(middleware.CtxRole),
    })
}
