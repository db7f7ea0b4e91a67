package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/VeronicacortesIsaza/Sistema-Reserva-Hotel-Backend/internal/config"
	"github.com/VeronicacortesIsaza/Sistema-Reserva-Hotel-Backend/internal/middleware"
	"github.com/VeronicacortesIsaza/Sistema-Reserva-Hotel-Backend/internal/model"
	"github.com/VeronicacortesIsaza/Sistema-Reserva-Hotel-Backend/internal/repository"
	"github.com/VeronicacortesIsaza/Sistema-Reserva-Hotel-Backend/internal/service"
	"github.com/VeronicacortesIsaza/Sistema-Reserva-Hotel-Backend/internal/utils"
)

// AuthHandler issues and revokes tokens.
type AuthHandler struct {
	Cfg    config.Config
	Users  *service.Users
	Tokens *repository.TokenRepo
	Log    *slog.Logger
}

func NewAuthHandler(cfg config.Config, users *service.Users, tokens *repository.TokenRepo, log *slog.Logger) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: users, Tokens: tokens, Log: log}
}

type loginReq struct {
	Username string `json:"nombre_usuario"`
	Password string `json:"clave"`
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type authResp struct {
	User         *model.User `json:"usuario"`
	AccessToken  string      `json:"access_token"`
	TokenType    string      `json:"token_type"`
	RefreshToken string      `json:"refresh_token"`
}

// issue signs an access token and stores a fresh refresh token for u.
func (h *AuthHandler) issue(c echo.Context, u *model.User) (authResp, error) {
	ctx, cancel := reqCtx(c)
	defer cancel()
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Username, u.Role, h.Cfg.AccessTTLMin)
	if err != nil {
		return authResp{}, err
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return authResp{}, err
	}
	if err := h.Tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return authResp{}, err
	}
	return authResp{User: u, AccessToken: access.Token, TokenType: "bearer", RefreshToken: refresh.Raw}, nil
}

// Login verifies nombre_usuario/clave and returns a token pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if !bind(c, &req) {
		return badRequest(c, msgBadBody)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	u, err := h.Users.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		return fail(c, h.Log, err)
	}
	resp, err := h.issue(c, u)
	if err != nil {
		return fail(c, h.Log, err)
	}
	h.Log.Info("auth.login", slog.String("id_usuario", u.ID.String()))
	return c.JSON(http.StatusOK, resp)
}

// Refresh rotates a refresh token: the presented one is revoked and a new
// pair is returned.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return badRequest(c, "refresh_token es obligatorio")
	}
	hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

	ctx, cancel := reqCtx(c)
	defer cancel()
	userID, err := h.Tokens.Consume(ctx, hash)
	if err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Refresh token inválido"})
		}
		return fail(c, h.Log, err)
	}
	u, err := h.Users.Get(ctx, userID)
	if err != nil {
		if service.IsKind(err, service.KindNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Refresh token inválido"})
		}
		return fail(c, h.Log, err)
	}
	resp, err := h.issue(c, u)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// Logout revokes the given refresh token.  An unknown or already revoked
// token is accepted so clients can retry.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return badRequest(c, "refresh_token es obligatorio")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Tokens.RevokeByHash(ctx, utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))); err != nil {
		return fail(c, h.Log, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Me echoes the identity carried by the access token.
func (h *AuthHandler) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"id_usuario":     c.Get(middleware.CtxUserID),
		"nombre_usuario": c.Get(middleware.CtxUsername),
		"tipo_usuario":   c.Get(middleware.CtxRole),
	})
}
