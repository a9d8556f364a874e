package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/vaughan-dsouza/fileshelf/internal/auth"
	"github.com/vaughan-dsouza/fileshelf/internal/models"
	"github.com/vaughan-dsouza/fileshelf/internal/utils"
)

// Authenticator is the part of the auth service the public routes use.
type Authenticator interface {
	Register(ctx context.Context, email, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*auth.Session, error)
}

type AuthHandler struct {
	svc Authenticator
	log *slog.Logger
}

func NewAuthHandler(svc Authenticator, log *slog.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, log: log}
}

// ----------- Request/Response DTOs -------------

type credentialsReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerResp struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

type userSummary struct {
	Email string      `json:"email"`
	Role  models.Role `json:"role"`
}

type loginResp struct {
	Token string      `json:"token"`
	User  userSummary `json:"user"`
}

// -------------- REGISTER ---------------------

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsReq
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		return
	}

	u, err := h.svc.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(h.log, w, r, err)
		return
	}

	h.log.InfoContext(r.Context(), "user registered", "user_id", u.ID)

	utils.JSON(w, http.StatusCreated, registerResp{ID: u.ID, Email: u.Email})
}

// -------------- LOGIN ------------------------

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsReq
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		return
	}

	sess, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(h.log, w, r, err)
		return
	}

	utils.JSON(w, http.StatusOK, loginResp{
		Token: sess.Token,
		User:  userSummary{Email: sess.User.Email, Role: sess.User.Role},
	})
}
