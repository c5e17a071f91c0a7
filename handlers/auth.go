package handlers

import (
	"net/http"

	"task-management-app/domain"
	"task-management-app/services"

	"github.com/charmbracelet/log"
	"go.opentelemetry.io/otel/trace"
)

type AuthHandler struct {
	auth   *services.AuthService
	logger *log.Logger
	tracer trace.Tracer
}

func NewAuthHandler(s *services.AuthService, logger *log.Logger, t trace.Tracer) *AuthHandler {
	return &AuthHandler{auth: s, logger: logger, tracer: t}
}

type authResp struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

func (h AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "AuthHandler.Register")
	defer span.End()

	req := &struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}{}
	if err := readReq(req, r, w); err != nil {
		return
	}

	token, user, err := h.auth.Register(ctx, req.Name, req.Email, req.Password)
	if err != nil {
		writeErrorResp(err, w, h.logger)
		return
	}
	writeResp(authResp{Token: token, User: user}, http.StatusCreated, w)
}

func (h AuthHandler) LogIn(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "AuthHandler.LogIn")
	defer span.End()

	req := &struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{}
	if err := readReq(req, r, w); err != nil {
		return
	}

	token, user, err := h.auth.LogIn(ctx, req.Email, req.Password)
	if err != nil {
		h.logger.Debug("login failed", "err", err)
		writeErrorResp(err, w, h.logger)
		return
	}
	writeResp(authResp{Token: token, User: user}, http.StatusOK, w)
}

func (h AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "AuthHandler.Me")
	defer span.End()

	user, err := h.auth.Me(ctx, OwnerFrom(ctx))
	if err != nil {
		writeErrorResp(err, w, h.logger)
		return
	}
	writeResp(user, http.StatusOK, w)
}
