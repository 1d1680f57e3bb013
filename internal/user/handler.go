package user

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/pingliu/service-rental-go/internal/auth"
	"github.com/pingliu/service-rental-go/internal/upload"
	"github.com/pingliu/service-rental-go/internal/user/entity"
	"github.com/pingliu/service-rental-go/pkg/utilities"
)

// Handler exposes the account endpoints: register, login, logout, profile
// read/update and avatar upload.
type Handler struct {
	svc     *Service
	tokens  *auth.TokenService
	uploads *upload.Storage
	logger  *zap.SugaredLogger
}

func NewHandler(svc *Service, tokens *auth.TokenService, uploads *upload.Storage, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, tokens: tokens, uploads: uploads, logger: logger}
}

// writeDomainError translates service errors to the response envelope.
// Anything unexpected is logged and reported as a generic 500.
func (h *Handler) writeDomainError(w http.ResponseWriter, op string, err error) {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		utilities.WriteError(w, http.StatusBadRequest, ve.Message)
	case errors.Is(err, ErrUsernameTaken),
		errors.Is(err, ErrPhoneTaken),
		errors.Is(err, ErrAccountNotFound),
		errors.Is(err, ErrWrongPassword),
		errors.Is(err, ErrOldPasswordWrong):
		utilities.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrAccountDisabled):
		utilities.WriteError(w, http.StatusForbidden, "account disabled, contact administrator")
	default:
		h.logger.Errorw(op+" failed", "err", err)
		utilities.WriteError(w, http.StatusInternalServerError, "server error, "+op+" failed")
	}
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var in RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.logger.Debugw("invalid register payload", "err", err)
		utilities.WriteError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	u, err := h.svc.Register(r.Context(), in)
	if err != nil {
		h.writeDomainError(w, "registration", err)
		return
	}
	utilities.WriteResult(w, http.StatusOK, "registration successful", u.Profile())
}

// LoginRequest is the login payload; account may be a username or phone.
type LoginRequest struct {
	Account  string `json:"account"`
	Password string `json:"password"`
}

// LoginResult bundles the issued token with the public profile.
type LoginResult struct {
	Token    string         `json:"token"`
	UserInfo entity.Profile `json:"userInfo"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debugw("invalid login payload", "err", err)
		utilities.WriteError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	u, err := h.svc.Authenticate(r.Context(), req.Account, req.Password)
	if err != nil {
		h.writeDomainError(w, "login", err)
		return
	}
	token, err := h.tokens.Issue(u.ID, u.Role)
	if err != nil {
		h.logger.Errorw("token issuance failed", "err", err)
		utilities.WriteError(w, http.StatusInternalServerError, "server error, login failed")
		return
	}
	utilities.WriteResult(w, http.StatusOK, "login successful", LoginResult{Token: token, UserInfo: u.Profile()})
}

// Logout is a stateless no-op: tokens are self-contained and simply expire.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	utilities.WriteResult(w, http.StatusOK, "logout successful", struct{}{})
}

func (h *Handler) Info(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.UserFrom(r.Context())
	if !ok {
		utilities.WriteError(w, http.StatusUnauthorized, "unauthorized, please log in")
		return
	}
	utilities.WriteResult(w, http.StatusOK, "profile retrieved", u.Profile())
}

func (h *Handler) UpdateInfo(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.UserFrom(r.Context())
	if !ok {
		utilities.WriteError(w, http.StatusUnauthorized, "unauthorized, please log in")
		return
	}
	var in UpdateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.logger.Debugw("invalid profile payload", "err", err)
		utilities.WriteError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	updated, err := h.svc.UpdateProfile(r.Context(), u, in)
	if err != nil {
		h.writeDomainError(w, "profile update", err)
		return
	}
	utilities.WriteResult(w, http.StatusOK, "profile updated", updated.Profile())
}

// AvatarResult is the payload returned after a successful avatar upload.
type AvatarResult struct {
	UserID int64   `json:"userId,string"`
	Avatar *string `json:"avatar"`
}

func (h *Handler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.UserFrom(r.Context())
	if !ok {
		utilities.WriteError(w, http.StatusUnauthorized, "unauthorized, please log in")
		return
	}
	url, err := h.uploads.SaveImage(r, "avatar", "avatars", "avatar")
	if err != nil {
		h.writeUploadError(w, err)
		return
	}
	updated, err := h.svc.UpdateAvatar(r.Context(), u.ID, url)
	if err != nil {
		h.writeDomainError(w, "avatar upload", err)
		return
	}
	utilities.WriteResult(w, http.StatusOK, "avatar uploaded", AvatarResult{UserID: updated.ID, Avatar: updated.Avatar})
}

func (h *Handler) writeUploadError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, upload.ErrNoFile):
		utilities.WriteError(w, http.StatusBadRequest, "please select a file to upload")
	case errors.Is(err, upload.ErrTooLarge):
		utilities.WriteError(w, http.StatusBadRequest, "file exceeds the 5MB limit")
	case errors.Is(err, upload.ErrBadType):
		utilities.WriteError(w, http.StatusBadRequest, "only JPG, PNG and GIF images are allowed")
	default:
		h.logger.Errorw("avatar upload failed", "err", err)
		utilities.WriteError(w, http.StatusInternalServerError, "server error, avatar upload failed")
	}
}
