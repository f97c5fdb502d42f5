package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"

	"github.com/happyhourhub/backend/internal/db"
	apperrors "github.com/happyhourhub/backend/internal/errors"
)

// TokenCookieName is the cookie that carries the session token. HTTP-only so
// client script can never read it; the token is never echoed in a body.
const TokenCookieName = "token"

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// authResponse is the auth envelope; it carries the user at the top level
// rather than under data.
type authResponse struct {
	Status  string    `json:"status"`
	Message string    `json:"message,omitempty"`
	User    *UserInfo `json:"user"`
}

type Handlers struct {
	authService  *Service
	cookieSecure bool
}

func NewHandlers(authService *Service, cookieSecure bool) *Handlers {
	return &Handlers{authService: authService, cookieSecure: cookieSecure}
}

func (h *Handlers) Signup(w http.ResponseWriter, r *http.Request) {
	requestID := apperrors.GetRequestID(r.Context())

	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperrors.WriteError(w, requestID, apperrors.BadRequest("Invalid request body"))
		return
	}

	if err := validateSignupRequest(&req); err != nil {
		apperrors.WriteError(w, requestID, apperrors.ValidationError(err.Error()))
		return
	}

	user, token, err := h.authService.Signup(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, db.ErrEmailExists) {
			apperrors.WriteError(w, requestID, apperrors.EmailExists())
			return
		}
		apperrors.WriteError(w, requestID, err)
		return
	}

	h.setTokenCookie(w, token)
	writeAuthJSON(w, requestID, http.StatusCreated, authResponse{
		Status:  "success",
		Message: "Account created successfully",
		User:    userInfo(user),
	})
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	requestID := apperrors.GetRequestID(r.Context())

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperrors.WriteError(w, requestID, apperrors.BadRequest("Invalid request body"))
		return
	}

	if req.Email == "" || req.Password == "" {
		apperrors.WriteError(w, requestID, apperrors.ValidationError("Email and password are required"))
		return
	}

	user, token, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			// Same message for unknown email and wrong password
			apperrors.WriteError(w, requestID, apperrors.InvalidCredentials())
			return
		}
		apperrors.WriteError(w, requestID, err)
		return
	}

	h.setTokenCookie(w, token)
	writeAuthJSON(w, requestID, http.StatusOK, authResponse{
		Status:  "success",
		Message: "Logged in successfully",
		User:    userInfo(user),
	})
}

// Logout expires the client-held cookie. The token itself stays valid until
// its expiry; there is no server-side revocation.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	requestID := apperrors.GetRequestID(r.Context())

	h.clearTokenCookie(w)
	apperrors.WriteJSON(w, requestID, http.StatusOK, apperrors.SuccessMessage("Logged out successfully"))
}

// Verify returns the authenticated user. Reaching it at all means the session
// resolver accepted the request.
func (h *Handlers) Verify(w http.ResponseWriter, r *http.Request) {
	requestID := apperrors.GetRequestID(r.Context())

	userCtx := GetUserFromContext(r.Context())
	if userCtx == nil {
		apperrors.WriteError(w, requestID, apperrors.Unauthenticated("Authentication required. Please log in."))
		return
	}

	writeAuthJSON(w, requestID, http.StatusOK, authResponse{
		Status: "success",
		User: &UserInfo{
			ID:        userCtx.ID.String(),
			Email:     userCtx.Email,
			CreatedAt: userCtx.CreatedAt,
		},
	})
}

func (h *Handlers) setTokenCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     TokenCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(TokenExpiry.Seconds()),
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handlers) clearTokenCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     TokenCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func validateSignupRequest(req *SignupRequest) error {
	if req.Email == "" {
		return errors.New("Email is required")
	}
	if !emailRegex.MatchString(req.Email) {
		return errors.New("Invalid email format")
	}
	if req.Password == "" {
		return errors.New("Password is required")
	}
	if len(req.Password) < 6 {
		return errors.New("Password must be at least 6 characters")
	}
	return nil
}

func writeAuthJSON(w http.ResponseWriter, requestID string, status int, body authResponse) {
	w.Header().Set("Content-Type", "application/json")
	if requestID != "" {
		w.Header().Set(apperrors.RequestIDHeader, requestID)
	}
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
