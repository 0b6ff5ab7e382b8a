package httpapi

import (
	"errors"
	"net/http"

	"github.com/akapustin/itemhub/internal/common"
)

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// login exchanges a form-encoded username/password pair for a bearer token.
// The username field carries the email, OAuth2 password-flow style.
func (s *HTTPServer) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "Invalid form data"})
		return
	}

	email := r.PostFormValue("username")
	password := r.PostFormValue("password")

	token, err := s.users.Login(r.Context(), email, password)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrInactiveUser):
			writeError(w, err, "Inactive user")
		default:
			writeError(w, common.ErrUnauthorized, "Incorrect email or password")
		}
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: token, TokenType: "bearer"})
}

// testToken confirms that the presented bearer token resolves to a user.
func (s *HTTPServer) testToken(w http.ResponseWriter, r *http.Request) {
	user, ok := principalFromContext(r.Context())
	if !ok {
		writeError(w, common.ErrUnauthorized, "Not authenticated")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Authentication successful",
		"user_id": user.ID,
	})
}
