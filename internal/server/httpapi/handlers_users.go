package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/akapustin/itemhub/internal/common"
	"github.com/akapustin/itemhub/internal/server/models"
	"github.com/akapustin/itemhub/internal/server/services"
)

type createUserRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	FullName    string `json:"full_name"`
	IsActive    *bool  `json:"is_active"`
	IsSuperuser bool   `json:"is_superuser"`
}

type updateUserRequest struct {
	Email       *string `json:"email"`
	Password    *string `json:"password"`
	FullName    *string `json:"full_name"`
	IsActive    *bool   `json:"is_active"`
	IsSuperuser *bool   `json:"is_superuser"`
}

// parsePagination reads the skip/limit query parameters, defaulting to 0/100.
func parsePagination(r *http.Request) (skip, limit int) {
	skip, limit = 0, 100
	if v := r.URL.Query().Get("skip"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			skip = n
		}
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			limit = n
		}
	}
	return skip, limit
}

func (s *HTTPServer) listUsers(w http.ResponseWriter, r *http.Request) {
	skip, limit := parsePagination(r)

	users, err := s.users.List(r.Context(), skip, limit)
	if err != nil {
		writeError(w, err, "Could not list users")
		return
	}
	if users == nil {
		users = []*models.User{}
	}

	writeJSON(w, http.StatusOK, users)
}

func (s *HTTPServer) createUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "Invalid request body"})
		return
	}
	if req.Email == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "email and password are required"})
		return
	}

	user, err := s.users.Create(r.Context(), services.CreateUserInput{
		Email:       req.Email,
		Password:    req.Password,
		FullName:    req.FullName,
		IsActive:    req.IsActive,
		IsSuperuser: req.IsSuperuser,
	})
	if err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			writeError(w, err, "A user with this email already exists")
			return
		}
		writeError(w, err, "Could not create user")
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (s *HTTPServer) readUserMe(w http.ResponseWriter, r *http.Request) {
	user, ok := principalFromContext(r.Context())
	if !ok {
		writeError(w, common.ErrUnauthorized, "Not authenticated")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *HTTPServer) updateUserMe(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromContext(r.Context())
	if !ok {
		writeError(w, common.ErrUnauthorized, "Not authenticated")
		return
	}

	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "Invalid request body"})
		return
	}

	// Self-service update cannot escalate privileges or toggle activation.
	user, err := s.users.Update(r.Context(), principal.ID, services.UpdateUserInput{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
	})
	if err != nil {
		writeError(w, err, "Could not update user")
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// readUserByID returns the requested user to themselves or to a superuser.
func (s *HTTPServer) readUserByID(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromContext(r.Context())
	if !ok {
		writeError(w, common.ErrUnauthorized, "Not authenticated")
		return
	}

	id := chi.URLParam(r, "id")
	if id != principal.ID && !principal.IsSuperuser {
		writeError(w, common.ErrForbidden, "Insufficient privileges")
		return
	}

	user, err := s.users.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err, "User not found")
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (s *HTTPServer) updateUser(w http.ResponseWriter, r *http.Request) {
	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "Invalid request body"})
		return
	}

	user, err := s.users.Update(r.Context(), chi.URLParam(r, "id"), services.UpdateUserInput{
		Email:       req.Email,
		Password:    req.Password,
		FullName:    req.FullName,
		IsActive:    req.IsActive,
		IsSuperuser: req.IsSuperuser,
	})
	if err != nil {
		writeError(w, err, "Could not update user")
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (s *HTTPServer) deleteUser(w http.ResponseWriter, r *http.Request) {
	err := s.users.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err, "User not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
