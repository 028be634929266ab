package httpapi

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/bebsa/ledger/internal/ledger"
)

type userRequest struct {
	Name        string `json:"name"`
	Password    string `json:"password"`
	NewPassword string `json:"newPassword"`
	Token       string `json:"token"`
}

type userJSON struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

func toUserJSON(u ledger.User) userJSON {
	return userJSON{ID: u.ID, Name: u.Name, CreatedAt: u.CreatedAt}
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := decodeBody(r, &req); err != nil {
		s.respondErr(w, r, err)
		return
	}
	u, err := s.users.Register(r.Context(), req.Name, req.Password)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respond(w, http.StatusCreated, "User registered successfully", toUserJSON(u))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := decodeBody(r, &req); err != nil {
		s.respondErr(w, r, err)
		return
	}
	token, err := s.users.Login(r.Context(), req.Name, req.Password)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, "Login successful", map[string]any{"token": token})
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := decodeBody(r, &req); err != nil {
		s.respondErr(w, r, err)
		return
	}
	if err := s.users.Verify(r.Context(), req.Name); err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, "User verified. Proceed to reset password.", nil)
}

func (s *Server) handleDecode(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := decodeBody(r, &req); err != nil {
		s.respondErr(w, r, err)
		return
	}
	claims, err := s.users.Decode(req.Token)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, "Token decoded successfully", claims)
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := decodeBody(r, &req); err != nil {
		s.respondErr(w, r, err)
		return
	}
	if err := s.users.ResetPassword(r.Context(), req.Name, req.NewPassword); err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, "Password updated successfully", nil)
}
