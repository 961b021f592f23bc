package web

import (
	"errors"
	"net/http"
	"strings"

	"taskboard/internal/service"
)

const (
	formLogin    = "login"
	formRegister = "register"
)

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.sessions.resolve(r); ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	s.render.Form(w, r, http.StatusOK, formLogin, FormState{})
}

func (s *Server) handleRegisterPage(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.sessions.resolve(r); ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	s.render.Form(w, r, http.StatusOK, formRegister, FormState{})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.render.Error(w, r, http.StatusBadRequest, "malformed form")
		return
	}
	email := strings.TrimSpace(r.PostFormValue("email"))
	password := r.PostFormValue("password")
	state := FormState{Values: map[string]string{"email": email}}

	if email == "" || password == "" {
		state.Error = "Email and password are required"
		s.render.Form(w, r, http.StatusUnprocessableEntity, formLogin, state)
		return
	}

	user, err := s.auth.Verify(r.Context(), email, password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			state.Error = "Invalid email or password"
			s.render.Form(w, r, http.StatusUnauthorized, formLogin, state)
			return
		}
		s.fail(w, r, err)
		return
	}

	if err := s.sessions.issue(w, user, isChecked(r.PostFormValue("remember"))); err != nil {
		s.fail(w, r, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.render.Error(w, r, http.StatusBadRequest, "malformed form")
		return
	}
	in := service.RegisterInput{
		Name:            r.PostFormValue("name"),
		Email:           r.PostFormValue("email"),
		Password:        r.PostFormValue("password"),
		ConfirmPassword: r.PostFormValue("confirmPassword"),
	}
	state := FormState{Values: map[string]string{"name": in.Name, "email": in.Email}}

	user, err := s.auth.Register(r.Context(), in)
	if err != nil {
		var verr *service.ValidationError
		switch {
		case errors.As(err, &verr):
			state.Error = verr.Message
			s.render.Form(w, r, http.StatusUnprocessableEntity, formRegister, state)
		case errors.Is(err, service.ErrDuplicateEmail):
			state.Error = "Email already registered"
			s.render.Form(w, r, http.StatusConflict, formRegister, state)
		default:
			s.fail(w, r, err)
		}
		return
	}

	if err := s.sessions.issue(w, user, false); err != nil {
		s.fail(w, r, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.sessions.clear(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
