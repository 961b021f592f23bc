package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"taskboard/internal/model"
)

const sessionCookieName = "tb_session"

const (
	// sessionTTL applies to plain logins; the cookie lives until the browser closes.
	sessionTTL = 12 * time.Hour
	// rememberTTL applies to "remember me" logins, stored in a persistent cookie.
	rememberTTL = 30 * 24 * time.Hour
)

// identity is the signed-in user resolved from the session cookie.
type identity struct {
	UserID uint
	Name   string
	Email  string
}

type sessionClaims struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// sessionManager issues and verifies HS256-signed session cookies.
type sessionManager struct {
	secret []byte
	secure bool
	now    func() time.Time
}

func newSessionManager(secret string, secure bool, now func() time.Time) *sessionManager {
	return &sessionManager{secret: []byte(secret), secure: secure, now: now}
}

func (m *sessionManager) issue(w http.ResponseWriter, user *model.User, remember bool) error {
	now := m.now()
	ttl := sessionTTL
	if remember {
		ttl = rememberTTL
	}
	claims := sessionClaims{
		Name:  user.Name,
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return err
	}

	cookie := &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
	if remember {
		cookie.Expires = now.Add(ttl)
		cookie.MaxAge = int(ttl.Seconds())
	}
	http.SetCookie(w, cookie)
	return nil
}

// resolve returns the identity in the request's session cookie, if any.
func (m *sessionManager) resolve(r *http.Request) (identity, bool) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		return identity{}, false
	}

	var claims sessionClaims
	_, err = jwt.ParseWithClaims(cookie.Value, &claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return identity{}, false
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || userID == 0 {
		return identity{}, false
	}
	return identity{UserID: uint(userID), Name: claims.Name, Email: claims.Email}, true
}

func (m *sessionManager) clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}
