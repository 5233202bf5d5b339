// Package user implements the optional password login. Disabled by
// default: this is a single-user companion process bound to localhost.
package user

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ytdesk/ytdesk/server/config"
)

const CookieName = "ytdesk_token"

const sessionDuration = time.Hour * 24

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	auth := config.Instance().Authentication

	sum := sha256.Sum256([]byte(req.Password))
	hash := hex.EncodeToString(sum[:])

	userOk := subtle.ConstantTimeCompare([]byte(req.Username), []byte(auth.Username)) == 1
	passOk := subtle.ConstantTimeCompare([]byte(hash), []byte(auth.PasswordHash)) == 1

	if !userOk || !passOk {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	expiresAt := time.Now().Add(sessionDuration)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   req.Username,
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	})

	signed, err := token.SignedString([]byte(auth.Secret))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    signed,
		Expires:  expiresAt,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"token": signed})
}

func Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		MaxAge:   -1,
		Path:     "/",
		HttpOnly: true,
	})

	w.WriteHeader(http.StatusOK)
}

// Verify checks the session cookie's signature and expiry.
func Verify(r *http.Request) error {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return err
	}

	_, err = jwt.Parse(cookie.Value, func(t *jwt.Token) (any, error) {
		return []byte(config.Instance().Authentication.Secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	return err
}
