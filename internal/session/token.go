package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenExpiry возвращает срок действия токена из claim exp.
// Подпись не проверяется: backend остаётся единственным судьёй,
// срок нужен только для ограничения жизни cookie и отбрасывания
// заведомо просроченной сессии. Для непрозрачных токенов ok == false.
func TokenExpiry(token string) (exp time.Time, ok bool) {
	if token == "" {
		return time.Time{}, false
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}

	t, err := claims.GetExpirationTime()
	if err != nil || t == nil {
		return time.Time{}, false
	}
	return t.Time, true
}

// tokenExpired проверяет, что срок токена известен и уже наступил.
func tokenExpired(token string, now time.Time) bool {
	exp, ok := TokenExpiry(token)
	return ok && !exp.After(now)
}
