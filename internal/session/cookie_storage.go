package session

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Имя cookie для зашифрованной сессии портала.
const CookieName = "rp_session"

// Максимальный возраст cookie сессии (24 часа).
const CookieMaxAge = 24 * 60 * 60

// ErrNoHTTPContext — контекст не содержит пары запрос/ответ,
// необходимой CookieStorage.
var ErrNoHTTPContext = errors.New("контекст не содержит HTTP-запроса")

// httpPairKey — ключ контекста для пары запрос/ответ.
type httpPairKey struct{}

type httpPair struct {
	w http.ResponseWriter
	r *http.Request
}

// WithHTTP помещает пару запрос/ответ в контекст для CookieStorage.
func WithHTTP(ctx context.Context, w http.ResponseWriter, r *http.Request) context.Context {
	return context.WithValue(ctx, httpPairKey{}, httpPair{w: w, r: r})
}

func httpFromContext(ctx context.Context) (httpPair, bool) {
	p, ok := ctx.Value(httpPairKey{}).(httpPair)
	return p, ok && p.w != nil && p.r != nil
}

// CookieStorage хранит снимок сессии в cookie, зашифрованном AES-256-GCM.
type CookieStorage struct {
	// gcm — AEAD cipher для шифрования/дешифрования.
	gcm cipher.AEAD
	// secure — использовать Secure flag для cookie (true для HTTPS).
	secure bool
	// now — источник времени (подменяется в тестах).
	now func() time.Time
}

// NewCookieStorage создаёт хранилище в cookie.
// key — base64 32-байтового ключа или произвольная строка (хешируется SHA-256).
// Пустой key — случайный ключ, сессии не переживают перезапуск.
func NewCookieStorage(key string, secure bool) (*CookieStorage, error) {
	var keyBytes []byte

	if key == "" {
		keyBytes = make([]byte, 32)
		if _, err := io.ReadFull(rand.Reader, keyBytes); err != nil {
			return nil, fmt.Errorf("ошибка генерации ключа сессии: %w", err)
		}
	} else {
		var err error
		keyBytes, err = base64.StdEncoding.DecodeString(key)
		if err != nil || len(keyBytes) != 32 {
			keyBytes = sha256Key(key)
		}
	}

	block, err := aes.NewCipher(keyBytes)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания AES cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания GCM: %w", err)
	}

	return &CookieStorage{gcm: gcm, secure: secure, now: time.Now}, nil
}

// Load читает и дешифрует cookie текущего запроса.
// Повреждённый cookie считается отсутствующим и удаляется.
func (c *CookieStorage) Load(ctx context.Context) (Snapshot, error) {
	p, ok := httpFromContext(ctx)
	if !ok {
		return Snapshot{}, ErrNoHTTPContext
	}

	cookie, err := p.r.Cookie(CookieName)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return Snapshot{}, nil
		}
		return Snapshot{}, err
	}

	snap, err := c.decrypt(cookie.Value)
	if err != nil {
		c.clearCookie(p.w)
		return Snapshot{}, err
	}
	return snap, nil
}

// Save шифрует снимок в cookie ответа. Срок жизни cookie ограничен
// сроком действия токена, если он известен.
func (c *CookieStorage) Save(ctx context.Context, s Snapshot) error {
	p, ok := httpFromContext(ctx)
	if !ok {
		return ErrNoHTTPContext
	}

	maxAge := CookieMaxAge
	if exp, ok := TokenExpiry(s.Token); ok {
		left := int(exp.Sub(c.now()).Seconds())
		if left <= 0 {
			c.clearCookie(p.w)
			return nil
		}
		maxAge = min(maxAge, left)
	}

	encrypted, err := c.encrypt(s)
	if err != nil {
		return err
	}

	http.SetCookie(p.w, &http.Cookie{
		Name:     CookieName,
		Value:    encrypted,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Clear удаляет cookie сессии (logout).
func (c *CookieStorage) Clear(ctx context.Context) error {
	p, ok := httpFromContext(ctx)
	if !ok {
		return ErrNoHTTPContext
	}
	c.clearCookie(p.w)
	return nil
}

func (c *CookieStorage) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// encrypt шифрует снимок и возвращает base64-строку (nonce в начале).
func (c *CookieStorage) encrypt(s Snapshot) (string, error) {
	plaintext, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("ошибка сериализации сессии: %w", err)
	}

	nonce := make([]byte, c.gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("ошибка генерации nonce: %w", err)
	}

	ciphertext := c.gcm.Seal(nonce, nonce, plaintext, nil)
	return base64.URLEncoding.EncodeToString(ciphertext), nil
}

// decrypt дешифрует base64-строку обратно в Snapshot.
func (c *CookieStorage) decrypt(encrypted string) (Snapshot, error) {
	ciphertext, err := base64.URLEncoding.DecodeString(encrypted)
	if err != nil {
		return Snapshot{}, fmt.Errorf("ошибка декодирования base64: %w", err)
	}

	nonceSize := c.gcm.NonceSize()
	if len(ciphertext) < nonceSize {
		return Snapshot{}, errors.New("зашифрованные данные слишком короткие")
	}

	nonce, ciphertext := ciphertext[:nonceSize], ciphertext[nonceSize:]
	plaintext, err := c.gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return Snapshot{}, fmt.Errorf("ошибка дешифрования сессии: %w", err)
	}

	var s Snapshot
	if err := json.Unmarshal(plaintext, &s); err != nil {
		return Snapshot{}, fmt.Errorf("ошибка десериализации сессии: %w", err)
	}
	return s, nil
}

// sha256Key хеширует строковый ключ в 32 bytes через SHA-256.
func sha256Key(key string) []byte {
	h := sha256.Sum256([]byte(key))
	return h[:]
}
