package auth

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"

	"plantwatch/internal/observability/metrics"
)

const (
	defaultTokenTTL   = 2 * time.Hour
	loginRatePerMin   = 5
	minCredentialLen  = 3
	maxEmailLen       = 150
	maxPasswordLen    = 200
	limiterStaleAfter = 10 * time.Minute
)

// LoginHandler issues JWTs for valid credentials. Login attempts are rate
// limited per client IP to slow credential stuffing.
type LoginHandler struct {
	users    UserFinder
	secret   []byte
	tokenTTL time.Duration

	mu       sync.Mutex
	limiters map[string]*ipLimiter
}

type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewLoginHandler constructs a login handler.
func NewLoginHandler(users UserFinder, secret []byte) (*LoginHandler, error) {
	if users == nil {
		return nil, errors.New("login: nil user store")
	}
	if len(secret) == 0 {
		return nil, errors.New("login: empty secret")
	}
	return &LoginHandler{
		users:    users,
		secret:   secret,
		tokenTTL: defaultTokenTTL,
		limiters: make(map[string]*ipLimiter),
	}, nil
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string    `json:"token"`
	User  loginUser `json:"user"`
}

type loginUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// ServeHTTP handles POST /api/v1/auth/login.
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if !h.allow(clientIP(r)) {
		metrics.IncLogin("throttled")
		http.Error(w, "too many attempts, retry in a minute", http.StatusTooManyRequests)
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	if len(req.Username) < minCredentialLen || len(req.Username) > maxEmailLen ||
		len(req.Password) < minCredentialLen || len(req.Password) > maxPasswordLen {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	user, err := h.users.FindByEmail(r.Context(), req.Username)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	if user == nil {
		metrics.IncLogin("failure")
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		metrics.IncLogin("failure")
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	token, err := SignJWT(user.ID, user.Email, user.Role, h.secret, h.tokenTTL)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	metrics.IncLogin("success")
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(loginResponse{
		Token: token,
		User:  loginUser{ID: user.ID, Email: user.Email, Role: string(user.Role)},
	})
}

func (h *LoginHandler) allow(ip string) bool {
	if ip == "" {
		ip = "unknown"
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	now := time.Now()
	for key, entry := range h.limiters {
		if now.Sub(entry.lastSeen) > limiterStaleAfter {
			delete(h.limiters, key)
		}
	}

	entry, ok := h.limiters[ip]
	if !ok {
		entry = &ipLimiter{limiter: rate.NewLimiter(rate.Every(time.Minute/loginRatePerMin), loginRatePerMin)}
		h.limiters[ip] = entry
	}
	entry.lastSeen = now
	return entry.limiter.Allow()
}

func clientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
