package fakebackend

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/angeloszaimis/uptime-client/internal/checker"
)

const tokenTTL = time.Hour

type Server struct {
	secret []byte
	now    func() time.Time

	mutex    sync.RWMutex
	users    map[string]string
	revoked  map[string]bool
	checkers []checker.Checker
	logs     map[int][]checker.LogEntry
	nextID   int
}

func New(secret []byte) *Server {
	return &Server{
		secret:  secret,
		now:     time.Now,
		users:   make(map[string]string),
		revoked: make(map[string]bool),
		logs:    make(map[int][]checker.LogEntry),
		nextID:  1,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Post("/register", s.register)
	r.Post("/login", s.login)

	r.Group(func(r chi.Router) {
		r.Use(s.authenticate)
		r.Post("/users/logout", s.logout)
		r.Get("/checkers", s.listCheckers)
		r.Post("/checkers", s.createChecker)
		r.Get("/checker/{id}", s.checkerLogs)
	})

	return r
}

// Record appends a probe result to a checker's history. The newest entry
// is kept first, as the real backend returns it.
func (s *Server) Record(id int, status checker.Status, latency int64) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for i, c := range s.checkers {
		if c.ID != id {
			continue
		}
		entry := checker.LogEntry{
			CheckerID:    id,
			RequestTime:  s.now().UTC().Format(time.RFC3339Nano),
			ResponseTime: latency,
			Status:       status,
			Site:         c.URL,
		}
		s.logs[id] = append([]checker.LogEntry{entry}, s.logs[id]...)
		s.checkers[i].Status = status
		return nil
	}
	return errNotFound
}

// Checkers returns a snapshot of the stored checkers.
func (s *Server) Checkers() []checker.Checker {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return append([]checker.Checker(nil), s.checkers...)
}

var errNotFound = errors.New("checker not found")

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type createRequest struct {
	Site   string  `json:"site"`
	Period float64 `json:"period"`
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var creds credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil || creds.Email == "" || len(creds.Password) < 6 {
		writeError(w, http.StatusBadRequest, "invalid credentials")
		return
	}

	s.mutex.Lock()
	if _, exists := s.users[creds.Email]; exists {
		s.mutex.Unlock()
		writeError(w, http.StatusConflict, "user already exists")
		return
	}
	s.users[creds.Email] = creds.Password
	s.mutex.Unlock()

	s.issue(w, creds.Email)
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var creds credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeError(w, http.StatusBadRequest, "invalid credentials")
		return
	}

	s.mutex.RLock()
	password, ok := s.users[creds.Email]
	s.mutex.RUnlock()

	if !ok || password != creds.Password {
		writeError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	s.issue(w, creds.Email)
}

func (s *Server) issue(w http.ResponseWriter, email string) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   email,
		"email": email,
		"iat":   now.Unix(),
		"exp":   now.Add(tokenTTL).Unix(),
		"jti":   uuid.NewString(),
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"access_token":  signed,
		"refresh_token": uuid.NewString(),
	})
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	s.mutex.Lock()
	s.revoked[bearer(r)] = true
	s.mutex.Unlock()

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listCheckers(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.Checkers())
}

func (s *Server) createChecker(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Site == "" || req.Period <= 0 {
		writeError(w, http.StatusBadRequest, "site and a positive period are required")
		return
	}

	s.mutex.Lock()
	c := checker.Checker{
		ID:     s.nextID,
		URL:    req.Site,
		Period: req.Period,
		Status: checker.StatusInitial,
	}
	s.nextID++
	s.checkers = append(s.checkers, c)
	s.mutex.Unlock()

	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) checkerLogs(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid checker id")
		return
	}

	s.mutex.RLock()
	defer s.mutex.RUnlock()

	for _, c := range s.checkers {
		if c.ID == id {
			logs := s.logs[id]
			if logs == nil {
				logs = []checker.LogEntry{}
			}
			writeJSON(w, http.StatusOK, logs)
			return
		}
	}
	writeError(w, http.StatusNotFound, errNotFound.Error())
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := bearer(r)
		if raw == "" {
			writeError(w, http.StatusUnauthorized, "missing token")
			return
		}

		s.mutex.RLock()
		revoked := s.revoked[raw]
		s.mutex.RUnlock()
		if revoked {
			writeError(w, http.StatusUnauthorized, "token revoked")
			return
		}

		_, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
			return s.secret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func bearer(r *http.Request) string {
	return strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
