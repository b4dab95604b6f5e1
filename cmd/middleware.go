package main

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"

	"fakhiuBack/internal/handlers"
	"fakhiuBack/internal/services"
	"fakhiuBack/internal/store"
)

const deviceTokenHeader = "X-Device-Token"

func secureHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("X-Frame-Options", "deny")
		next.ServeHTTP(w, r)
	})
}

func makeResponseJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

func (app *application) logRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		app.log.Infof("%s - %s %s %s", r.RemoteAddr, r.Proto, r.Method, r.URL.RequestURI())
		next.ServeHTTP(w, r)
	})
}

// recoverPanic turns a fault while building a response into a generic
// error asking the client to reload.
func (app *application) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				w.Header().Set("Connection", "close")
				app.serverError(w, fmt.Errorf("%s", err))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (app *application) serverError(w http.ResponseWriter, err error) {
	app.log.Errorw("unexpected fault", "error", err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"error":  "something went wrong, please reload the page",
		"reload": true,
	})
}

func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
}

// caller identifies the request. Bookmarks follow the token's user id when
// the token can be verified, and the token itself otherwise.
func (app *application) caller(r *http.Request) services.Caller {
	token := bearerToken(r)
	if token == "" {
		return services.Caller{DeviceToken: r.Header.Get(deviceTokenHeader)}
	}
	key := store.Key(token)
	c := services.Caller{
		Token:       token,
		Owner:       key,
		UserKey:     "t:" + key,
		DeviceToken: r.Header.Get(deviceTokenHeader),
	}
	if app.tokens != nil {
		if userID, err := app.tokens.Parse(token); err == nil && userID != "" {
			c.UserKey = "u:" + userID
		}
	}
	return c
}

// authenticate requires a bearer token and stores the caller on the context.
func (app *application) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c := app.caller(r)
		if c.Token == "" {
			http.Error(w, `{"error":"authorization header missing or invalid"}`, http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(handlers.WithCaller(r.Context(), c)))
	})
}

// identify stores the caller without requiring a token; the handler
// decides what an anonymous caller gets.
func (app *application) identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(handlers.WithCaller(r.Context(), app.caller(r))))
	})
}

// limitSubmissions throttles request creation per token, or per address
// for anonymous callers.
func (app *application) limitSubmissions(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := clientAddr(r)
		if c, ok := handlers.CallerFrom(r); ok && c.Owner != "" {
			key = c.Owner
		}
		if !app.limiter.Allow(key) {
			w.Header().Set("Retry-After", "60")
			http.Error(w, `{"error":"too many requests, please slow down"}`, http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientAddr(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
