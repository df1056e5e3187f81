package main

import (
	"math/rand/v2"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
)

// NewMockHandler serves targets with predictable availability:
//
//	/ok             always 200
//	/flaky?rate=0.3 500 with the given probability (default 0.5)
//	/slow?delay=800ms  200 after the delay
//	/orders         200 for POST, 405 otherwise
func NewMockHandler() http.Handler {
	r := chi.NewRouter()

	r.Get("/ok", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.Get("/flaky", func(w http.ResponseWriter, r *http.Request) {
		rate := 0.5
		if v, err := strconv.ParseFloat(r.URL.Query().Get("rate"), 64); err == nil {
			rate = v
		}
		if rand.Float64() < rate {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	r.Get("/slow", func(w http.ResponseWriter, r *http.Request) {
		delay, err := time.ParseDuration(r.URL.Query().Get("delay"))
		if err != nil {
			delay = time.Second
		}
		select {
		case <-time.After(delay):
			w.WriteHeader(http.StatusOK)
		case <-r.Context().Done():
		}
	})

	r.Post("/orders", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})

	return r
}
