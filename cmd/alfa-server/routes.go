package main

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"alfagate-backend/lib/scrapers/alfa"
	"alfagate-backend/services/portal"
)

type errorBody struct {
	Error string `json:"error"`
}

func writeJson(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func RegisterRoutes(mux *http.ServeMux, service portal.Service) {
	mux.HandleFunc("POST /api/alfa/loginUser", func(w http.ResponseWriter, r *http.Request) {
		var req portal.SessionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJson(w, http.StatusBadRequest, errorBody{Error: "malformed request body"})
			return
		}
		if req.Username == "" || req.Password == "" {
			writeJson(w, http.StatusBadRequest, errorBody{Error: "user and password are required"})
			return
		}

		result, err := service.StartSession(r.Context(), req)
		switch {
		case errors.Is(err, alfa.ErrLoginRejected):
			writeJson(w, http.StatusUnauthorized, errorBody{Error: "Login failed"})
		case errors.Is(err, alfa.ErrTokenNotFound), errors.Is(err, alfa.ErrPollTimeout):
			writeJson(w, http.StatusBadGateway, errorBody{Error: err.Error()})
		case err != nil:
			slog.ErrorContext(r.Context(), "session failed", "err", err)
			writeJson(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
		default:
			writeJson(w, http.StatusOK, result)
		}
	})

	mux.HandleFunc("GET /api/alfa/panels/{user}", func(w http.ResponseWriter, r *http.Request) {
		result, err := service.GetPanels(r.Context(), r.PathValue("user"))
		switch {
		case err == sql.ErrNoRows:
			writeJson(w, http.StatusNotFound, errorBody{Error: "no recorded session for this account"})
		case err != nil:
			slog.ErrorContext(r.Context(), "failed to load panels", "err", err)
			writeJson(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
		default:
			writeJson(w, http.StatusOK, result)
		}
	})
}
