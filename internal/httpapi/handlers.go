package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/lanfest/munchkin-lan/internal/game"
	"github.com/lanfest/munchkin-lan/internal/host"
	"github.com/lanfest/munchkin-lan/internal/stats"
)

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// GetSession serves the current session snapshot as JSON.
func GetSession(h *host.Host) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, h.Session())
	}
}

// ListMonsters serves the built-in catalog merged with the session's
// user-added monsters.
func ListMonsters(h *host.Host) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := h.Session()
		monsters := append([]game.Monster(nil), game.BuiltinMonsters...)
		monsters = append(monsters, s.CustomMonsters...)
		writeJSON(w, monsters)
	}
}

// ListGames serves recent finished game records.
func ListGames(store *stats.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			http.Error(w, "stats disabled", http.StatusNotFound)
			return
		}
		limit := queryInt(r, "limit", 20)
		games, err := store.Games(limit)
		if err != nil {
			http.Error(w, "failed to load games", http.StatusInternalServerError)
			return
		}
		writeJSON(w, games)
	}
}

// Leaderboard serves ranked player aggregates for a category.
func Leaderboard(store *stats.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			http.Error(w, "stats disabled", http.StatusNotFound)
			return
		}
		category := stats.Category(r.URL.Query().Get("category"))
		if category == "" {
			category = stats.CategoryWins
		}
		limit := queryInt(r, "limit", 10)
		entries, err := store.Leaderboard(category, limit)
		if err != nil {
			http.Error(w, "unknown category", http.StatusBadRequest)
			return
		}
		writeJSON(w, entries)
	}
}

func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
