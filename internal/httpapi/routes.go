package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/lanfest/munchkin-lan/internal/host"
	"github.com/lanfest/munchkin-lan/internal/stats"
)

// SetupRoutes builds the local collaborator surface: UI processes on the
// host device read session state and stats over plain HTTP, and follow
// live snapshots over /watch. Peer traffic never goes through here.
func SetupRoutes(h *host.Host, store *stats.Store, log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", Healthz)
	r.Get("/session", GetSession(h))
	r.Get("/monsters", ListMonsters(h))
	r.Get("/watch", WatchHandler(h, log))
	r.Get("/stats/games", ListGames(store))
	r.Get("/stats/leaderboard", Leaderboard(store))
	return r
}
