package handler

import (
	"net/http"

	"github.com/loftable/teamsync/internal/api/response"
	"github.com/loftable/teamsync/internal/backend/postgres"
	"github.com/redis/go-redis/v9"
)

// HealthCheck returns a simple health check response
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string]string{
		"status": "ok",
	})
}

// ReadyCheck returns readiness status including database and Redis
// connectivity
func ReadyCheck(db *postgres.DB, rdb *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(r.Context()); err != nil {
			response.Error(w, http.StatusServiceUnavailable, "database not ready")
			return
		}
		if err := rdb.Ping(r.Context()).Err(); err != nil {
			response.Error(w, http.StatusServiceUnavailable, "redis not ready")
			return
		}

		response.OK(w, map[string]string{
			"status": "ready",
		})
	}
}
