package middleware

import (
	"context"
	"net/http"

	"github.com/blockduel/blockduel-go/internal/api/apierr"
	"github.com/blockduel/blockduel-go/internal/model"
)

type contextKey string

const playerContextKey contextKey = "player_id"

// PlayerIDHeader carries the caller's identity. Authentication itself is
// handled by the session provider in front of this service; the relay only
// needs a stable ID to address events and enforce participation.
const PlayerIDHeader = "X-Player-Id"

// Identity creates middleware that requires a player ID header
func Identity() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := model.PlayerID(r.Header.Get(PlayerIDHeader))
			if id == "" {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}

			ctx := context.WithValue(r.Context(), playerContextKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetPlayerID returns the caller's player ID from the request context
func GetPlayerID(ctx context.Context) model.PlayerID {
	id, _ := ctx.Value(playerContextKey).(model.PlayerID)
	return id
}

// MustGetPlayerID returns the caller's player ID or panics
func MustGetPlayerID(ctx context.Context) model.PlayerID {
	id := GetPlayerID(ctx)
	if id == "" {
		panic("no player id in context - identity middleware not applied?")
	}
	return id
}
