package http

import (
	"context"
	"net/http"

	"github.com/dkeye/relay/internal/adapters/signal"
	"github.com/dkeye/relay/internal/app/orch"
	"github.com/dkeye/relay/internal/config"
	"github.com/dkeye/relay/internal/domain"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	sessionName    = "RelaySessions"
	clientTokenKey = "ct"
)

type MakeRoomResponse struct {
	ID   domain.RoomID `json:"id"`
	Code domain.Secret `json:"code"`
}

// ClientTokenMiddleware gives every browser a stable token, kept in the
// signed session cookie. It only labels logs and keys rate limits.
func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		token, _ := session.Get(clientTokenKey).(string)
		if token == "" {
			token = uuid.NewString()
			session.Set(clientTokenKey, token)
			if err := session.Save(); err != nil {
				log.Warn().Err(err).Str("module", "adapters.http").Msg("save client session")
			}
		}
		c.Set("client_token", token)
		c.Next()
	}
}

func SetupRouter(ctx context.Context, cfg *config.Config, o *orch.Orchestrator) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	store.Options(sessions.Options{Path: "/", MaxAge: 3600 * 24 * 7, HttpOnly: true})
	r.Use(sessions.Sessions(sessionName, store))
	r.Use(ClientTokenMiddleware())

	ctrl := signal.NewSignalWSController(o, signal.Options{
		ReadLimit:  cfg.ReadLimit,
		PingPeriod: cfg.PingPeriod,
		WriteWait:  cfg.WriteWait,
		SendBuffer: cfg.SendBuffer,
	})
	limiter := NewProvisionRateLimiter(cfg.ProvisionLimit, cfg.ProvisionInterval)

	serveWS := func(c *gin.Context) {
		ctrl.HandleSignal(ctx, c)
	}
	// The relay historically accepted upgrades on the server root.
	r.GET("/", serveWS)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")
	api.GET("/ws", serveWS)

	api.GET("/makeRoom", func(c *gin.Context) {
		client := c.GetString("client_token")
		if !limiter.Allow(client) {
			log.Info().Str("module", "adapters.http").Str("client", client).Msg("provisioning rate limited")
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many rooms"})
			return
		}
		id, code, err := o.Provision()
		if err != nil {
			log.Error().Err(err).Str("module", "adapters.http").Msg("provision room")
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "room unavailable"})
			return
		}
		c.JSON(http.StatusOK, MakeRoomResponse{ID: id, Code: code})
	})

	api.GET("/rooms", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"rooms": o.ListRooms()})
	})

	log.Info().Str("module", "adapters.http").Str("mode", cfg.Mode).Msg("router setup")
	return r
}
