package api

import (
	"github.com/SamiraSamrose/Thirteen-Oracles-Of-Astraeum/internal/middleware"
	"github.com/SamiraSamrose/Thirteen-Oracles-Of-Astraeum/internal/service"
	ws "github.com/SamiraSamrose/Thirteen-Oracles-Of-Astraeum/internal/websocket"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Router wires handlers, middleware and routes.
type Router struct {
	engine         *gin.Engine
	db             *gorm.DB
	services       *service.Services
	authHandler    *AuthHandler
	gameHandler    *GameHandler
	oracleHandler  *OracleHandler
	wsHandler      *WebSocketHandler
	authMiddleware *middleware.AuthMiddleware
	log            *zap.Logger
}

// NewRouter creates the router with all routes registered.
func NewRouter(db *gorm.DB, services *service.Services, hub *ws.Hub, log *zap.Logger) *Router {
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(gin.Logger())

	router := &Router{
		engine:         engine,
		db:             db,
		services:       services,
		authHandler:    NewAuthHandler(services.Auth),
		gameHandler:    NewGameHandler(services.Game),
		oracleHandler:  NewOracleHandler(services.Game, services.Puzzle, services.Combat),
		wsHandler:      NewWebSocketHandler(hub, log),
		authMiddleware: middleware.NewAuthMiddleware(services.Auth),
		log:            log,
	}

	router.setupRoutes()

	return router
}

func (r *Router) setupRoutes() {
	r.engine.GET("/health", r.healthCheck)

	v1 := r.engine.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", r.authHandler.Register)
			auth.POST("/login", r.authHandler.Login)
			auth.POST("/refresh", r.authHandler.RefreshToken)

			authRequired := auth.Group("")
			authRequired.Use(r.authMiddleware.RequireAuth())
			{
				authRequired.POST("/logout", r.authHandler.Logout)
				authRequired.GET("/me", r.authHandler.GetProfile)
			}
		}

		game := v1.Group("/game")
		game.Use(r.authMiddleware.RequireAuth())
		{
			game.POST("/new", r.gameHandler.CreateGame)
			game.GET("/:gameId", r.gameHandler.GetGame)
			game.GET("/:gameId/inventory", r.gameHandler.GetInventory)
			game.POST("/:gameId/save", r.gameHandler.SaveGame)
			game.POST("/:gameId/insight", r.gameHandler.UseInsight)

			oracle := game.Group("/:gameId/oracle")
			{
				oracle.POST("/challenge", r.oracleHandler.Challenge)
				oracle.GET("/:oracleId/puzzle", r.oracleHandler.GetPuzzle)
				oracle.POST("/puzzle/solve", r.oracleHandler.SolvePuzzle)
				oracle.POST("/:oracleId/battle", r.oracleHandler.StartBattle)
				oracle.POST("/:oracleId/battle/action", r.oracleHandler.BattleAction)
				oracle.POST("/:oracleId/defeat", r.oracleHandler.Defeat)
			}
		}

		status := v1.Group("/status")
		{
			status.GET("/online", r.wsHandler.GetOnlineCount)
		}
	}

	ws := r.engine.Group("/ws")
	ws.Use(r.authMiddleware.RequireAuth())
	{
		ws.GET("/game", r.wsHandler.GameWebSocket)
	}

	registerOpenAPIRoutes(r.engine)
	registerSwaggerRoutes(r.engine)

	r.engine.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{
			"code":    "NOT_FOUND",
			"message": "endpoint does not exist",
		})
	})
}

func (r *Router) healthCheck(c *gin.Context) {
	sqlDB, err := r.db.DB()
	if err != nil {
		c.JSON(500, gin.H{
			"status":  "unhealthy",
			"message": "database unavailable",
		})
		return
	}

	if err := sqlDB.Ping(); err != nil {
		c.JSON(500, gin.H{
			"status":  "unhealthy",
			"message": "database ping failed",
		})
		return
	}

	c.JSON(200, gin.H{
		"status": "healthy",
	})
}

// Run starts the HTTP server.
func (r *Router) Run(addr string) error {
	r.log.Info("starting API server", zap.String("address", addr))
	return r.engine.Run(addr)
}

// GetEngine exposes the gin engine for tests and server wiring.
func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}
