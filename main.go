package main

import (
	"os"
	"time"

	log "github.com/sirupsen/logrus"

	_ "web3radio/docs"
	"web3radio/internal/auth"
	"web3radio/internal/handlers"
	"web3radio/internal/models"
	"web3radio/internal/payment"
	"web3radio/internal/queue"
	"web3radio/internal/storage"
	"web3radio/internal/tasks"
	"web3radio/internal/ws"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @Title						Web3 Radio API
// @Description				Token-gated internet radio: station registry, aux-pass/hotbox queues, wallet sessions
// @securityDefinitions.apikey	BearerAuth
// @in							header
// @name						Authorization
func main() {
	if os.Getenv("ENV_CHECK") == "" {
		if err := godotenv.Load(); err != nil {
			log.Fatal("could not load .env")
		}
	}

	storage.ConnectDatabase()

	if err := storage.DB.AutoMigrate(&models.User{}, &models.Station{}, &models.QueueMember{}); err != nil {
		log.Fatal("migration failed: ", err)
	}

	storage.InitRedis()

	ttl := 30 * time.Minute
	if v := os.Getenv("QUEUE_TTL_MINUTES"); v != "" {
		if d, err := time.ParseDuration(v + "m"); err == nil {
			ttl = d
		}
	}
	handlers.QueueStore = queue.NewStore(storage.DB, ttl)
	if err := handlers.QueueStore.Load(); err != nil {
		log.Fatal("queue state reload failed: ", err)
	}

	tasks.InitScheduler(handlers.QueueStore)

	go ws.HubInstance.Run()

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Payment"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/login", handlers.Login)
		authGroup.POST("/refresh", handlers.RefreshToken)
	}

	queueGroup := r.Group("/queue")
	{
		queueGroup.POST("/join", payment.Required(), handlers.JoinQueueHandler)
		queueGroup.POST("/leave", handlers.LeaveQueueHandler)
		queueGroup.POST("/heartbeat", handlers.HeartbeatHandler)
		queueGroup.GET("", handlers.GetQueueHandler)
		queueGroup.GET("/:roomId/ws", ws.RoomWebSocketHandler)
	}

	stations := r.Group("/api/stations")
	{
		stations.GET("", handlers.ListStationsHandler)
		stations.GET("/:slug", handlers.GetStationHandler)
		stations.GET("/:slug/now-playing", handlers.GetNowPlayingHandler)
		stations.POST("", auth.AuthMiddleware(), handlers.CreateStationHandler)
		stations.POST("/:slug/now-playing", auth.AuthMiddleware(), handlers.SetNowPlayingHandler)
	}

	r.GET("/profiles/:address", handlers.GetProfileHandler)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := r.Run(":" + port); err != nil {
		log.Fatal("server failed to start: ", err)
	}
}
