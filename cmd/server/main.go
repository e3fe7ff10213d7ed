package main

import (
	"fmt"
	"net/http"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/tandemhq/tandem/internal/cache"
	"github.com/tandemhq/tandem/internal/config"
	"github.com/tandemhq/tandem/internal/database"
	postgresrepo "github.com/tandemhq/tandem/internal/repository/postgres"
	"github.com/tandemhq/tandem/internal/service"
	"github.com/tandemhq/tandem/internal/transport/http/handlers"
	"github.com/tandemhq/tandem/internal/transport/http/middleware"
)

func main() {
	cfg := config.Load()

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	// Database
	pool, err := database.Connect(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()
	log.Info("Connected to database")

	// Redis (profile cache)
	rdb, err := cache.Connect(cfg.RedisAddr)
	if err != nil {
		log.Fatal(err)
	}
	defer rdb.Close()
	log.Info("Connected to redis")

	// Repositories
	userRepo := postgresrepo.NewUserRepo(pool)
	requestRepo := postgresrepo.NewFriendRequestRepo(pool)
	friendshipRepo := postgresrepo.NewFriendshipRepo(pool)

	// Services
	authService := service.NewAuthService(userRepo, cfg.JWTSecret)
	userService := service.NewUserService(userRepo, cache.NewProfileCache(rdb))
	friendService := service.NewFriendService(requestRepo, friendshipRepo, userRepo)
	recommendService := service.NewRecommendService(userRepo, friendshipRepo)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService, log)
	userHandler := handlers.NewUserHandler(userService, log)
	friendHandler := handlers.NewFriendHandler(friendService, log)
	recommendHandler := handlers.NewRecommendHandler(recommendService, log)

	// Auth middleware
	auth := middleware.Auth(cfg.JWTSecret)

	// Routes
	mux := http.NewServeMux()

	// Public
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "ok"}`))
	})
	mux.HandleFunc("POST /auth/register", authHandler.Register)
	mux.HandleFunc("POST /auth/login", authHandler.Login)

	// Protected - Profile
	mux.Handle("GET /auth/me", auth(http.HandlerFunc(userHandler.Me)))
	mux.Handle("POST /auth/onboarding", auth(http.HandlerFunc(userHandler.Onboard)))

	// Protected - Friend requests
	mux.Handle("POST /friend-requests/{recipientId}", auth(http.HandlerFunc(friendHandler.SendRequest)))
	mux.Handle("PUT /friend-requests/{requestId}/accept", auth(http.HandlerFunc(friendHandler.AcceptRequest)))
	mux.Handle("GET /friend-requests/incoming", auth(http.HandlerFunc(friendHandler.ListIncoming)))
	mux.Handle("GET /friend-requests/outgoing", auth(http.HandlerFunc(friendHandler.ListOutgoing)))

	// Protected - Friends & recommendations
	mux.Handle("GET /friends", auth(http.HandlerFunc(friendHandler.ListFriends)))
	mux.Handle("GET /recommendations", auth(http.HandlerFunc(recommendHandler.Recommend)))

	addr := fmt.Sprintf(":%s", cfg.ServerPort)
	log.Infof("Starting server on %s", addr)

	handler := middleware.CORS(cfg.CORSOrigin)(middleware.Logging(log)(mux))
	log.Fatal(http.ListenAndServe(addr, handler))
}
