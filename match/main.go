// match/main.go
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/stricker-gg/go-services/match/api"
	"github.com/stricker-gg/go-services/match/fanout"
	"github.com/stricker-gg/go-services/match/scheduler"
	"github.com/stricker-gg/go-services/match/service"
	"github.com/stricker-gg/go-services/match/store"
	sharedapi "github.com/stricker-gg/go-services/shared/api"
	"github.com/stricker-gg/go-services/shared/cluster"
	"github.com/stricker-gg/go-services/shared/config"
	"github.com/stricker-gg/go-services/shared/mongodb"
	"github.com/stricker-gg/go-services/shared/redis"
	"github.com/stricker-gg/go-services/shared/registry"
	sharedservice "github.com/stricker-gg/go-services/shared/service"
)

const serviceType = "match-service"

func main() {
	// Local development overrides; in Kubernetes everything comes from the pod env.
	if err := godotenv.Load(); err != nil {
		log.Println("INFO: No .env file found, relying on environment variables.")
	}

	// 1. Load Configuration
	cfg, err := config.LoadMatchServiceConfig()
	if err != nil {
		log.Fatalf("ERROR: Failed to load match service configuration: %v", err)
	}
	log.Printf("INFO: Match service configuration loaded. Listening on: %s", cfg.ListenAddr)

	// 2. Initialize MongoDB Client
	mongoClient, err := mongodb.NewClient(cfg.MongoDBConnStr, cfg.MongoDBDatabase)
	if err != nil {
		log.Fatalf("ERROR: Failed to connect to MongoDB: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mongoClient.Disconnect(ctx); err != nil {
			log.Printf("ERROR: Failed to disconnect MongoDB client: %v", err)
		}
	}()

	// 3. Initialize Redis Cluster Client
	redisClient, err := redis.NewRedisClusterClient(cfg.RedisAddrs, cfg.RedisPassword)
	if err != nil {
		log.Fatalf("ERROR: Failed to connect to Redis Cluster: %v", err)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Printf("ERROR: Failed to close Redis client: %v", err)
		}
	}()

	// 4. Initialize Stores
	matchStore := store.NewMatchStore(mongoClient.Collection(cfg.MongoDBMatchesCollection))
	afkStore := store.NewAfkCooldownStore(redisClient)
	lockStore := store.NewCreationLockStore(redisClient)

	// 5. Initialize Event Fan-out and Downstream Service Clients
	publisher := fanout.NewPublisher(redisClient)
	squadClient := sharedservice.NewSquadClient(cfg.SquadServiceURL)
	rewardClient := sharedservice.NewRewardClient(cfg.RewardServiceURL)

	// 6. Initialize the Match Coordinator
	matchService := service.NewMatchService(
		matchStore,
		afkStore,
		lockStore,
		publisher,
		squadClient,
		rewardClient,
		service.Timings{
			RosterGracePeriod:  cfg.RosterGracePeriod,
			AfkReportCooldown:  cfg.AfkReportCooldown,
			MatchStartDeadline: cfg.MatchStartDeadline,
		},
	)

	// 7. Start Service Registration and Ownership Ring
	registrar := registry.NewServiceRegistrar(redisClient, serviceType, &cfg.CommonConfig)
	registrar.Start()
	defer registrar.Stop()

	registryClient := registry.NewRegistryClient(redisClient, cfg.HeartbeatTTL)
	assignment := cluster.NewServiceAssignmentManager(registryClient, registrar, cfg.RingUpdateInterval)
	go assignment.Start()
	defer assignment.Stop()

	// 8. Start the Advisory Scheduler
	advisor := scheduler.NewAdvisor(matchService, assignment, cfg.AdvisorInterval)
	if err := advisor.Start(); err != nil {
		log.Fatalf("ERROR: Failed to start advisory scheduler: %v", err)
	}
	defer advisor.Stop()

	// 9. Initialize HTTP Server and Register Routes
	baseServer := sharedapi.NewBaseServer(cfg.ListenAddr, log.Default())
	handlers := api.NewMatchAPIHandlers(matchService)
	handlers.RegisterRoutes(baseServer.Router)

	go func() {
		if err := baseServer.Start(); err != nil {
			log.Fatalf("ERROR: HTTP server stopped unexpectedly: %v", err)
		}
	}()

	// 10. Wait for Shutdown Signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("INFO: Shutdown signal received, stopping match service...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := baseServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("ERROR: HTTP server shutdown failed: %v", err)
	}
	log.Println("INFO: Match service stopped.")
}
