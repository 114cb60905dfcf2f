package main

import (
	"context"
	"log"
	"time"

	"github.com/itplace/locator-backend-go/internal/api"
	"github.com/itplace/locator-backend-go/internal/catalog"
	"github.com/itplace/locator-backend-go/internal/config"
	"github.com/itplace/locator-backend-go/internal/database"
	"github.com/itplace/locator-backend-go/internal/repository"
	"github.com/itplace/locator-backend-go/internal/service"
	"github.com/itplace/locator-backend-go/internal/tracker"
	"github.com/itplace/locator-backend-go/internal/visibility"
)

func main() {
	// 加载配置
	cfg := config.Load()

	// 初始化数据库
	dbConfig := database.Config{
		Path: cfg.DBPath,
	}
	if err := database.Init(dbConfig); err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer database.Close()

	ctx := context.Background()

	// 加载门店目录
	holder := catalog.NewHolder(nil)
	stores := service.NewStoreService(repository.NewStoreRepository(database.GetDB()), holder,
		cfg.NearbyRadiusMeters, cfg.MaxNearbyRadiusMeters)
	if err := stores.SeedIfEmpty(ctx, cfg.CatalogPath); err != nil {
		log.Fatal("Failed to seed catalog:", err)
	}
	if err := stores.Reload(ctx); err != nil {
		log.Fatal("Failed to load catalog:", err)
	}
	log.Printf("Catalog loaded: %d stores", stores.Catalog().Len())

	engine, err := visibility.NewEngine(visibility.Config{
		MaxRangeMeters:              cfg.MaxRangeMeters,
		FieldOfViewHalfAngleDegrees: cfg.FieldOfViewHalfAngleDegrees,
	})
	if err != nil {
		log.Fatal("Invalid visibility config:", err)
	}

	sessions, err := openSessions(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to initialize session store:", err)
	}
	defer sessions.Close()

	viewers := service.NewViewerService(sessions, holder, engine)

	// 初始化路由
	router := api.SetupRouter(cfg, stores, viewers)

	// 启动服务器
	log.Printf("Server starting on port %s", cfg.Port)
	if err := router.Run(cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

// openSessions picks redis when configured, otherwise in-process sessions
func openSessions(ctx context.Context, cfg *config.Config) (tracker.Store, error) {
	if cfg.RedisAddr == "" {
		log.Printf("Viewer sessions kept in memory (ttl %s)", cfg.SessionTTL)
		return tracker.NewMemoryStore(cfg.SessionTTL), nil
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	store, err := tracker.NewRedisStore(ctx, tracker.RedisConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, cfg.SessionTTL)
	if err != nil {
		return nil, err
	}
	log.Printf("Viewer sessions kept in redis at %s (ttl %s)", cfg.RedisAddr, cfg.SessionTTL)
	return store, nil
}
