package main

import (
	"context"
	"flag"
	"log"

	redisv9 "github.com/redis/go-redis/v9"

	"crypto_dashboard/internal/app/di"
	"crypto_dashboard/internal/app/router"
	coinshandler "crypto_dashboard/internal/feature/coins/transport/handler"
	coinsusecase "crypto_dashboard/internal/feature/coins/usecase"
	watchlistadapters "crypto_dashboard/internal/feature/watchlist/adapters"
	"crypto_dashboard/internal/feature/watchlist/store"
	watchlisthandler "crypto_dashboard/internal/feature/watchlist/transport/handler"
	watchlistusecase "crypto_dashboard/internal/feature/watchlist/usecase"
	"crypto_dashboard/internal/platform/cache"
	"crypto_dashboard/internal/platform/config"
	infradb "crypto_dashboard/internal/platform/db"
	infraredis "crypto_dashboard/internal/platform/redis"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config (optional)")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.LoadAndValidate(*configPath)
		if err != nil {
			log.Fatal(err)
		}
	}

	// db（ウォッチリスト永続化用）
	db := infradb.OpenDB()

	// Redis
	var rdb *redisv9.Client
	if tmp, err := infraredis.NewRedisClient(); err != nil {
		log.Println("[WARN] Redis unavailable. Running without cache.")
		rdb = nil
	} else {
		rdb = tmp
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Println("[ERROR] Failed to close Redis client:", err)
			}
		}()
	}

	// Repository
	marketRepo := di.NewMarket(cfg.Provider.RatePerMinute)
	watchlistRepo := watchlistadapters.NewWatchlistRepository(db)

	// Redisキャッシュでラップ（一覧・詳細のみ。チャートは素通し）
	cachedMarketRepo := cache.NewCachingMarketRepository(rdb, cfg.Cache.TTL, marketRepo, cfg.Cache.Namespace)

	// Store（セッションを通じて単一インスタンス）
	watchlistStore := store.New(context.Background(), watchlistRepo)

	// Usecase
	coinsUC := coinsusecase.NewCoinsUsecase(cachedMarketRepo)
	watchlistUC := watchlistusecase.NewWatchlistUsecase(watchlistStore, cachedMarketRepo)

	// Handler
	coinsH := coinshandler.NewCoinsHandler(coinsUC)
	watchlistH := watchlisthandler.NewWatchlistHandler(watchlistUC)

	// ルータ生成
	router := router.NewRouter(coinsH, watchlistH)

	if err := router.Run(cfg.Server.Addr); err != nil {
		log.Fatal(err)
	}
}
