package main

import (
	"context"
	"log"
	nethttp "net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"golang.org/x/sync/errgroup"

	"tableside/internal/config"
	controllers "tableside/internal/controllers/http"
	"tableside/internal/domain"
	"tableside/internal/infra"
	"tableside/internal/infra/rabbitmq"
	"tableside/internal/repository"
	redisrepo "tableside/internal/repository/redis"
	"tableside/internal/services"
)

func main() {
	cfg := config.Load()

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		DB:           0,
		PoolSize:     200,
		MinIdleConns: 20,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
	})

	kv := redisrepo.NewKV(rdb, cfg.CartTTL)
	store := repository.NewKeyedStore(kv, cfg.StorePrefix, cfg.MaxCartLines)

	orderClient := infra.NewOrderClient(cfg.OrderAPIURL, cfg.ClientTimeout)
	menuClient := infra.NewMenuClient(cfg.MenuAPIURL, cfg.ClientTimeout)

	publisher, err := rabbitmq.NewPublisher(cfg.RabbitURL, cfg.Exchange)
	if err != nil {
		log.Fatalf("failed to init publisher: %v", err)
	}
	defer publisher.Close()

	subscriber, err := rabbitmq.NewSubscriber(cfg.RabbitURL, cfg.Exchange, "order.*")
	if err != nil {
		log.Fatalf("failed to init subscriber: %v", err)
	}
	defer subscriber.Close()

	carts := services.NewCartService(store, orderClient, publisher, cfg.MaxCartLines)
	registry := services.NewWatcherRegistry(func(tableID string) *services.StatusWatcher {
		return services.NewStatusWatcher(orderClient, tableID, cfg.PollInterval, func(o domain.Order) {
			log.Printf("order %s confirmed for table %s", o.OrderID, o.TableID)
		})
	})
	defer registry.StopAll()

	handler := controllers.NewHandler(carts, registry, menuClient, orderClient, rdb, cfg.MenuCacheTTL, cfg.MaxTables)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	handler.RegisterRoutes(r)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &nethttp.Server{Addr: ":" + cfg.HTTPPort, Handler: r}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return subscriber.Start(ctx, registry.HandleEvent)
	})
	g.Go(func() error {
		log.Printf("Starting tableside gateway on port %s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != nethttp.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("server run: %v", err)
	}
}
