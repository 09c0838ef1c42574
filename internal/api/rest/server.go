// Package rest provides functionality for initializing a server.
package rest

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi"
	"github.com/rs/zerolog"

	"github.com/stampmart/stampmart/internal/api/rest/client"
	"github.com/stampmart/stampmart/internal/api/rest/handlers"
	"github.com/stampmart/stampmart/internal/api/rest/middleware"
	"github.com/stampmart/stampmart/internal/config"
	"github.com/stampmart/stampmart/internal/models/modelqueue"
	"github.com/stampmart/stampmart/internal/service/ledger/v1/ledger"
	"github.com/stampmart/stampmart/internal/service/reconciler/v1/reconciler"
	"github.com/stampmart/stampmart/internal/service/secretary/v1/secretary"
	"github.com/stampmart/stampmart/internal/storage/v1/inpsql"
	"github.com/stampmart/stampmart/internal/storage/v1/rediscache"
)

const settlementQueueCapacity = 1000

// InitServer returns a http.Server object ready to be listening and serving.
func InitServer(ctx context.Context, cfg *config.Config, log *zerolog.Logger, wg *sync.WaitGroup) (server *http.Server, err error) {
	//initialize secretary
	secretaryService, err := secretary.NewSecretaryService(cfg.SecretConfig)
	if err != nil {
		return nil, err
	}

	// initialize token handler
	tokenHandler, err := middleware.NewTokenHandler(secretaryService, cfg.SecretConfig)
	if err != nil {
		return nil, err
	}

	// initialize storage
	storage, err := inpsql.InitStorage(ctx, cfg.StorageConfig, log, wg)
	if err != nil {
		return nil, err
	}

	// initialize cache, a nil cache is a functional no-op
	cache, err := rediscache.InitCache(cfg.CacheConfig, log)
	if err != nil {
		return nil, err
	}

	// initialize settlement retry queue and its consumer
	settlementQueue := make(chan modelqueue.SettlementQueueEntry, settlementQueueCapacity)
	opsClient := client.InitClient(cfg.ServerConfig, log)
	reconcilerService := reconciler.InitReconciler(ctx, settlementQueue, storage, opsClient, log, wg, cfg.QueueConfig.WorkerNumber, cfg.QueueConfig.RetryNumber)
	reconcilerService.ListenAndProcess()

	// initialize main service
	mainService, err := ledger.InitService(storage, secretaryService, cache, settlementQueue, log)
	if err != nil {
		return nil, err
	}

	// initialize handlers
	urlHandler, err := handlers.InitHandlers(mainService, cfg.ServerConfig, log)
	if err != nil {
		return nil, err
	}

	// initialize server and set routing
	r := chi.NewRouter()
	loginGroup := r.Group(nil)
	mainGroup := r.Group(nil)
	authorGroup := r.Group(nil)
	mainGroup.Use(tokenHandler.TokenHandle) // authentication is not used for login/register routes
	authorGroup.Use(tokenHandler.TokenHandle)
	authorGroup.Use(tokenHandler.RoleHandle("author", "admin"))
	loginGroup.Post("/api/user/register", urlHandler.HandleRegister())
	loginGroup.Post("/api/user/login", urlHandler.HandleLogin())
	mainGroup.Get("/api/user/account", urlHandler.HandleGetAccount())
	mainGroup.Post("/api/user/account/credit", urlHandler.HandleAddFunds())
	mainGroup.Post("/api/user/checkout", urlHandler.HandleCheckout())
	mainGroup.Post("/api/user/orders", urlHandler.HandlePlaceOrder())
	mainGroup.Get("/api/user/orders", urlHandler.HandleGetOrders())
	mainGroup.Get("/api/user/transactions", urlHandler.HandleGetTransactions())
	authorGroup.Get("/api/author/transactions", urlHandler.HandleGetAuditTrail())

	srv := &http.Server{
		Addr:         cfg.ServerConfig.ServerAddress,
		Handler:      r,
		IdleTimeout:  60 * time.Second,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
	}
	return srv, nil
}
