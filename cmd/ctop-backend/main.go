package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/ctOP-IIITH/backend/internal/config"
	"github.com/ctOP-IIITH/backend/internal/database"
	"github.com/ctOP-IIITH/backend/internal/geocode"
	httpapi "github.com/ctOP-IIITH/backend/internal/http"
	"github.com/ctOP-IIITH/backend/internal/logger"
	"github.com/ctOP-IIITH/backend/internal/onem2m"
	"github.com/ctOP-IIITH/backend/internal/repository"
	"github.com/ctOP-IIITH/backend/internal/service"
	"github.com/ctOP-IIITH/backend/internal/store"
)

const serviceName = "ctop-backend"

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format, serviceName)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()
	kv := store.NewRedisKV(redisClient)

	tree := onem2m.NewClient(onem2m.Config{
		BaseURL:  cfg.OneM2M.BaseURL,
		Username: cfg.OneM2M.Username,
		Password: cfg.OneM2M.Password,
		Timeout:  cfg.OneM2M.Timeout,
	}, log)
	postal := geocode.NewNominatimClient(cfg.Geocode.BaseURL, cfg.Geocode.UserAgent, cfg.Geocode.Timeout, log)

	verticalsRepo := repository.NewPostgresVerticalsRepo(db)
	sensorTypesRepo := repository.NewPostgresSensorTypesRepo(db)
	nodesRepo := repository.NewPostgresNodesRepo(db)
	tokensRepo := repository.NewPostgresTokensRepo(db)
	usersRepo := repository.NewPostgresUsersRepo(db)
	ownersRepo := repository.NewPostgresNodeOwnersRepo(db)

	authSvc := service.NewAuthService(usersRepo, kv, cfg.JWT, log)
	verticalSvc := service.NewVerticalService(verticalsRepo, sensorTypesRepo, tree, onem2m.ParseResourceID, log)
	sensorTypeSvc := service.NewSensorTypeService(sensorTypesRepo, verticalsRepo, nodesRepo, log)
	nodeSvc := service.NewNodeService(nodesRepo, sensorTypesRepo, verticalsRepo, ownersRepo, usersRepo,
		tree, onem2m.ParseResourceID, postal, log)
	tokenSvc := service.NewTokenService(tokensRepo, nodesRepo, sensorTypesRepo, log)
	cinSvc := service.NewCinService(nodesRepo, sensorTypesRepo, verticalsRepo, ownersRepo, tree, log)
	importSvc := service.NewImportService(nodeSvc, sensorTypesRepo, log)
	statsSvc := service.NewStatsService(verticalsRepo, sensorTypesRepo, nodesRepo)

	bootCtx, bootCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	if cfg.Bootstrap.SeedAdmin {
		if err := service.SeedAdmin(bootCtx, usersRepo, cfg.Bootstrap.AdminEmail, cfg.Bootstrap.AdminPassword, log); err != nil {
			log.Fatal("failed to seed admin user", zap.Error(err))
		}
	}
	if cfg.Bootstrap.SeedVerticals {
		service.SeedVerticals(bootCtx, verticalSvc, log)
	}
	bootCancel()

	auth := httpapi.NewAuth(authSvc)
	router := httpapi.NewRouter(log)
	router.RegisterHealthRoutes()
	router.RegisterAuthRoutes(httpapi.NewAuthHandler(authSvc, log), auth)
	router.RegisterVerticalRoutes(httpapi.NewVerticalHandler(verticalSvc, sensorTypeSvc, log), auth)
	router.RegisterSensorTypeRoutes(httpapi.NewSensorTypeHandler(sensorTypeSvc, log), auth)
	cinHandler := httpapi.NewCinHandler(cinSvc, log)
	router.RegisterNodeRoutes(httpapi.NewNodeHandler(nodeSvc, log), cinHandler, auth)
	router.RegisterTokenRoutes(httpapi.NewTokenHandler(tokenSvc, log), auth)
	router.RegisterCinRoutes(cinHandler)
	router.RegisterImportRoutes(httpapi.NewImportHandler(importSvc, log), auth)
	router.RegisterStatsRoutes(httpapi.NewStatsHandler(statsSvc, log))

	srv := service.NewServer(cfg.HTTP.Addr, serviceName, httpapi.RequestLog(log, router), log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
	case err := <-errCh:
		log.Error("server stopped", zap.Error(err))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
}
