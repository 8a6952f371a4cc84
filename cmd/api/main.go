package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"parcel-ledger/internal/core/auth"
	"parcel-ledger/internal/core/cache"
	"parcel-ledger/internal/core/config"
	"parcel-ledger/internal/core/database"
	"parcel-ledger/internal/core/logger"
	"parcel-ledger/internal/core/server"
	directoryadapter "parcel-ledger/internal/features/directory/adapters"
	directoryhandler "parcel-ledger/internal/features/directory/handler"
	directoryservice "parcel-ledger/internal/features/directory/service"
	parceladapter "parcel-ledger/internal/features/parcels/adapters"
	parcelhandler "parcel-ledger/internal/features/parcels/handler"
	parcelservice "parcel-ledger/internal/features/parcels/service"
	registryadapter "parcel-ledger/internal/features/registry/adapters"
	registryhandler "parcel-ledger/internal/features/registry/handler"
	registryservice "parcel-ledger/internal/features/registry/service"
	reporthandler "parcel-ledger/internal/features/reports/handler"
	reportservice "parcel-ledger/internal/features/reports/service"

	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// @title Parcel Ledger API
// @version 1.0
// @description Parcel delivery ledger: registration, status lifecycle, public tracking and reports.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the access token.
func main() {
	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Environment, cfg.LogLevel); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	l := logger.Get()
	l.Info("Application starting",
		zap.String("environment", cfg.Environment),
		zap.String("log_level", cfg.LogLevel),
	)

	// Initialize the relational store and bring the schema up to date
	db, err := database.Connect(cfg.Database)
	if err != nil {
		l.Fatal("Database connection failed", zap.Error(err))
	}
	defer func() {
		if err := database.Close(db); err != nil {
			l.Warn("Failed to close database", zap.Error(err))
		}
	}()

	if err := database.Migrate(db); err != nil {
		l.Fatal("Migration failed", zap.Error(err))
	}
	if err := parceladapter.SyncStatusCatalog(context.Background(), db); err != nil {
		l.Fatal("Status catalog sync failed", zap.Error(err))
	}
	l.Info("Database schema verified")

	// Initialize the Redis cache used by public tracking
	redisCache, err := cache.NewRedisAdapter(cfg.Redis.URL, "parcel-ledger")
	if err != nil {
		l.Fatal("Redis connection failed", zap.Error(err))
	}
	defer redisCache.Close()

	// Initialize Adapters
	addressRepo := registryadapter.NewGormAddressRepository(db)
	tariffRepo := registryadapter.NewGormTariffRepository(db)
	userRepo := directoryadapter.NewGormUserRepository(db)
	employeeRepo := directoryadapter.NewGormEmployeeRepository(db)
	orgRepo := directoryadapter.NewGormOrganizationRepository(db)
	parcelRepo := parceladapter.NewGormParcelRepository(db)
	partyDirectory := parceladapter.NewGormPartyDirectory(db)
	trackingCache := parceladapter.NewRedisTrackingCache(redisCache, cfg.Redis.TrackingTTL())

	issuer := auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL())

	// Initialize Services
	registrySvc := registryservice.NewRegistryService(addressRepo, tariffRepo)
	directorySvc := directoryservice.NewDirectoryService(directoryservice.Dependencies{
		Users:         userRepo,
		Employees:     employeeRepo,
		Organizations: orgRepo,
		Parcels:       parcelRepo,
		Addresses:     registrySvc,
		Tokens:        issuer,
	})
	parcelSvc := parcelservice.NewParcelService(parcelservice.Dependencies{
		Parcels:   parcelRepo,
		Directory: partyDirectory,
		Tariffs:   registrySvc,
		Cache:     trackingCache,
	})
	reportSvc := reportservice.NewReportService(parcelRepo, userRepo, employeeRepo)

	// Initialize Handlers
	accountHdl := directoryhandler.NewAccountHandler(directorySvc)
	staffHdl := directoryhandler.NewStaffHandler(directorySvc)
	orgHdl := directoryhandler.NewOrganizationHandler(directorySvc)
	registryHdl := registryhandler.NewRegistryHandler(registrySvc)
	parcelHdl := parcelhandler.NewParcelHandler(parcelSvc)
	reportHdl := reporthandler.NewReportHandler(reportSvc)

	srv := server.New(cfg)
	srv.AddHealthCheck("database", func(ctx context.Context) error {
		return database.Ping(ctx, db)
	})
	srv.AddHealthCheck("redis", redisCache.Ping)

	app := srv.App
	app.Use(auth.Middleware(issuer))

	// Public Routes
	app.Post("/auth/register", accountHdl.Register)
	app.Post("/auth/login", accountHdl.Login)
	app.Get("/parcel-statuses", parcelHdl.ListStatuses)
	app.Get("/tracking/:number", parcelHdl.Track)

	// Protected Routes
	app.Use(auth.RequireActor())
	app.Get("/users/me", accountHdl.Me)
	app.Get("/users/:id", accountHdl.GetUser)
	app.Patch("/users/:id", accountHdl.UpdateProfile)
	app.Delete("/users/:id", accountHdl.DeleteUser)
	app.Get("/clients", accountHdl.ListClients)

	app.Post("/employees", staffHdl.CreateEmployee)
	app.Get("/employees", staffHdl.ListEmployees)
	app.Get("/employees/:id", staffHdl.GetEmployee)
	app.Patch("/employees/:id", staffHdl.UpdateEmployee)
	app.Delete("/employees/:id", staffHdl.DeleteEmployee)

	app.Post("/companies", orgHdl.CreateCompany)
	app.Get("/companies", orgHdl.ListCompanies)
	app.Patch("/companies/:id", orgHdl.UpdateCompany)
	app.Delete("/companies/:id", orgHdl.DeleteCompany)
	app.Post("/offices", orgHdl.CreateOffice)
	app.Get("/offices", orgHdl.ListOffices)
	app.Get("/offices/:id", orgHdl.GetOffice)
	app.Patch("/offices/:id", orgHdl.UpdateOffice)
	app.Delete("/offices/:id", orgHdl.DeleteOffice)

	app.Post("/addresses", registryHdl.CreateAddress)
	app.Get("/addresses", registryHdl.ListAddresses)
	app.Put("/tariffs", registryHdl.UpsertTariff)
	app.Get("/tariffs", registryHdl.ListTariffs)
	app.Delete("/tariffs/:id", registryHdl.DeleteTariff)

	app.Post("/parcels", parcelHdl.CreateParcel)
	app.Get("/parcels", parcelHdl.ListParcels)
	app.Get("/parcels/:id", parcelHdl.GetParcel)
	app.Patch("/parcels/:id", parcelHdl.UpdateParcel)
	app.Delete("/parcels/:id", parcelHdl.DeleteParcel)
	app.Post("/parcels/:id/status", parcelHdl.ChangeStatus)
	app.Post("/parcels/:id/notes", parcelHdl.AddNote)

	app.Get("/reports/parcels", reportHdl.AllParcels)
	app.Get("/reports/client-parcels", reportHdl.ParcelsByClient)
	app.Get("/reports/employees", reportHdl.Employees)
	app.Get("/reports/employees/:id/parcels", reportHdl.ParcelsByEmployee)
	app.Get("/reports/pending-deliveries", reportHdl.PendingDeliveries)
	app.Get("/reports/income", reportHdl.Income)
	app.Get("/reports/clients", reportHdl.Clients)

	go func() {
		if err := srv.Run(); err != nil {
			l.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	l.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		l.Error("Graceful shutdown failed", zap.Error(err))
	}
}
