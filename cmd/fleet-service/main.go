package main

import (
	"flag"

	"github.com/FleetHub/FleetHub/internal/catalog"
	"github.com/FleetHub/FleetHub/internal/common/config"
	"github.com/FleetHub/FleetHub/internal/common/db"
	"github.com/FleetHub/FleetHub/internal/common/logger"
	"github.com/FleetHub/FleetHub/internal/common/middleware"
	"github.com/FleetHub/FleetHub/internal/common/server"
	"github.com/FleetHub/FleetHub/internal/common/tracing"
	"github.com/FleetHub/FleetHub/internal/maintenance"
	"github.com/FleetHub/FleetHub/internal/vehicle"
	"github.com/gin-gonic/gin"
)

func main() {
	configPath := flag.String("config", "configs/fleet-service.json", "配置文件路径")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		panic(err)
	}

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, cfg.Log.Output, cfg.Log.Path)
	if err != nil {
		panic(err)
	}

	// 链路追踪（初始化失败不阻塞服务启动）
	_, closer, err := tracing.InitTracer(cfg.Server.Name, cfg.Jaeger.Endpoint, cfg.Jaeger.Sampler)
	if err != nil {
		log.Warnf("failed to init tracer: %v", err)
	} else {
		defer closer.Close()
	}

	gormDB, err := db.NewMySQL(
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Database,
		cfg.Database.MaxIdle,
		cfg.Database.MaxOpen,
	)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	if err := gormDB.AutoMigrate(
		&catalog.Brand{},
		&catalog.Model{},
		&catalog.VehicleType{},
		&vehicle.Vehicle{},
		&maintenance.Record{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	catalogRepo := catalog.NewRepo(gormDB)
	vehicleRepo := vehicle.NewRepo(gormDB)
	maintenanceRepo := maintenance.NewRepo(gormDB)
	uow := maintenance.NewGormUnitOfWork(gormDB)

	catalogSvc := catalog.NewService(catalogRepo, log)
	vehicleSvc := vehicle.NewService(vehicleRepo, catalogRepo, log)
	maintenanceSvc := maintenance.NewService(uow, maintenanceRepo, log)

	limiter := middleware.NewTokenBucket(1000, 500)

	err = server.RunHTTPServer(cfg, log, func(r *gin.Engine) error {
		r.Use(server.RateLimit(limiter))
		catalog.NewHandler(catalogSvc).Register(r)
		vehicle.NewHandler(vehicleSvc).Register(r)
		maintenance.NewHandler(maintenanceSvc).Register(r)
		return nil
	})
	if err != nil {
		log.Fatalf("server exited with error: %v", err)
	}
}
