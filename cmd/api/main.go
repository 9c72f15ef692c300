package main

import (
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/presensi-hq/presensi-backend-go/internal/config"
	appHTTP "github.com/presensi-hq/presensi-backend-go/internal/handler/http"
	"github.com/presensi-hq/presensi-backend-go/internal/pkg/cache"
	"github.com/presensi-hq/presensi-backend-go/internal/pkg/cron"
	"github.com/presensi-hq/presensi-backend-go/internal/pkg/database"
	"github.com/presensi-hq/presensi-backend-go/internal/pkg/jwt"
	"github.com/presensi-hq/presensi-backend-go/internal/pkg/lock"
	"github.com/presensi-hq/presensi-backend-go/internal/repository/postgresql"
	punchService "github.com/presensi-hq/presensi-backend-go/internal/service/punch"
	scheduleService "github.com/presensi-hq/presensi-backend-go/internal/service/schedule"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	cacheClient := cache.NewNoopCache()
	if cfg.Redis.Enabled {
		redisCache, err := cache.NewRedisCache(cfg.RedisAddr(), cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			slog.Warn("Redis unavailable, running without cache", "error", err)
		} else {
			cacheClient = redisCache
		}
	}
	defer cacheClient.Close()

	// Repositories
	punchEventRepo := postgresql.NewPunchEventRepository(db)
	punchEditLogRepo := postgresql.NewPunchEditLogRepository(db)
	workDayRepo := postgresql.NewWorkDayRepository(db)
	shiftRepo := postgresql.NewShiftRepository(db)
	assignmentRepo := postgresql.NewWeeklyAssignmentRepository(db)
	templateRepo := postgresql.NewWeeklyTemplateRepository(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	companyRepo := postgresql.NewCompanyRepository(db)

	// Services
	jwtSvc := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	punchSvc := punchService.NewPunchService(
		db, cacheClient, lock.NewKeyed(),
		punchEventRepo, punchEditLogRepo, workDayRepo, employeeRepo, companyRepo,
	)
	scheduleSvc := scheduleService.NewScheduleService(
		db, cacheClient, lock.NewKeyed(),
		shiftRepo, assignmentRepo, templateRepo, employeeRepo,
	)

	// Handlers
	punchHandler := appHTTP.NewPunchHandler(punchSvc)
	scheduleHandler := appHTTP.NewScheduleHandler(scheduleSvc)

	// Background jobs
	scheduler := cron.NewScheduler()
	workDayCloser := cron.NewWorkDayCloser(punchEventRepo, workDayRepo)
	scheduler.AddJob("workday-closer", 1*time.Hour, workDayCloser.Run)
	scheduler.Start()
	defer scheduler.Stop()

	router := appHTTP.NewRouter(jwtSvc, punchHandler, scheduleHandler)

	addr := fmt.Sprintf(":%d", cfg.App.Port)
	slog.Info("Starting server", "addr", addr, "env", cfg.App.Env)
	if err := http.ListenAndServe(addr, router); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
