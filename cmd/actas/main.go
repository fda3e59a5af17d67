package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	config "github.com/seguridadvial/actas/internal/config"
	"github.com/seguridadvial/actas/internal/infraccion/application"
	"github.com/seguridadvial/actas/internal/infraccion/domain"
	consultaHttp "github.com/seguridadvial/actas/internal/infraccion/infra/inbound/http"
	infraccionCache "github.com/seguridadvial/actas/internal/infraccion/infra/outbound/cache"
	infraccionPg "github.com/seguridadvial/actas/internal/infraccion/infra/outbound/db/postgre"
	infraccionSqlite "github.com/seguridadvial/actas/internal/infraccion/infra/outbound/db/sqlite"
	"github.com/seguridadvial/actas/internal/infraccion/infra/outbound/filesystem"
	"github.com/seguridadvial/actas/internal/infraccion/infra/outbound/mail"
	"github.com/seguridadvial/actas/internal/infraccion/infra/outbound/pdf"
	sharedEvents "github.com/seguridadvial/actas/internal/shared/infra/events"
	"github.com/seguridadvial/actas/pkg/logger"
)

// ---------------- Main ----------------
func main() {
	logger.Init()
	log := logger.Logger()
	defer log.Sync()

	ctx := context.Background()
	cfg := config.LoadConfig()

	// ---------------- DB ----------------
	var db *sql.DB
	var repo domain.InfraccionRepository

	if cfg.LocalDeployment {
		sqliteDB, err := sql.Open("sqlite", cfg.SQLitePath)
		if err != nil {
			log.Fatal("failed to open SQLite", zap.Error(err))
		}
		if err := infraccionSqlite.InitSQLite(sqliteDB); err != nil {
			log.Fatal("failed to initialize SQLite", zap.Error(err))
		}
		db = sqliteDB
		repo = infraccionSqlite.NewInfraccionRepoSQLite(sqliteDB)
	} else {
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
			cfg.PGHost, cfg.PGPort, cfg.PGUser, cfg.PGPassword, cfg.PGDatabase)
		pgDB, err := sql.Open("pgx", dsn)
		if err != nil {
			log.Fatal("failed to open Postgres", zap.Error(err))
		}
		db = pgDB
		repo = infraccionPg.NewInfraccionRepoPostgres(pgDB)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		log.Fatal("failed to ping database", zap.Error(err))
	}

	// ---------------- Cache ----------------
	var cacheInstance domain.InfraccionCache
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn("⚠️ Redis no disponible, cache en memoria:", zap.Error(err))
		cacheInstance = infraccionCache.NewInMemoryCache(cfg.CacheTTL, 3*cfg.CacheTTL)
	} else {
		cacheInstance = infraccionCache.NewRedisCache(rdb, cfg.CacheTTL)
		log.Info("✅ Redis conectado, cache habilitado")
	}

	// ---------------- Events ---------------
	var eventPublisher domain.EventPublisher
	if cfg.UseKafka {
		log.Info("🚀 Usando Kafka como bus de eventos")
		writer := kafka.NewWriter(kafka.WriterConfig{
			Brokers: cfg.KafkaBrokers,
			Topic:   cfg.KafkaTopic,
		})
		defer writer.Close()
		eventPublisher = sharedEvents.NewKafkaPublisher(writer, log)
	} else {
		log.Info("⚡️Usando bus de eventos en memoria (canales de Go)")
		eventPublisher = sharedEvents.NewInMemoryEventBus(domain.TopicActas)
	}

	// ---------------- Archivos y PDF ----------------
	archivos := filesystem.NewActaStorage(cfg.DataDir)
	generadorResumen := pdf.NewGeneradorResumen()
	combinador := pdf.NewCombinador()

	// ---------------- Mail ----------------
	mailer := mail.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPSecure, cfg.MailFrom, log)

	// --------------- Servicios --------------
	consultaService := application.NewConsultaService(repo, cacheInstance, log)
	notificacionService := application.NewNotificacionService(
		repo, archivos, generadorResumen, combinador, mailer,
		eventPublisher, cacheInstance, cfg.MailDefaultTo, log,
	)

	// ---------------- HTTP ----------------
	handler := consultaHttp.NewConsultaHandler(consultaService, notificacionService, archivos)
	router := gin.Default()
	consultaHttp.RegisterConsultaRoutes(router, handler)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	log.Info("🚀 Server running",
		zap.String("url", "http://localhost:"+cfg.HTTPPort),
	)
	if err := router.Run(":" + cfg.HTTPPort); err != nil {
		log.Fatal("failed to start server", zap.Error(err))
	}
}
