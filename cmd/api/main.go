package main

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"io/fs"
	"log"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rana-ox/testing-d1/internal/db"
	"github.com/rana-ox/testing-d1/internal/domain/storage"
	"github.com/rana-ox/testing-d1/internal/turnstile"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the console logger. Development runs log at debug level
// with caller info; everything else logs info and above.
func NewLogger(env string) (*zap.SugaredLogger, error) {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder

	level := zapcore.InfoLevel
	var opts []zap.Option
	if env == envDevelopment {
		level = zapcore.DebugLevel
		opts = append(opts, zap.AddCaller())
	}

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderCfg), zapcore.Lock(os.Stdout), level)
	return zap.New(core, opts...).Sugar().With("env", env), nil
}

func getEnv(key, fallback string) string {
	if val, exists := os.LookupEnv(key); exists && val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	val, exists := os.LookupEnv(key)
	if !exists || val == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %w", key, err)
	}
	return n, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	val, exists := os.LookupEnv(key)
	if !exists || val == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("invalid value for %s: %w", key, err)
	}
	return b, nil
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func loadConfig() (config, error) {
	maxConns, err := getEnvInt("DB_MAX_CONNS", 10)
	if err != nil {
		return config{}, err
	}
	autoMigrate, err := getEnvBool("DB_AUTO_MIGRATE", true)
	if err != nil {
		return config{}, err
	}

	cfg := config{
		addr:        getEnv("ADDR", ":8080"),
		env:         getEnv("ENV", "production"),
		apiURL:      getEnv("EXTERNAL_URL", "localhost:8080"),
		staticDir:   os.Getenv("STATIC_DIR"),
		corsOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "https://*,http://*")),
		db: dbConfig{
			addr:        os.Getenv("DB_ADDR"),
			maxConns:    int32(maxConns),
			maxIdleTime: getEnv("DB_MAX_IDLE_TIME", "15m"),
			autoMigrate: autoMigrate,
		},
		auth: authConfig{
			basic: basicConfig{
				user: os.Getenv("AUTH_BASIC_USER"),
				pass: os.Getenv("AUTH_BASIC_PASS"),
			},
		},
		turnstile: turnstileConfig{
			secretKey:        os.Getenv("TURNSTILE_SECRET_KEY"),
			expectedHostname: os.Getenv("TURNSTILE_EXPECTED_HOSTNAME"),
			verifyURL:        getEnv("TURNSTILE_VERIFY_URL", turnstile.SiteVerifyURL),
		},
	}

	if cfg.db.addr == "" {
		return config{}, errors.New("DB_ADDR is required")
	}
	return cfg, nil
}

// newVerifier returns a live Turnstile verifier when a secret is configured
// and a pass-through otherwise.
func newVerifier(cfg turnstileConfig) challengeVerifier {
	if cfg.secretKey == "" {
		return turnstile.NoopVerifier{}
	}
	return turnstile.New(turnstile.Config{
		SecretKey:        cfg.secretKey,
		ExpectedHostname: cfg.expectedHostname,
		VerifyURL:        cfg.verifyURL,
	})
}

var version = "1.0.0"

const envDevelopment = "development"

//	@title			Page Feedback API
//	@description	Ratings and comments for static site pages.

//	@BasePath					/
//	@securityDefinitions.basic	BasicAuth

func main() {
	// .env is optional; real deployments inject the environment directly.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("Error loading .env file: %v", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger, err := NewLogger(cfg.env)
	if err != nil {
		log.Fatalf("Error creating logger: %v", err)
	}
	defer logger.Sync()

	if err := serve(cfg, logger); err != nil {
		logger.Errorw("server exited", "error", err.Error())
		logger.Sync()
		os.Exit(1)
	}
}

// serve owns the database pool for the lifetime of the HTTP server so the
// pool is closed on every exit path.
func serve(cfg config, logger *zap.SugaredLogger) error {
	if cfg.db.autoMigrate {
		schemaVersion, err := db.Migrate(cfg.db.addr, logger)
		if err != nil {
			return err
		}
		expvar.NewInt("schema_version").Set(int64(schemaVersion))
	}

	pool, err := db.New(db.Config{
		Addr:        cfg.db.addr,
		MaxConns:    cfg.db.maxConns,
		MaxIdleTime: cfg.db.maxIdleTime,
	})
	if err != nil {
		return err
	}
	defer func() {
		pool.Close()
		logger.Info("database connection pool closed")
	}()
	logger.Infow("database connection pool established", "maxConns", cfg.db.maxConns)

	if cfg.auth.basic.user == "" && cfg.auth.basic.pass == "" && cfg.env != envDevelopment {
		logger.Warn("AUTH_BASIC_USER and AUTH_BASIC_PASS are not set, /v1 routes will refuse every request")
	}
	if cfg.turnstile.secretKey == "" {
		logger.Warn("TURNSTILE_SECRET_KEY is not set, feedback submissions are not challenge-verified")
	}

	app := &application{
		config:   cfg,
		logger:   logger,
		store:    storage.NewContainer(pool),
		verifier: newVerifier(cfg.turnstile),
	}

	//Metrics collected http://localhost:8080/v1/debug/vars
	expvar.NewString("version").Set(version)
	expvar.Publish("database", expvar.Func(func() any {
		return db.Stats(pool)
	}))
	expvar.Publish("goroutines", expvar.Func(func() any {
		return runtime.NumGoroutine()
	}))

	return app.run(context.Background(), app.mount())
}
