package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/SamiraSamrose/Thirteen-Oracles-Of-Astraeum/internal/api"
	"github.com/SamiraSamrose/Thirteen-Oracles-Of-Astraeum/internal/config"
	"github.com/SamiraSamrose/Thirteen-Oracles-Of-Astraeum/internal/database"
	apperrors "github.com/SamiraSamrose/Thirteen-Oracles-Of-Astraeum/internal/errors"
	"github.com/SamiraSamrose/Thirteen-Oracles-Of-Astraeum/internal/logger"
	"github.com/SamiraSamrose/Thirteen-Oracles-Of-Astraeum/internal/service"
	ws "github.com/SamiraSamrose/Thirteen-Oracles-Of-Astraeum/internal/websocket"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	Version   = "1.0.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// Server bundles the long-running components.
type Server struct {
	cfg     *config.Config
	logger  *zap.Logger
	hub     *ws.Hub
	httpSrv *http.Server
}

func main() {
	var (
		configPath  = flag.String("config", "", "path to the config file")
		showVersion = flag.Bool("version", false, "print version and exit")
		showHelp    = flag.Bool("help", false, "print usage and exit")
	)
	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}
	if *showHelp {
		printHelp()
		os.Exit(0)
	}

	// .env is optional, real env vars win either way
	_ = godotenv.Load()

	if err := config.Init(*configPath); err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}
	cfg := config.Get()

	if err := logger.Init(&cfg.Log); err != nil {
		fmt.Printf("failed to init logging: %v\n", err)
		os.Exit(1)
	}

	printStartInfo(cfg)

	server := NewServer(cfg)
	if err := server.Run(); err != nil {
		logger.Fatal("server exited with error", zap.Error(err))
	}

	logger.Info("server stopped cleanly")
	logger.Cleanup()
}

// NewServer creates the server shell. Components are wired in Run.
func NewServer(cfg *config.Config) *Server {
	return &Server{
		cfg:    cfg,
		logger: logger.GetLogger(),
	}
}

// Run wires every component, serves until a shutdown signal arrives,
// and then drains in-flight requests.
func (s *Server) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	if err := s.initDatabase(); err != nil {
		return err
	}
	defer func() {
		if err := database.Close(); err != nil {
			s.logger.Error("failed to close database", zap.Error(err))
		}
	}()

	s.hub = ws.NewHub(s.logger)
	go s.hub.Run()

	if s.cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	services := service.NewServices(database.GetDB(), s.serviceConfig(), s.logger, s.hub)
	router := api.NewRouter(database.GetDB(), services, s.hub, s.logger)

	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)
	s.httpSrv = &http.Server{
		Addr:         addr,
		Handler:      router.GetEngine(),
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}

	config.Watch(func(newCfg *config.Config) {
		s.cfg = newCfg
		logger.SetLevel(newCfg.Log.Level)
		s.logger.Info("configuration reloaded")
	})

	s.logger.Info("server started",
		zap.String("version", Version),
		zap.String("addr", addr),
		zap.String("mode", s.cfg.Server.Mode))

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		err := s.httpSrv.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})

	group.Go(func() error {
		<-groupCtx.Done()
		s.logger.Info("shutting down, draining requests")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
		defer cancel()
		return s.httpSrv.Shutdown(shutdownCtx)
	})

	return group.Wait()
}

func (s *Server) initDatabase() error {
	if err := database.Init(&s.cfg.Database); err != nil {
		return apperrors.Wrap(err, apperrors.ErrDatabaseConnect, "connect database")
	}

	if s.cfg.Database.AutoMigrate {
		if err := database.AutoMigrate(); err != nil {
			return apperrors.Wrap(err, apperrors.ErrDatabaseConnect, "migrate schema")
		}
	}
	if s.cfg.Database.SeedOracles {
		if err := database.SeedOracles(); err != nil {
			return apperrors.Wrap(err, apperrors.ErrDatabaseConnect, "seed oracles")
		}
	}

	if !database.IsConnected() {
		return apperrors.New(apperrors.ErrDatabaseConnect, "database health check failed")
	}
	return nil
}

func (s *Server) serviceConfig() *service.Config {
	return &service.Config{
		JWTSecret:          s.cfg.Security.JWT.Secret,
		AccessTokenExpiry:  s.cfg.Security.JWT.AccessExpiry,
		RefreshTokenExpiry: s.cfg.Security.JWT.RefreshExpiry,
		Game:               s.cfg.Game,
	}
}

func printVersion() {
	fmt.Println("Thirteen Oracles of Astraeum server")
	fmt.Printf("version:    %s\n", Version)
	fmt.Printf("build time: %s\n", BuildTime)
	fmt.Printf("commit:     %s\n", GitCommit)
	fmt.Printf("go:         %s\n", runtime.Version())
	fmt.Printf("platform:   %s/%s\n", runtime.GOOS, runtime.GOARCH)
}

func printHelp() {
	fmt.Println("Thirteen Oracles of Astraeum server")
	fmt.Println()
	fmt.Println("usage:")
	fmt.Println("  oracles-server [options]")
	fmt.Println()
	fmt.Println("options:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("environment:")
	fmt.Println("  ORACLES_CONFIG   path to the config file")
	fmt.Println()
	fmt.Println("examples:")
	fmt.Println("  oracles-server -config=/etc/oracles/config.yaml")
	fmt.Println("  oracles-server -version")
}

func printStartInfo(cfg *config.Config) {
	fmt.Printf("Thirteen Oracles of Astraeum | version %s | mode %s | pid %d\n",
		Version, cfg.Server.Mode, os.Getpid())
}
