package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/BearBump/TrainBox/config"
	trainsapi "github.com/BearBump/TrainBox/internal/api/trains_api"
	"github.com/BearBump/TrainBox/internal/broker/kafka"
	"github.com/BearBump/TrainBox/internal/cache/rediscache"
	"github.com/BearBump/TrainBox/internal/integrations/railway"
	"github.com/BearBump/TrainBox/internal/integrations/railway/fake"
	"github.com/BearBump/TrainBox/internal/integrations/railway/viaggiatreno"
	"github.com/BearBump/TrainBox/internal/services/trains"
	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger"
)

const (
	defaultHTTPAddr   = ":8080"
	defaultTopic      = "train.resolved"
	defaultRetryPause = 300 * time.Millisecond
	upstreamName      = "viaggiatreno"
)

type rateLimiter interface {
	railway.RateLimiter
	Ping(ctx context.Context) error
	Close() error
}

type publisher interface {
	trains.Publisher
	Close() error
}

type apiFactories struct {
	newUpstreamClient func(cfg *config.Config) railway.Client
	newRateLimiter    func(cfg *config.Config) rateLimiter
	newPublisher      func(cfg *config.Config) publisher
}

func defaultAPIFactories() apiFactories {
	return apiFactories{
		newUpstreamClient: func(cfg *config.Config) railway.Client {
			// Для демо без доступа к внешнему API есть локальный fake.
			if cfg.Upstream.Mode == "fake" {
				return fake.New()
			}
			timeout := time.Duration(cfg.Upstream.TimeoutSeconds) * time.Second
			return viaggiatreno.New(cfg.Upstream.BaseURL, timeout)
		},
		newRateLimiter: func(cfg *config.Config) rateLimiter {
			if cfg.Redis.Host == "" {
				return nil
			}
			return rediscache.NewRateLimiter(fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port))
		},
		newPublisher: func(cfg *config.Config) publisher {
			if cfg.Kafka.Host == "" {
				return nil
			}
			return kafka.NewProducer([]string{fmt.Sprintf("%s:%d", cfg.Kafka.Host, cfg.Kafka.Port)})
		},
	}
}

type trainAPIApp struct {
	opts    trainAPIOpts
	svc     *trains.Service
	closers []func() error
}

// buildTrainAPI wires the upstream stack: retry wraps the rate limit so that
// every re-issued call is counted too.
func buildTrainAPI(cfg *config.Config, f apiFactories, swaggerPath string) *trainAPIApp {
	httpAddr := cfg.TrainBox.HTTPAddr
	if httpAddr == "" {
		httpAddr = defaultHTTPAddr
	}
	topic := cfg.Kafka.TrainResolvedTopicName
	if topic == "" {
		topic = defaultTopic
	}

	app := &trainAPIApp{opts: trainAPIOpts{httpAddr: httpAddr, swaggerPath: swaggerPath}}

	client := f.newUpstreamClient(cfg)
	if rl := f.newRateLimiter(cfg); rl != nil {
		client = railway.WithRateLimit(client, rl, upstreamName, int64(cfg.Upstream.RateLimitPerMinute))
		app.opts.ready = rl.Ping
		app.closers = append(app.closers, rl.Close)
	}
	client = railway.WithRetry(client, cfg.Upstream.RetryAttempts, defaultRetryPause)

	var pub trains.Publisher
	if p := f.newPublisher(cfg); p != nil {
		pub = p
		app.closers = append(app.closers, p.Close)
	}

	app.svc = trains.New(client, pub, topic)
	return app
}

func (a *trainAPIApp) Run(ctx context.Context) error {
	return runTrainAPI(ctx, a.opts, trainsapi.New(a.svc))
}

func (a *trainAPIApp) Close() {
	if a.svc != nil {
		a.svc.Wait()
	}
	for _, c := range a.closers {
		if err := c(); err != nil {
			slog.Warn("close failed", "err", err)
		}
	}
}

type trainAPIOpts struct {
	httpAddr    string
	swaggerPath string
	ready       func(ctx context.Context) error

	onListen func(httpAddr string)
}

func runTrainAPI(ctx context.Context, opts trainAPIOpts, api *trainsapi.TrainsAPI) error {
	if opts.swaggerPath == "" {
		return fmt.Errorf("swaggerPath env var is required")
	}
	if _, err := os.Stat(opts.swaggerPath); os.IsNotExist(err) {
		return fmt.Errorf("swagger file not found: %s", opts.swaggerPath)
	}

	lis, err := net.Listen("tcp", opts.httpAddr)
	if err != nil {
		return err
	}
	if opts.onListen != nil {
		opts.onListen(lis.Addr().String())
	}

	srv := &http.Server{
		Handler:           newRouter(opts, api),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	slog.Info("HTTP server listening", "addr", lis.Addr().String())
	if err := srv.Serve(lis); err != nil && err != http.ErrServerClosed {
		return err
	}
	return ctx.Err()
}

func newRouter(opts trainAPIOpts, api *trainsapi.TrainsAPI) chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if opts.ready != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := opts.ready(ctx); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_ = json.NewEncoder(w).Encode(map[string]string{"status": "not ready", "error": err.Error()})
				return
			}
		}
		_, _ = w.Write([]byte(`{"status":"ready"}`))
	})

	r.Get("/swagger.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		http.ServeFile(w, r, opts.swaggerPath)
	})
	swaggerURL := "/swagger.json"
	if fi, err := os.Stat(opts.swaggerPath); err == nil {
		swaggerURL = fmt.Sprintf("/swagger.json?v=%d", fi.ModTime().Unix())
	}
	r.Get("/docs/*", httpSwagger.Handler(httpSwagger.URL(swaggerURL)))

	api.Routes(r)
	return r
}
