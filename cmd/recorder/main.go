package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/wmjtyd/libstock/params"
	"github.com/wmjtyd/libstock/pkg/api"
	"github.com/wmjtyd/libstock/pkg/file"
	"github.com/wmjtyd/libstock/pkg/message"
	"github.com/wmjtyd/libstock/pkg/metrics"
	"github.com/wmjtyd/libstock/pkg/notify"
	"github.com/wmjtyd/libstock/pkg/recorder"
	"github.com/wmjtyd/libstock/pkg/storage"
	"github.com/wmjtyd/libstock/pkg/util"
)

func main() {
	// Load config from .env file and environment variables
	cfg, err := params.LoadFromEnv("")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()
	sugar.Infow("logger_initialized", "log_file", cfg.Log.File, "level", cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, sugar); err != nil {
		sugar.Fatalw("recorder_failed", "err", err)
	}
}

func newLogger(cfg params.Log) (*zap.Logger, error) {
	level, err := util.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	if cfg.File == "" {
		return util.NewLogger(level)
	}
	return util.NewLoggerWithFile(cfg.File, level)
}

func run(ctx context.Context, cfg params.Config, sugar *zap.SugaredLogger) error {
	m := metrics.New(prometheus.DefaultRegisterer)

	// ---- Subscriber ----
	sub, err := newSubscriber(ctx, cfg.Transport, sugar)
	if err != nil {
		return fmt.Errorf("subscriber: %w", err)
	}
	defer sub.Close()

	// ---- Record store (optional) ----
	var store *storage.RecordStore
	if cfg.Store.PebblePath != "" {
		if store, err = storage.NewRecordStore(cfg.Store.PebblePath); err != nil {
			return fmt.Errorf("record store: %w", err)
		}
		defer store.Close()
		sugar.Infow("record_store_opened", "path", cfg.Store.PebblePath)
	}

	// ---- Writer ----
	writer := file.NewDataWriter(cfg.Writer.DataDir, cfg.Writer.QueueSize, sugar, file.WithMetrics(m))
	go writer.Start(ctx)

	rcfg := recorder.Config{
		Subscriber: sub,
		Writer:     writer,
		Store:      store,
		Transport:  cfg.Transport.Kind,
		Metrics:    m,
		Logger:     sugar,
	}

	// ---- API Server (optional) ----
	if cfg.API.Addr != "" {
		apiCfg := api.Config{
			Logger:         sugar,
			Metrics:        m,
			AllowedOrigins: cfg.API.AllowedOrigins,
		}
		if store != nil {
			apiCfg.Store = store
		}
		apiServer := api.NewServer(apiCfg)
		rcfg.Broadcaster = apiServer

		go func() {
			if err := apiServer.Start(ctx, cfg.API.Addr); err != nil {
				sugar.Errorw("api_server_failed", "err", err)
			}
		}()
	}

	hook := newSlack(cfg.Slack, sugar)
	notifyOps(hook, sugar, fmt.Sprintf("libstock recorder started (transport=%s)", cfg.Transport.Kind))

	err = recorder.New(rcfg).Run(ctx)

	writer.Stop()
	notifyOps(hook, sugar, "libstock recorder stopped")
	return err
}

func newSubscriber(ctx context.Context, t params.Transport, sugar *zap.SugaredLogger) (message.Subscriber, error) {
	switch t.Kind {
	case params.TransportRedis:
		return message.NewRedisSubscriber(ctx, message.RedisConfig{
			URL:      t.Redis.URL,
			Stream:   t.Redis.Stream,
			Group:    t.Redis.Group,
			Consumer: t.Redis.Consumer,
			Block:    t.Redis.Block,
			Logger:   sugar,
		})
	default:
		net, err := message.NewLibp2pNet(ctx, message.Libp2pConfig{
			ListenAddr: t.Libp2p.ListenAddr,
			Bootstrap:  t.Libp2p.Bootstrap,
			Logger:     sugar,
		})
		if err != nil {
			return nil, err
		}
		sugar.Infow("libp2p_addrs", "addrs", net.Addrs())
		sub, err := net.Subscriber(t.Topic)
		if err != nil {
			net.Close()
			return nil, err
		}
		return &libp2pSubscriber{Libp2pSubscriber: sub, net: net}, nil
	}
}

// libp2pSubscriber also shuts the host down on Close.
type libp2pSubscriber struct {
	*message.Libp2pSubscriber
	net *message.Libp2pNet
}

func (s *libp2pSubscriber) Close() error {
	s.Libp2pSubscriber.Close()
	return s.net.Close()
}

func newSlack(cfg params.Slack, sugar *zap.SugaredLogger) *notify.SlackHook {
	if cfg.Webhook == "" {
		return nil
	}
	hook, err := notify.NewSlackHook(cfg.Webhook, cfg.Channel, cfg.Username)
	if err != nil {
		sugar.Warnw("slack_disabled", "err", err)
		return nil
	}
	return hook
}

func notifyOps(hook *notify.SlackHook, sugar *zap.SugaredLogger, text string) {
	if hook == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := hook.Send(ctx, text); err != nil {
		sugar.Warnw("slack_send_failed", "err", err)
	}
}
