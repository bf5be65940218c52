package message

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// payloadField is the stream entry field that carries the record.
const payloadField = "data"

type RedisConfig struct {
	URL      string
	Stream   string
	Group    string
	Consumer string
	// MaxLen trims the stream approximately; 0 keeps everything.
	MaxLen int64
	Block  time.Duration
	Batch  int64
	Logger *zap.SugaredLogger
}

func newRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

// RedisPublisher appends payloads to a stream with XADD.
type RedisPublisher struct {
	client *redis.Client
	stream string
	maxLen int64
}

func NewRedisPublisher(ctx context.Context, cfg RedisConfig) (*RedisPublisher, error) {
	client, err := newRedisClient(ctx, cfg.URL)
	if err != nil {
		return nil, err
	}
	return &RedisPublisher{client: client, stream: cfg.Stream, maxLen: cfg.MaxLen}, nil
}

func (p *RedisPublisher) Publish(ctx context.Context, payload []byte) error {
	args := &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]any{payloadField: payload},
	}
	if p.maxLen > 0 {
		args.MaxLen = p.maxLen
		args.Approx = true
	}
	if err := p.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("xadd %s: %w", p.stream, err)
	}
	return nil
}

func (p *RedisPublisher) Close() error { return p.client.Close() }

// RedisSubscriber reads a stream through a consumer group. A payload is
// acknowledged when the following Next call starts, so one that was returned
// but not processed before a crash is delivered again.
type RedisSubscriber struct {
	client   *redis.Client
	stream   string
	group    string
	consumer string
	block    time.Duration
	batch    int64
	log      *zap.SugaredLogger

	buf     []redis.XMessage
	pending string
}

func NewRedisSubscriber(ctx context.Context, cfg RedisConfig) (*RedisSubscriber, error) {
	client, err := newRedisClient(ctx, cfg.URL)
	if err != nil {
		return nil, err
	}

	err = client.XGroupCreateMkStream(ctx, cfg.Stream, cfg.Group, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		client.Close()
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}

	s := &RedisSubscriber{
		client:   client,
		stream:   cfg.Stream,
		group:    cfg.Group,
		consumer: cfg.Consumer,
		block:    cfg.Block,
		batch:    cfg.Batch,
		log:      cfg.Logger,
	}
	if s.block <= 0 {
		s.block = 5 * time.Second
	}
	if s.batch <= 0 {
		s.batch = 10
	}
	if s.log == nil {
		s.log = zap.NewNop().Sugar()
	}
	s.log.Infow("redis_subscriber_ready", "stream", s.stream, "group", s.group, "consumer", s.consumer)
	return s, nil
}

func (s *RedisSubscriber) Next(ctx context.Context) ([]byte, error) {
	s.ack(ctx)

	for len(s.buf) == 0 {
		streams, err := s.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    s.group,
			Consumer: s.consumer,
			Streams:  []string{s.stream, ">"},
			Count:    s.batch,
			Block:    s.block,
		}).Result()
		switch {
		case errors.Is(err, redis.Nil):
			continue
		case errors.Is(err, redis.ErrClosed):
			return nil, ErrClosed
		case err != nil:
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("xreadgroup %s: %w", s.stream, err)
		}
		for _, st := range streams {
			s.buf = append(s.buf, st.Messages...)
		}
	}

	msg := s.buf[0]
	s.buf = s.buf[1:]
	s.pending = msg.ID

	raw, ok := msg.Values[payloadField].(string)
	if !ok {
		return nil, fmt.Errorf("stream entry %s: missing %q field", msg.ID, payloadField)
	}
	return []byte(raw), nil
}

func (s *RedisSubscriber) ack(ctx context.Context) {
	if s.pending == "" {
		return
	}
	if err := s.client.XAck(ctx, s.stream, s.group, s.pending).Err(); err != nil {
		// the entry stays pending and is redelivered to the group
		s.log.Warnw("xack_failed", "stream_id", s.pending, "err", err)
	}
	s.pending = ""
}

func (s *RedisSubscriber) Close() error {
	s.ack(context.Background())
	return s.client.Close()
}

var (
	_ Publisher  = (*RedisPublisher)(nil)
	_ Subscriber = (*RedisSubscriber)(nil)
)
