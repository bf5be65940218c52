// Command inspect prints the records of a dated file as JSON lines and can
// replay them onto a transport.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wmjtyd/libstock/params"
	"github.com/wmjtyd/libstock/pkg/data"
	"github.com/wmjtyd/libstock/pkg/file"
	"github.com/wmjtyd/libstock/pkg/message"
	"github.com/wmjtyd/libstock/pkg/util"
)

type line struct {
	Kind    string `json:"kind"`
	Message any    `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

func main() {
	var (
		dataDir = flag.String("dir", "data", "data directory")
		name    = flag.String("name", "", "file name without date, e.g. binance_spot_bbo_BTCUSDT")
		day     = flag.Int("day", 0, "days before today (0 = today)")
		path    = flag.String("path", "", "read this file instead of -dir/-name/-day")
		replay  = flag.Bool("replay", false, "publish each record on the configured transport")
		delay   = flag.Duration("delay", 0, "pause between replayed records")
	)
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *dataDir, *name, *day, *path, *replay, *delay); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, dataDir, name string, day int, path string, replay bool, delay time.Duration) error {
	var (
		r   *file.Reader
		err error
	)
	if path != "" {
		r, err = file.OpenPath(path)
	} else {
		r, err = file.Open(dataDir, name, day, util.RealClock{})
	}
	if err != nil {
		return err
	}
	defer r.Close()

	var pub message.Publisher
	if replay {
		if pub, err = newPublisher(ctx); err != nil {
			return fmt.Errorf("publisher: %w", err)
		}
		defer pub.Close()
	}

	enc := json.NewEncoder(os.Stdout)
	return r.Each(func(raw []byte) error {
		kind := data.KindOf(raw)
		out := line{Kind: kind.String()}
		if msg, err := data.DecodeAny(kind, raw); err != nil {
			out.Error = err.Error()
		} else {
			out.Message = msg
		}
		if err := enc.Encode(out); err != nil {
			return err
		}

		if pub == nil {
			return ctx.Err()
		}
		if err := pub.Publish(ctx, raw); err != nil {
			return err
		}
		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
			}
		}
		return ctx.Err()
	})
}

// newPublisher reads the transport settings the recorder uses.
func newPublisher(ctx context.Context) (message.Publisher, error) {
	cfg, err := params.LoadFromEnv("")
	if err != nil {
		return nil, err
	}
	t := cfg.Transport

	switch t.Kind {
	case params.TransportRedis:
		return message.NewRedisPublisher(ctx, message.RedisConfig{
			URL:    t.Redis.URL,
			Stream: t.Redis.Stream,
			MaxLen: t.Redis.MaxLen,
		})
	default:
		net, err := message.NewLibp2pNet(ctx, message.Libp2pConfig{
			ListenAddr: "/ip4/0.0.0.0/tcp/0",
			Bootstrap:  t.Libp2p.Bootstrap,
		})
		if err != nil {
			return nil, err
		}
		pub, err := net.Publisher(t.Topic)
		if err != nil {
			net.Close()
			return nil, err
		}
		return &libp2pPublisher{Libp2pPublisher: pub, net: net}, nil
	}
}

type libp2pPublisher struct {
	*message.Libp2pPublisher
	net *message.Libp2pNet
}

func (p *libp2pPublisher) Close() error { return p.net.Close() }
