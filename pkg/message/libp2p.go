package message

import (
	"context"
	"fmt"
	"sync"

	libp2p "github.com/libp2p/go-libp2p"
	pubsub "github.com/libp2p/go-libp2p-pubsub"
	"github.com/libp2p/go-libp2p/core/host"
	"github.com/libp2p/go-libp2p/core/peer"
	ma "github.com/multiformats/go-multiaddr"
	"go.uber.org/zap"
)

// Libp2pNet is one libp2p host running gossipsub. Publishers and subscribers
// created from it share the host.
type Libp2pNet struct {
	h   host.Host
	ps  *pubsub.PubSub
	log *zap.SugaredLogger

	mu     sync.Mutex
	topics map[string]*pubsub.Topic
}

type Libp2pConfig struct {
	ListenAddr string
	Bootstrap  []string
	Logger     *zap.SugaredLogger
}

func NewLibp2pNet(ctx context.Context, cfg Libp2pConfig) (*Libp2pNet, error) {
	var opts []libp2p.Option
	if cfg.ListenAddr != "" {
		maddr, err := ma.NewMultiaddr(cfg.ListenAddr)
		if err != nil {
			return nil, err
		}
		opts = append(opts, libp2p.ListenAddrs(maddr))
	}
	h, err := libp2p.New(opts...)
	if err != nil {
		return nil, err
	}
	ps, err := pubsub.NewGossipSub(ctx, h)
	if err != nil {
		h.Close()
		return nil, err
	}

	log := cfg.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	n := &Libp2pNet{h: h, ps: ps, log: log, topics: make(map[string]*pubsub.Topic)}

	for _, bs := range cfg.Bootstrap {
		if err := n.Connect(ctx, bs); err != nil {
			log.Warnw("bootstrap_connect_failed", "addr", bs, "err", err)
		}
	}

	log.Infow("libp2p_ready", "peer", h.ID().String(), "listen", cfg.ListenAddr)
	return n, nil
}

// Connect dials a full /p2p/ multiaddr.
func (n *Libp2pNet) Connect(ctx context.Context, addr string) error {
	m, err := ma.NewMultiaddr(addr)
	if err != nil {
		return err
	}
	info, err := peer.AddrInfoFromP2pAddr(m)
	if err != nil {
		return err
	}
	return n.h.Connect(ctx, *info)
}

// Addrs lists the dialable /p2p/ multiaddrs of this host.
func (n *Libp2pNet) Addrs() []string {
	addrs, err := peer.AddrInfoToP2pAddrs(&peer.AddrInfo{ID: n.h.ID(), Addrs: n.h.Addrs()})
	if err != nil {
		return nil
	}
	out := make([]string, len(addrs))
	for i, a := range addrs {
		out[i] = a.String()
	}
	return out
}

func (n *Libp2pNet) Host() host.Host { return n.h }

func (n *Libp2pNet) Close() error { return n.h.Close() }

func (n *Libp2pNet) join(topic string) (*pubsub.Topic, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if t, ok := n.topics[topic]; ok {
		return t, nil
	}
	t, err := n.ps.Join(topic)
	if err != nil {
		return nil, fmt.Errorf("join topic %s: %w", topic, err)
	}
	n.topics[topic] = t
	n.log.Debugw("topic_joined", "topic", topic)
	return t, nil
}

type Libp2pPublisher struct {
	t *pubsub.Topic
}

func (n *Libp2pNet) Publisher(topic string) (*Libp2pPublisher, error) {
	t, err := n.join(topic)
	if err != nil {
		return nil, err
	}
	return &Libp2pPublisher{t: t}, nil
}

func (p *Libp2pPublisher) Publish(ctx context.Context, payload []byte) error {
	return p.t.Publish(ctx, payload)
}

// Close leaves the topic to the host; it is released with Libp2pNet.Close.
func (p *Libp2pPublisher) Close() error { return nil }

// Libp2pSubscriber skips payloads this host published itself.
type Libp2pSubscriber struct {
	self peer.ID
	sub  *pubsub.Subscription
}

func (n *Libp2pNet) Subscriber(topic string) (*Libp2pSubscriber, error) {
	t, err := n.join(topic)
	if err != nil {
		return nil, err
	}
	sub, err := t.Subscribe()
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", topic, err)
	}
	return &Libp2pSubscriber{self: n.h.ID(), sub: sub}, nil
}

func (s *Libp2pSubscriber) Next(ctx context.Context) ([]byte, error) {
	for {
		msg, err := s.sub.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, ErrClosed
		}
		if msg.ReceivedFrom == s.self {
			continue
		}
		return msg.Data, nil
	}
}

func (s *Libp2pSubscriber) Close() error {
	s.sub.Cancel()
	return nil
}

var (
	_ Publisher  = (*Libp2pPublisher)(nil)
	_ Subscriber = (*Libp2pSubscriber)(nil)
)
