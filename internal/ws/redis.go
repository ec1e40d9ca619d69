package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/playmatatu/poolsim/internal/game"
	"github.com/playmatatu/poolsim/internal/table"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Publisher is the slice of the Redis client the frame publisher needs.
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// FramePublisher relays session updates to a Redis channel so peers and
// recorders can follow the table. Only final frames go out unless
// everyTick is set.
type FramePublisher struct {
	rdb       Publisher
	channel   string
	everyTick bool
	log       *zap.Logger
}

func NewFramePublisher(rdb Publisher, channel string, everyTick bool, log *zap.Logger) *FramePublisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &FramePublisher{rdb: rdb, channel: channel, everyTick: everyTick, log: log}
}

// Run publishes updates from session until ctx is done.
func (p *FramePublisher) Run(ctx context.Context, session *table.Session) error {
	updates, cancel := session.Subscribe(256)
	defer cancel()

	p.log.Info("frame publisher started", zap.String("channel", p.channel), zap.Bool("every_tick", p.everyTick))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case u, ok := <-updates:
			if !ok {
				return nil
			}
			if err := p.Publish(ctx, u); err != nil {
				p.log.Warn("publish frame", zap.Uint64("tick", u.Frame.Tick), zap.Error(err))
			}
		}
	}
}

// Publish sends one update if it passes the publisher's filter.
func (p *FramePublisher) Publish(ctx context.Context, u table.Update) error {
	if !u.Final && !p.everyTick {
		return nil
	}
	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("marshal update: %w", err)
	}
	return p.rdb.Publish(ctx, p.channel, data).Err()
}

// SyncMessage is an authoritative table state pushed by a peer.
type SyncMessage struct {
	Balls []game.Record `json:"balls"`
}

var ErrEmptySync = errors.New("sync message carries no balls")

// ApplySync decodes payload and applies it to session.
func ApplySync(session *table.Session, payload []byte) error {
	var msg SyncMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return fmt.Errorf("decode sync message: %w", err)
	}
	if len(msg.Balls) == 0 {
		return ErrEmptySync
	}
	return session.Sync(msg.Balls)
}

// RunSyncSubscriber applies sync messages from channel until ctx is done.
func RunSyncSubscriber(ctx context.Context, rdb *redis.Client, channel string, session *table.Session, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	pubsub := rdb.Subscribe(ctx, channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", channel, err)
	}
	log.Info("sync subscriber started", zap.String("channel", channel))

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			if err := ApplySync(session, []byte(msg.Payload)); err != nil {
				log.Warn("sync message rejected", zap.Error(err))
			}
		}
	}
}
