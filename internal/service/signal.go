package service

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/attestia/notary"
	"github.com/attestia/notary/internal/domain"
)

type SignalService struct {
	rdb *redis.Client
}

func NewSignalService(redisClient *redis.Client) *SignalService {
	return &SignalService{
		rdb: redisClient,
	}
}

func (s *SignalService) Publish(ctx context.Context, event notary.Event) error {

	jsonstr, err := json.Marshal(event)
	if err != nil {
		return err
	}

	err = s.rdb.Publish(ctx, domain.EventChannel, jsonstr).Err()
	if err != nil {
		return err
	}

	return nil
}

// Realtime forwards events from the signal channel into output until ctx is
// done. Document type filters arriving on input narrow the stream; an empty
// filter passes everything.
func (s *SignalService) Realtime(ctx context.Context, input chan []string, output chan notary.Event) {
	pubsub := s.rdb.Subscribe(ctx, domain.EventChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	var filter []string

	for {
		select {
		case <-ctx.Done():
			return
		case types, ok := <-input:
			if !ok {
				return
			}
			filter = types
		case msg, ok := <-ch:
			if !ok {
				return
			}

			var event notary.Event
			err := json.Unmarshal([]byte(msg.Payload), &event)
			if err != nil {
				slog.Error(
					"failed to decode signal event",
					slog.String("error", err.Error()),
					slog.String("module", "signal"),
				)
				continue
			}

			if !matchesFilter(filter, event) {
				continue
			}

			select {
			case output <- event:
			case <-ctx.Done():
				return
			}
		}
	}
}

func matchesFilter(filter []string, event notary.Event) bool {
	if len(filter) == 0 {
		return true
	}
	for _, t := range filter {
		if t == string(event.DocumentType) {
			return true
		}
	}
	return false
}
