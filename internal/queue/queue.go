// Package queue carries meal-update change events from the API to the
// headcount worker.
package queue

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// MealUpdate is the change-feed payload: a flag changed for this date.
type MealUpdate struct {
	UserID   string `json:"user_id"`
	Date     string `json:"date"`
	MealType string `json:"meal_type"`
	Status   bool   `json:"status"`
}

// Message is one queue entry.
type Message struct {
	Type string
	Body []byte
}

// NewMealUpdate builds a meal_update message.
func NewMealUpdate(u MealUpdate) (Message, error) {
	body, err := json.Marshal(u)
	if err != nil {
		return Message{}, err
	}
	return Message{Type: "meal_update", Body: body}, nil
}

// Decode parses a meal_update body.
func (m Message) Decode() (MealUpdate, error) {
	var u MealUpdate
	err := json.Unmarshal(m.Body, &u)
	return u, err
}

// Queue is the abstraction over the memory and redis backends.
type Queue interface {
	Publish(ctx context.Context, msg Message) error
	Consume(ctx context.Context) (<-chan Message, error)
}

// InMemory is a bounded channel-backed queue for single-process installs and
// tests.
type InMemory struct {
	ch chan Message
}

// NewInMemory creates a bounded in-memory queue.
func NewInMemory(size int) *InMemory {
	return &InMemory{ch: make(chan Message, size)}
}

// Publish enqueues a message.
func (q *InMemory) Publish(ctx context.Context, msg Message) error {
	select {
	case q.ch <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Consume returns a channel for the worker.
func (q *InMemory) Consume(ctx context.Context) (<-chan Message, error) {
	out := make(chan Message)
	go func() {
		defer close(out)
		for {
			select {
			case msg := <-q.ch:
				select {
				case out <- msg:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// RedisQueue is a redis list-backed queue using LPUSH/BRPOP.
type RedisQueue struct {
	client *redis.Client
	key    string
}

// NewRedisQueue builds a queue on the given list key.
func NewRedisQueue(client *redis.Client, key string) *RedisQueue {
	if key == "" {
		key = "mealtrack:updates"
	}
	return &RedisQueue{client: client, key: key}
}

// Publish enqueues a message.
func (q *RedisQueue) Publish(ctx context.Context, msg Message) error {
	return q.client.LPush(ctx, q.key, frame(msg)).Err()
}

// Consume streams messages until ctx is canceled.
func (q *RedisQueue) Consume(ctx context.Context) (<-chan Message, error) {
	out := make(chan Message)
	go func() {
		defer close(out)
		for {
			res, err := q.client.BRPop(ctx, 5*time.Second, q.key).Result()
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				continue
			}
			if len(res) == 2 {
				out <- unframe(res[1])
			}
		}
	}()
	return out, nil
}

// frame stores a message as "type|body" in the redis list.
func frame(msg Message) string {
	return msg.Type + "|" + string(msg.Body)
}

func unframe(s string) Message {
	if i := strings.IndexByte(s, '|'); i >= 0 {
		return Message{Type: s[:i], Body: []byte(s[i+1:])}
	}
	return Message{Body: []byte(s)}
}
