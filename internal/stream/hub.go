package stream

import (
	"context"
	"log"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Hub fans freshly published posts out to live subscribers. Subscribers are
// keyed by author username; redis pub/sub carries events across instances.
type Hub struct {
	redis   *redis.Client
	clients map[string]map[*Client]struct{}
	mu      sync.RWMutex
}

type Client struct {
	Author string
	Send   chan []byte
}

func NewHub(redisClient *redis.Client) *Hub {
	h := &Hub{
		redis:   redisClient,
		clients: map[string]map[*Client]struct{}{},
	}

	if redisClient != nil {
		go h.subscribeRedis()
	}
	return h
}

func (h *Hub) Register(author string) *Client {
	client := &Client{
		Author: author,
		Send:   make(chan []byte, 64),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[author] == nil {
		h.clients[author] = map[*Client]struct{}{}
	}
	h.clients[author][client] = struct{}{}
	return client
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if authorClients, ok := h.clients[client.Author]; ok {
		delete(authorClients, client)
		if len(authorClients) == 0 {
			delete(h.clients, client.Author)
		}
	}
	close(client.Send)
}

// Broadcast publishes through redis when it is configured so every instance,
// this one included, delivers via its subscription. Without redis the event
// goes straight to local subscribers.
func (h *Hub) Broadcast(author string, payload []byte) {
	if h.redis != nil {
		err := h.redis.Publish(context.Background(), redisChannel(author), payload).Err()
		if err != nil {
			log.Printf("redis publish error: %v", err)
		}
		return
	}
	h.deliver(author, payload)
}

// deliver holds the read lock for the whole send loop: Unregister closes
// Send under the write lock, so a send can never race the close.
func (h *Hub) deliver(author string, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients[author] {
		select {
		case client.Send <- payload:
		default:
		}
	}
}

func (h *Hub) subscribeRedis() {
	ctx := context.Background()
	pubsub := h.redis.PSubscribe(ctx, "authors:*:posts")
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		h.deliver(authorFromChannel(msg.Channel), []byte(msg.Payload))
	}
}

func redisChannel(author string) string {
	return "authors:" + author + ":posts"
}

func authorFromChannel(ch string) string {
	// authors:{username}:posts
	const prefix = "authors:"
	const suffix = ":posts"
	if len(ch) <= len(prefix)+len(suffix) {
		return ""
	}
	return ch[len(prefix) : len(ch)-len(suffix)]
}
