package http

import (
	"encoding/json"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/nats-io/nats.go"

	natsadapter "github.com/mabteam/poimap/internal/adapters/nats"
	"github.com/mabteam/poimap/internal/pkg/metrics"
)

// wsMessage is sent from client to subscribe/unsubscribe to change feeds.
type wsMessage struct {
	Action  string `json:"action"`  // "subscribe" | "unsubscribe"
	Channel string `json:"channel"` // "added" | "deleted" | "cleared" | "all"
}

// channelSubjects maps websocket channels to NATS subjects.
var channelSubjects = map[string]string{
	"added":   natsadapter.SubjectAdded,
	"deleted": natsadapter.SubjectDeleted,
	"cleared": natsadapter.SubjectCleared,
	"all":     natsadapter.SubjectAll,
}

// subscription is the part of *nats.Subscription the feed set needs.
type subscription interface {
	Unsubscribe() error
}

// feedSubscriptions tracks the channels one client listens on. "all" and the
// narrower channels exclude each other so every event is relayed once.
type feedSubscriptions struct {
	subscribe func(subject string) (subscription, error)
	active    map[string]subscription
}

func newFeedSubscriptions(subscribe func(subject string) (subscription, error)) *feedSubscriptions {
	return &feedSubscriptions{subscribe: subscribe, active: make(map[string]subscription)}
}

func (f *feedSubscriptions) has(channel string) bool {
	_, ok := f.active[channel]
	return ok
}

// add subscribes to channel and drops the channels it overlaps with. It
// returns the dropped channels. On error the set is unchanged.
func (f *feedSubscriptions) add(channel string) ([]string, error) {
	sub, err := f.subscribe(channelSubjects[channel])
	if err != nil {
		return nil, err
	}

	var replaced []string
	for ch, s := range f.active {
		if channel == "all" || ch == "all" {
			_ = s.Unsubscribe()
			delete(f.active, ch)
			replaced = append(replaced, ch)
		}
	}
	sort.Strings(replaced)
	f.active[channel] = sub
	return replaced, nil
}

func (f *feedSubscriptions) remove(channel string) bool {
	s, ok := f.active[channel]
	if !ok {
		return false
	}
	_ = s.Unsubscribe()
	delete(f.active, channel)
	return true
}

func (f *feedSubscriptions) close() {
	for ch := range f.active {
		f.remove(ch)
	}
}

// WebSocketHandler relays POI change events to connected clients so they can
// recluster when the point set changes. Every client starts on the "all"
// channel. Subscribing to a single channel replaces "all", and subscribing
// to "all" replaces the single channels.
func WebSocketHandler(nc *nats.Conn) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()

		log := slog.With("remote", c.RemoteAddr().String())
		log.Info("ws client connected")

		if nc == nil {
			_ = c.WriteJSON(map[string]string{"error": "change feed unavailable"})
			return
		}

		var mu sync.Mutex

		writeJSON := func(v interface{}) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(websocket.TextMessage, data)
		}
		relay := func(msg *nats.Msg) {
			_ = writeJSON(json.RawMessage(msg.Data))
		}

		feeds := newFeedSubscriptions(func(subject string) (subscription, error) {
			return nc.Subscribe(subject, relay)
		})
		defer feeds.close()

		// Default feed
		if _, err := feeds.add("all"); err != nil {
			log.Error("ws default subscribe", "error", err)
			return
		}

		done := make(chan struct{})
		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					mu.Lock()
					err := c.WriteMessage(websocket.PingMessage, nil)
					mu.Unlock()
					if err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				break
			}

			var m wsMessage
			if err := json.Unmarshal(msg, &m); err != nil {
				_ = writeJSON(map[string]string{"error": "invalid JSON"})
				continue
			}

			channel := m.Channel
			if channel == "" {
				channel = "all"
			}
			if _, ok := channelSubjects[channel]; !ok {
				_ = writeJSON(map[string]string{"error": "unknown channel: " + channel})
				continue
			}

			switch m.Action {
			case "subscribe":
				if feeds.has(channel) {
					_ = writeJSON(map[string]string{"status": "already subscribed", "channel": channel})
					continue
				}
				replaced, err := feeds.add(channel)
				if err != nil {
					_ = writeJSON(map[string]string{"error": "subscribe failed: " + err.Error()})
					continue
				}
				reply := map[string]string{"status": "subscribed", "channel": channel}
				if len(replaced) > 0 {
					reply["replaced"] = strings.Join(replaced, ",")
				}
				_ = writeJSON(reply)

			case "unsubscribe":
				if !feeds.remove(channel) {
					_ = writeJSON(map[string]string{"error": "not subscribed to " + channel})
					continue
				}
				_ = writeJSON(map[string]string{"status": "unsubscribed", "channel": channel})

			default:
				_ = writeJSON(map[string]string{"error": "unknown action: " + m.Action})
			}
		}

		close(done)
		log.Info("ws client disconnected")
	}
}
