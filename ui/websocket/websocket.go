package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	domainMonitor "github.com/AzielCF/az-plant/domains/monitor"
	"github.com/AzielCF/az-plant/domains/plant"
	"github.com/AzielCF/az-plant/infrastructure/valkey"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	valkeylib "github.com/valkey-io/valkey-go"
)

const (
	CodeFetchStatus = "FETCH_STATUS"
	CodeStatus      = "STATUS"
	CodeCycle       = "CYCLE"
)

type client struct{}

type BroadcastMessage struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Result   any    `json:"result"`
	SenderID string `json:"sender_id,omitempty"`
}

var (
	Clients    = make(map[*websocket.Conn]client)
	Register   = make(chan *websocket.Conn)
	Broadcast  = make(chan BroadcastMessage, 16)
	Unregister = make(chan *websocket.Conn)

	clientsMu  sync.Mutex
	hubRunning atomic.Bool

	// hubDone is closed whenever no hub is reading Register and Unregister.
	hubMu   sync.Mutex
	hubDone = closedChan()

	vkClient *valkey.Client
	wsChan   string
	localID  string
)

// SetValkeyClient lets a monitor process and a REST process share broadcasts.
func SetValkeyClient(client *valkey.Client, serverID string) {
	vkClient = client
	localID = serverID
	if client != nil {
		wsChan = client.Key("ws_broadcast")
	}
}

func handleRegister(conn *websocket.Conn) {
	clientsMu.Lock()
	Clients[conn] = client{}
	clientsMu.Unlock()
	logrus.Debug("[WS] Connection registered")
}

func handleUnregister(conn *websocket.Conn) {
	clientsMu.Lock()
	delete(Clients, conn)
	clientsMu.Unlock()
	logrus.Debug("[WS] Connection unregistered")
}

func closedChan() chan struct{} {
	c := make(chan struct{})
	close(c)
	return c
}

func currentHubDone() chan struct{} {
	hubMu.Lock()
	defer hubMu.Unlock()
	return hubDone
}

// register hands conn to the hub, or registers it directly once the hub is gone.
func register(conn *websocket.Conn) {
	select {
	case Register <- conn:
	case <-currentHubDone():
		handleRegister(conn)
	}
}

func unregister(conn *websocket.Conn) {
	select {
	case Unregister <- conn:
	case <-currentHubDone():
		handleUnregister(conn)
	}
}

func broadcastToLocal(message BroadcastMessage) int {
	marshalMessage, err := json.Marshal(message)
	if err != nil {
		logrus.Errorf("[WS] Marshal error: %v", err)
		return 0
	}

	clientsMu.Lock()
	defer clientsMu.Unlock()
	sent := 0
	for conn := range Clients {
		if err := conn.WriteMessage(websocket.TextMessage, marshalMessage); err != nil {
			logrus.Errorf("[WS] Write error: %v", err)
			_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
			_ = conn.Close()
			delete(Clients, conn)
			continue
		}
		sent++
	}
	return sent
}

func publishToValkey(ctx context.Context, message BroadcastMessage) {
	if vkClient == nil {
		return
	}
	message.SenderID = localID

	data, err := json.Marshal(message)
	if err != nil {
		return
	}
	cmd := vkClient.Inner().B().Publish().Channel(wsChan).Message(string(data)).Build()
	if err := vkClient.Inner().Do(ctx, cmd).Error(); err != nil {
		logrus.Errorf("[WS] Failed to publish to Valkey: %v", err)
	}
}

func startValkeySubscriber(ctx context.Context) {
	logrus.Info("[WS] Starting Valkey Pub/Sub subscriber for snapshot events")
	go func() {
		err := vkClient.Inner().Receive(ctx, vkClient.Inner().B().Subscribe().Channel(wsChan).Build(), func(msg valkeylib.PubSubMessage) {
			var broadcastMsg BroadcastMessage
			if err := json.Unmarshal([]byte(msg.Message), &broadcastMsg); err == nil {
				if broadcastMsg.SenderID == localID {
					return
				}
				broadcastToLocal(broadcastMsg)
			}
		})
		if err != nil && ctx.Err() == nil {
			logrus.Errorf("[WS] Valkey subscriber failed: %v", err)
		}
	}()
}

// RunHub serves Register, Unregister and Broadcast until ctx is done.
func RunHub(ctx context.Context) {
	done := make(chan struct{})
	hubMu.Lock()
	hubDone = done
	hubMu.Unlock()
	hubRunning.Store(true)
	defer func() {
		hubRunning.Store(false)
		close(done)
	}()

	if vkClient != nil {
		startValkeySubscriber(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case conn := <-Register:
			handleRegister(conn)
		case conn := <-Unregister:
			handleUnregister(conn)
		case message := <-Broadcast:
			broadcastToLocal(message)
			if vkClient != nil {
				publishToValkey(ctx, message)
			}
		}
	}
}

// Publish never blocks the caller. Without a local hub the message still
// reaches other processes through Valkey.
func Publish(message BroadcastMessage) {
	if !hubRunning.Load() {
		publishToValkey(context.Background(), message)
		return
	}
	select {
	case Broadcast <- message:
	default:
		logrus.Warnf("[WS] Broadcast queue full, dropping %s", message.Code)
	}
}

// PublishCycle is registered as a monitor OnCycle callback.
func PublishCycle(res domainMonitor.CycleResult) {
	Publish(BroadcastMessage{Code: CodeCycle, Message: "New plant snapshot", Result: res})
}

func handleClientMessage(ctx context.Context, state plant.IStateStore, raw []byte) (*BroadcastMessage, error) {
	var messageData BroadcastMessage
	if err := json.Unmarshal(raw, &messageData); err != nil {
		return nil, err
	}
	if messageData.Code != CodeFetchStatus {
		return nil, nil
	}
	st, err := state.Get(ctx)
	if err != nil {
		return nil, err
	}
	return &BroadcastMessage{Code: CodeStatus, Message: "Current plant state", Result: st}, nil
}

func RegisterRoutes(app fiber.Router, state plant.IStateStore) {
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})

	app.Get("/ws", websocket.New(func(conn *websocket.Conn) {
		defer func() {
			unregister(conn)
			_ = conn.Close()
		}()

		register(conn)

		for {
			messageType, message, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					logrus.Println("read error:", err)
				}
				return
			}
			if messageType != websocket.TextMessage {
				logrus.Println("unsupported message type:", messageType)
				continue
			}

			reply, err := handleClientMessage(context.Background(), state, message)
			if err != nil {
				logrus.Println("[WS] bad client message:", err)
				return
			}
			if reply == nil {
				continue
			}
			data, _ := json.Marshal(reply)
			clientsMu.Lock()
			err = conn.WriteMessage(websocket.TextMessage, data)
			clientsMu.Unlock()
			if err != nil {
				return
			}
		}
	}))
}
