package events

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/equipage/facility-inventory/models"
)

// Event types pushed to connected clients.
const (
	EventLogEntry     = "log_entry"
	EventItemUpdate   = "item_update"
	EventRepairUpdate = "repair_update"
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Hub holds all connected feed clients keyed by role.
type Hub struct {
	clients map[*websocket.Conn]string
	mutex   sync.Mutex
}

var hub = Hub{
	clients: make(map[*websocket.Conn]string),
}

// RegisterClient adds a connection to the set with its role.
func RegisterClient(conn *websocket.Conn, role string) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	hub.clients[conn] = role
}

// UnregisterClient removes and closes a connection.
func UnregisterClient(conn *websocket.Conn) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	delete(hub.clients, conn)
	conn.Close()
}

// BroadcastLogEntry pushes a new audit entry to all clients.
func BroadcastLogEntry(entry models.LogEntry) {
	broadcast(Message{
		Event: EventLogEntry,
		Data:  entry,
	})
}

// BroadcastItemUpdate pushes an item change to all clients.
func BroadcastItemUpdate(item models.Item) {
	broadcast(Message{
		Event: EventItemUpdate,
		Data:  item,
	})
}

// BroadcastRepairUpdate pushes a repair state change to all clients.
func BroadcastRepairUpdate(repair models.RepairLog) {
	broadcast(Message{
		Event: EventRepairUpdate,
		Data:  repair,
	})
}

func broadcast(msg Message) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return
	}

	hub.mutex.Lock()
	defer hub.mutex.Unlock()

	for conn := range hub.clients {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			delete(hub.clients, conn)
			conn.Close()
		}
	}
}
