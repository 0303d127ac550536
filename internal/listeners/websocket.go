package listeners

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/elcruzo/light-sensor-circuit/internal/models"
)

// Rooms disponibles para los clientes WebSocket
const (
	RoomReadings = "readings" // Cada lectura procesada
	RoomAlerts   = "alerts"   // Solo outliers, picos y eventos de energía
)

// WebSocketMessage representa un mensaje enviado a través del WebSocket
type WebSocketMessage struct {
	Type      string      `json:"type"` // "reading", "outlier", "peak", "power_event"
	Timestamp string      `json:"timestamp"`
	DeviceID  string      `json:"device_id"`
	Data      interface{} `json:"data"`
}

// Client representa un cliente WebSocket conectado
type Client struct {
	ID       string
	Conn     *websocket.Conn
	RoomName string
	Send     chan []byte
	Hub      *WebSocketHub
}

// WebSocketHub maneja todas las conexiones WebSocket y las rooms
type WebSocketHub struct {
	Rooms map[string]map[*Client]bool

	Register   chan *Client
	Unregister chan *Client
	Broadcast  chan *BroadcastMessage

	mu sync.RWMutex
}

// BroadcastMessage contiene el mensaje y el nombre de la room objetivo
type BroadcastMessage struct {
	RoomName string
	Message  []byte
}

// Upgrader de HTTP a WebSocket
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// En producción, verificar origen
		return true
	},
}

// NewWebSocketHub crea un nuevo hub de WebSocket
func NewWebSocketHub() *WebSocketHub {
	return &WebSocketHub{
		Rooms:      make(map[string]map[*Client]bool),
		Register:   make(chan *Client, 10),
		Unregister: make(chan *Client, 10),
		Broadcast:  make(chan *BroadcastMessage, 100),
	}
}

// Run inicia el hub de WebSocket (debe ejecutarse en goroutine)
func (h *WebSocketHub) Run() {
	log.Println("🔌 WebSocket Hub iniciado")

	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			if h.Rooms[client.RoomName] == nil {
				h.Rooms[client.RoomName] = make(map[*Client]bool)
				log.Printf("📦 Room creada: %s", client.RoomName)
			}
			h.Rooms[client.RoomName][client] = true
			h.mu.Unlock()
			log.Printf("✅ Cliente %s conectado a room %s", client.ID, client.RoomName)

		case client := <-h.Unregister:
			h.mu.Lock()
			if clients, ok := h.Rooms[client.RoomName]; ok {
				if _, exists := clients[client]; exists {
					delete(clients, client)
					close(client.Send)
					log.Printf("❌ Cliente %s desconectado de room %s (Restantes: %d)",
						client.ID, client.RoomName, len(clients))

					if len(clients) == 0 {
						delete(h.Rooms, client.RoomName)
					}
				}
			}
			h.mu.Unlock()

		case message := <-h.Broadcast:
			h.mu.RLock()
			clients := h.Rooms[message.RoomName]
			h.mu.RUnlock()

			for client := range clients {
				select {
				case client.Send <- message.Message:
				default:
					// Canal lleno, desconectar cliente
					log.Printf("⚠️  Canal lleno para cliente %s, desconectando", client.ID)
					h.Unregister <- client
				}
			}
		}
	}
}

// NotifyReading publica una lectura procesada en la room de lecturas y,
// si trae una anomalía, también en la room de alertas
func (h *WebSocketHub) NotifyReading(record models.ReadingRecord) {
	message := WebSocketMessage{
		Type:      "reading",
		Timestamp: record.Reading.Timestamp.Format(time.RFC3339),
		DeviceID:  record.DeviceID,
		Data:      record,
	}
	h.sendMessageToRoom(RoomReadings, message)

	if record.Analysis.IsOutlier {
		message.Type = "outlier"
		h.sendMessageToRoom(RoomAlerts, message)
	}
	if record.Analysis.IsPeak {
		message.Type = "peak"
		h.sendMessageToRoom(RoomAlerts, message)
	}
}

// NotifyPowerEvent publica una transición de modo de energía en la room
// de alertas
func (h *WebSocketHub) NotifyPowerEvent(deviceID string, mode models.PowerMode, source models.WakeSource) {
	h.sendMessageToRoom(RoomAlerts, WebSocketMessage{
		Type:      "power_event",
		Timestamp: time.Now().Format(time.RFC3339),
		DeviceID:  deviceID,
		Data: gin.H{
			"mode":   mode,
			"source": source,
		},
	})
}

// NotifyDeviceStatus publica una desconexión o reconexión de un equipo
// monitoreado en la room de alertas
func (h *WebSocketHub) NotifyDeviceStatus(deviceID string, device models.DeviceStatus) {
	messageType := "device_reconnected"
	if device.IsDisconnected {
		messageType = "device_disconnected"
	}

	h.sendMessageToRoom(RoomAlerts, WebSocketMessage{
		Type:      messageType,
		Timestamp: time.Now().Format(time.RFC3339),
		DeviceID:  deviceID,
		Data:      device,
	})
}

// sendMessageToRoom envía un mensaje a todos los clientes de una room
func (h *WebSocketHub) sendMessageToRoom(roomName string, message WebSocketMessage) {
	h.mu.RLock()
	clientCount := len(h.Rooms[roomName])
	h.mu.RUnlock()

	if clientCount == 0 {
		return
	}

	jsonData, err := json.Marshal(message)
	if err != nil {
		log.Printf("❌ Error al serializar mensaje WebSocket: %v", err)
		return
	}

	h.Broadcast <- &BroadcastMessage{
		RoomName: roomName,
		Message:  jsonData,
	}
}

// GetRoomStats retorna estadísticas de las rooms
func (h *WebSocketHub) GetRoomStats() map[string]int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	stats := make(map[string]int)
	for roomName, clients := range h.Rooms {
		stats[roomName] = len(clients)
	}
	return stats
}

// readPump lee mensajes del cliente WebSocket
func (c *Client) readPump() {
	defer func() {
		c.Hub.Unregister <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("⚠️  Error de lectura WebSocket: %v", err)
			}
			break
		}

		log.Printf("📨 Mensaje recibido de cliente %s: %s", c.ID, string(message))
	}
}

// writePump escribe mensajes al cliente WebSocket
func (c *Client) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				// Hub cerró el canal
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Agregar mensajes en cola al frame actual
			n := len(c.Send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.Send)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// HandleWebSocketConnection maneja una nueva conexión WebSocket
func HandleWebSocketConnection(hub *WebSocketHub) gin.HandlerFunc {
	return func(c *gin.Context) {
		roomName := c.Param("room")
		if roomName != RoomReadings && roomName != RoomAlerts {
			BadRequest(c, "Room inválida", gin.H{
				"room":      roomName,
				"available": []string{RoomReadings, RoomAlerts},
			})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("❌ Error al actualizar a WebSocket: %v", err)
			return
		}

		client := &Client{
			ID:       uuid.New().String(),
			Conn:     conn,
			RoomName: roomName,
			Send:     make(chan []byte, 64),
			Hub:      hub,
		}

		hub.Register <- client

		go client.writePump()
		go client.readPump()
	}
}
