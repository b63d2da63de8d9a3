// Package graph serves a browser view of the note graph. An embedded
// page renders notes and the links between them on a canvas and stays
// current through a websocket feed.
package graph

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("markpath.graph")

// Node is one note, or a link target no indexed note covers.
type Node struct {
	ID      int    `json:"id"`
	Label   string `json:"label"`
	Missing bool   `json:"missing,omitempty"`
}

// Edge is a directed link between two nodes.
type Edge struct {
	Source int `json:"source"`
	Target int `json:"target"`
}

// Data is a complete snapshot of the graph.
type Data struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// message is the envelope pushed to browsers. Op is "init" on connect
// and "refresh" when the graph changes.
type message struct {
	Op    string `json:"op"`
	Graph *Data  `json:"graph"`
}

//go:embed static
var staticFiles embed.FS

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// View is a running graph server holding the latest snapshot and the
// set of connected browsers.
type View struct {
	mu       sync.Mutex
	data     Data
	clients  map[*websocket.Conn]bool
	listener net.Listener
}

func New() *View {
	return &View{clients: map[*websocket.Conn]bool{}}
}

// Start begins serving on addr (a ":0" port picks a free one) and
// returns the URL of the page.
func (v *View) Start(addr string) (string, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return "", fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	v.listener = listener

	mux := http.NewServeMux()
	mux.Handle("/", http.FileServer(http.FS(staticFiles)))
	mux.HandleFunc("/ws", v.serveWS)

	go func() {
		if err := http.Serve(listener, mux); err != nil && !errors.Is(err, net.ErrClosed) {
			log.Errorf("graph server stopped: %s", err)
		}
	}()

	return "http://" + listener.Addr().String() + "/static/", nil
}

// Close stops the server and disconnects every client.
func (v *View) Close() error {
	v.mu.Lock()
	for conn := range v.clients {
		conn.Close()
	}
	v.clients = map[*websocket.Conn]bool{}
	v.mu.Unlock()

	if v.listener == nil {
		return nil
	}
	return v.listener.Close()
}

// Publish replaces the snapshot and pushes it to every connected
// client.
func (v *View) Publish(data Data) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.data = data
	v.broadcast(message{Op: "refresh", Graph: &data})
}

// broadcast writes msg to all clients, dropping the ones that fail.
// Callers hold mu, which also serializes writes per connection.
func (v *View) broadcast(msg message) {
	payload, err := json.Marshal(msg)
	if err != nil {
		log.Errorf("failed to marshal graph message: %s", err)
		return
	}
	for conn := range v.clients {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			log.Errorf("failed to write to graph client: %s", err)
			conn.Close()
			delete(v.clients, conn)
		}
	}
}

func (v *View) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Errorf("failed to upgrade graph client: %s", err)
		return
	}

	v.mu.Lock()
	v.clients[conn] = true
	snapshot := v.data
	payload, err := json.Marshal(message{Op: "init", Graph: &snapshot})
	if err == nil {
		err = conn.WriteMessage(websocket.TextMessage, payload)
	}
	v.mu.Unlock()

	if err != nil {
		log.Errorf("failed to send initial graph: %s", err)
	}

	// Reads only detect the browser going away.
	for {
		if _, _, err := conn.NextReader(); err != nil {
			break
		}
	}

	v.mu.Lock()
	delete(v.clients, conn)
	v.mu.Unlock()
	conn.Close()
}
