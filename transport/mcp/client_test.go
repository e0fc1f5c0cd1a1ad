package mcp

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/wricardo/grid-client/game/session"
	"github.com/wricardo/grid-client/transport/rest"
)

// gameServer is a minimal stand-in for the game server's plain text API
type gameServer struct {
	mu      sync.Mutex
	players map[string]bool
	updates int
	moves   []string
}

func newGameServer(t *testing.T) *httptest.Server {
	t.Helper()
	g := &gameServer{players: map[string]bool{}}
	mux := http.NewServeMux()
	mux.HandleFunc("/add_player", func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		g.mu.Lock()
		g.players[id] = true
		g.mu.Unlock()
		fmt.Fprintf(w, "%q", id)
	})
	mux.HandleFunc("/move_player", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		g.mu.Lock()
		known := g.players[q.Get("player_uuid")]
		g.moves = append(g.moves, q.Get("x")+","+q.Get("y"))
		g.mu.Unlock()
		if !known {
			http.Error(w, "unknown player", http.StatusNotFound)
			return
		}
		fmt.Fprintf(w, "moved %s,%s", q.Get("x"), q.Get("y"))
	})
	mux.HandleFunc("/update", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		g.mu.Lock()
		g.updates++
		g.mu.Unlock()
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/current_map", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("#####\n#@..#\n#####"))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(t *testing.T) *Client {
	t.Helper()
	srv := newGameServer(t)
	api := rest.NewClient(srv.URL, 5*time.Second, nil)
	return NewClient(session.NewPanel(api, nil), "test")
}

func call(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), name string, args map[string]interface{}) (string, bool) {
	t.Helper()
	if args == nil {
		args = map[string]interface{}{}
	}
	request := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}

	result, err := handler(context.Background(), request)
	if err != nil {
		t.Fatalf("%s failed: %v", name, err)
	}
	if result == nil || len(result.Content) == 0 {
		t.Fatalf("%s returned no content", name)
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("%s: expected text content in result", name)
	}
	return text.Text, result.IsError
}

func TestNewClient(t *testing.T) {
	client := newTestClient(t)

	if client.GetMCPServer() == nil {
		t.Error("Expected MCP server to be initialized")
	}
	if client.panel == nil {
		t.Error("Expected panel to be set")
	}
}

func TestMoveBeforeAddPlayer(t *testing.T) {
	client := newTestClient(t)

	text, isErr := call(t, client.handleMovePlayer, "move_player", map[string]interface{}{"direction": "up"})
	if !isErr {
		t.Error("Expected an error result")
	}
	if text != "Add a player first!" {
		t.Errorf("Expected refusal text, got %q", text)
	}
}

func TestToolFlow(t *testing.T) {
	client := newTestClient(t)

	text, isErr := call(t, client.handleAddPlayer, "add_player", nil)
	if isErr || !strings.HasPrefix(text, "Player added with ID: ") {
		t.Fatalf("Unexpected add_player result %q", text)
	}
	id := strings.TrimPrefix(text, "Player added with ID: ")
	if _, err := uuid.Parse(id); err != nil {
		t.Errorf("Expected a clean uuid, got %q: %v", id, err)
	}

	text, isErr = call(t, client.handleMovePlayer, "move_player", map[string]interface{}{"direction": "right"})
	if isErr {
		t.Fatalf("move_player failed: %s", text)
	}
	for _, want := range []string{"Player moved to (1, 0)", "[right]", "Server: moved 1,0"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in %q", want, text)
		}
	}

	text, isErr = call(t, client.handleUpdateWorld, "update_world", nil)
	if isErr || text != "World updated!" {
		t.Errorf("Unexpected update_world result %q", text)
	}

	text, _ = call(t, client.handleCurrentMap, "current_map", nil)
	if !strings.Contains(text, "#@..#") {
		t.Errorf("Expected map text, got %q", text)
	}

	text, _ = call(t, client.handlePlayerState, "player_state", nil)
	for _, want := range []string{"Player: " + id, "Last move: moved 1,0", "#@..#"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in state:\n%s", want, text)
		}
	}
}

func TestMoveInvalidDirection(t *testing.T) {
	client := newTestClient(t)
	call(t, client.handleAddPlayer, "add_player", nil)

	tests := []map[string]interface{}{
		{"direction": "north"},
		{"direction": ""},
		{},
	}
	for _, args := range tests {
		text, isErr := call(t, client.handleMovePlayer, "move_player", args)
		if !isErr || !strings.Contains(text, "invalid direction") {
			t.Errorf("Expected invalid direction error for %v, got %q", args, text)
		}
	}
}

func TestServerErrorsBecomeToolErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(session.NewPanel(rest.NewClient(srv.URL, time.Second, nil), nil), "test")

	for name, handler := range map[string]func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error){
		"add_player":   client.handleAddPlayer,
		"update_world": client.handleUpdateWorld,
		"current_map":  client.handleCurrentMap,
	} {
		text, isErr := call(t, handler, name, nil)
		if !isErr {
			t.Errorf("%s: expected error result, got %q", name, text)
		}
		if !strings.Contains(text, "boom") {
			t.Errorf("%s: expected server body in error, got %q", name, text)
		}
	}
}

func TestFormatView(t *testing.T) {
	client := newTestClient(t)
	text := formatView(client.panel.View())

	if !strings.Contains(text, "call add_player first") {
		t.Errorf("Expected hint for missing player, got:\n%s", text)
	}
	if !strings.Contains(text, "not fetched yet") {
		t.Errorf("Expected hint for missing map, got:\n%s", text)
	}
}
