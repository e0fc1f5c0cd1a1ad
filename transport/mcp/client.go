package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/wricardo/grid-client/game/intent"
	"github.com/wricardo/grid-client/game/service"
)

// Panel is the polling client the tools drive
type Panel interface {
	AddPlayer(ctx context.Context) (service.PlayerIdentity, error)
	MovePlayer(ctx context.Context, move service.MoveIntent) (service.MoveResult, error)
	UpdateWorld(ctx context.Context) error
	FetchCurrentMap(ctx context.Context) (service.MapSnapshot, error)
	View() service.View
}

// Client exposes a polling panel as MCP tools
type Client struct {
	panel     Panel
	version   string
	mcpServer *server.MCPServer
}

// NewClient creates an MCP front end for panel
func NewClient(panel Panel, version string) *Client {
	c := &Client{
		panel:   panel,
		version: version,
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Grid Game Client",
		c.version,
		server.WithToolCapabilities(true),
		server.WithInstructions(`Grid Game Client - MCP Interface

Every tool is one request to the game server. The server owns the world;
this client only joins, moves and asks the world to update.

TYPICAL FLOW:
1. add_player - join the game once and keep the returned player id
2. current_map - look at the map (@ is a player, # a wall, . open floor)
3. move_player - step up/down/left/right
4. update_world - let the server advance the world, then current_map again

AVAILABLE TOOLS:
- add_player: Join the game
- move_player: Move one cell (requires a player)
- update_world: Advance the world
- current_map: Fetch the current map text
- player_state: Show the player id, last move result and last map`),
	)

	c.registerTools()
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "add_player",
		Description: "Join the game and remember the server-issued player id",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleAddPlayer)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move_player",
		Description: "Move the player one cell. The server decides whether the move is legal.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"direction": map[string]interface{}{
					"type":        "string",
					"description": "Direction to move",
					"enum":        []string{"up", "down", "left", "right"},
				},
			},
			Required: []string{"direction"},
		},
	}, c.handleMovePlayer)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "update_world",
		Description: "Ask the server to advance the world state",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleUpdateWorld)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "current_map",
		Description: "Fetch the current map as text",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleCurrentMap)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "player_state",
		Description: "Show what this client knows: player id, last move result and last fetched map",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handlePlayerState)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Tool handlers

func (c *Client) handleAddPlayer(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := c.panel.AddPlayer(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Player added with ID: %s", id)), nil
}

func (c *Client) handleMovePlayer(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	direction, _ := args["direction"].(string)

	move, ok := intent.FromDirection(direction)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("invalid direction %q: use up, down, left or right", direction)), nil
	}

	result, err := c.panel.MovePlayer(ctx, move)
	if errors.Is(err, service.ErrIdentityUnavailable) {
		return mcp.NewToolResultError("Add a player first!"), nil
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatMove(move, result)), nil
}

func (c *Client) handleUpdateWorld(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := c.panel.UpdateWorld(ctx); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("World updated!"), nil
}

func (c *Client) handleCurrentMap(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	m, err := c.panel.FetchCurrentMap(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if m == "" {
		return mcp.NewToolResultText("(empty map)"), nil
	}
	return mcp.NewToolResultText(string(m)), nil
}

func (c *Client) handlePlayerState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(formatView(c.panel.View())), nil
}

func formatMove(move service.MoveIntent, result service.MoveResult) string {
	text := fmt.Sprintf("Player moved to %s", move)
	if dir := intent.Direction(move); dir != "" {
		text += fmt.Sprintf(" [%s]", dir)
	}
	if result != "" {
		text += "\nServer: " + string(result)
	}
	return text
}

func formatView(v service.View) string {
	var b strings.Builder

	if v.Identity.IsSet() {
		fmt.Fprintf(&b, "Player: %s\n", v.Identity)
	} else {
		b.WriteString("Player: none (call add_player first)\n")
	}
	if v.MoveResult != "" {
		fmt.Fprintf(&b, "Last move: %s\n", v.MoveResult)
	}
	if v.Notice != "" {
		fmt.Fprintf(&b, "Last notice: %s\n", v.Notice)
	}

	if v.Map == "" {
		b.WriteString("Map: not fetched yet (call current_map)\n")
	} else {
		b.WriteString("Map:\n")
		b.WriteString(string(v.Map))
		if !strings.HasSuffix(string(v.Map), "\n") {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
