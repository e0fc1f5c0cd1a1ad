package session

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/wricardo/grid-client/game/intent"
	"github.com/wricardo/grid-client/game/service"
)

func TestPanel_MoveRequiresPlayer(t *testing.T) {
	api := &fakeAPI{identity: "p1"}
	notes := &fakeNotifier{}
	p := NewPanel(api, notes)

	_, err := p.MovePlayer(context.Background(), intent.Up)
	if !errors.Is(err, service.ErrIdentityUnavailable) {
		t.Fatalf("expected ErrIdentityUnavailable, got %v", err)
	}
	if len(api.Calls()) != 0 {
		t.Errorf("expected no requests, got %v", api.Calls())
	}
	if got := notes.Messages(); !reflect.DeepEqual(got, []string{"Add a player first!"}) {
		t.Errorf("unexpected notifications %v", got)
	}
}

func TestPanel_Actions(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{identity: `"abc-123"`, result: "moved", mapText: "#@#"}
	notes := &fakeNotifier{}
	p := NewPanel(api, notes)

	t.Run("add player", func(t *testing.T) {
		id, err := p.AddPlayer(ctx)
		if err != nil {
			t.Fatalf("AddPlayer failed: %v", err)
		}
		if id != "abc-123" || p.View().Identity != "abc-123" {
			t.Errorf("expected sanitized identity, got %q", id)
		}
	})

	t.Run("move player", func(t *testing.T) {
		result, err := p.MovePlayer(ctx, intent.Right)
		if err != nil {
			t.Fatalf("MovePlayer failed: %v", err)
		}
		if result != "moved" || p.View().MoveResult != "moved" {
			t.Errorf("unexpected result %q", result)
		}
	})

	t.Run("update world", func(t *testing.T) {
		if err := p.UpdateWorld(ctx); err != nil {
			t.Fatalf("UpdateWorld failed: %v", err)
		}
	})

	t.Run("fetch current map", func(t *testing.T) {
		m, err := p.FetchCurrentMap(ctx)
		if err != nil {
			t.Fatalf("FetchCurrentMap failed: %v", err)
		}
		if m != "#@#" || p.View().Map != "#@#" {
			t.Errorf("unexpected map %q", m)
		}
	})

	wantCalls := []string{"add_player", "move_player abc-123 1 0", "update", "current_map"}
	if got := api.Calls(); !reflect.DeepEqual(got, wantCalls) {
		t.Errorf("expected calls %v, got %v", wantCalls, got)
	}
	wantNotes := []string{
		"Player added with ID: abc-123",
		"Player moved to (1, 0)",
		"World updated!",
	}
	if got := notes.Messages(); !reflect.DeepEqual(got, wantNotes) {
		t.Errorf("expected notifications %v, got %v", wantNotes, got)
	}
}

func TestPanel_FailuresLeaveStateUntouched(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{identity: "p1", result: "moved", mapText: "OLD"}
	p := NewPanel(api, nil)

	if _, err := p.AddPlayer(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := p.MovePlayer(ctx, intent.Down); err != nil {
		t.Fatal(err)
	}
	if _, err := p.FetchCurrentMap(ctx); err != nil {
		t.Fatal(err)
	}
	before := p.View()

	api.moveErr = errServerDown
	api.mapErr = errServerDown
	api.updateErr = errServerDown
	api.joinErr = errServerDown

	if _, err := p.MovePlayer(ctx, intent.Down); !errors.Is(err, errServerDown) {
		t.Errorf("expected wrapped server error, got %v", err)
	}
	if _, err := p.FetchCurrentMap(ctx); !errors.Is(err, errServerDown) {
		t.Errorf("expected wrapped server error, got %v", err)
	}
	if err := p.UpdateWorld(ctx); !errors.Is(err, errServerDown) {
		t.Errorf("expected wrapped server error, got %v", err)
	}
	if _, err := p.AddPlayer(ctx); !errors.Is(err, errServerDown) {
		t.Errorf("expected wrapped server error, got %v", err)
	}

	if after := p.View(); after != before {
		t.Errorf("state changed on failure: %+v -> %+v", before, after)
	}
}

func TestPanel_RejectsInvalidMove(t *testing.T) {
	api := &fakeAPI{identity: "p1"}
	p := NewPanel(api, nil)

	_, err := p.MovePlayer(context.Background(), service.MoveIntent{DX: 1, DY: 1})
	if !errors.Is(err, ErrInvalidMove) {
		t.Errorf("expected ErrInvalidMove, got %v", err)
	}
	if len(api.Calls()) != 0 {
		t.Errorf("expected no requests, got %v", api.Calls())
	}
}

func TestPanel_Subscribe(t *testing.T) {
	p := NewPanel(&fakeAPI{identity: "p1"}, nil)

	var versions []uint64
	unsubscribe := p.Subscribe(func(v service.View) {
		versions = append(versions, v.Version)
	})
	p.AddPlayer(context.Background())
	p.UpdateWorld(context.Background())
	unsubscribe()
	p.UpdateWorld(context.Background())

	if !reflect.DeepEqual(versions, []uint64{1, 2}) {
		t.Errorf("expected versions [1 2], got %v", versions)
	}
}
