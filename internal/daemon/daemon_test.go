package daemon

import (
	"context"
	"testing"
)

func TestNewWithConfig(t *testing.T) {
	t.Setenv("HOLDFAST_HOME", t.TempDir())

	cfg := DefaultConfig()
	cfg.Node.ID = "node-test"
	cfg.Escrow.TreasuryOwner = "ops"

	d, err := NewWithConfig(cfg)
	if err != nil {
		t.Fatalf("NewWithConfig: %v", err)
	}
	defer d.Close()

	if d.NodeID != "node-test" {
		t.Errorf("NodeID = %q, want %q", d.NodeID, "node-test")
	}
	if d.Escrow.Owner() != "ops" {
		t.Errorf("Owner = %q, want %q", d.Escrow.Owner(), "ops")
	}

	// The engine is reachable through the wired stack.
	if _, err := d.Escrow.Deposit(context.Background(), "alice", 500); err != nil {
		t.Fatalf("Deposit: %v", err)
	}
	bal, err := d.Escrow.BalanceOf(context.Background(), "alice")
	if err != nil {
		t.Fatalf("BalanceOf: %v", err)
	}
	if bal != 500 {
		t.Errorf("balance = %d, want 500", bal)
	}
}

func TestResolveNodeID_Persists(t *testing.T) {
	t.Setenv("HOLDFAST_HOME", t.TempDir())

	d, err := NewWithConfig(DefaultConfig())
	if err != nil {
		t.Fatalf("NewWithConfig: %v", err)
	}
	first := d.NodeID
	if first == "" {
		t.Fatal("NodeID should be minted when unconfigured")
	}
	d.Close()

	d2, err := NewWithConfig(DefaultConfig())
	if err != nil {
		t.Fatalf("NewWithConfig (reopen): %v", err)
	}
	defer d2.Close()

	if d2.NodeID != first {
		t.Errorf("NodeID = %q, want persisted %q", d2.NodeID, first)
	}
}

func TestRouteLabel(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/", "/"},
		{"/health", "/health"},
		{"/v1/tasks", "/v1/tasks"},
		{"/v1/tasks/3/confirm", "/v1/tasks"},
		{"/v1/accounts/alice/history", "/v1/accounts"},
		{"/api/version", "/api"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := routeLabel(tt.path); got != tt.want {
				t.Errorf("routeLabel(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}
