package auth

import (
	"context"
	"testing"
)

func TestWithIdentityAndFromContext(t *testing.T) {
	id := Identity{
		MemberID:  1,
		Name:      "My Anh",
		Role:      "leader",
		SessionID: 3,
	}

	ctx := WithIdentity(context.Background(), id)
	got, ok := FromContext(ctx)
	if !ok {
		t.Fatal("expected Identity in context")
	}
	if got.MemberID != 1 {
		t.Errorf("MemberID = %d, want 1", got.MemberID)
	}
	if got.Name != "My Anh" {
		t.Errorf("Name = %q, want %q", got.Name, "My Anh")
	}
	if got.Role != "leader" {
		t.Errorf("Role = %q, want %q", got.Role, "leader")
	}
	if got.SessionID != 3 {
		t.Errorf("SessionID = %d, want 3", got.SessionID)
	}
}

func TestFromContextMissing(t *testing.T) {
	_, ok := FromContext(context.Background())
	if ok {
		t.Error("expected false for missing Identity")
	}
}

func TestMemberID(t *testing.T) {
	ctx := WithIdentity(context.Background(), Identity{MemberID: 7})
	if MemberID(ctx) != 7 {
		t.Errorf("MemberID = %d, want 7", MemberID(ctx))
	}
}

func TestMemberIDMissing(t *testing.T) {
	if MemberID(context.Background()) != 0 {
		t.Error("expected 0 for missing context")
	}
}

func TestIsLeader(t *testing.T) {
	ctx := WithIdentity(context.Background(), Identity{Role: "leader"})
	if !IsLeader(ctx) {
		t.Error("expected IsLeader = true for leader role")
	}
}

func TestIsLeaderFalse(t *testing.T) {
	ctx := WithIdentity(context.Background(), Identity{Role: "regular"})
	if IsLeader(ctx) {
		t.Error("expected IsLeader = false for regular role")
	}
}

func TestIsLeaderMissing(t *testing.T) {
	if IsLeader(context.Background()) {
		t.Error("expected IsLeader = false for missing context")
	}
}
