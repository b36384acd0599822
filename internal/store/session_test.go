package store

import (
	"testing"
	"time"

	"github.com/bantest04/Manager-KPI2026/internal/model"
)

func TestSessionCreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	ms := NewMemberStore(db)
	ss := NewSessionStore(db)

	m, err := ms.Create("Vu", "#3b82f6", model.RoleRegular)
	if err != nil {
		t.Fatalf("create member: %v", err)
	}

	sess, err := ss.Create(m.ID)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if len(sess.Token) != 64 {
		t.Errorf("token length = %d, want 64 hex chars", len(sess.Token))
	}
	if !sess.ExpiresAt.After(time.Now()) {
		t.Errorf("ExpiresAt = %v, want in the future", sess.ExpiresAt)
	}

	got, err := ss.GetByToken(sess.Token)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if got == nil || got.MemberID != m.ID {
		t.Errorf("GetByToken = %+v, want session for member %d", got, m.ID)
	}
}

func TestSessionGetMissingToken(t *testing.T) {
	ss := NewSessionStore(setupTestDB(t))

	got, err := ss.GetByToken("nope")
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if got != nil {
		t.Errorf("GetByToken for unknown token = %+v, want nil", got)
	}
}

func TestSessionDelete(t *testing.T) {
	db := setupTestDB(t)
	ms := NewMemberStore(db)
	ss := NewSessionStore(db)

	m, err := ms.Create("Vu", "#3b82f6", model.RoleRegular)
	if err != nil {
		t.Fatalf("create member: %v", err)
	}
	sess, err := ss.Create(m.ID)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	if err := ss.Delete(sess.ID); err != nil {
		t.Fatalf("delete session: %v", err)
	}

	got, err := ss.GetByToken(sess.Token)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if got != nil {
		t.Errorf("GetByToken after delete = %+v, want nil", got)
	}
}

func TestSessionDeleteByMemberID(t *testing.T) {
	db := setupTestDB(t)
	ms := NewMemberStore(db)
	ss := NewSessionStore(db)

	m, err := ms.Create("Vu", "#3b82f6", model.RoleRegular)
	if err != nil {
		t.Fatalf("create member: %v", err)
	}

	first, err := ss.Create(m.ID)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	second, err := ss.Create(m.ID)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	if err := ss.DeleteByMemberID(m.ID); err != nil {
		t.Fatalf("delete sessions by member: %v", err)
	}

	for _, token := range []string{first.Token, second.Token} {
		got, err := ss.GetByToken(token)
		if err != nil {
			t.Fatalf("get session: %v", err)
		}
		if got != nil {
			t.Errorf("session %q still present after DeleteByMemberID", token)
		}
	}
}

func TestSessionDeleteExpired(t *testing.T) {
	db := setupTestDB(t)
	ms := NewMemberStore(db)
	ss := NewSessionStore(db)

	m, err := ms.Create("Vu", "#3b82f6", model.RoleRegular)
	if err != nil {
		t.Fatalf("create member: %v", err)
	}
	sess, err := ss.Create(m.ID)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	// Force the session into the past.
	past := time.Now().UTC().Add(-time.Hour)
	if _, err := db.Exec(`UPDATE sessions SET expires_at = ? WHERE id = ?`, past, sess.ID); err != nil {
		t.Fatalf("expire session: %v", err)
	}

	got, err := ss.GetByToken(sess.Token)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if got != nil {
		t.Errorf("GetByToken for expired session = %+v, want nil", got)
	}

	count, err := ss.DeleteExpired()
	if err != nil {
		t.Fatalf("delete expired: %v", err)
	}
	if count != 1 {
		t.Errorf("DeleteExpired count = %d, want 1", count)
	}
}
