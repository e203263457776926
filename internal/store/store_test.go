package store

import (
	"net"
	"path/filepath"
	"testing"
	"time"
)

func openTest(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestAddAndListBans(t *testing.T) {
	s := openTest(t)
	if _, err := s.AddBan("203.0.113.5", 32, "aimbot", nil); err != nil {
		t.Fatalf("AddBan: %v", err)
	}
	bans, err := s.ListBans()
	if err != nil {
		t.Fatalf("ListBans: %v", err)
	}
	if len(bans) != 1 || bans[0].Address != "203.0.113.5" {
		t.Fatalf("got %+v", bans)
	}
}

func TestIsBannedMatchesSubnet(t *testing.T) {
	s := openTest(t)
	if _, err := s.AddBan("203.0.113.0", 24, "subnet ban", nil); err != nil {
		t.Fatalf("AddBan: %v", err)
	}
	b, err := s.IsBanned(net.ParseIP("203.0.113.42"), time.Now())
	if err != nil {
		t.Fatalf("IsBanned: %v", err)
	}
	if b == nil {
		t.Fatalf("expected a match")
	}
}

func TestIsBannedIgnoresExpired(t *testing.T) {
	s := openTest(t)
	past := time.Now().Add(-time.Hour)
	if _, err := s.AddBan("203.0.113.5", 32, "expired", &past); err != nil {
		t.Fatalf("AddBan: %v", err)
	}
	b, err := s.IsBanned(net.ParseIP("203.0.113.5"), time.Now())
	if err != nil {
		t.Fatalf("IsBanned: %v", err)
	}
	if b != nil {
		t.Fatalf("expected no match for an expired ban, got %+v", b)
	}
}

func TestRemoveBan(t *testing.T) {
	s := openTest(t)
	id, err := s.AddBan("203.0.113.5", 32, "temp", nil)
	if err != nil {
		t.Fatalf("AddBan: %v", err)
	}
	if err := s.RemoveBan(id); err != nil {
		t.Fatalf("RemoveBan: %v", err)
	}
	bans, err := s.ListBans()
	if err != nil {
		t.Fatalf("ListBans: %v", err)
	}
	if len(bans) != 0 {
		t.Fatalf("expected no bans after removal, got %+v", bans)
	}
}

func TestExceptionOverridesQuery(t *testing.T) {
	s := openTest(t)
	if err := s.AddException("198.51.100.9"); err != nil {
		t.Fatalf("AddException: %v", err)
	}
	ok, err := s.IsException("198.51.100.9")
	if err != nil {
		t.Fatalf("IsException: %v", err)
	}
	if !ok {
		t.Fatalf("expected exception to be recorded")
	}
	ok, err = s.IsException("198.51.100.10")
	if err != nil {
		t.Fatalf("IsException: %v", err)
	}
	if ok {
		t.Fatalf("expected non-exception address to report false")
	}
	if _, err := s.AddBan("198.51.100.0", 24, "subnet ban", nil); err != nil {
		t.Fatalf("AddBan: %v", err)
	}
	b, err := s.IsBanned(net.ParseIP("198.51.100.9"), time.Now())
	if err != nil {
		t.Fatalf("IsBanned: %v", err)
	}
	if b != nil {
		t.Fatalf("expected the excepted address to escape the subnet ban, got %+v", b)
	}
}
