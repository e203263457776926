package discovery

import (
	"strings"
	"testing"
)

func TestResolveInstanceNameKeepsExplicitValue(t *testing.T) {
	if got := resolveInstanceName("myserver"); got != "myserver" {
		t.Fatalf("got %q want myserver", got)
	}
}

func TestResolveInstanceNameFallsBackToHostname(t *testing.T) {
	got := resolveInstanceName("")
	if !strings.HasPrefix(got, "arenacore-") {
		t.Fatalf("expected a hostname-derived fallback, got %q", got)
	}
}

func TestTXTRecordsCarryMapAndGametype(t *testing.T) {
	recs := txtRecords("q3dm17", "ctf")
	if len(recs) != 2 || recs[0] != "map=q3dm17" || recs[1] != "gametype=ctf" {
		t.Fatalf("got %v", recs)
	}
}
