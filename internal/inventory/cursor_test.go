package inventory

import (
	"testing"
	"time"

	"github.com/tilestock/tilestock/internal/model"
)

func TestCursorTokenRoundTrip(t *testing.T) {
	c := CursorOf(model.Record{
		ID:        42,
		CreatedAt: time.Date(2025, 6, 1, 12, 30, 0, 123456789, time.UTC),
	})

	parsed, err := ParseToken(c.Token())
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if !parsed.CreatedAt.Equal(c.CreatedAt) || parsed.ID != c.ID {
		t.Errorf("round trip mismatch: want %+v got %+v", c, parsed)
	}
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	for _, token := range []string{"", "%%%", "bm90LWEtY3Vyc29y"} {
		if _, err := ParseToken(token); err == nil {
			t.Errorf("expected error for token %q", token)
		}
	}
}
