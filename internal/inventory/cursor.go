package inventory

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tilestock/tilestock/internal/model"
)

// Cursor is an opaque handle to a record's position in the descending
// (created_at, id) sort order. The id component is the deterministic
// tiebreak for records sharing a timestamp.
type Cursor struct {
	CreatedAt time.Time
	ID        int64
}

// CursorOf returns the cursor for a record.
func CursorOf(r model.Record) Cursor {
	return Cursor{CreatedAt: r.CreatedAt, ID: r.ID}
}

// Token encodes the cursor as an opaque URL-safe string.
func (c Cursor) Token() string {
	raw := fmt.Sprintf("%d.%d", c.CreatedAt.UnixNano(), c.ID)
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// ParseToken decodes a cursor token produced by Token.
func ParseToken(token string) (Cursor, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, fmt.Errorf("decoding cursor: %w", err)
	}

	nanos, id, ok := strings.Cut(string(raw), ".")
	if !ok {
		return Cursor{}, fmt.Errorf("malformed cursor")
	}

	n, err := strconv.ParseInt(nanos, 10, 64)
	if err != nil {
		return Cursor{}, fmt.Errorf("malformed cursor timestamp: %w", err)
	}
	i, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return Cursor{}, fmt.Errorf("malformed cursor id: %w", err)
	}

	return Cursor{CreatedAt: time.Unix(0, n).UTC(), ID: i}, nil
}
