package store

import (
	"context"
	"testing"

	"github.com/tilestock/tilestock/internal/db"
	"github.com/tilestock/tilestock/internal/inventory"
)

// Seeded records typically share one CURRENT_TIMESTAMP second, so paging
// leans on the id tiebreak.
func TestRecordQuerierPaging(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	q := RecordQuerier{DB: database}

	for i := 0; i < 25; i++ {
		if _, err := SaveGroup(ctx, database, "M", 10, 10, []VariantInput{{Quantity: i + 1}}); err != nil {
			t.Fatalf("seeding record %d: %v", i, err)
		}
	}

	page1, err := q.PageInitial(ctx, 10)
	if err != nil {
		t.Fatalf("PageInitial: %v", err)
	}
	if len(page1) != 10 {
		t.Fatalf("expected 10 records, got %d", len(page1))
	}
	// Newest first: the last inserted record leads.
	if page1[0].ID <= page1[9].ID {
		t.Errorf("expected descending id order within a shared timestamp, got %d..%d", page1[0].ID, page1[9].ID)
	}

	page2, err := q.PageAfter(ctx, inventory.CursorOf(page1[9]), 10)
	if err != nil {
		t.Fatalf("PageAfter: %v", err)
	}
	if len(page2) != 10 {
		t.Fatalf("expected 10 records on page 2, got %d", len(page2))
	}
	if page2[0].ID >= page1[9].ID {
		t.Errorf("expected page 2 to continue after page 1, got boundary %d -> %d", page1[9].ID, page2[0].ID)
	}

	page3, err := q.PageAfter(ctx, inventory.CursorOf(page2[9]), 10)
	if err != nil {
		t.Fatalf("PageAfter: %v", err)
	}
	if len(page3) != 5 {
		t.Fatalf("expected final short page of 5, got %d", len(page3))
	}

	// Backward: the 10 records immediately preceding page 2's first record
	// are exactly page 1, in the same display order.
	back, err := q.PageBefore(ctx, inventory.CursorOf(page2[0]), 10)
	if err != nil {
		t.Fatalf("PageBefore: %v", err)
	}
	if len(back) != 10 {
		t.Fatalf("expected 10 records going back, got %d", len(back))
	}
	for i := range back {
		if back[i].ID != page1[i].ID {
			t.Fatalf("cursor round trip mismatch at %d: got %d want %d", i, back[i].ID, page1[i].ID)
		}
	}

	count, err := q.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 25 {
		t.Errorf("expected count 25, got %d", count)
	}
}

func TestRecordQuerierPageBeforePartial(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	q := RecordQuerier{DB: database}

	for i := 0; i < 5; i++ {
		SaveGroup(ctx, database, "M", 10, 10, []VariantInput{{Quantity: 1}})
	}

	all, err := q.PageInitial(ctx, 5)
	if err != nil {
		t.Fatalf("PageInitial: %v", err)
	}

	// Only 2 records precede the third one; the query must return just
	// those, still newest first.
	back, err := q.PageBefore(ctx, inventory.CursorOf(all[2]), 10)
	if err != nil {
		t.Fatalf("PageBefore: %v", err)
	}
	if len(back) != 2 {
		t.Fatalf("expected 2 records, got %d", len(back))
	}
	if back[0].ID != all[0].ID || back[1].ID != all[1].ID {
		t.Errorf("unexpected backward page: %+v", back)
	}
}
