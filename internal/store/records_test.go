package store

import (
	"context"
	"testing"

	"github.com/tilestock/tilestock/internal/db"
	"github.com/tilestock/tilestock/internal/model"
)

func TestSaveGroupInsertsAllVariants(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	records, err := SaveGroup(ctx, database, "100", 12, 12, []VariantInput{
		{TypeSuffix: "L", Quantity: 5},
		{TypeSuffix: "HL-1", Quantity: 3},
	})
	if err != nil {
		t.Fatalf("SaveGroup: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].BatchID == "" || records[0].BatchID != records[1].BatchID {
		t.Error("expected all variants to share one batch ID")
	}
	for _, r := range records {
		if r.CreatedAt.IsZero() {
			t.Error("expected server-assigned created_at")
		}
	}
}

func TestSaveGroupNormalizesEmptyPrefix(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	records, err := SaveGroup(ctx, database, "", 10, 20, []VariantInput{
		{TypeSuffix: "", Quantity: 1},
	})
	if err != nil {
		t.Fatalf("SaveGroup: %v", err)
	}
	if records[0].ModelPrefix != model.NoPrefix {
		t.Errorf("expected sentinel prefix, got %q", records[0].ModelPrefix)
	}
}

func TestSaveGroupAtomicOnFailure(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	// The second variant violates the quantity check; nothing may persist.
	_, err := SaveGroup(ctx, database, "100", 12, 12, []VariantInput{
		{TypeSuffix: "L", Quantity: 5},
		{TypeSuffix: "HL-1", Quantity: 0},
	})
	if err == nil {
		t.Fatal("expected constraint failure")
	}

	n, err := CountRecords(ctx, database)
	if err != nil {
		t.Fatalf("CountRecords: %v", err)
	}
	if n != 0 {
		t.Errorf("expected rollback of the whole group, found %d records", n)
	}
}

func TestSaveGroupRejectsEmptyVariantList(t *testing.T) {
	database := db.NewTestDB(t)

	if _, err := SaveGroup(context.Background(), database, "100", 12, 12, nil); err == nil {
		t.Error("expected error for empty variant list")
	}
}

func TestReplaceGroup(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	if _, err := SaveGroup(ctx, database, "100", 12, 12, []VariantInput{
		{TypeSuffix: "L", Quantity: 5},
		{TypeSuffix: "HL-1", Quantity: 3},
	}); err != nil {
		t.Fatalf("SaveGroup: %v", err)
	}

	err := ReplaceGroup(ctx, database, "100", 12, 12, "100", 12, 24, []VariantInput{
		{TypeSuffix: "", Quantity: 8},
	})
	if err != nil {
		t.Fatalf("ReplaceGroup: %v", err)
	}

	records, err := ListRecords(ctx, database, "")
	if err != nil {
		t.Fatalf("ListRecords: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected old variants replaced, got %d records", len(records))
	}
	if records[0].Height != 24 || records[0].Quantity != 8 {
		t.Errorf("unexpected replacement record: %+v", records[0])
	}
}

func TestDeleteGroupRemovesAllVariantsAtomically(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	SaveGroup(ctx, database, "100", 12, 12, []VariantInput{
		{TypeSuffix: "L", Quantity: 5},
		{TypeSuffix: "HL-1", Quantity: 3},
		{TypeSuffix: "", Quantity: 2},
	})
	SaveGroup(ctx, database, "200", 6, 6, []VariantInput{
		{TypeSuffix: "", Quantity: 1},
	})

	n, err := DeleteGroup(ctx, database, "100", 12, 12)
	if err != nil {
		t.Fatalf("DeleteGroup: %v", err)
	}
	if n != 3 {
		t.Errorf("expected 3 variants deleted, got %d", n)
	}

	remaining, _ := ListRecords(ctx, database, "")
	if len(remaining) != 1 || remaining[0].ModelPrefix != "200" {
		t.Errorf("expected only the other group to survive, got %+v", remaining)
	}
}

func TestListRecordsPrefixSearch(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	SaveGroup(ctx, database, "100", 12, 12, []VariantInput{{Quantity: 1}})
	SaveGroup(ctx, database, "105", 12, 12, []VariantInput{{Quantity: 1}})
	SaveGroup(ctx, database, "200", 12, 12, []VariantInput{{Quantity: 1}})

	matches, err := ListRecords(ctx, database, "10")
	if err != nil {
		t.Fatalf("ListRecords: %v", err)
	}
	if len(matches) != 2 {
		t.Errorf("expected 2 prefix matches, got %d", len(matches))
	}

	// LIKE wildcards in the search term are literals, not patterns.
	matches, err = ListRecords(ctx, database, "%")
	if err != nil {
		t.Fatalf("ListRecords: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("expected no matches for literal %%, got %d", len(matches))
	}
}

func TestRecordPhoto(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	records, _ := SaveGroup(ctx, database, "100", 12, 12, []VariantInput{{Quantity: 1}})
	id := records[0].ID

	if err := SetRecordPhoto(ctx, database, id, []byte("fake photo"), "image/jpeg"); err != nil {
		t.Fatalf("SetRecordPhoto: %v", err)
	}

	data, mime, err := GetRecordPhoto(ctx, database, id)
	if err != nil {
		t.Fatalf("GetRecordPhoto: %v", err)
	}
	if string(data) != "fake photo" || mime != "image/jpeg" {
		t.Errorf("unexpected photo data %q mime %q", data, mime)
	}
}

func TestGetRecordMissing(t *testing.T) {
	database := db.NewTestDB(t)

	r, err := GetRecord(context.Background(), database, 999)
	if err != nil {
		t.Fatalf("GetRecord: %v", err)
	}
	if r != nil {
		t.Error("expected nil for missing record")
	}
}
