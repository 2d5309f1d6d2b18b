package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"portal_dashboard/backend/internal/dashboard"
	"portal_dashboard/backend/internal/shared"
)

// TestMongoStore_Integration runs against MONGO_URI and is skipped without it.
func TestMongoStore_Integration(t *testing.T) {
	_ = godotenv.Load(".env")
	if os.Getenv("MONGO_URI") == "" {
		t.Skip("MONGO_URI not set")
	}

	cfg := &shared.MongoConfig{
		URI:            os.Getenv("MONGO_URI"),
		Database:       shared.GetEnv("MONGO_DB_NAME", "portal_dashboard_test"),
		ConnectTimeout: 10 * time.Second,
		MaxPoolSize:    4,
	}
	client, db, err := shared.ConnectMongoDB(cfg)
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	defer shared.DisconnectMongoDB(client)

	ctx := context.Background()
	collection := "bundles_test_" + uuid.NewString()[:8]
	s := NewMongoStore(db, collection)
	defer db.Collection(collection).Drop(ctx)

	if err := s.EnsureIndexes(ctx); err != nil {
		t.Fatalf("EnsureIndexes failed: %v", err)
	}

	key := dashboard.SlotKey{UserID: "student-store-001", Role: shared.RoleStudent}

	t.Run("MissingSlot", func(t *testing.T) {
		if _, found, err := s.Load(ctx, key); err != nil || found {
			t.Fatalf("Expected no bundle, got found=%v err=%v", found, err)
		}
	})

	t.Run("SaveAndLoad", func(t *testing.T) {
		if err := s.Save(ctx, key, sampleBundle()); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		// A second save replaces the first.
		if err := s.Save(ctx, key, sampleBundle()); err != nil {
			t.Fatalf("Second save failed: %v", err)
		}

		got, found, err := s.Load(ctx, key)
		if err != nil || !found {
			t.Fatalf("Load failed: found=%v err=%v", found, err)
		}
		if got.Fees.TotalDue != 500 || got.Notices.Featured == nil {
			t.Errorf("Unexpected bundle: %+v", got)
		}
	})

	t.Run("Purge", func(t *testing.T) {
		n, err := s.Purge(ctx, time.Now().Add(time.Minute))
		if err != nil {
			t.Fatalf("Purge failed: %v", err)
		}
		if n != 1 {
			t.Errorf("Expected 1 purged bundle, got %d", n)
		}
	})

	t.Run("Forget", func(t *testing.T) {
		if err := s.Save(ctx, key, sampleBundle()); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		if err := s.Forget(ctx, key.UserID); err != nil {
			t.Fatalf("Forget failed: %v", err)
		}
		if _, found, _ := s.Load(ctx, key); found {
			t.Error("Expected bundle to be forgotten")
		}
	})
}
