package registry

import (
	"fmt"
	"testing"

	"pgregory.net/rapid"

	"github.com/mirrorhq/reel/internal/index"
	"github.com/mirrorhq/reel/internal/session"
)

// TestProperty_UpsertKeepsIDsUnique verifies that any interleaving of upserts
// never produces two records with the same id.
func TestProperty_UpsertKeepsIDsUnique(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		store := index.New(t.TempDir())
		if err := store.EnsureStorageReady(); err != nil {
			rt.Fatalf("EnsureStorageReady failed: %v", err)
		}

		n := rapid.IntRange(1, 30).Draw(rt, "num_upserts")
		for i := 0; i < n; i++ {
			// Drawing from a small id pool forces collisions.
			day := rapid.IntRange(1, 5).Draw(rt, "day")
			id := fmt.Sprintf("2025090%d_120000", day)
			media := fmt.Sprintf("/v/%s_session.mp4", id)
			createdAt := int64(1000 + day)

			if _, err := Upsert(store, UpsertInput{
				ID:        id,
				MediaPath: &media,
				CreatedAt: &createdAt,
			}); err != nil {
				rt.Fatalf("Upsert failed: %v", err)
			}
		}

		records, err := store.Load()
		if err != nil {
			rt.Fatalf("Load failed: %v", err)
		}
		seen := make(map[string]bool, len(records))
		for _, rec := range records {
			if seen[rec.ID] {
				rt.Fatalf("duplicate id %q in index", rec.ID)
			}
			seen[rec.ID] = true
		}
	})
}

// TestProperty_MergeNeverDropsEstablishedFields verifies that a partial upsert
// only changes the fields it carries.
func TestProperty_MergeNeverDropsEstablishedFields(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		store := index.New(t.TempDir())
		if err := store.EnsureStorageReady(); err != nil {
			rt.Fatalf("EnsureStorageReady failed: %v", err)
		}

		id := "20250904_123456"
		media := "/v/" + id + "_session.mp4"
		createdAt := int64(rapid.IntRange(1, 1<<40).Draw(rt, "created_at"))
		duration := int64(rapid.IntRange(0, 1<<30).Draw(rt, "duration"))
		lens := session.DevicePosition(rapid.SampledFrom([]string{"front", "back"}).Draw(rt, "lens"))

		if _, err := Upsert(store, UpsertInput{
			ID:             id,
			MediaPath:      &media,
			CreatedAt:      &createdAt,
			DurationMs:     &duration,
			DevicePosition: &lens,
		}); err != nil {
			rt.Fatalf("initial upsert failed: %v", err)
		}

		// A run of partial upserts, each carrying a random subset of fields.
		rounds := rapid.IntRange(1, 10).Draw(rt, "rounds")
		wantDuration := duration
		for i := 0; i < rounds; i++ {
			input := UpsertInput{ID: id}
			if rapid.Bool().Draw(rt, "with_duration") {
				d := int64(rapid.IntRange(0, 1<<30).Draw(rt, "new_duration"))
				input.DurationMs = &d
				wantDuration = d
			}
			if rapid.Bool().Draw(rt, "with_transcript") {
				tp := "/v/" + id + ".transcript.json"
				input.TranscriptPath = &tp
			}
			if input.DurationMs == nil && input.TranscriptPath == nil {
				continue
			}
			if _, err := Upsert(store, input); err != nil {
				rt.Fatalf("partial upsert failed: %v", err)
			}
		}

		rec, err := Fetch(store, id)
		if err != nil {
			rt.Fatalf("Fetch failed: %v", err)
		}
		if rec.MediaPath != session.NormalizeURI(media) {
			rt.Fatalf("MediaPath = %q, want %q", rec.MediaPath, session.NormalizeURI(media))
		}
		if rec.CreatedAt != createdAt {
			rt.Fatalf("CreatedAt = %d, want %d", rec.CreatedAt, createdAt)
		}
		if rec.DurationMs == nil || *rec.DurationMs != wantDuration {
			rt.Fatalf("DurationMs = %v, want %d", rec.DurationMs, wantDuration)
		}
		if rec.DevicePosition == nil || *rec.DevicePosition != lens {
			rt.Fatalf("DevicePosition = %v, want %q", rec.DevicePosition, lens)
		}
	})
}

// TestProperty_ListSortedNewestFirst verifies list ordering over arbitrary
// record sets.
func TestProperty_ListSortedNewestFirst(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		store := index.New(t.TempDir())
		if err := store.EnsureStorageReady(); err != nil {
			rt.Fatalf("EnsureStorageReady failed: %v", err)
		}

		n := rapid.IntRange(0, 15).Draw(rt, "num_records")
		for i := 0; i < n; i++ {
			id := fmt.Sprintf("202509%02d_%06d", (i%27)+1, i)
			path := writeMediaFile(t, store, id)
			createdAt := int64(rapid.IntRange(1, 100000).Draw(rt, "created_at"))
			if _, err := Create(store, CreateInput{ID: id, MediaPath: path, CreatedAt: createdAt}); err != nil {
				rt.Fatalf("Create failed: %v", err)
			}
		}

		out, err := List(store)
		if err != nil {
			rt.Fatalf("List failed: %v", err)
		}
		for i := 1; i < len(out.Items); i++ {
			prev, cur := out.Items[i-1], out.Items[i]
			if prev.CreatedAt < cur.CreatedAt {
				rt.Fatalf("Items[%d].CreatedAt=%d before Items[%d].CreatedAt=%d", i-1, prev.CreatedAt, i, cur.CreatedAt)
			}
			if prev.CreatedAt == cur.CreatedAt && prev.ID < cur.ID {
				rt.Fatalf("tie at CreatedAt=%d not broken by id desc", cur.CreatedAt)
			}
		}
	})
}
