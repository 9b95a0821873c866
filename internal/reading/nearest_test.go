package reading

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNearestNow_PrefersCloserFutureReading(t *testing.T) {
	now := baseTime
	records := []Record{
		rec("past", "dev-1", "sen-1", "18", now.Add(-10*time.Minute)),
		rec("future", "dev-1", "sen-1", "19", now.Add(2*time.Minute)),
	}

	got, err := NearestNow(records, now)
	if err != nil {
		t.Fatalf("NearestNow() error = %v", err)
	}
	if got.ID != "future" {
		t.Errorf("NearestNow() = %s, want future", got.ID)
	}
}

func TestNearestNow_NotChronologicalMaximum(t *testing.T) {
	now := baseTime
	records := []Record{
		rec("near", "dev-1", "sen-1", "1", now.Add(-time.Minute)),
		rec("far-future", "dev-1", "sen-1", "2", now.Add(time.Hour)),
	}

	got, err := NearestNow(records, now)
	if err != nil {
		t.Fatalf("NearestNow() error = %v", err)
	}
	if got.ID != "near" {
		t.Errorf("NearestNow() = %s, want near", got.ID)
	}
}

func TestNearestNow_TieKeepsFirst(t *testing.T) {
	now := baseTime
	records := []Record{
		rec("first", "dev-1", "sen-1", "1", now.Add(-time.Minute)),
		rec("second", "dev-1", "sen-1", "2", now.Add(time.Minute)),
	}

	got, err := NearestNow(records, now)
	if err != nil {
		t.Fatalf("NearestNow() error = %v", err)
	}
	if got.ID != "first" {
		t.Errorf("NearestNow() = %s, want first", got.ID)
	}
}

func TestNearestNow_Empty(t *testing.T) {
	_, err := NearestNow(nil, baseTime)
	if !errors.Is(err, ErrNoReadingsForSensor) {
		t.Errorf("NearestNow() error = %v, want ErrNoReadingsForSensor", err)
	}
}

func TestLatestForSensor(t *testing.T) {
	s := NewMemoryStore()
	now := baseTime
	mustSave(t, s, rec("old", "dev-1", "sen-1", "1", now.Add(-time.Hour)))
	mustSave(t, s, rec("recent", "dev-1", "sen-1", "2", now.Add(-time.Minute)))
	mustSave(t, s, rec("other-sensor", "dev-1", "sen-2", "3", now))
	mustSave(t, s, rec("other-device", "dev-2", "sen-1", "4", now))

	got, err := LatestForSensor(context.Background(), s, "dev-1", "sen-1", now)
	if err != nil {
		t.Fatalf("LatestForSensor() error = %v", err)
	}
	if got.ID != "recent" {
		t.Errorf("LatestForSensor() = %s, want recent", got.ID)
	}

	_, err = LatestForSensor(context.Background(), s, "dev-1", "sen-9", now)
	if !errors.Is(err, ErrNoReadingsForSensor) {
		t.Errorf("LatestForSensor(unknown) error = %v, want ErrNoReadingsForSensor", err)
	}
}
