package monitor

import (
	"fmt"
	"testing"
	"time"
)

func TestStoreAddGet(t *testing.T) {
	store := NewStore(64, time.Hour)

	job := newJob("job-1", IntentFraudDetection, "", Period30d, VigilanceStandard, 1000)
	store.Add(job)

	got, ok := store.Get("job-1")
	if !ok {
		t.Fatal("job not found after Add")
	}
	if got.ID != "job-1" {
		t.Errorf("got job %q", got.ID)
	}
	if _, ok := store.Get("missing"); ok {
		t.Error("unexpected hit for unknown id")
	}
	if store.Len() != 1 {
		t.Errorf("Len = %d, want 1", store.Len())
	}
}

func TestStoreCapacityEviction(t *testing.T) {
	store := NewStore(16, time.Hour)

	for i := 0; i < 20; i++ {
		id := fmt.Sprintf("job-%d", i)
		store.Add(newJob(id, IntentFraudDetection, "", Period30d, VigilanceStandard, 1000))
	}

	if store.Len() != 16 {
		t.Errorf("Len = %d, want capacity 16", store.Len())
	}
	if _, ok := store.Get("job-0"); ok {
		t.Error("oldest job should have been evicted")
	}
	if _, ok := store.Get("job-19"); !ok {
		t.Error("newest job should be retained")
	}
}

func TestStoreRetentionExpiry(t *testing.T) {
	store := NewStore(64, 50*time.Millisecond)

	store.Add(newJob("job-1", IntentFraudDetection, "", Period30d, VigilanceStandard, 1000))
	time.Sleep(120 * time.Millisecond)

	if _, ok := store.Get("job-1"); ok {
		t.Error("job should have expired")
	}
}

func TestStoreMinimumCapacity(t *testing.T) {
	store := NewStore(0, 0)
	for i := 0; i < 16; i++ {
		store.Add(newJob(fmt.Sprintf("job-%d", i), IntentFraudDetection, "", Period30d, VigilanceStandard, 1000))
	}
	if store.Len() != 16 {
		t.Errorf("Len = %d, want 16", store.Len())
	}
}
