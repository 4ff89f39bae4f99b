package badger

import (
	"context"
	"sync"
	"testing"
)

func TestSequenceFirstValueIsOne(t *testing.T) {
	repos, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()

	next, err := repos.Sequences.Next(ctx, "articles_test")
	if err != nil {
		t.Fatalf("Failed to get first value: %v", err)
	}
	if next != 1 {
		t.Fatalf("Expected first value 1, got %d", next)
	}

	next, err = repos.Sequences.Next(ctx, "articles_test")
	if err != nil {
		t.Fatalf("Failed to get second value: %v", err)
	}
	if next != 2 {
		t.Fatalf("Expected second value 2, got %d", next)
	}
}

func TestSequenceNamesAreIndependent(t *testing.T) {
	repos, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := repos.Sequences.Next(ctx, "first"); err != nil {
			t.Fatalf("Failed to advance first: %v", err)
		}
	}

	next, err := repos.Sequences.Next(ctx, "second")
	if err != nil {
		t.Fatalf("Failed to advance second: %v", err)
	}
	if next != 1 {
		t.Fatalf("Expected independent counter to start at 1, got %d", next)
	}
}

func TestSequenceConcurrentCallersNoGaps(t *testing.T) {
	repos, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()
	const callers = 100

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	seen := make(map[int64]bool, callers)
	errs := make(chan error, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			next, err := repos.Sequences.Next(ctx, "concurrent")
			if err != nil {
				errs <- err
				return
			}
			mu.Lock()
			seen[next] = true
			mu.Unlock()
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Fatalf("Concurrent Next failed: %v", err)
	}

	// Every value in 1..callers must be issued exactly once.
	if len(seen) != callers {
		t.Fatalf("Expected %d distinct values, got %d", callers, len(seen))
	}
	for v := int64(1); v <= callers; v++ {
		if !seen[v] {
			t.Fatalf("Value %d was never issued", v)
		}
	}
}

func TestSequenceEnsureAtLeast(t *testing.T) {
	repos, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()

	if err := repos.Sequences.EnsureAtLeast(ctx, "imported", 40); err != nil {
		t.Fatalf("Failed to raise counter: %v", err)
	}

	next, err := repos.Sequences.Next(ctx, "imported")
	if err != nil {
		t.Fatalf("Failed to get next value: %v", err)
	}
	if next != 41 {
		t.Fatalf("Expected 41 after raising to 40, got %d", next)
	}

	// Raising below the current value is a no-op.
	if err := repos.Sequences.EnsureAtLeast(ctx, "imported", 10); err != nil {
		t.Fatalf("Failed no-op raise: %v", err)
	}
	next, err = repos.Sequences.Next(ctx, "imported")
	if err != nil {
		t.Fatalf("Failed to get next value: %v", err)
	}
	if next != 42 {
		t.Fatalf("Expected 42, got %d", next)
	}
}
