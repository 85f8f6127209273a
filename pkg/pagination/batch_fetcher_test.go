package pagination

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type fakeFetcher struct {
	totalPages int
	failPage   int
	delay      time.Duration

	mu       sync.Mutex
	calls    []int
	inFlight atomic.Int32
	maxSeen  atomic.Int32
}

func (f *fakeFetcher) FetchPage(ctx context.Context, endpoint string, query url.Values, page int) ([]byte, int, error) {
	f.mu.Lock()
	f.calls = append(f.calls, page)
	f.mu.Unlock()

	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		seen := f.maxSeen.Load()
		if n <= seen || f.maxSeen.CompareAndSwap(seen, n) {
			break
		}
	}

	if f.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, 0, ctx.Err()
		case <-time.After(f.delay):
		}
	}

	if page == f.failPage {
		return nil, 0, errors.New("upstream failure")
	}
	return []byte(fmt.Sprintf("%s?%s#%d", endpoint, query.Encode(), page)), f.totalPages, nil
}

func TestFetchAllPages_SinglePage(t *testing.T) {
	fetcher := &fakeFetcher{totalPages: 1}
	bf := NewBatchFetcher(fetcher, DefaultConfig())

	results, err := bf.FetchAllPages(context.Background(), "/sets", nil)
	if err != nil {
		t.Fatalf("FetchAllPages() error = %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("len(results) = %d, want 1", len(results))
	}
	if len(fetcher.calls) != 1 {
		t.Errorf("FetchPage called %d times, want 1", len(fetcher.calls))
	}
}

func TestFetchAllPages_AllPages(t *testing.T) {
	fetcher := &fakeFetcher{totalPages: 7, delay: 5 * time.Millisecond}
	bf := NewBatchFetcher(fetcher, Config{MaxConcurrency: 3, Timeout: time.Second})

	query := url.Values{"q": {"set.id:sv1"}}
	results, err := bf.FetchAllPages(context.Background(), "/cards", query)
	if err != nil {
		t.Fatalf("FetchAllPages() error = %v", err)
	}
	if len(results) != 7 {
		t.Fatalf("len(results) = %d, want 7", len(results))
	}

	for page := 1; page <= 7; page++ {
		want := fmt.Sprintf("/cards?q=set.id%%3Asv1#%d", page)
		if got := string(results[page]); got != want {
			t.Errorf("page %d = %q, want %q", page, got, want)
		}
	}

	if max := fetcher.maxSeen.Load(); max > 3 {
		t.Errorf("max concurrent fetches = %d, want <= 3", max)
	}
}

func TestFetchAllPages_FirstPageError(t *testing.T) {
	fetcher := &fakeFetcher{totalPages: 3, failPage: 1}
	bf := NewBatchFetcher(fetcher, DefaultConfig())

	results, err := bf.FetchAllPages(context.Background(), "/cards", nil)
	if err == nil {
		t.Fatal("FetchAllPages() error = nil, want error")
	}
	if results != nil {
		t.Errorf("results = %v, want nil", results)
	}
}

func TestFetchAllPages_PartialResults(t *testing.T) {
	fetcher := &fakeFetcher{totalPages: 4, failPage: 3}
	bf := NewBatchFetcher(fetcher, Config{MaxConcurrency: 1, Timeout: time.Second})

	results, err := bf.FetchAllPages(context.Background(), "/cards", nil)
	if err == nil {
		t.Fatal("FetchAllPages() error = nil, want error")
	}
	if _, ok := results[1]; !ok {
		t.Error("page 1 missing from partial results")
	}
	if _, ok := results[2]; !ok {
		t.Error("page 2 missing from partial results")
	}
	if _, ok := results[3]; ok {
		t.Error("failed page 3 present in results")
	}
}

func TestFetchAllPages_PageTimeout(t *testing.T) {
	fetcher := &fakeFetcher{totalPages: 2, delay: 200 * time.Millisecond}
	bf := NewBatchFetcher(fetcher, Config{MaxConcurrency: 2, Timeout: 20 * time.Millisecond})

	_, err := bf.FetchAllPages(context.Background(), "/cards", nil)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("FetchAllPages() error = %v, want deadline exceeded", err)
	}
}

func TestNewBatchFetcher_Defaults(t *testing.T) {
	bf := NewBatchFetcher(&fakeFetcher{}, Config{})
	defaults := DefaultConfig()

	if bf.config.MaxConcurrency != defaults.MaxConcurrency {
		t.Errorf("MaxConcurrency = %d, want %d", bf.config.MaxConcurrency, defaults.MaxConcurrency)
	}
	if bf.config.Timeout != defaults.Timeout {
		t.Errorf("Timeout = %v, want %v", bf.config.Timeout, defaults.Timeout)
	}
}

func TestOrdered(t *testing.T) {
	results := map[int][]byte{
		3: []byte("c"),
		1: []byte("a"),
		2: []byte("b"),
	}

	ordered := Ordered(results)
	if len(ordered) != 3 {
		t.Fatalf("len(Ordered()) = %d, want 3", len(ordered))
	}
	for i, want := range []string{"a", "b", "c"} {
		if string(ordered[i]) != want {
			t.Errorf("Ordered()[%d] = %q, want %q", i, ordered[i], want)
		}
	}

	if got := Ordered(nil); len(got) != 0 {
		t.Errorf("Ordered(nil) = %v, want empty", got)
	}
}
