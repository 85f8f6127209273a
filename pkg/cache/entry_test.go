package cache

import (
	"testing"
	"time"
)

func TestEntry_IsFresh(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		storedAt time.Time
		ttl      time.Duration
		want     bool
	}{
		{
			name:     "within ttl",
			storedAt: now.Add(-1 * time.Minute),
			ttl:      TTLShort,
			want:     true,
		},
		{
			name:     "exactly at ttl",
			storedAt: now.Add(-TTLShort),
			ttl:      TTLShort,
			want:     false,
		},
		{
			name:     "past ttl",
			storedAt: now.Add(-2 * time.Hour),
			ttl:      TTLLong,
			want:     false,
		},
		{
			name:     "zero ttl always refetches",
			storedAt: now,
			ttl:      TTLNone,
			want:     false,
		},
		{
			name:     "stored in the future",
			storedAt: now.Add(1 * time.Second),
			ttl:      TTLShort,
			want:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := &Entry{StoredAt: tt.storedAt}
			if got := entry.IsFresh(now, tt.ttl); got != tt.want {
				t.Errorf("IsFresh() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEntry_Age(t *testing.T) {
	now := time.Now()
	entry := &Entry{StoredAt: now.Add(-90 * time.Second)}

	if got := entry.Age(now); got != 90*time.Second {
		t.Errorf("Age() = %v, want 90s", got)
	}
}
