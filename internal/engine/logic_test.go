package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/tartampluch/go-contacts/internal/model"
)

// TestCalculateNextOccurrence covers year boundaries and leap days.
func TestCalculateNextOccurrence(t *testing.T) {
	// Reference "Now": June 15th, 2025 (Non-Leap Year)
	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		birthDate    time.Time
		expectedDate time.Time
		expectedAge  int
	}{
		{
			name:         "Birthday in the past (this year)",
			birthDate:    time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
			expectedDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			expectedAge:  36,
		},
		{
			name:         "Birthday in the future (this year)",
			birthDate:    time.Date(1990, 12, 31, 0, 0, 0, 0, time.UTC),
			expectedDate: time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC),
			expectedAge:  35,
		},
		{
			name:         "Birthday is Today",
			birthDate:    time.Date(1990, 6, 15, 0, 0, 0, 0, time.UTC),
			expectedDate: time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
			expectedAge:  35,
		},
		{
			name:         "Leapling - Non-Leap Year (Feb 29 -> Mar 1)",
			birthDate:    time.Date(2000, 2, 29, 0, 0, 0, 0, time.UTC),
			expectedDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
			expectedAge:  26,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotDate, gotAge := calculateNextOccurrence(now, tt.birthDate)
			assert.True(t, tt.expectedDate.Equal(gotDate), "want %s, got %s", tt.expectedDate, gotDate)
			assert.Equal(t, tt.expectedAge, gotAge)
		})
	}
}

func TestCandidate(t *testing.T) {
	assert.Equal(t, "", candidate(model.Name, "  Not Filled In "))
	assert.Equal(t, "555-111-2222;555-333-4444", candidate(model.PhoneNumbers, " 555-111-2222,555-333-4444 "))
	assert.Equal(t, "a,b", candidate(model.Name, "a,b"), "only phone lists are canonicalised")
}

func TestCleanPhone(t *testing.T) {
	assert.Equal(t, "555-123-4567", cleanPhone("tel:555-123-4567"))
	assert.Equal(t, "15551234567", cleanPhone("+1 (555) 123-4567"))
	assert.Equal(t, "", cleanPhone("n/a"))
}
