package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/osse101/MentionBot_Go/internal/domain"
)

func TestCredentialBundle_ExpiresAt(t *testing.T) {
	obtained := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	bundle := domain.CredentialBundle{ObtainedAt: obtained, ExpiresIn: 3600}

	assert.Equal(t, obtained.Add(time.Hour), bundle.ExpiresAt())
}

func TestCredentialBundle_ExpiredBy(t *testing.T) {
	obtained := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	bundle := domain.CredentialBundle{ObtainedAt: obtained, ExpiresIn: 3600}
	skew := 2 * time.Minute

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{name: "well before expiry", now: obtained.Add(30 * time.Minute), want: false},
		{name: "just inside skew window", now: obtained.Add(59 * time.Minute), want: true},
		{name: "exactly at skewed deadline", now: obtained.Add(58 * time.Minute), want: true},
		{name: "just before skew window", now: obtained.Add(57 * time.Minute), want: false},
		{name: "past expiry", now: obtained.Add(2 * time.Hour), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, bundle.ExpiredBy(tt.now, skew))
		})
	}
}
