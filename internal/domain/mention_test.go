package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/osse101/MentionBot_Go/internal/domain"
)

func TestCompareMentionIDs(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want int
	}{
		{name: "a less than b", a: "100", b: "101", want: -1},
		{name: "a greater than b", a: "105", b: "103", want: 1},
		{name: "equal", a: "42", b: "42", want: 0},
		{name: "numeric not lexicographic", a: "9", b: "10", want: -1},
		{name: "beyond int64 range", a: "18446744073709551617", b: "18446744073709551616", want: 1},
		{name: "unparseable sorts first", a: "not-a-number", b: "1", want: -1},
		{name: "unparseable on right", a: "1", b: "garbage", want: 1},
		{name: "both unparseable", a: "x", b: "y", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.CompareMentionIDs(tt.a, tt.b))
		})
	}
}
