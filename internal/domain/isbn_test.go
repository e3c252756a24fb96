package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeISBN(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{
			name:  "valid ISBN-13 with hyphens",
			input: "978-0-306-40615-7",
			want:  "9780306406157",
		},
		{
			name:  "valid ISBN-13 compact",
			input: "9780306406157",
			want:  "9780306406157",
		},
		{
			name:  "valid ISBN-10",
			input: "0-306-40615-2",
			want:  "0306406152",
		},
		{
			name:  "valid ISBN-10 with X check digit",
			input: "043942089X",
			want:  "043942089X",
		},
		{
			name:  "lowercase x is uppercased",
			input: "043942089x",
			want:  "043942089X",
		},
		{
			name:  "spaces as separators",
			input: "978 0 306 40615 7",
			want:  "9780306406157",
		},
		{
			name:    "bad ISBN-13 checksum",
			input:   "9780306406158",
			wantErr: true,
		},
		{
			name:    "bad ISBN-10 checksum",
			input:   "0306406153",
			wantErr: true,
		},
		{
			name:    "wrong length",
			input:   "12345",
			wantErr: true,
		},
		{
			name:    "empty",
			input:   "",
			wantErr: true,
		},
		{
			name:    "letters in digit positions",
			input:   "97803064061a7",
			wantErr: true,
		},
		{
			name:    "X in non-final position of ISBN-10",
			input:   "0X3640615 2",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := NormalizeISBN(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidISBN)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
