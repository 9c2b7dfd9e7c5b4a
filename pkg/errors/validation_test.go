package errors

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"relative", "scripts/m01a0101.yaml", false},
		{"absolute", "/tmp/listing.json", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 5000), true},
		{"null byte", "foo\x00bar", true},
		{"control char", "foo\x01bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, ErrCodeInvalidPath, GetCode(err))
		})
	}
}

func TestValidateListingPath(t *testing.T) {
	t.Parallel()

	for _, ok := range []string{"listing.yaml", "listing.yml", "listing.json", "LISTING.YAML"} {
		assert.NoError(t, ValidateListingPath(ok), ok)
	}
	for _, bad := range []string{"listing.toml", "listing", ""} {
		err := ValidateListingPath(bad)
		assert.True(t, Is(err, ErrCodeInvalidPath), "ValidateListingPath(%q) = %v", bad, err)
	}
}

func TestValidateWorkers(t *testing.T) {
	t.Parallel()

	for _, n := range []int{0, 1, 64} {
		assert.NoError(t, ValidateWorkers(n), "workers=%d", n)
	}
	for _, n := range []int{-1, 1 << 20} {
		err := ValidateWorkers(n)
		assert.True(t, Is(err, ErrCodeInvalidInput), "ValidateWorkers(%d) = %v", n, err)
	}
}

func TestValidateOpcodeName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "Return", false},
		{"underscore", "supervision_Acting", false},
		{"digits", "Lock2", false},

		{"empty", "", true},
		{"space", "Branch Value", true},
		{"punctuation", "Jump;", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOpcodeName(tt.input)
			if tt.wantErr {
				assert.True(t, Is(err, ErrCodeInvalidListing), "got %v", err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
