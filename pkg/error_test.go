package pkg

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckLength(t *testing.T) {
	tests := []struct {
		name     string
		expected int
		actual   int
		wantErr  bool
	}{
		{"exact", 32, 32, false},
		{"short", 32, 31, true},
		{"long", 4, 5, true},
		{"empty", 4, 0, true},
		{"zero", 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckLength(tt.expected, tt.actual)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.ErrorIs(t, err, ErrTransferLength)

			var te *TransferError
			require.ErrorAs(t, err, &te)
			assert.Equal(t, tt.expected, te.Expected)
			assert.Equal(t, tt.actual, te.Actual)
		})
	}
}

func TestTransferError_Error(t *testing.T) {
	err := &TransferError{Expected: 32, Actual: 31}
	assert.Equal(t, "unexpected transfer length: got 31 bytes, want 32", err.Error())
}

func TestTransferError_Wrapped(t *testing.T) {
	err := fmt.Errorf("frame 2: %w", &TransferError{Expected: 32, Actual: 0})

	assert.ErrorIs(t, err, ErrTransferLength)
	assert.False(t, errors.Is(err, ErrTimeout))
}
