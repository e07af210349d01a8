package libusb

import (
	"errors"
	"testing"

	"github.com/google/gousb"
	"github.com/stretchr/testify/assert"

	"github.com/ardnew/temperhum/pkg"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		err  gousb.Error
		want error
	}{
		{gousb.ErrorTimeout, pkg.ErrTimeout},
		{gousb.ErrorPipe, pkg.ErrStall},
		{gousb.ErrorNoDevice, pkg.ErrNoDevice},
		{gousb.ErrorNotFound, pkg.ErrNoDevice},
		{gousb.ErrorNoMem, pkg.ErrNoMemory},
		{gousb.ErrorInvalidParam, pkg.ErrInvalidParameter},
		{gousb.ErrorNotSupported, pkg.ErrNotSupported},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			err := mapError(tt.err)
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, tt.err)
		})
	}

	assert.Equal(t, error(gousb.ErrorAccess), mapError(gousb.ErrorAccess))

	other := errors.New("other")
	assert.Equal(t, other, mapError(other))
}
