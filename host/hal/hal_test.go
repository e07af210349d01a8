package hal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// =============================================================================
// SetupPacket Tests
// =============================================================================

func TestSetupPacket_Fields(t *testing.T) {
	tests := []struct {
		name       string
		setup      SetupPacket
		in         bool
		class      bool
		reportType uint8
		reportID   uint8
	}{
		{
			name:       "set output report",
			setup:      SetupPacket{RequestType: 0x21, Request: RequestSetReport, Value: 0x0200, Index: 1},
			in:         false,
			class:      true,
			reportType: ReportTypeOutput,
		},
		{
			name:       "get feature report",
			setup:      SetupPacket{RequestType: 0xA1, Request: RequestGetReport, Value: 0x0300, Index: 1},
			in:         true,
			class:      true,
			reportType: ReportTypeFeature,
		},
		{
			name:       "standard get descriptor",
			setup:      SetupPacket{RequestType: 0x80, Request: 0x06, Value: 0x0100},
			in:         true,
			class:      false,
			reportType: 0x01,
		},
		{
			name:       "vendor with report id",
			setup:      SetupPacket{RequestType: 0x41, Value: 0x0307},
			in:         false,
			class:      false,
			reportType: ReportTypeFeature,
			reportID:   7,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.in, tt.setup.IsIn())
			assert.Equal(t, tt.class, tt.setup.IsClass())
			assert.Equal(t, tt.reportType, tt.setup.ReportType())
			assert.Equal(t, tt.reportID, tt.setup.ReportID())
		})
	}
}

func TestSetupPacket_String(t *testing.T) {
	setup := SetupPacket{RequestType: 0x21, Request: 0x09, Value: 0x0200, Index: 1, Length: 32}
	assert.Equal(t, "{type:0x21 req:0x09 val:0x0200 idx:1 len:32}", setup.String())
}

func TestID_String(t *testing.T) {
	assert.Equal(t, "1130:660c", ID{Vendor: 0x1130, Product: 0x660c}.String())
	assert.Equal(t, "0001:0002", ID{Vendor: 1, Product: 2}.String())
}
