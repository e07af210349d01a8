package hal

import (
	"context"
	"fmt"
	"time"
)

// bmRequestType fields (USB 2.0 Specification, Table 9-2).
const (
	RequestDirOut uint8 = 0x00 // Host-to-device
	RequestDirIn  uint8 = 0x80 // Device-to-host

	RequestTypeStandard uint8 = 0x00
	RequestTypeClass    uint8 = 0x20
	RequestTypeVendor   uint8 = 0x40

	RequestRecipientDevice    uint8 = 0x00
	RequestRecipientInterface uint8 = 0x01
	RequestRecipientEndpoint  uint8 = 0x02

	requestDirMask  uint8 = 0x80
	requestTypeMask uint8 = 0x60
)

// HID class-specific requests (HID 1.11, section 7.2).
const (
	RequestGetReport uint8 = 0x01
	RequestSetReport uint8 = 0x09
)

// HID report types carried in the high byte of wValue.
const (
	ReportTypeInput   uint8 = 0x01
	ReportTypeOutput  uint8 = 0x02
	ReportTypeFeature uint8 = 0x03
)

// DefaultTimeout bounds a single control transfer.
const DefaultTimeout = 5 * time.Second

// SetupPacket represents a USB SETUP packet.
type SetupPacket struct {
	RequestType uint8  // Request characteristics
	Request     uint8  // Specific request
	Value       uint16 // Request-specific value
	Index       uint16 // Request-specific index
	Length      uint16 // Number of bytes to transfer
}

// IsIn returns true if the data stage moves device-to-host.
func (s *SetupPacket) IsIn() bool {
	return s.RequestType&requestDirMask == RequestDirIn
}

// IsClass returns true for class-specific requests.
func (s *SetupPacket) IsClass() bool {
	return s.RequestType&requestTypeMask == RequestTypeClass
}

// ReportType returns the HID report type of a GET_REPORT/SET_REPORT request.
func (s *SetupPacket) ReportType() uint8 {
	return uint8(s.Value >> 8)
}

// ReportID returns the HID report ID of a GET_REPORT/SET_REPORT request.
func (s *SetupPacket) ReportID() uint8 {
	return uint8(s.Value)
}

// String returns a compact representation for logging.
func (s SetupPacket) String() string {
	return fmt.Sprintf("{type:%#02x req:%#02x val:%#04x idx:%d len:%d}",
		s.RequestType, s.Request, s.Value, s.Index, s.Length)
}

// ID identifies a USB product.
type ID struct {
	Vendor  uint16
	Product uint16
}

// String formats the ID the way lsusb does, e.g. "1130:660c".
func (id ID) String() string {
	return fmt.Sprintf("%04x:%04x", id.Vendor, id.Product)
}

// ControlTransport carries control transfers to endpoint 0 of one device.
//
// A transport is exclusively owned by one device session. Implementations
// need not be safe for concurrent use; the session serializes access.
type ControlTransport interface {
	// String names the underlying device (a devfs path, hidraw node, ...).
	// Names are unique among attached devices.
	fmt.Stringer

	// ControlTransfer performs one control transfer. For OUT requests data
	// holds the payload; for IN requests data is filled with the response.
	// Returns the number of bytes moved in the data stage.
	ControlTransfer(ctx context.Context, setup *SetupPacket, data []byte) (int, error)

	// Close releases the device. The transport must not be used afterwards.
	Close() error
}
