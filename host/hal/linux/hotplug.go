//go:build linux

package linux

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/mdlayher/netlink"
	"golang.org/x/sys/unix"

	"github.com/ardnew/temperhum/host/hal"
	"github.com/ardnew/temperhum/pkg"
)

// =============================================================================
// UEvent Types
// =============================================================================

// Action is the kind of a hotplug event.
type Action uint8

// Hotplug actions.
const (
	ActionUnknown Action = iota
	ActionAdd
	ActionRemove
	ActionChange
	ActionBind
	ActionUnbind
)

// String returns the uevent action name.
func (a Action) String() string {
	switch a {
	case ActionAdd:
		return "add"
	case ActionRemove:
		return "remove"
	case ActionChange:
		return "change"
	case ActionBind:
		return "bind"
	case ActionUnbind:
		return "unbind"
	default:
		return "unknown"
	}
}

// parseAction maps a uevent action name to an Action.
func parseAction(s string) Action {
	switch s {
	case "add":
		return ActionAdd
	case "remove":
		return ActionRemove
	case "change":
		return ActionChange
	case "bind":
		return ActionBind
	case "unbind":
		return ActionUnbind
	default:
		return ActionUnknown
	}
}

// uevent represents a parsed netlink uevent.
type uevent struct {
	action    Action
	devpath   string // DEVPATH value
	subsystem string // SUBSYSTEM value
	devtype   string // DEVTYPE value
	busnum    string // BUSNUM value
	devnum    string // DEVNUM value
	product   string // PRODUCT value, "vid/pid/bcdDevice" in unpadded hex
}

// Event reports a matching USB device being added or removed.
type Event struct {
	Action Action
	Device DeviceInfo
}

// =============================================================================
// Hotplug Monitor
// =============================================================================

// Monitor reports add, bind and remove events of USB devices with a given
// ID, read from the kernel uevent netlink socket.
//
// The kernel announces a device before configuring it, so the interfaces of
// an add event are usually empty. The bind event that follows carries them.
type Monitor struct {
	conn   *netlink.Conn
	id     hal.ID
	root   string // sysfs device directory
	events chan Event
	done   chan struct{}
	wg     sync.WaitGroup
	once   sync.Once
}

// NewMonitor subscribes to kernel uevents and starts delivering events for
// devices matching id.
func NewMonitor(id hal.ID) (*Monitor, error) {
	conn, err := netlink.Dial(unix.NETLINK_KOBJECT_UEVENT, &netlink.Config{
		Groups: ueventGroupKernel,
	})
	if err != nil {
		return nil, fmt.Errorf("uevent socket: %w", err)
	}

	m := &Monitor{
		conn:   conn,
		id:     id,
		root:   SysfsUSBPath,
		events: make(chan Event, eventQueueSize),
		done:   make(chan struct{}),
	}

	m.wg.Add(1)
	go m.run()

	pkg.LogDebug(pkg.ComponentHotplug, "monitor started", "id", id.String())
	return m, nil
}

// Events returns the event channel. It is closed when the monitor stops.
func (m *Monitor) Events() <-chan Event {
	return m.events
}

// Close stops the monitor and waits for its reader to exit.
func (m *Monitor) Close() error {
	err := pkg.ErrClosed
	m.once.Do(func() {
		close(m.done)
		err = m.conn.Close()
		m.wg.Wait()
		pkg.LogDebug(pkg.ComponentHotplug, "monitor stopped")
	})
	return err
}

// run reads uevent datagrams until the socket is closed.
//
// Uevents are bare "key=value\0" strings without a netlink header, so they
// are read from the raw socket rather than through Conn.Receive.
func (m *Monitor) run() {
	defer m.wg.Done()
	defer close(m.events)

	rc, err := m.conn.SyscallConn()
	if err != nil {
		pkg.LogError(pkg.ComponentHotplug, "uevent socket unusable", "error", err)
		return
	}

	buf := make([]byte, UEventBufferSize)
	for {
		var (
			n    int
			from unix.Sockaddr
			rerr error
		)
		err := rc.Read(func(fd uintptr) bool {
			n, from, rerr = unix.Recvfrom(int(fd), buf, 0)
			return !errors.Is(rerr, unix.EAGAIN)
		})

		select {
		case <-m.done:
			return
		default:
		}

		if err != nil {
			pkg.LogError(pkg.ComponentHotplug, "uevent read failed", "error", err)
			return
		}
		if rerr != nil {
			if errors.Is(rerr, unix.ENOBUFS) {
				pkg.LogWarn(pkg.ComponentHotplug, "uevent queue overrun, events lost")
				continue
			}
			pkg.LogError(pkg.ComponentHotplug, "uevent receive failed", "error", rerr)
			return
		}

		// Only the kernel (port 0) sends on this group.
		if sa, ok := from.(*unix.SockaddrNetlink); !ok || sa.Pid != 0 {
			continue
		}

		evt, ok := m.handle(buf[:n])
		if !ok {
			continue
		}

		pkg.LogDebug(pkg.ComponentHotplug, "device event",
			"action", evt.Action.String(),
			"path", evt.Device.DevfsPath)

		select {
		case m.events <- evt:
		case <-m.done:
			return
		}
	}
}

// handle converts a raw uevent into an Event if it reports the addition,
// driver binding or removal of a USB device matching the monitor ID. Add and
// bind events list the interfaces present in sysfs at that moment.
func (m *Monitor) handle(data []byte) (Event, bool) {
	evt := parseUEvent(data)

	switch evt.action {
	case ActionAdd, ActionBind, ActionRemove:
	default:
		return Event{}, false
	}
	if evt.subsystem != "usb" || evt.devtype != "usb_device" {
		return Event{}, false
	}

	id, ok := parseProduct(evt.product)
	if !ok || id != m.id {
		return Event{}, false
	}

	busNum, err := strconv.ParseUint(evt.busnum, 10, 8)
	if err != nil {
		return Event{}, false
	}
	devNum, err := strconv.ParseUint(evt.devnum, 10, 8)
	if err != nil {
		return Event{}, false
	}

	info := DeviceInfo{
		SysfsPath: filepath.Join(m.root, filepath.Base(evt.devpath)),
		DevfsPath: devfsPath(uint8(busNum), uint8(devNum)),
		BusNum:    uint8(busNum),
		DevNum:    uint8(devNum),
		ID:        id,
	}
	if evt.action != ActionRemove {
		info.Interfaces = scanInterfaces(info.SysfsPath)
	}
	return Event{Action: evt.action, Device: info}, true
}

// =============================================================================
// UEvent Parsing
// =============================================================================

// parseUEvent parses a netlink uevent message.
func parseUEvent(data []byte) uevent {
	evt := uevent{}

	for _, line := range bytes.Split(data, []byte{0}) {
		if len(line) == 0 {
			continue
		}

		s := string(line)

		key, value, ok := strings.Cut(s, "=")
		if !ok {
			// The header line is "action@devpath"
			if action, devpath, ok := strings.Cut(s, "@"); ok {
				evt.action = parseAction(action)
				evt.devpath = devpath
			}
			continue
		}

		switch key {
		case "ACTION":
			evt.action = parseAction(value)
		case "DEVPATH":
			evt.devpath = value
		case "SUBSYSTEM":
			evt.subsystem = value
		case "DEVTYPE":
			evt.devtype = value
		case "BUSNUM":
			evt.busnum = value
		case "DEVNUM":
			evt.devnum = value
		case "PRODUCT":
			evt.product = value
		}
	}

	return evt
}

// parseProduct extracts the vendor and product IDs from a PRODUCT value.
func parseProduct(s string) (hal.ID, bool) {
	parts := strings.Split(s, "/")
	if len(parts) < 2 {
		return hal.ID{}, false
	}
	vid, err := strconv.ParseUint(parts[0], 16, 16)
	if err != nil {
		return hal.ID{}, false
	}
	pid, err := strconv.ParseUint(parts[1], 16, 16)
	if err != nil {
		return hal.ID{}, false
	}
	return hal.ID{Vendor: uint16(vid), Product: uint16(pid)}, true
}
