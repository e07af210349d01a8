// Package hidraw provides a control transport over the Linux hidraw
// interface (or the platform HID API elsewhere) using
// github.com/sstallion/go-hid.
//
// Unlike the usbfs transport it leaves the kernel HID driver bound, so it
// coexists with other software reading the device. Only HID class report
// requests can be expressed:
//
//	SET_REPORT (output)   -> hid_write
//	SET_REPORT (feature)  -> hid_send_feature_report
//	GET_REPORT (feature)  -> hid_get_feature_report
//
// Each Transport is bound to one HID interface; use [Find] to locate the
// node of the interface a protocol addresses.
package hidraw
