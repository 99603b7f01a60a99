// Package ctrlmsg implements the control-channel wire format a
// controller uses to install and remove time-triggered flow entries: a
// download batch bracketed by start/end control records, each
// containing flow-mod records. It is grounded on
// include/openflow/onf-tt-ext.h's onf_tt_flow_ctrl/onf_tt_flow_mod
// structs for the wire layout, and adapted from the teacher library's
// header/request/mux/dispatch/reader/ioutil/runner files for the
// framing and dispatch idiom — minus any of the teacher's actual
// socket handling, since opening a transport is explicitly out of
// scope here.
package ctrlmsg

import (
	"encoding/binary"
	"errors"
	"io"
)

// Command selects whether a download batch adds or removes flows,
// onf_tt_flow_ctrl_command.
type Command uint8

const (
	CommandAdd    Command = 0
	CommandDelete Command = 1
)

// EntryType selects which of a port's two tables a flow-mod record
// targets: the send table or the arrive table tt_schedule_info keeps
// side by side.
type EntryType uint8

const (
	EntrySend    EntryType = 0
	EntryReceive EntryType = 1
)

// ctrlType is the wire value of onf_tt_flow_ctrl_type, kept unexported
// since DownloadBatch derives it from which half of ReadFrom/WriteTo is
// running rather than exposing it as a field callers set directly.
type ctrlType uint8

const (
	downloadStartRequest ctrlType = 0
	downloadEndRequest   ctrlType = 2
)

// MaxFlowID bounds the flow ids a control message may carry, matching
// tsinghua-ext.h's MAX_TT_TABLE_SIZE (the same bound TT_FLOW_ID_MAX
// names in tt.h).
const MaxFlowID = 1024

// ErrFlowIDRange is returned when a decoded flow id is >= MaxFlowID.
var ErrFlowIDRange = errors.New("ctrlmsg: flow id out of range")

// ErrFraming is returned when a download batch's start/end control
// records don't bracket the body the way they're supposed to.
var ErrFraming = errors.New("ctrlmsg: malformed download batch framing")

// flowCtrl is the wire record onf_tt_flow_ctrl: 8 bytes, a command, a
// type, two pad bytes, and a 32-bit flow count.
type flowCtrl struct {
	Command Command
	Type    ctrlType
	_       uint16 // pad
	Count   uint32
}

const flowCtrlLen = 8

func (c *flowCtrl) WriteTo(w io.Writer) (int64, error) {
	if err := binary.Write(w, binary.BigEndian, c); err != nil {
		return 0, err
	}
	return flowCtrlLen, nil
}

func (c *flowCtrl) ReadFrom(r io.Reader) (int64, error) {
	if err := binary.Read(r, binary.BigEndian, c); err != nil {
		return 0, err
	}
	return flowCtrlLen, nil
}

// FlowMod is one scheduled-flow record within a download batch, the Go
// shape of onf_tt_flow_mod. FlowID is widened to 16 bits from that
// struct's 8-bit field — see DESIGN.md — since MaxFlowID alone already
// exceeds what a single byte can address; the freed byte replaces the
// struct's single pad byte, keeping the wire record 20 bytes long.
type FlowMod struct {
	Port          uint8
	EType         EntryType
	FlowID        uint16
	ScheduledTime uint32
	Period        uint32
	BufferID      uint32
	PacketSize    uint32
}

// WriteTo writes m in its 20-byte wire form.
func (m *FlowMod) WriteTo(w io.Writer) (int64, error) {
	if err := binary.Write(w, binary.BigEndian, m); err != nil {
		return 0, err
	}
	return 20, nil
}

// ReadFrom reads m from its 20-byte wire form.
func (m *FlowMod) ReadFrom(r io.Reader) (int64, error) {
	if err := binary.Read(r, binary.BigEndian, m); err != nil {
		return 0, err
	}
	if m.FlowID >= MaxFlowID {
		return 20, ErrFlowIDRange
	}
	return 20, nil
}
