package shim

import "encoding/binary"

// PushTT splices a Header carrying flowID in front of f's IPv4/UDP
// packet and rewrites its EtherType to EtherTypeTT, the Go equivalent of
// push_tt. f must already hold a TRDP frame with at least HeaderLen
// bytes of headroom reserved (see NewFrame); a caller that built the
// frame without anticipating conversion should reallocate into a new
// Frame and retry on ErrNoHeadroom.
//
// The Header's Len field is set to the length of the original frame —
// Ethernet header through UDP payload — matching tt.c's
// `tt_hdr->len = skb->len - 4`, computed post-push against the
// already-grown skb->len. push_tt itself flags this as uncertain; this
// is the literal reading of that line, kept rather than guessed at
// differently.
func PushTT(f *Frame, flowID uint16) error {
	if !IsTRDP(f.Bytes()) {
		return ErrNotTRDP
	}
	if len(f.Bytes()) < EthHeaderLen {
		return ErrTruncated
	}

	originalLen := len(f.Bytes())

	data, err := f.PushHeadroom(HeaderLen)
	if err != nil {
		return err
	}

	// The Ethernet header was at data[HeaderLen:HeaderLen+EthHeaderLen]
	// before the push; move it to the front of the now-extended frame,
	// opening a HeaderLen gap right after it for the shim header.
	copy(data[:EthHeaderLen], data[HeaderLen:HeaderLen+EthHeaderLen])
	binary.BigEndian.PutUint16(data[12:14], EtherTypeTT)

	hdr := Header{FlowID: flowID, Len: uint16(originalLen)}
	binary.BigEndian.PutUint16(data[EthHeaderLen:EthHeaderLen+2], hdr.FlowID)
	binary.BigEndian.PutUint16(data[EthHeaderLen+2:EthHeaderLen+4], hdr.Len)

	return nil
}

// PopTT removes f's shim Header and restores its EtherType to
// EtherTypeIPv4, the Go equivalent of pop_tt.
func PopTT(f *Frame) error {
	if !IsTT(f.Bytes()) {
		return ErrNotTT
	}

	data := f.Bytes()
	if len(data) < EthHeaderLen+HeaderLen {
		return ErrTruncated
	}

	// Shift the Ethernet header forward over the shim header before
	// dropping the leading HeaderLen bytes, mirroring pop_tt's memmove
	// ahead of __skb_pull.
	copy(data[HeaderLen:HeaderLen+EthHeaderLen], data[:EthHeaderLen])
	data = f.PullHeadroom(HeaderLen)
	binary.BigEndian.PutUint16(data[12:14], EtherTypeIPv4)

	return nil
}

// TRDPToTT converts a TRDP frame to a time-triggered frame, extracting
// the flow id from the first two bytes of the UDP payload as
// trdp_to_tt does, and returns the resulting frame's bytes.
func TRDPToTT(frame []byte) ([]byte, error) {
	if !IsTRDP(frame) {
		return nil, ErrNotTRDP
	}

	payloadOffset := EthHeaderLen + ipv4HeaderLen + udpHeaderLen
	if len(frame) < payloadOffset+2 {
		return nil, ErrTruncated
	}
	flowID := binary.BigEndian.Uint16(frame[payloadOffset : payloadOffset+2])

	f := NewFrame(HeaderLen, frame)
	if err := PushTT(f, flowID); err != nil {
		return nil, err
	}
	return f.Bytes(), nil
}

// TTToTRDP converts a time-triggered frame back to TRDP and returns the
// resulting frame's bytes.
func TTToTRDP(frame []byte) ([]byte, error) {
	f := NewFrame(0, frame)
	if err := PopTT(f); err != nil {
		return nil, err
	}
	return f.Bytes(), nil
}
