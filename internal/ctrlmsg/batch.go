package ctrlmsg

import (
	"io"

	"github.com/qijinzhi/ovs/internal/encoding"
)

// DownloadBatch is a controller-to-datapath flow install/remove batch:
// a start record naming how many flow-mods follow, the records
// themselves, and an end record repeating the count — the framing
// ONF_TFCT_DOWNLOAD_START_REQUEST/_END_REQUEST describe, fully
// implemented here in place of the stub handlers
// ofproto/tt-ext.c leaves for them.
type DownloadBatch struct {
	Command Command
	Flows   []FlowMod
}

// WriteTo writes the batch as start-record, flow-mod records, end-record.
func (b *DownloadBatch) WriteTo(w io.Writer) (int64, error) {
	start := flowCtrl{Command: b.Command, Type: downloadStartRequest, Count: uint32(len(b.Flows))}
	end := flowCtrl{Command: b.Command, Type: downloadEndRequest, Count: uint32(len(b.Flows))}

	n, err := encoding.WriteTo(w, &start)
	if err != nil {
		return n, err
	}

	nn, err := encoding.WriteSliceTo(w, b.Flows)
	n += nn
	if err != nil {
		return n, err
	}

	nn, err = encoding.WriteTo(w, &end)
	n += nn
	return n, err
}

// ReadFrom reads a batch previously written by WriteTo, validating that
// the end record's command and count agree with the start record.
func (b *DownloadBatch) ReadFrom(r io.Reader) (int64, error) {
	var start flowCtrl
	n, err := encoding.ReadFrom(r, &start)
	if err != nil {
		return n, err
	}
	if start.Type != downloadStartRequest {
		return n, ErrFraming
	}

	b.Command = start.Command
	b.Flows = nil

	nn, err := encoding.ReadSliceFrom(r, encoding.ReaderMakerFunc(func() (io.ReaderFrom, error) {
		return &FlowMod{}, nil
	}), int(start.Count), &b.Flows)
	n += nn
	if err != nil {
		return n, err
	}

	var end flowCtrl
	nn, err = encoding.ReadFrom(r, &end)
	n += nn
	if err != nil {
		return n, err
	}
	if end.Type != downloadEndRequest || end.Command != start.Command || end.Count != start.Count {
		return n, ErrFraming
	}

	return n, nil
}
