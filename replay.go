package scsiq

import (
	"io"
	"os"

	"github.com/fxamacker/cbor/v2"
	"github.com/hashicorp/go-hclog"
	"github.com/pierrec/lz4/v4"
	"github.com/pkg/errors"
)

// ReplayTransport plays a capture file back, one recorded outcome per
// issued command, in capture order. It makes a trace taken against real
// hardware usable as a deterministic fake device.
type ReplayTransport struct {
	log hclog.Logger

	records []TraceRecord
	pos     int
}

// OpenReplay reads the whole capture at path into memory.
func OpenReplay(log hclog.Logger, path string) (*ReplayTransport, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening capture file")
	}

	defer f.Close()

	dec := cbor.NewDecoder(lz4.NewReader(f))

	var records []TraceRecord

	for {
		var rec TraceRecord

		err := dec.Decode(&rec)
		if err == io.EOF {
			break
		}

		if err != nil {
			return nil, errors.Wrapf(err, "decoding trace record %d", len(records))
		}

		records = append(records, rec)
	}

	return &ReplayTransport{
		log:     log.Named("replay"),
		records: records,
	}, nil
}

// Remaining reports how many recorded outcomes have not been replayed.
func (r *ReplayTransport) Remaining() int {
	return len(r.records) - r.pos
}

func (r *ReplayTransport) Issue(req Request) Result {
	if r.pos >= len(r.records) {
		return Result{TransportErr: errors.New("replay exhausted")}
	}

	rec := r.records[r.pos]
	r.pos++

	r.log.Debug("replaying transaction", "id", rec.Id, "status", rec.Status)

	res := Result{
		Status: rec.Status,
		Sense:  rec.Sense,
		Data:   req.Data(),
	}

	if rec.Transport != "" {
		res.TransportErr = errors.New(rec.Transport)
	}

	// The replayed capture may have been taken with a different buffer
	// capacity; copy what fits.
	if len(rec.Data) > 0 {
		copy(res.Data.Bytes(), rec.Data)
	}

	return res
}
