package scsiq

import (
	"os"
	"sync"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/hashicorp/go-hclog"
	"github.com/oklog/ulid/v2"
	"github.com/pierrec/lz4/v4"
	"github.com/pkg/errors"
)

// TraceRecord is one captured transaction. Data holds the parameter
// bytes as the device returned them (from-device transfers only).
type TraceRecord struct {
	Id        string    `cbor:"1,keyasint"`
	Time      time.Time `cbor:"2,keyasint"`
	CDB       []byte    `cbor:"3,keyasint"`
	Direction int       `cbor:"4,keyasint"`
	Status    byte      `cbor:"5,keyasint"`
	Sense     []byte    `cbor:"6,keyasint"`
	Transport string    `cbor:"7,keyasint"`
	Data      []byte    `cbor:"8,keyasint"`
}

// Tracer appends every transaction of the transports it wraps to an
// lz4-compressed stream of CBOR records. Captures replay through
// ReplayTransport.
type Tracer struct {
	log hclog.Logger

	mu  sync.Mutex
	f   *os.File
	lz  *lz4.Writer
	enc *cbor.Encoder
}

// NewTracer creates (truncating) the capture file at path.
func NewTracer(log hclog.Logger, path string) (*Tracer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrapf(err, "creating capture file")
	}

	lz := lz4.NewWriter(f)

	return &Tracer{
		log: log.Named("trace"),
		f:   f,
		lz:  lz,
		enc: cbor.NewEncoder(lz),
	}, nil
}

// Close flushes the compression frame and closes the capture file.
func (t *Tracer) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.lz.Close(); err != nil {
		t.f.Close()
		return err
	}

	return t.f.Close()
}

// Wrap returns a transport that records everything tr does.
func (t *Tracer) Wrap(tr Transport) Transport {
	return &tracedTransport{t: t, tr: tr}
}

func (t *Tracer) record(req Request, res Result) {
	rec := TraceRecord{
		Id:        ulid.Make().String(),
		Time:      time.Now().UTC(),
		CDB:       append([]byte(nil), req.CDB()...),
		Direction: int(req.Direction()),
		Status:    res.Status,
		Sense:     append([]byte(nil), res.Sense...),
	}

	if res.TransportErr != nil {
		rec.Transport = res.TransportErr.Error()
	}

	if req.Direction() == DirectionFromDevice && res.Data != nil {
		rec.Data = append([]byte(nil), res.Data.Bytes()...)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	// A capture failure must not fail the command it observed.
	if err := t.enc.Encode(rec); err != nil {
		t.log.Error("error encoding trace record", "error", err, "id", rec.Id)
	}
}

type tracedTransport struct {
	t  *Tracer
	tr Transport
}

func (tt *tracedTransport) Issue(req Request) Result {
	res := tt.tr.Issue(req)
	tt.t.record(req, res)

	return res
}
