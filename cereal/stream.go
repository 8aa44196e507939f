package cereal

import (
	"io"

	"capnproto.org/go/capnp/v3"
	"github.com/pkg/errors"
	"pfeifer.dev/avsim/control"
)

// WriteTicks writes records as consecutive packed tick messages.
func WriteTicks(w io.Writer, records []control.TickRecord) error {
	enc := capnp.NewPackedEncoder(w)
	for _, rec := range records {
		msg, err := NewTickMessage(rec)
		if err != nil {
			return err
		}
		if err := enc.Encode(msg); err != nil {
			return errors.Wrapf(err, "could not write tick %d", rec.Cycle)
		}
	}
	return nil
}

// ReadTicks reads a stream written by WriteTicks until EOF.
func ReadTicks(r io.Reader) ([]control.TickRecord, error) {
	dec := capnp.NewPackedDecoder(r)
	records := []control.TickRecord{}
	for {
		msg, err := dec.Decode()
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return records, errors.Wrap(err, "could not read tick stream")
		}
		rec, err := decodeMessage(msg)
		if err != nil {
			return records, err
		}
		records = append(records, rec)
	}
}
