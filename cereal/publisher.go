package cereal

import (
	"context"

	"github.com/pfeiferj/gomsgq"
	"github.com/pkg/errors"
	"pfeifer.dev/avsim/control"
	"pfeifer.dev/avsim/settings"
	"pfeifer.dev/avsim/utils"
)

type Publisher struct {
	Pub  gomsgq.MsgqPublisher
	msgq gomsgq.Msgq
}

func (p *Publisher) Send(rec control.TickRecord) error {
	b, err := Encode(rec)
	if err != nil {
		return err
	}
	p.Pub.Send(b)
	return nil
}

// Forward publishes every record from records until the channel closes or
// ctx is done.
func (p *Publisher) Forward(ctx context.Context, records <-chan control.TickRecord) {
	for {
		select {
		case <-ctx.Done():
			return
		case rec, ok := <-records:
			if !ok {
				return
			}
			utils.Logwe(p.Send(rec), "could not publish tick", "cycle", rec.Cycle)
		}
	}
}

func (p *Publisher) Close() {
	err, closeErr := p.msgq.Close()
	utils.Logde(err, "could not unmap telemetry queue")
	utils.Logde(closeErr, "could not close telemetry queue")
}

func NewPublisher(name string) (publisher *Publisher, err error) {
	msgq := gomsgq.Msgq{}
	err = msgq.Init(name, settings.DEFAULT_SEGMENT_SIZE)
	if err != nil {
		return nil, errors.Wrapf(err, "could not open queue %s", name)
	}
	pub := gomsgq.MsgqPublisher{}
	pub.Init(msgq)

	return &Publisher{Pub: pub, msgq: msgq}, nil
}
