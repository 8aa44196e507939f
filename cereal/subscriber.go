package cereal

import (
	"github.com/pfeiferj/gomsgq"
	"github.com/pkg/errors"
	"pfeifer.dev/avsim/control"
	"pfeifer.dev/avsim/settings"
	"pfeifer.dev/avsim/utils"
)

type Subscriber struct {
	Sub  gomsgq.MsgqSubscriber
	msgq gomsgq.Msgq
}

// Read returns the next tick on the queue, if there is one.
func (s *Subscriber) Read() (rec control.TickRecord, success bool) {
	data := s.Sub.Read()
	if len(data) == 0 {
		return rec, false
	}
	rec, err := Decode(data)
	if err != nil {
		utils.Logde(err, "dropping malformed tick")
		return rec, false
	}
	return rec, true
}

func (s *Subscriber) Close() {
	err, closeErr := s.msgq.Close()
	utils.Logde(err, "could not unmap telemetry queue")
	utils.Logde(closeErr, "could not close telemetry queue")
}

// NewSubscriber attaches to a queue. With conflate set only the newest
// message is kept.
func NewSubscriber(name string, conflate bool) (subscriber *Subscriber, err error) {
	msgq := gomsgq.Msgq{}
	err = msgq.Init(name, settings.DEFAULT_SEGMENT_SIZE)
	if err != nil {
		return nil, errors.Wrapf(err, "could not open queue %s", name)
	}
	sub := gomsgq.MsgqSubscriber{}
	sub.Conflate = conflate
	sub.Init(msgq)

	return &Subscriber{Sub: sub, msgq: msgq}, nil
}
