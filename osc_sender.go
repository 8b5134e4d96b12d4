package main

import (
	"fmt"
	"net"
	"sync"

	"github.com/hypebeast/go-osc/osc"
)

// OscSender relays controller feedback to the UI: /position with the
// playback fraction and /rms with the sample envelope.
type OscSender struct {
	local, remote string
	events        <-chan GuiEvent

	conn     net.PacketConn
	to       *net.UDPAddr
	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

func NewOscSender(local, remote string, events <-chan GuiEvent) *OscSender {
	return &OscSender{
		local:  local,
		remote: remote,
		events: events,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

func (s *OscSender) Start() error {
	from, err := parseUDPAddr(s.local)
	if err != nil {
		return err
	}
	to, err := parseUDPAddr(s.remote)
	if err != nil {
		return err
	}
	conn, err := net.ListenUDP("udp", from)
	if err != nil {
		return fmt.Errorf("can't bind %s: %w", from, err)
	}
	s.conn = conn
	s.to = to
	logger.Info("sending osc feedback", "from", conn.LocalAddr(), "to", to)
	go s.run()
	return nil
}

func (s *OscSender) run() {
	defer close(s.done)
	defer s.conn.Close()
	for {
		select {
		case e := <-s.events:
			if err := s.send(guiMessage(e)); err != nil {
				logger.Warn("can't send osc feedback", "err", err)
			}
		case <-s.stop:
			return
		}
	}
}

func guiMessage(e GuiEvent) *osc.Message {
	switch e.Kind {
	case GuiSampleRMS:
		msg := osc.NewMessage("/rms")
		for _, v := range e.RMS {
			msg.Append(v)
		}
		return msg
	default:
		return osc.NewMessage("/position", e.Position)
	}
}

func (s *OscSender) send(msg *osc.Message) error {
	data, err := msg.MarshalBinary()
	if err != nil {
		return fmt.Errorf("encoding %s: %w", msg.Address, err)
	}
	_, err = s.conn.WriteTo(data, s.to)
	return err
}

func (s *OscSender) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
}

func (s *OscSender) Done() <-chan struct{} {
	return s.done
}
