package main

import (
	"errors"
	"fmt"
	"net"
	"net/netip"
	"sync"

	"github.com/hypebeast/go-osc/osc"
)

var ErrInvalidAddress = errors.New("not a valid UDP address")

// oscMessageHandler receives every decoded message, bundles flattened in order.
type oscMessageHandler interface {
	handleMessage(msg *osc.Message)
}

// parseUDPAddr accepts only literal ip:port addresses.
func parseUDPAddr(s string) (*net.UDPAddr, error) {
	ap, err := netip.ParseAddrPort(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}
	return net.UDPAddrFromAddrPort(ap), nil
}

// OscReceiver listens for OSC packets on a UDP address and hands them to a
// handler, one at a time, in arrival order.
type OscReceiver struct {
	address string
	handler oscMessageHandler

	conn     net.PacketConn
	stopOnce sync.Once
	stopping chan struct{}
	done     chan struct{}
}

func NewOscReceiver(address string, handler oscMessageHandler) *OscReceiver {
	return &OscReceiver{
		address:  address,
		handler:  handler,
		stopping: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start binds the socket. Address errors are returned before anything runs.
func (r *OscReceiver) Start() error {
	addr, err := parseUDPAddr(r.address)
	if err != nil {
		return err
	}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return fmt.Errorf("can't listen on %s: %w", addr, err)
	}
	r.conn = conn
	logger.Info("listening for osc messages", "addr", conn.LocalAddr())
	go r.run()
	return nil
}

// LocalAddr is the bound address, useful when listening on port 0.
func (r *OscReceiver) LocalAddr() net.Addr {
	if r.conn == nil {
		return nil
	}
	return r.conn.LocalAddr()
}

func (r *OscReceiver) run() {
	defer close(r.done)
	buf := make([]byte, 65535)
	for {
		n, from, err := r.conn.ReadFrom(buf)
		if err != nil {
			select {
			case <-r.stopping:
			default:
				logger.Error("can't receive from socket", "err", err)
			}
			return
		}
		logger.Debug("received packet", "size", n, "from", from)
		packet, err := osc.ParsePacket(string(buf[:n]))
		if err != nil {
			logger.Warn("can't decode osc packet", "from", from, "err", err)
			continue
		}
		r.dispatch(packet)
	}
}

func (r *OscReceiver) dispatch(p osc.Packet) {
	switch p := p.(type) {
	case *osc.Message:
		r.handler.handleMessage(p)
	case *osc.Bundle:
		for _, m := range p.Messages {
			r.handler.handleMessage(m)
		}
		for _, b := range p.Bundles {
			r.dispatch(b)
		}
	}
}

func (r *OscReceiver) Stop() {
	r.stopOnce.Do(func() {
		close(r.stopping)
		if r.conn != nil {
			// ignore close error, it only unblocks ReadFrom
			r.conn.Close()
		}
	})
}

// Done is closed when the receive loop has returned.
func (r *OscReceiver) Done() <-chan struct{} {
	return r.done
}
