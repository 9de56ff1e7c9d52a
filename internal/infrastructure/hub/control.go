package hub

// HandleInbound applies one client frame to conn. Undecodable frames are
// logged and ignored; the connection stays open.
func (h *Hub) HandleInbound(conn Connection, raw []byte) {
	msg, err := DecodeControl(raw)
	if err != nil {
		h.recorder.InboundDecodeError()
		h.logger.Warnf("Ignoring malformed message from %s: %v", conn.ID(), err)
		return
	}

	switch msg.Type {
	case ControlSubscribe:
		Subscribe(conn, msg.Channels)
		h.logger.Debugf("Connection %s subscribed to %v", conn.ID(), msg.Channels)
	default:
		h.logger.Debugf("Ignoring %q message from %s", msg.Type, conn.ID())
	}
}
