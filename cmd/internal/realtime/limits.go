package realtime

import "time"

const (
	// Max bytes per websocket frame read.
	maxFrameBytes = 64 << 10

	heartbeatInterval = 25 * time.Second
	heartbeatTimeout  = 5 * time.Second
	maxPingFailures   = 3

	// Inbound events per second per connection, with burst.
	inboundRate  = 10
	inboundBurst = 20

	defaultSendQueue = 64
	minSendQueue     = 8

	defaultWriteTimeout = 5 * time.Second
	closeGrace          = time.Second
)
