// Package realtime delivers dashboard notifications over websockets.
//
// The server side is a Gateway that authenticates the bearer token on the
// upgrade request and fans notifications out through a Broker. The client side
// is a Client that dials the gateway with the stored credential and reuses the
// interceptor's refresh flow when the handshake is rejected with 401.
package realtime
