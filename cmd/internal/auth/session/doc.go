// Package session holds process-wide dashboard session state and the forced-logout guard.
//
// A Context is created once at startup and passed by reference to the auth
// interceptor and to the Guard. Its flags start false and are never reset for
// the lifetime of the process.
package session
