// Package sessions issues and rotates stub-backend login sessions.
//
// Access tokens are short-lived PASETO v4.public tokens carrying the user,
// session and role. Refresh tokens are opaque random strings stored only as
// a keyed hash. Rotation revokes the old session and links it to its
// successor, so presenting a rotated refresh token again is detected as reuse
// and revokes every session of that user.
package sessions
