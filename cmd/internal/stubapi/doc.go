// Package stubapi is an in-memory hiring backend for local development and
// end-to-end tests of the dashboard client.
//
// It serves the auth, hiring-manager and interviewer endpoints plus the /ws
// notification stream, mounted either at the root or under a prefix such as
// /api. Access tokens are PASETO v4; refresh tokens travel in an HttpOnly
// cookie guarded by a double-submit CSRF cookie and rotate on every refresh.
package stubapi
