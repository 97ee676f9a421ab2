// Package interceptor implements the dashboard auth layer as http.RoundTripper middleware.
//
// The Transport classifies each outgoing request, attaches the bearer token and
// session cookies to API calls, and on a 401 performs a single refresh followed
// by a single retry of the original request. When the refresh fails it forces a
// logout through the session Guard and hands the original 401 back to the caller.
package interceptor
