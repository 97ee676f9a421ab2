// Package apiclient is the per-module request client used by dashboard code.
//
// A Client turns a logical Request into an ordered list of candidate URLs,
// tries them in order, and returns the first successful JSON body. A 404 or a
// transport failure moves on to the next candidate. Any other failure is
// returned at once as an *Error.
package apiclient
