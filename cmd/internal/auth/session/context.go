package session

import "sync/atomic"

// Context carries the process-lifetime session flags.
type Context struct {
	interceptorInstalled atomic.Bool
	redirectIssued       atomic.Bool
}

// NewContext returns a Context with both flags cleared.
func NewContext() *Context {
	return &Context{}
}

// MarkInterceptorInstalled sets the installed flag and reports whether this call set it.
func (c *Context) MarkInterceptorInstalled() bool {
	return c.interceptorInstalled.CompareAndSwap(false, true)
}

// InterceptorInstalled reports whether an auth interceptor was installed.
func (c *Context) InterceptorInstalled() bool {
	return c.interceptorInstalled.Load()
}

// claimRedirect sets the redirect flag and reports whether this call set it.
func (c *Context) claimRedirect() bool {
	return c.redirectIssued.CompareAndSwap(false, true)
}

// RedirectIssued reports whether a login redirect was already issued.
func (c *Context) RedirectIssued() bool {
	return c.redirectIssued.Load()
}
