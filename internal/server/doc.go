// Package server hosts the local HTTP endpoint for the OAuth authorization flow.
//
// # Callback Handler
//
// [CallbackHandler] implements the authorization-code callback: it validates
// the state parameter (CSRF protection), captures the code, and delivers it
// through a channel.
//
// It only processes one callback to prevent replay attacks; the token
// exchange itself is the playback client's job.
//
// # Middleware
//
// [Middleware] wraps handlers in reverse order (last added executes first),
// following the standard Go pattern. [LogRequests] is the only middleware the
// login flow needs.
package server
