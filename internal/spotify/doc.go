// Package spotify implements a resilient polling client for the Spotify Web API.
//
// The [Client] owns the OAuth token lifecycle (refresh and one-time
// authorization-code exchange), polls the player endpoint for the current
// playback state, normalizes the response into a [models.PlaybackRecord],
// and dispatches remote-control commands off the polling path.
//
// # Polling model
//
// The client never schedules its own work. An external driver calls
// [Client.Poll] on a fixed interval; each call runs exactly one cycle of the
// state machine (token refresh if due, backoff check, one player request,
// response routing). Failures are local to the cycle: the previous record is
// retained on anything except an explicit "no active session" response.
//
// # Failure handling
//
// Transport failures arm an exponential backoff (5 seconds times the number
// of consecutive failures); explicit rate limiting honors the server's
// Retry-After header. Both cooldowns suppress requests without blocking the
// driver. See [BackoffState].
package spotify
