// Package api provides the REST transport and typed entity accessor for
// the mail service: request/response plumbing with automatic retry, the
// login endpoints, and load_entity/load_range for the encrypted entity
// tree the rest of the client walks.
//
// # Client creation
//
// [New] takes the service base URL and functional [Option]s. Calls made
// before a session exists (the salt endpoint) omit the accessToken header;
// [WithAccessToken] or [Client.SetAccessToken] attach it for everything
// after login.
//
// # Retry behavior
//
// Requests are retried with exponential backoff (1s, 2s, 4s, ...) for
// 408/429/500/502/503/504, up to [DefaultMaxRetries] retries after the
// first attempt by default.
//
// # Error handling
//
// Non-2xx responses surface as [github.com/digitalWestie/tutanota-cli/internal/apierrors.RESTError];
// transport failures (DNS, connect, timeout, reset) surface as
// [github.com/digitalWestie/tutanota-cli/internal/apierrors.NetworkError]. Both support
// errors.Is against the sentinel kinds in that package.
package api
