// Package client is the authenticated API client of the quzhan gateway.
//
// # Overview
//
// The package provides:
//  1. ServiceConfig: per-backend runtime configuration (base URL, bearer
//     token, optional basic-auth credentials, static headers). The three
//     backends share one gateway and are grouped in Services.
//  2. Dispatcher: builds and sends requests with the standard headers and
//     the current token, then classifies the outcome.
//  3. Classify and APIError: every failure becomes exactly one *APIError.
//     HTTPStatus is the response status, StatusNoResponse (-1) when nothing
//     came back, or StatusNotSent (-2) when the request was never sent.
//  4. Coordinator: single-flight access token refresh. Requests failing with
//     the "access token expired" business code wait behind one refresh and
//     are replayed once with the new token.
//  5. RedirectPolicy: on unrecoverable credential failures clears the
//     session and navigates to the login path, once.
//  6. Client: the intercepted entry point combining all of the above.
//  7. InitDatabase and RunMigrations for the local SQLite database.
//
// # Error Handling
//
// Callers match *APIError with errors.As, and the coarse conditions with
// errors.Is: ErrUnavailable, ErrUnauthorized, ErrRefreshFailed.
//
// # Concurrency
//
// Client, Dispatcher, ServiceConfig, Coordinator and RedirectPolicy are safe
// for concurrent use. A refresh, once started, runs to completion even if
// the request that triggered it is cancelled.
package client
