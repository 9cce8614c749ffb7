// Package session is the single source of truth for who is logged in.
//
// A Session holds the current user, the access token and the Initialized
// flag. Every token change is written to the token store, pushed to every
// registered TokenSink (the per-service client configurations) and saved as
// a JSON snapshot so the session survives restarts. A rehydrated session
// always starts with Initialized == false, forcing LoadUserInfo to revalidate
// it against the backend before it is trusted.
package session
