// Package models defines the wire DTOs exchanged with the quzhan gateway:
// user-hub accounts and profiles, post-service posts and post-search hits.
//
// Field names follow the JSON produced by the backend services, which mixes
// snake_case (most payloads) with camelCase (timeline cursors, login data).
package models
