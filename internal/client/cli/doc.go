// Package cli provides the interactive quzhan command-line client.
//
// It wires configuration, the local SQLite database, the session and the
// authenticated API client, restores the previous session and revalidates it
// against the backend, then runs a REPL over the marketplace commands:
//
//   - account: register, login, phonelogin, logout, whoami
//   - profile: profile, editprofile, avatar
//   - posts: latest, more, mine, show, publish, delete, hot
//   - search: search, hotterms
//   - moderation: admin list|audit|tag|delete
//
// When the client gives up on the stored credentials it clears the session
// and flags the app; the next prompt then runs the login flow.
package cli
