// Package metadata stores small client-side values (the access token and
// the persisted session snapshot) in the SQLite "metadata" table.
//
// SQLiteRepository works over dbx.DBTX, so the same code runs against a
// *sql.DB or inside a transaction opened with dbx.WithTx.
package metadata
