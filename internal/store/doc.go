// Package store caches rendered artifacts (recipe PDFs, book volumes) in a
// SQLite database. Every entry carries its own expiry; reads treat expired
// entries as missing and Purge deletes them.
package store
