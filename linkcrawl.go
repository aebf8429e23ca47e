// Package linkcrawl provides a same-origin web crawler that reports the
// HTTP status of every link found on every internally linked page.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., rod/, http/, goquery/).
package linkcrawl
