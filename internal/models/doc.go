// Package models defines the client-visible data model for the media library
// server.
//
// The package contains three categories of types:
//
// 1. Library entities, projections of backend records:
//   - [MediaEntry] : a single media file with descriptive and status fields
//   - [MediaMetadata] : optional rich metadata attached to an entry
//   - [SearchPage] : the canonical paginated list response
//
// 2. Account entities:
//   - [UserProfile] : the authenticated principal
//   - [UserPreferences] / [ColorPalette] : display preferences
//   - [TokenResponse] : bearer credential returned by the credential exchange
//
// 3. Playlists:
//   - [Playlist] : a named, ordered collection of media references
//   - [PlaylistItem] : a (position, media reference) pair
//
// All identifiers are opaque strings. Partial update payloads use pointer
// fields so that "absent" and "zero" stay distinguishable; the *Patch types
// carry the documented shallow-merge precedence (server response wins over
// previously cached fields).
package models
