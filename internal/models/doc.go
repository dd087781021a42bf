// Package models defines domain entities and persistence interfaces for the nowplayd playback client.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): Lightweight structs representing remote playback state
//   - [PlaybackRecord] : Normalized now-playing metadata, the only artifact the client exposes to consumers
//   - [PlaybackStatus] : Playing/paused/stopped state of the active session
//
// 2. Persistent Entities: Database-backed models with full lifecycle management
//   - [Play] : A playback-history entry recorded whenever the watched track changes
//
// All persistent entities implement the Model interface providing ID generation, timestamps, validation, and soft delete support.
// The Repository[T] interface defines standard CRUD operations for database access.
package models
