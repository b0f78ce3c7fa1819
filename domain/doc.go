// Package domain defines the core data structures of bridgelog.
// It contains the activity entry model handed around by the logger, the stored
// activity model kept by the sink store, and the interfaces that describe the
// logger's collaborators: the remote sink, the durable key/value store, the
// activity repository and the connectivity signal source.
//
// Implementations live elsewhere (db, sink, connectivity), which keeps the
// logger independent of the storage and transport technology behind it.
package domain
