// Package files provides file system operations for the territory sales
// system: executable-relative path resolution, discovery of ingestible
// territory exports, and atomic persistence of the dataset snapshot.
//
// The snapshot is the only durable state the application owns. SnapshotStore
// writes it with a temp-file-and-rename sequence so readers never observe a
// partially written file, and treats a missing or corrupted snapshot as "no
// saved data" instead of an error the caller must abort on.
package files
