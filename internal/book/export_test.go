package book

// ReadSnapshotWithLimit exposes the size-bounded decoder to tests.
var ReadSnapshotWithLimit = readSnapshot
