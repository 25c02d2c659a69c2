// Package store archives harness captures in SQLite.
//
// Each capture session records its setup (mode, replication gamma, seed,
// run count, fitted parameters), the sorted per-run values of every
// statistic, and the extracted percentile table. Archived tables can be
// compared against later captures the same way golden files are.
//
// # Ordering
//
// Captures are ordered by a logical seq column assigned at write time, never
// by wall-clock timestamps. Every query orders by seq ASC, id ASC COLLATE
// BINARY so results are identical across runs.
//
// NaN statistics are stored as NULL and read back as NaN.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
