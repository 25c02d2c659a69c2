// Package harness validates the density model statistically.
//
// A Capturer drives many infections from inoculation to extinction and
// reduces each blood-stage density series to nine statistics, the figures of
// table 1 in Molineaux et al. (2001). After all runs each statistic is sorted
// independently and five percentiles are extracted into a Table. Tables are
// written to and compared against tab-separated golden files:
//
//	stat	c5	q1	med	q3	c95
//	init_slope	...
//	log_1st_max	...
//
// Comparison never aborts: every mismatch, and an unreadable file, becomes
// one entry of a Report.
//
// # Suite Format
//
// Suites group capture cases in YAML:
//
//	name: molineaux
//	description: "Percentile regression per variant mode"
//	cases:
//	  - name: MolineauxStatsOrig
//	    mode: original
//	    replication_gamma: false
//	    runs: 200
//	    seed: 1095
//	    action: compare
//
// # Deterministic Testing
//
// Each case reseeds its own random.Source and resets the day clock before
// every run, so a case yields the same table however often it is run.
package harness
