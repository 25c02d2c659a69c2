// Package config holds the fitted constants shared by every infection and the
// configuration error kinds reported at setup.
//
// A ParameterSet is built once, validated, and shared read-only by pointer.
// Parameter files are CUE documents checked against a closed schema:
//
//	first_max_mean:     4.7601
//	first_max_sd:       0.5008
//	diff_pos_days_mean: 2.2736
//	diff_pos_days_sd:   0.2315
//
// Every configuration failure is returned as *Error carrying an ErrorCode, so
// callers can tell an unknown variant mode from a bad dosage table without
// string matching. Configuration errors are fatal at setup and never retried.
package config
