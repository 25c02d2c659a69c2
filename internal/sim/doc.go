// Package sim defines the discrete time model shared by the density engine
// and the validation harness.
//
// Time advances in whole simulated days. Ordering never depends on wall-clock
// time: a Clock is a logical day counter that the owning loop advances by
// exactly one day per step, and can be reset so that consecutive runs see
// identical day values.
package sim
