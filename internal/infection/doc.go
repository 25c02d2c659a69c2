// Package infection implements the Molineaux-family within-host parasite
// density engine.
//
// An Infection follows one strain from inoculation to extinction. The owning
// host loop calls Update once per simulated day, passing the survival factor
// left over by external immunity and drugs; Update returns true once the
// density has stayed below the numerical floor for the growth law's
// extinction window. After that first true return the caller drops the
// infection.
//
// # Growth laws
//
// Two structurally different laws are selectable through Mode:
//
//   - the variant-competition engine (original, 1st_max_gamma,
//     mean_dur_gamma, 1st_max_and_mean_dur_gamma): fifty antigenic variants
//     replicate on a two-day cycle, switch between each other, and are
//     suppressed by innate, variant-transcending and variant-specific
//     immunity;
//   - the aggregate log-growth law (pairwise): total log density rises to a
//     drawn first peak, then follows an envelope declining to the detection
//     limit over the drawn span, with antigenic-variation waves underneath.
//
// Densities are computed on even blood-stage days; odd days report the
// geometric mean of their neighbours.
//
// # Determinism
//
// Every stochastic quantity is drawn once, at construction, from the
// random.Source the caller passes in. Given the same seed, mode, replication
// gamma flag and construction order, trajectories are bit-identical.
package infection
