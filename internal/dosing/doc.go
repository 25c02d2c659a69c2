// Package dosing supplies the per-day survival factor an infection receives
// from drug treatment.
//
// The drug concentration model itself lives outside this module. What lives
// here is the lookup contract around it: a Table maps a patient's age or body
// mass to a dose multiplier, a Schedule lists the medications of a treatment
// course, a Regimen combines the two into concrete doses, and a KillSchedule
// turns doses into the survival factor passed to infection.Infection.Update.
//
// Table lookups use upper-bound semantics: the multiplier of the smallest
// threshold strictly greater than the key. A key at or beyond the last
// threshold is a configuration error.
package dosing
