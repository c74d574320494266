// Package rounds owns the donut round lifecycle: generating a candidate
// partition that avoids repeating the previous round, tracking it as a
// proposal, and promoting it to the current round on confirmation.
//
// There is no cross-request locking per chat. Concurrent propose or
// confirm calls for the same chat are a last-write-wins race; callers are
// expected to issue one operation per chat at a time.
package rounds
