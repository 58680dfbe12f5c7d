// Package match assigns every participant a gift recipient inside their own
// category. Each cohort is solved by repeated greedy attempts: the attempt
// index picks a sender ordering (shuffled, rotated or reversed), senders then
// take a random compatible receiver from the shrinking pool, and an attempt
// that strands a sender is thrown away rather than backtracked. Cohorts are
// independent and run concurrently; any cohort that cannot be matched fails
// the whole run.
package match
