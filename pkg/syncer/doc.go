/*
Package syncer drives pairwise reconciliation between the local catalog and
remote peers.

One sync is a pruning descent over the checksum tree:

 1. Enumerate the union of years on both sides.
 2. Skip any year whose checksum is present and equal on both sides; an
    equal checksum proves the entire subtree equal.
 3. Descend mismatched years into months, mismatched months into days.
 4. Merge each differing day: fetch both object sets, compute the sorted
    union, and push it to whichever side is missing something.

Merges commit atomically per day, so an aborted sync leaves every
already-merged day merged and a re-run skips the converged subtrees. The
merge is commutative and idempotent: syncing twice, or in either direction,
reaches the same end state.

The Runner wraps the engine in a ticker loop for daemon use, syncing every
configured peer each interval and retrying failures on the next tick.
*/
package syncer
