/*
Package storage provides the ordered key-value layer the catalog persists
into.

The Store interface is deliberately narrow: point reads, point writes, point
deletes, ascending prefix scans, and transactions that commit atomically.
Two implementations ship:

BoltStore:
  - BoltDB-backed, one database file per catalog
  - Tables map to top-level buckets, created lazily
  - db.Update is the atomic multi-key batch; a crash can never expose a
    half-applied mutation
  - Concurrent reads via db.View, serialized writers

MemoryStore:
  - Map-backed with staged-write transactions
  - Same commit semantics as BoltStore
  - Used by tests and by ephemeral loopback peers

The key schema itself (how dates and object ids become bytes) belongs to the
catalog package; storage only promises ordering and atomicity.
*/
package storage
