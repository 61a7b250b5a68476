/*
Package catalog implements the local photo catalog: a content-addressed set
of (day, object id) pairs partitioned by calendar day, with a three-level
checksum tree maintained over the day -> month -> year hierarchy.

# Key schema

All state lives in four ordered tables:

	objects: year(4 BE) | month(1) | day(1) | object_id(32) -> empty
	days:    year(4 BE) | month(1) | day(1)                 -> checksum(32)
	months:  year(4 BE) | month(1)                          -> checksum(32)
	years:   year(4 BE)                                     -> checksum(32)

Big-endian years make ascending key order match calendar order, so the
prefix scans that rebuild month and year checksums visit entries in exactly
the order the checksum definition requires.

# Checksum maintenance

AddObject and PutDay each run as one atomic store transaction: the object
writes, then a rescan of the affected day, month, and year to rewrite the
three covering checksums. A failure anywhere rolls the whole transaction
back, so readers never observe object entries whose covering checksums are
stale.

The checksum tree is what makes peer reconciliation cheap: two catalogs with
equal year checksums provably hold identical object sets for that year, and
the sync engine skips the entire subtree.
*/
package catalog
