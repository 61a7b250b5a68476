package catalog

import (
	"encoding/binary"

	"github.com/snorochevskiy/photo-sync-tst/pkg/types"
)

// Table names, one bucket per entity kind.
var (
	tableObjects = []byte("objects")
	tableDays    = []byte("days")
	tableMonths  = []byte("months")
	tableYears   = []byte("years")
)

// Key layouts. Year is big-endian so ascending byte order matches calendar
// order; month and day fit in one byte each.
//
//	objects: year(4 BE) | month(1) | day(1) | object_id(32) -> empty
//	days:    year(4 BE) | month(1) | day(1)                 -> checksum(32)
//	months:  year(4 BE) | month(1)                          -> checksum(32)
//	years:   year(4 BE)                                     -> checksum(32)

func yearKey(year int) []byte {
	k := make([]byte, 4)
	binary.BigEndian.PutUint32(k, uint32(int32(year)))
	return k
}

func monthKey(year, month int) []byte {
	return append(yearKey(year), byte(month))
}

func dayKey(d types.Date) []byte {
	return append(monthKey(d.Year, d.Month), byte(d.Day))
}

func objectKey(d types.Date, id types.ObjectID) []byte {
	return append(dayKey(d), id[:]...)
}

func decodeYearKey(k []byte) int {
	return int(int32(binary.BigEndian.Uint32(k[:4])))
}
