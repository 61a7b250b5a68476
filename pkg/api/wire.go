package api

import "github.com/snorochevskiy/photo-sync-tst/pkg/types"

// Wire types for the peer HTTP surface. Checksums and object ids travel as
// hex strings via their TextMarshaler implementations.

type YearsResponse struct {
	Years []int `json:"years"`
}

type MonthsResponse struct {
	Months []int `json:"months"`
}

type DaysResponse struct {
	Days []int `json:"days"`
}

type ChecksumResponse struct {
	Checksum types.Checksum `json:"checksum"`
}

type ObjectsResponse struct {
	Objects []types.ObjectID `json:"objects"`
}

type PutDayRequest struct {
	Objects []types.ObjectID `json:"objects"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
