package stream

import (
	"hash/crc32"
)

// crcTable is the IEEE CRC-32 table.
var crcTable = crc32.MakeTable(crc32.IEEE)

// ComputeCRC computes CRC-32 IEEE of the given bytes.
func ComputeCRC(data []byte) uint32 {
	return crc32.Checksum(data, crcTable)
}

// UpdateCRC extends a running CRC-32 with data.
func UpdateCRC(crc uint32, data []byte) uint32 {
	return crc32.Update(crc, crcTable, data)
}

// VerifyCRC verifies that the CRC of a record matches its data.
func VerifyCRC(rec *Record) error {
	if got := ComputeCRC(rec.Data); got != rec.CRC {
		return &CRCMismatchError{Expected: rec.CRC, Got: got}
	}
	return nil
}
