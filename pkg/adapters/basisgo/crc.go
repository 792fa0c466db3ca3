package basisgo

import (
	"sync"

	"github.com/snksoft/crc"
)

// crc16Params is the non-reflected CCITT polynomial with an all-ones
// register, inverted on output.
var crc16Params = &crc.Parameters{
	Width:      16,
	Polynomial: 0x1021,
	ReflectIn:  false,
	ReflectOut: false,
	Init:       0xFFFF,
	FinalXor:   0xFFFF,
}

var (
	crc16Once  sync.Once
	crc16Table *crc.Table
)

// CRC16 returns the checksum used for the header and payload of a
// container.
func CRC16(data []byte) uint16 {
	crc16Once.Do(func() {
		crc16Table = crc.NewTable(crc16Params)
	})
	return uint16(crc16Table.CalculateCRC(data))
}

// headerCRC covers the header from the data size field to its end.
func headerCRC(data []byte) uint16 {
	return CRC16(data[8:HeaderSize])
}
