// Package frame provides the gyro frame protocol support.
package frame

// The gyro frame protocol is sent by the phone app through the BLE UART
// bridge and arrives on the serial port as a plain byte stream.
//
// Each frame has a fixed size of 15 bytes:
//
//	0      1      2..5   6..9   10..13  14
//	'!'    'G'    X      Y      Z       checksum
//
// X, Y and Z are little-endian IEEE-754 float32 values. The checksum is the
// one's-complement of the modulo-256 sum of bytes 0..13.
//
// There's no sequence number and no length field. The synchronizer hunts for
// the two byte tag and then takes the next 13 bytes as the body, so a lost
// or duplicated byte costs at most one frame.
//
// Producer: phone app (via BLE UART bridge)
// Consumer: gyrodrive
