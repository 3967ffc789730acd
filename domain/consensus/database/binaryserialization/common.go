package binaryserialization

import "encoding/binary"

// Keys are compared lexicographically by the database, so heights are
// serialized big-endian to make the chain bucket iterate in height order.
var byteOrder = binary.BigEndian
