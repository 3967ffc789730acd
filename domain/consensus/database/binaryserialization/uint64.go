package binaryserialization

// SerializeUint64 serializes a uint64
func SerializeUint64(value uint64) []byte {
	var valueBytes [8]byte
	byteOrder.PutUint64(valueBytes[:], value)
	return valueBytes[:]
}

// DeserializeUint64 deserializes a slice of bytes to a uint64
func DeserializeUint64(valueBytes []byte) uint64 {
	return byteOrder.Uint64(valueBytes)
}
