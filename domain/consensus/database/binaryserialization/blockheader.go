package binaryserialization

import (
	"bytes"

	"github.com/junomoneta/junod/domain/consensus/model/externalapi"
	"github.com/junomoneta/junod/domain/consensus/utils/serialization"
	"github.com/pkg/errors"
)

// SerializeHeader serializes a block header to a slice of bytes
func SerializeHeader(header *externalapi.DomainBlockHeader) ([]byte, error) {
	buffer := &bytes.Buffer{}

	hasParent := header.ParentHash != nil
	err := serialization.WriteElements(buffer, header.Version, hasParent)
	if err != nil {
		return nil, err
	}
	if hasParent {
		err = serialization.WriteElement(buffer, header.ParentHash)
		if err != nil {
			return nil, err
		}
	}

	err = serialization.WriteElements(buffer, header.Height, header.HashMerkleRoot,
		header.TimeInMilliseconds, header.Bits, header.Nonce, header.PoWHash)
	if err != nil {
		return nil, err
	}

	return buffer.Bytes(), nil
}

// DeserializeHeader deserializes a slice of bytes to a block header
func DeserializeHeader(headerBytes []byte) (*externalapi.DomainBlockHeader, error) {
	reader := bytes.NewReader(headerBytes)
	header := &externalapi.DomainBlockHeader{}

	var hasParent bool
	err := serialization.ReadElements(reader, &header.Version, &hasParent)
	if err != nil {
		return nil, malformedErrorIfEOF(err)
	}
	if hasParent {
		header.ParentHash = externalapi.NewZeroHash()
		err = serialization.ReadElement(reader, header.ParentHash)
		if err != nil {
			return nil, malformedErrorIfEOF(err)
		}
	}

	err = serialization.ReadElements(reader, &header.Height, &header.HashMerkleRoot,
		&header.TimeInMilliseconds, &header.Bits, &header.Nonce, &header.PoWHash)
	if err != nil {
		return nil, malformedErrorIfEOF(err)
	}

	if reader.Len() != 0 {
		return nil, errors.Errorf("serialized header has %d trailing bytes", reader.Len())
	}

	return header, nil
}

func malformedErrorIfEOF(err error) error {
	if serialization.IsMalformedError(err) {
		return errors.Wrap(err, "serialized header is malformed")
	}
	return err
}
