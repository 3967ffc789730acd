package consensushashing

import (
	"bytes"
	"io"

	"github.com/junomoneta/junod/domain/consensus/model/externalapi"
	"github.com/junomoneta/junod/domain/consensus/utils/hashes"
	"github.com/junomoneta/junod/domain/consensus/utils/serialization"
	"github.com/pkg/errors"
)

// HeaderHash returns the given header's hash.
// The declared proof-of-work hash is not part of the block hash: it is
// fully determined by the other header fields and the epoch's dataset.
func HeaderHash(header *externalapi.DomainBlockHeader) *externalapi.DomainHash {
	writer := hashes.NewBlockHashWriter()
	err := serializeHeader(writer, header)
	if err != nil {
		// It seems like this could only happen if the writer returned an error.
		// and this writer should never return an error (no allocations or possible failures)
		// the only non-writer error path here is unknown types in `WriteElement`
		panic(errors.Wrap(err, "this should never happen. Hash digest should never return an error"))
	}

	return writer.Finalize()
}

// SerializeHeaderForPoW returns the bytes over which the epoch-seeded
// proof-of-work function is computed. It covers the same fields as the
// block hash.
func SerializeHeaderForPoW(header *externalapi.DomainBlockHeader) []byte {
	buffer := &bytes.Buffer{}
	err := serializeHeader(buffer, header)
	if err != nil {
		panic(errors.Wrap(err, "this should never happen. Writing to a bytes.Buffer should never return an error"))
	}
	return buffer.Bytes()
}

func serializeHeader(w io.Writer, header *externalapi.DomainBlockHeader) error {
	parentHash := header.ParentHash
	if parentHash == nil {
		parentHash = externalapi.NewZeroHash()
	}
	return serialization.WriteElements(w, header.Version, parentHash, header.Height,
		header.HashMerkleRoot, header.TimeInMilliseconds, header.Bits, header.Nonce)
}
