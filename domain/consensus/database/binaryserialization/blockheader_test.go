package binaryserialization

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/junomoneta/junod/domain/consensus/model/externalapi"
)

func TestHeaderSerialization(t *testing.T) {
	parentHash := externalapi.NewDomainHashFromByteArray(
		&[externalapi.DomainHashSize]byte{0x01, 0x02, 0x03})

	tests := []struct {
		name   string
		header *externalapi.DomainBlockHeader
	}{
		{
			name: "genesis-like header without a parent",
			header: &externalapi.DomainBlockHeader{
				Version:            1,
				ParentHash:         nil,
				Height:             0,
				HashMerkleRoot:     *externalapi.NewZeroHash(),
				TimeInMilliseconds: 0x17d2e4a8a00,
				Bits:               0x207fffff,
				Nonce:              1,
			},
		},
		{
			name: "header with a parent",
			header: &externalapi.DomainBlockHeader{
				Version:            1,
				ParentHash:         parentHash,
				Height:             1632,
				HashMerkleRoot:     *externalapi.NewDomainHashFromByteArray(&[externalapi.DomainHashSize]byte{0xaa}),
				TimeInMilliseconds: 0x17d2e4a8a00 + 120_000,
				Bits:               0x1d00ffff,
				Nonce:              0xdeadbeefcafebabe,
				PoWHash:            *externalapi.NewDomainHashFromByteArray(&[externalapi.DomainHashSize]byte{0xbb}),
			},
		},
	}

	for _, test := range tests {
		serialized, err := SerializeHeader(test.header)
		if err != nil {
			t.Fatalf("%s: SerializeHeader: %+v", test.name, err)
		}
		deserialized, err := DeserializeHeader(serialized)
		if err != nil {
			t.Fatalf("%s: DeserializeHeader: %+v", test.name, err)
		}
		if !deserialized.Equal(test.header) {
			t.Fatalf("%s: deserialized header differs from the original: got %s, want %s",
				test.name, spew.Sdump(deserialized), spew.Sdump(test.header))
		}
	}
}

func TestDeserializeHeaderMalformedInput(t *testing.T) {
	serialized, err := SerializeHeader(&externalapi.DomainBlockHeader{
		ParentHash: externalapi.NewZeroHash(),
	})
	if err != nil {
		t.Fatalf("SerializeHeader: %+v", err)
	}

	_, err = DeserializeHeader(serialized[:len(serialized)-1])
	if err == nil {
		t.Fatalf("DeserializeHeader accepted a truncated header")
	}

	_, err = DeserializeHeader(append(serialized, 0x00))
	if err == nil {
		t.Fatalf("DeserializeHeader accepted a header with trailing bytes")
	}
}
