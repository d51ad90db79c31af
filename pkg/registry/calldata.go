package registry

import (
	"math/big"

	"github.com/ethereum/go-ethereum/crypto"
)

// CallPayload builds a read-call payload from a canonical method signature
// and big-endian word arguments: the 4-byte Keccak-256 selector followed by
// one 32-byte word per argument.
func CallPayload(signature string, args ...*big.Int) []byte {
	out := make([]byte, 4+32*len(args))
	copy(out, crypto.Keccak256([]byte(signature))[:4])
	for i, a := range args {
		a.FillBytes(out[4+32*i : 4+32*(i+1)])
	}
	return out
}
