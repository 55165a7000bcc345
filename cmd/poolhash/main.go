// poolhash computes the client-side hashes of the shielded pool: the
// deposit commitment Hash(secret, nullifier_preimage, amount) and the
// nullifier hash Hash(nullifier_preimage, secret). Useful when preparing
// or debugging deposits and withdrawals against a running pool.
package main

import (
	"flag"
	"fmt"
	"os"

	"shieldpool/internal/utils"
	"shieldpool/internal/zk"
)

func main() {
	var (
		algorithm = flag.String("hash", zk.AlgorithmPoseidon2, "hash algorithm (poseidon2 or keccak256)")
		secret    = flag.String("secret", "", "secret as 0x-prefixed 32-byte hex")
		preimage  = flag.String("preimage", "", "nullifier preimage as 0x-prefixed 32-byte hex")
		amount    = flag.Uint64("amount", 0, "deposit amount in base units")
	)
	flag.Parse()

	hasher, err := zk.NewHasher(*algorithm)
	if err != nil {
		fatalf("unknown hash algorithm: %v", err)
	}

	secretBytes, err := utils.HexToHash(*secret)
	if err != nil {
		fatalf("invalid -secret: %v", err)
	}
	preimageBytes, err := utils.HexToHash(*preimage)
	if err != nil {
		fatalf("invalid -preimage: %v", err)
	}

	commitment := hasher.Commit(secretBytes, preimageBytes, *amount)
	nullifier := hasher.Nullify(preimageBytes, secretBytes)

	fmt.Printf("algorithm:  %s\n", hasher.Algorithm())
	fmt.Printf("commitment: %s\n", utils.HashToHex(commitment))
	fmt.Printf("nullifier:  %s\n", utils.HashToHex(nullifier))
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
