// Package credential hashes and verifies topic publishing keys.
//
// Keys are stored only as bcrypt digests. The salt and cost live inside the
// digest, so Verify needs nothing but the raw key and the stored value.
// Verify fails closed: anything other than a clean match reports false.
//
//	hasher := credential.NewHasher(bcrypt.DefaultCost)
//	digest, err := hasher.Hash("s3cr3t")
//	ok := hasher.Verify("s3cr3t", digest) // true
package credential
