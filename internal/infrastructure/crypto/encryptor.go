package crypto

// Encryptor turns plaintext into a self-contained ciphertext that carries
// everything except the key needed to reverse it.
type Encryptor interface {
	Encrypt(plainText []byte) ([]byte, error)
	Decrypt(cipherText []byte) ([]byte, error)
}
