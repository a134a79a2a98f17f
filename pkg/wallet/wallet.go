// Package wallet generates Solana-style ed25519 keypairs and loads existing
// wallets from keyfiles.
package wallet

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mr-tron/base58"

	"github.com/papercomputeco/entropy/pkg/commands"
)

// Keypair is an ed25519 wallet keypair.
type Keypair struct {
	Public  ed25519.PublicKey
	Private ed25519.PrivateKey
}

// PublicID is the base58 form of the public key, as wallets display it.
func (k Keypair) PublicID() string {
	return base58.Encode(k.Public)
}

// PrivateKeyHex is the 64-byte secret key (seed followed by public key) in hex.
func (k Keypair) PrivateKeyHex() string {
	return hex.EncodeToString(k.Private)
}

// Generator creates keypairs from a random source.
type Generator struct {
	rand io.Reader
}

// NewGenerator returns a generator using crypto/rand.
func NewGenerator() *Generator {
	return &Generator{rand: rand.Reader}
}

// New generates a keypair.
func (g *Generator) New() (Keypair, error) {
	pub, priv, err := ed25519.GenerateKey(g.rand)
	if err != nil {
		return Keypair{}, fmt.Errorf("generate ed25519 key: %w", err)
	}
	return Keypair{Public: pub, Private: priv}, nil
}

// Generate implements commands.KeyGenerator.
func (g *Generator) Generate() (commands.Keypair, error) {
	kp, err := g.New()
	if err != nil {
		return commands.Keypair{}, err
	}
	return commands.Keypair{
		PublicID:      kp.PublicID(),
		PrivateKeyHex: kp.PrivateKeyHex(),
	}, nil
}

// KeyfileConnector connects the wallet stored in a Solana CLI keyfile:
// a JSON array of the 64 secret key bytes.
type KeyfileConnector struct {
	Path string
}

// Connect implements commands.WalletConnector. A missing keyfile yields an
// error wrapping commands.ErrWalletNotFound.
func (c KeyfileConnector) Connect(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	kp, err := LoadKeyfile(c.Path)
	if err != nil {
		return "", err
	}
	return kp.PublicID(), nil
}

// LoadKeyfile reads a keypair from path.
func LoadKeyfile(path string) (Keypair, error) {
	if path == "" {
		return Keypair{}, fmt.Errorf("no keyfile configured: %w", commands.ErrWalletNotFound)
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Keypair{}, fmt.Errorf("keyfile %s: %w", path, commands.ErrWalletNotFound)
	}
	if err != nil {
		return Keypair{}, fmt.Errorf("read keyfile %s: %w", path, err)
	}

	// encoding/json decodes []byte from base64; keyfiles hold a number array
	var nums []int
	if err := json.Unmarshal(data, &nums); err != nil {
		return Keypair{}, fmt.Errorf("parse keyfile %s: %w", path, err)
	}
	if len(nums) != ed25519.PrivateKeySize {
		return Keypair{}, fmt.Errorf("keyfile %s: want %d bytes, got %d", path, ed25519.PrivateKeySize, len(nums))
	}
	raw := make([]byte, len(nums))
	for i, n := range nums {
		if n < 0 || n > 255 {
			return Keypair{}, fmt.Errorf("keyfile %s: byte %d out of range", path, i)
		}
		raw[i] = byte(n)
	}

	priv := ed25519.NewKeyFromSeed(raw[:ed25519.SeedSize])
	pub := priv.Public().(ed25519.PublicKey)
	if !pub.Equal(ed25519.PublicKey(raw[ed25519.SeedSize:])) {
		return Keypair{}, fmt.Errorf("keyfile %s: public key does not match secret", path)
	}

	return Keypair{Public: pub, Private: priv}, nil
}

// WriteKeyfile stores kp at path in keyfile format.
func WriteKeyfile(path string, kp Keypair) error {
	nums := make([]int, len(kp.Private))
	for i, b := range kp.Private {
		nums[i] = int(b)
	}
	data, err := json.Marshal(nums)
	if err != nil {
		return fmt.Errorf("encode keyfile: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}
