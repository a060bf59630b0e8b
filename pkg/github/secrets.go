package github

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/nacl/box"

	"ghsync/pkg/logging"
)

// SecretApplier pushes Actions secrets to repositories. Stored secret values
// cannot be read back, so there is nothing to diff against: every declared
// secret is sealed and written on every run, dry-run included.
type SecretApplier struct {
	client APIClient
}

// NewSecretApplier creates a secret applier
func NewSecretApplier(client APIClient) *SecretApplier {
	return &SecretApplier{
		client: client,
	}
}

// Apply seals every declared secret against the repository public key and
// writes it. It returns how many secrets were stored and how many failed.
func (a *SecretApplier) Apply(ctx context.Context, repo string, secrets []SecretSpec) (applied, failed int) {
	if len(secrets) == 0 {
		return 0, 0
	}

	log := logging.Default().With().Str("repo", repo).Logger()

	key, err := a.client.GetSecretPublicKey(ctx, repo)
	if err != nil {
		log.Error().Err(err).Msg("failed to fetch the repository secret public key")
		return 0, len(secrets)
	}

	for _, spec := range secrets {
		if ctx.Err() != nil {
			return applied, failed
		}

		sealed, err := sealSecret(key.Key, spec.Value)
		if err != nil {
			log.Error().Err(err).Str("secret", spec.Name).Msg("failed to seal secret value")
			failed++
			continue
		}

		if err := a.client.PutSecret(ctx, repo, spec.Name, key.KeyID, sealed); err != nil {
			log.Error().Err(err).Str("secret", spec.Name).Msg("failed to store secret")
			failed++
			continue
		}

		log.Info().Str("secret", spec.Name).Msg("stored secret")
		applied++
	}

	return applied, failed
}

// sealSecret encrypts value to the base64 encoded repository public key
// using an anonymous libsodium sealed box, the only format the Actions
// secrets API accepts.
func sealSecret(publicKey, value string) (string, error) {
	keyBytes, err := base64.StdEncoding.DecodeString(publicKey)
	if err != nil {
		return "", fmt.Errorf("invalid secret public key: %w", err)
	}
	if len(keyBytes) != 32 {
		return "", fmt.Errorf("invalid secret public key length: got %d bytes, want 32", len(keyBytes))
	}

	var key [32]byte
	copy(key[:], keyBytes)

	sealed, err := box.SealAnonymous(nil, []byte(value), &key, rand.Reader)
	if err != nil {
		return "", fmt.Errorf("failed to seal secret value: %w", err)
	}

	return base64.StdEncoding.EncodeToString(sealed), nil
}
