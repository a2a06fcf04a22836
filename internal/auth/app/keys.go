package app

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/lanewaylabs/gatehouse/pkg/cryptox"
	"github.com/lanewaylabs/gatehouse/pkg/jwtx"
)

// InitSigningKeys builds the RS256 signing material for the service.
//
// When SigningKeyFile is set the key is loaded from disk, or generated and
// written there on first start so access tokens survive restarts. When it is
// empty an ephemeral key is generated and every previously issued token
// becomes invalid.
func InitSigningKeys(cfg Config, logger *slog.Logger) (*jwtx.KeySet, jwtx.Signer, jwtx.Verifier, error) {
	pemKey, err := loadOrGenerateKey(cfg, logger)
	if err != nil {
		return nil, nil, nil, err
	}

	signer, err := jwtx.NewSignerRS256(cfg.SigningKeyID, pemKey)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to build signer: %w", err)
	}

	keys := jwtx.NewKeySet()
	if err := keys.AddSigner(signer); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to register signing key: %w", err)
	}

	verifier := jwtx.NewVerifierRS256(keys, cfg.Issuer)

	logger.Info("signing keys ready",
		"algorithm", signer.Alg(),
		"kid", signer.KID(),
		"issuer", cfg.Issuer,
	)

	return keys, signer, verifier, nil
}

func loadOrGenerateKey(cfg Config, logger *slog.Logger) ([]byte, error) {
	if cfg.SigningKeyFile == "" {
		logger.Warn("no signing key file configured, generating ephemeral key; existing tokens are now invalid")
		return cryptox.GenerateRSAKey(cfg.RSABits)
	}

	pemKey, err := os.ReadFile(cfg.SigningKeyFile)
	if err == nil {
		if info, statErr := os.Stat(cfg.SigningKeyFile); statErr == nil && info.Mode().Perm()&0o077 != 0 {
			logger.Warn("signing key file is readable by other users",
				"path", cfg.SigningKeyFile,
				"mode", info.Mode().Perm().String(),
			)
		}
		logger.Info("signing key loaded", "path", cfg.SigningKeyFile)
		return pemKey, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read signing key file: %w", err)
	}

	pemKey, err = cryptox.GenerateRSAKey(cfg.RSABits)
	if err != nil {
		return nil, fmt.Errorf("failed to generate signing key: %w", err)
	}
	if err := os.WriteFile(cfg.SigningKeyFile, pemKey, 0o600); err != nil {
		return nil, fmt.Errorf("failed to write signing key file: %w", err)
	}

	logger.Info("signing key generated", "path", cfg.SigningKeyFile, "bits", cfg.RSABits)
	return pemKey, nil
}

// InitSealer builds the AES-GCM sealer used for refresh tokens. Without a
// configured secret a random one is used, so refresh tokens do not survive
// restarts.
func InitSealer(cfg Config, logger *slog.Logger) (*cryptox.Sealer, error) {
	secret := cfg.RefreshSealSecret
	if secret == "" {
		var err error
		secret, err = cryptox.GenerateToken(cryptox.TokenSize256)
		if err != nil {
			return nil, fmt.Errorf("failed to generate refresh seal secret: %w", err)
		}
		logger.Warn("no refresh seal secret configured, using an ephemeral one; existing refresh tokens are now invalid")
	}

	return cryptox.NewSealer(secret)
}
