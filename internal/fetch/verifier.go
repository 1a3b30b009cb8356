// Package fetch downloads installer content and verifies it against a
// pinned sha256 digest before anything else is allowed to see the bytes.
//
// There is no unverified path. A mismatch returns ErrChecksumMismatch and
// nil bytes; the executor never receives content that failed verification.
package fetch

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// ErrChecksumMismatch is returned when downloaded content does not hash
// to the pinned digest.
var ErrChecksumMismatch = errors.New("checksum mismatch")

// maxInstallerSize caps a single installer download. Bootstrap installers
// are shell scripts or small static binaries; anything larger is suspect.
const maxInstallerSize = 256 << 20 // 256MB

// Verifier fetches URLs and gates their content behind digest checks.
type Verifier struct {
	client *http.Client
	logger *slog.Logger
}

// New creates a Verifier. A nil client gets a 5-minute-timeout default.
func New(client *http.Client, logger *slog.Logger) *Verifier {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Minute}
	}
	return &Verifier{client: client, logger: logger}
}

// FetchAndVerify downloads url, hashes the content, and compares against
// wantHex using a constant-time comparison. On success it returns the
// verified bytes; on any failure it returns nil and an error.
func (v *Verifier) FetchAndVerify(ctx context.Context, url, wantHex string) ([]byte, error) {
	want, err := hex.DecodeString(wantHex)
	if err != nil || len(want) != sha256.Size {
		return nil, fmt.Errorf("pinned digest for %s is malformed", url)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", url, err)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: unexpected status %s", url, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxInstallerSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", url, err)
	}
	if len(body) > maxInstallerSize {
		return nil, fmt.Errorf("fetching %s: content exceeds %d bytes", url, maxInstallerSize)
	}

	sum := sha256.Sum256(body)
	if subtle.ConstantTimeCompare(sum[:], want) != 1 {
		v.logger.Error("checksum verification failed",
			slog.String("url", url),
			slog.String("want", wantHex),
			slog.String("got", hex.EncodeToString(sum[:])),
		)
		return nil, fmt.Errorf("%w for %s: want %s, got %s",
			ErrChecksumMismatch, url, wantHex, hex.EncodeToString(sum[:]))
	}

	v.logger.Info("content verified",
		slog.String("url", url),
		slog.Int("bytes", len(body)),
	)
	return body, nil
}
