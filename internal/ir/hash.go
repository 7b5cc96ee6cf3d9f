package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DomainStatement separates statement fingerprints from any other hash the
// process may compute over the same bytes.
const DomainStatement = "notesql/statement/v1"

// hashWithDomain computes SHA256(domain + 0x00 + data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// StatementID fingerprints a compiled statement together with its binds.
// Two calls that would send identical bytes to the engine share an ID, which
// makes them easy to correlate in logs.
func StatementID(sql string, binds []any) (string, error) {
	canonical, err := MarshalCanonical([]any{sql, binds})
	if err != nil {
		return "", fmt.Errorf("StatementID: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainStatement, canonical), nil
}
