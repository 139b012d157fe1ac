package core

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"
)

// identityTextLimit caps how much of the message body feeds the identity
// digest, so trailing edits to long messages do not change identity.
const identityTextLimit = 500

// LeadID computes the stable identity that groups all pipeline work for
// one lead. A lead with an email is identified by its lower-cased address;
// otherwise by the first 12 hex characters of a SHA-1 digest over the
// contact fields and the leading part of the message text. The identity is
// a pure function of lead content.
func LeadID(lead Lead) string {
	if email := strings.TrimSpace(lead.Email); email != "" {
		return strings.ToLower(email)
	}

	text := lead.Text()
	if len(text) > identityTextLimit {
		text = text[:identityTextLimit]
	}
	base := strings.Join([]string{
		lead.Company,
		lead.FirstName,
		lead.LastName,
		text,
	}, "|")

	sum := sha1.Sum([]byte(base))
	return hex.EncodeToString(sum[:])[:12]
}
