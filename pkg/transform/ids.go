package transform

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateID derives the deterministic surrogate id for a composite natural
// key: a version-5 (SHA-1) UUID over the DNS namespace and the parts joined
// with "-", rendered as 32 lowercase hex characters. The same parts always
// produce the same id, across runs and across tables that reference the
// entity before it is persisted anywhere.
func GenerateID(parts ...string) string {
	u := uuid.NewSHA1(uuid.NameSpaceDNS, []byte(strings.Join(parts, "-")))
	return strings.ReplaceAll(u.String(), "-", "")
}
