package auth

import "strings"

// Operator is a front-desk or security account allowed to call the API.
// Accounts are provisioned through configuration, not self-registration.
type Operator struct {
	Email        string
	PasswordHash string
	Role         string
}

// OperatorDirectory holds the configured operator accounts keyed by email.
type OperatorDirectory map[string]Operator

// ParseOperators reads a comma-separated list of email:bcrypt-hash:role
// entries, the format used by the OPERATORS environment variable.
func ParseOperators(csv string) OperatorDirectory {
	dir := make(OperatorDirectory)
	for _, entry := range strings.Split(csv, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, ":", 3)
		if len(parts) != 3 {
			continue
		}
		dir[parts[0]] = Operator{Email: parts[0], PasswordHash: parts[1], Role: parts[2]}
	}
	return dir
}

// Authenticate verifies the operator's password and returns the account.
func (d OperatorDirectory) Authenticate(email, password string) (*Operator, bool) {
	op, ok := d[email]
	if !ok || !CheckPassword(password, op.PasswordHash) {
		return nil, false
	}
	return &op, true
}
