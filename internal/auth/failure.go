package auth

import (
	"fmt"
	"net/http"
)

// FailureKind enumerates every way the guard can reject a request.
type FailureKind int

const (
	FailureMissingHeader FailureKind = iota + 1
	FailureMalformedHeader
	FailureMalformedToken
	FailureUnknownKey
	FailureExpired
	FailureWrongAudience
	FailureWrongIssuer
	FailureInvalidSignature
	FailurePermissionsMissing
	FailureInsufficientScope
)

type failureInfo struct {
	code        string
	status      int
	description string
}

// failureTable must cover every FailureKind; authentication stages answer 401,
// the permission stage answers 403.
var failureTable = map[FailureKind]failureInfo{
	FailureMissingHeader:      {"missing_header", http.StatusUnauthorized, "Authorization header is expected."},
	FailureMalformedHeader:    {"malformed_header", http.StatusUnauthorized, "Authorization header must be in the form \"Bearer <token>\"."},
	FailureMalformedToken:     {"malformed_token", http.StatusUnauthorized, "Bearer token could not be decoded."},
	FailureUnknownKey:         {"unknown_key", http.StatusUnauthorized, "Unable to find the appropriate signing key."},
	FailureExpired:            {"expired", http.StatusUnauthorized, "Token expired."},
	FailureWrongAudience:      {"wrong_audience", http.StatusUnauthorized, "Incorrect claims. Please check the audience."},
	FailureWrongIssuer:        {"wrong_issuer", http.StatusUnauthorized, "Incorrect claims. Please check the issuer."},
	FailureInvalidSignature:   {"invalid_signature", http.StatusUnauthorized, "Unable to verify the token."},
	FailurePermissionsMissing: {"permissions_missing_in_claims", http.StatusForbidden, "Permissions not included in token."},
	FailureInsufficientScope:  {"insufficient_scope", http.StatusForbidden, "Permission not found."},
}

// Kinds lists all failure kinds in declaration order.
func Kinds() []FailureKind {
	kinds := make([]FailureKind, 0, len(failureTable))
	for k := FailureMissingHeader; k <= FailureInsufficientScope; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

// Code returns the machine-readable code for the kind.
func (k FailureKind) Code() string {
	if info, ok := failureTable[k]; ok {
		return info.code
	}
	return "unknown"
}

// Status returns the HTTP status code the kind maps to.
func (k FailureKind) Status() int {
	if info, ok := failureTable[k]; ok {
		return info.status
	}
	return http.StatusUnauthorized
}

func (k FailureKind) String() string {
	return k.Code()
}

// Failure is the typed rejection returned by the guard.
type Failure struct {
	Kind        FailureKind
	Description string
	Err         error
}

func newFailure(kind FailureKind, err error) *Failure {
	return &Failure{
		Kind:        kind,
		Description: failureTable[kind].description,
		Err:         err,
	}
}

// Code returns the machine-readable failure code.
func (f *Failure) Code() string { return f.Kind.Code() }

// Status returns the HTTP status code for the failure.
func (f *Failure) Status() int { return f.Kind.Status() }

func (f *Failure) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("auth: %s: %v", f.Kind.Code(), f.Err)
	}
	return "auth: " + f.Kind.Code()
}

func (f *Failure) Unwrap() error { return f.Err }
