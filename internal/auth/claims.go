package auth

import (
	"encoding/json"
	"errors"
	"slices"

	"github.com/golang-jwt/jwt/v5"
)

// ErrPermissionsNotStrings marks a permissions claim that is present but is not an array of strings.
var ErrPermissionsNotStrings = errors.New("auth: permissions claim is not an array of strings")

var registeredClaimNames = []string{"iss", "sub", "aud", "exp", "nbf", "iat", "jti", "permissions"}

// Claims is the verified payload of a bearer token. Claims that are not modelled
// explicitly are kept in Extra.
type Claims struct {
	jwt.RegisteredClaims
	Permissions []string       `json:"permissions,omitempty"`
	Extra       map[string]any `json:"-"`

	hasPermissions bool
	permissionsErr error
}

// UnmarshalJSON decodes the known claims and collects the rest into Extra. A
// permissions claim of the wrong shape does not fail decoding; it leaves the
// claims without usable permissions.
func (c *Claims) UnmarshalJSON(data []byte) error {
	type plain Claims
	var decoded struct {
		plain
		Permissions json.RawMessage `json:"permissions"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*c = Claims(decoded.plain)
	c.Permissions = nil
	if perms := decoded.Permissions; len(perms) > 0 && string(perms) != "null" {
		c.hasPermissions = true
		if err := json.Unmarshal(perms, &c.Permissions); err != nil {
			c.Permissions = nil
			c.permissionsErr = ErrPermissionsNotStrings
		}
	}

	for name, value := range raw {
		if slices.Contains(registeredClaimNames, name) {
			continue
		}
		var v any
		if err := json.Unmarshal(value, &v); err != nil {
			return err
		}
		if c.Extra == nil {
			c.Extra = make(map[string]any)
		}
		c.Extra[name] = v
	}
	return nil
}

// HasPermissionsClaim reports whether the token carried a usable permissions array.
func (c *Claims) HasPermissionsClaim() bool {
	return c != nil && c.permissionsErr == nil && (c.hasPermissions || c.Permissions != nil)
}

// PermissionsError reports why a present permissions claim could not be used.
func (c *Claims) PermissionsError() error {
	if c == nil {
		return nil
	}
	return c.permissionsErr
}

// HasPermission reports whether permission is granted by the token.
func (c *Claims) HasPermission(permission string) bool {
	if c == nil {
		return false
	}
	return slices.Contains(c.Permissions, permission)
}
