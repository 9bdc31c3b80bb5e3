package auth

// UserClaims is the verified-session identity the pipeline trusts. Credential
// validation happens upstream; core only reads pilot identity and admin flag.
type UserClaims interface {
	PilotID() string
	IsAdmin() bool
	Source() string
}

// SessionClaims come from a verified JWT bearer token.
type SessionClaims struct {
	PilotIDValue string
	AdminValue   bool
}

func (c *SessionClaims) PilotID() string { return c.PilotIDValue }
func (c *SessionClaims) IsAdmin() bool   { return c.AdminValue }
func (c *SessionClaims) Source() string  { return "JWT" }

// AcarsClaims come from an ACARS client API key. The tracking client acts on
// behalf of the pilot named in the request headers and is never an admin.
type AcarsClaims struct {
	PilotIDValue string
	KeyLabel     string
}

func (c *AcarsClaims) PilotID() string { return c.PilotIDValue }
func (c *AcarsClaims) IsAdmin() bool   { return false }
func (c *AcarsClaims) Source() string  { return "API_KEY" }
