package sessions

import (
	"time"

	paseto "aidanwoods.dev/go-paseto"
)

// AccessClaims is the identity carried by an access token.
type AccessClaims struct {
	UserID    string
	SessionID string
	Role      string
	ExpiresAt time.Time
	IssuedAt  time.Time
	Issuer    string
}

// TokenManager issues and verifies access tokens.
type TokenManager interface {
	Issue(userID, sessionID, role string, now time.Time) (token string, exp time.Time, err error)
	Verify(token string, now time.Time) (AccessClaims, error)
}

// accessAudience scopes access tokens to the dashboard API.
const accessAudience = "hiring-dashboard"

type pasetoV4 struct {
	issuer    string
	ttl       time.Duration
	clockSkew time.Duration

	secret paseto.V4AsymmetricSecretKey
	public paseto.V4AsymmetricPublicKey
}

// NewPasetoV4 builds a TokenManager signing v4.public tokens with cfg's key.
func NewPasetoV4(cfg Config) (TokenManager, error) {
	secret, err := paseto.NewV4AsymmetricSecretKeyFromHex(cfg.PasetoV4SecretKeyHex)
	if err != nil {
		return nil, ErrConfig
	}
	return &pasetoV4{
		issuer:    cfg.Issuer,
		ttl:       cfg.AccessTokenTTL,
		clockSkew: cfg.ClockSkew,
		secret:    secret,
		public:    secret.Public(),
	}, nil
}

func (m *pasetoV4) Issue(userID, sessionID, role string, now time.Time) (string, time.Time, error) {
	exp := now.Add(m.ttl)

	tok := paseto.NewToken()
	tok.SetIssuer(m.issuer)
	tok.SetAudience(accessAudience)
	tok.SetSubject(userID)
	tok.SetIssuedAt(now)
	tok.SetNotBefore(now)
	tok.SetExpiration(exp)
	tok.SetString("sid", sessionID)
	tok.SetString("role", role)

	return tok.V4Sign(m.secret, nil), exp, nil
}

func (m *pasetoV4) Verify(token string, now time.Time) (AccessClaims, error) {
	// Validating slightly in the future tolerates nbf drift and tightens exp.
	p := paseto.NewParser()
	p.AddRule(paseto.IssuedBy(m.issuer))
	p.AddRule(paseto.ForAudience(accessAudience))
	p.AddRule(paseto.ValidAt(now.Add(m.clockSkew)))

	parsed, err := p.ParseV4Public(m.public, token, nil)
	if err != nil {
		return AccessClaims{}, ErrInvalidToken
	}

	uid, err := parsed.GetSubject()
	if err != nil || uid == "" {
		return AccessClaims{}, ErrInvalidToken
	}
	sid, err := parsed.GetString("sid")
	if err != nil || sid == "" {
		return AccessClaims{}, ErrInvalidToken
	}
	role, _ := parsed.GetString("role")

	exp, _ := parsed.GetExpiration()
	iat, _ := parsed.GetIssuedAt()
	iss, _ := parsed.GetIssuer()

	return AccessClaims{
		UserID:    uid,
		SessionID: sid,
		Role:      role,
		ExpiresAt: exp,
		IssuedAt:  iat,
		Issuer:    iss,
	}, nil
}
