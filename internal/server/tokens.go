package server

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/form3tech-oss/jwt-go"

	"github.com/natak-game/natak-server-go/internal/game"
)

// Authorisation failures.
var (
	ErrUnauthorized = errors.New("missing or invalid seat token")
	ErrForbidden    = errors.New("seat token does not grant this seat")
)

// TokenIssuer signs and checks per-seat tokens. A token names one game and
// one colour and lets its bearer act for that seat.
type TokenIssuer struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// NewTokenIssuer creates an issuer signing with key. It returns nil when key
// is empty, which disables seat checks.
func NewTokenIssuer(key string, ttl time.Duration) *TokenIssuer {
	if key == "" {
		return nil
	}
	return &TokenIssuer{key: []byte(key), ttl: ttl, now: time.Now}
}

// Issue signs a token for one seat.
func (ti *TokenIssuer) Issue(gameID string, c game.Color) (string, error) {
	now := ti.now()
	claims := jwt.MapClaims{
		"sub":  c.String(),
		"gid":  gameID,
		"seat": int(c),
		"iat":  now.Unix(),
		"exp":  now.Add(ti.ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(ti.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign seat token: %w", err)
	}
	return signed, nil
}

// IssueAll signs a token for every seat of a game, keyed by colour name.
func (ti *TokenIssuer) IssueAll(gameID string, players int) (map[string]string, error) {
	tokens := make(map[string]string, players)
	for i := 1; i <= players; i++ {
		c := game.Color(i)
		tok, err := ti.Issue(gameID, c)
		if err != nil {
			return nil, err
		}
		tokens[c.String()] = tok
	}
	return tokens, nil
}

// Verify checks that a token is valid for gameID. When seat is not
// ColorNone the token must also name that seat.
func (ti *TokenIssuer) Verify(tokenString, gameID string, seat game.Color) error {
	if tokenString == "" {
		return ErrUnauthorized
	}
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return ti.key, nil
	})
	if err != nil || !token.Valid {
		return fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ErrUnauthorized
	}
	if gid, _ := claims["gid"].(string); gid != gameID {
		return fmt.Errorf("%w: token is for another game", ErrForbidden)
	}
	if seat == game.ColorNone {
		return nil
	}
	// numeric claims decode as float64
	if n, _ := claims["seat"].(float64); game.Color(n) != seat {
		return fmt.Errorf("%w: token is for another seat", ErrForbidden)
	}
	return nil
}

// bearerToken extracts the token from an Authorization header value.
func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}
