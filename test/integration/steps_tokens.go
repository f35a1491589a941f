package integration

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/modelgrid/modelgrid/pkg/server/middleware"
)

// testCaller is an identity the scenarios act as. Tokens are minted locally
// with the shared secret; the engine never issues them itself.
type testCaller struct {
	UserID string
	Email  string
	Role   string
}

var callers = map[string]testCaller{
	"admin": {UserID: "user-admin", Email: "admin@example.com", Role: "Admin"},
	"alice": {UserID: "user-alice", Email: "alice@example.com", Role: "Editor"},
	"bob":   {UserID: "user-bob", Email: "bob@example.com", Role: "Editor"},
	"carol": {UserID: "user-carol", Email: "carol@example.com", Role: "Viewer"},
}

// tokenFor mints an HS256 bearer token for a named caller.
func (s *StepsContext) tokenFor(name string) (string, error) {
	caller, ok := callers[name]
	if !ok {
		return "", fmt.Errorf("unknown caller %q", name)
	}

	claims := middleware.Claims{
		Email: caller.Email,
		Role:  caller.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   caller.UserID,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.tc.TokenSecret))
}
