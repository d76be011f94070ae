package jwt

import (
	"net/http"
	"time"

	"github.com/cmlabs-hris/crm-attendance/internal/domain/user"
	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// DefaultCookieName is the cookie the dashboard session stores its token in.
const DefaultCookieName = "token"

type Service interface {
	GenerateAccessToken(userID string, email string, role user.Role) (token string, expiresAt int64, err error)
	JWTAuth() *jwtauth.JWTAuth
	// Verifier reads the token from the Authorization header or the session
	// cookie and puts the verification result on the request context.
	Verifier() func(http.Handler) http.Handler
	TokenFromCookie(r *http.Request) string
}

type JWTService struct {
	accessTokenExpirationTime string
	cookieName                string
	tokenAuth                 *jwtauth.JWTAuth
}

func NewJWTService(secretKey string, accessTokenExpirationTime string, cookieName string) Service {
	if cookieName == "" {
		cookieName = DefaultCookieName
	}
	return &JWTService{
		accessTokenExpirationTime: accessTokenExpirationTime,
		cookieName:                cookieName,
		tokenAuth:                 jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func (j *JWTService) GenerateAccessToken(userID string, email string, role user.Role) (token string, expiresAt int64, err error) {
	expDuration, err := time.ParseDuration(j.accessTokenExpirationTime)
	if err != nil {
		return "", 0, err
	}
	expiresAt = time.Now().Add(expDuration).Unix()

	claims := map[string]interface{}{
		"user_id": userID,
		"email":   email,
		"role":    string(role),
		"type":    "access",
		"exp":     expiresAt,
	}

	_, tokenString, err := j.tokenAuth.Encode(claims)
	return tokenString, expiresAt, err
}

func (j *JWTService) TokenFromCookie(r *http.Request) string {
	cookie, err := r.Cookie(j.cookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func (j *JWTService) Verifier() func(http.Handler) http.Handler {
	return jwtauth.Verify(j.tokenAuth, jwtauth.TokenFromHeader, j.TokenFromCookie)
}
