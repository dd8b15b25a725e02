package jwthandling

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Information an unsubscribe token encodes: which enrollment to cancel and
// which lead to mark unsubscribed.
type UnsubscribeClaims struct {
	InstanceID   string `json:"instance_id,omitempty"`
	EnrollmentID string `json:"enrollment_id,omitempty"`
	LeadID       string `json:"lead_id,omitempty"`
	jwt.RegisteredClaims
}

func GenerateNewUnsubscribeToken(expiresIn time.Duration, instanceID string, enrollmentID string, leadID string, secretKey string) (tokenString string, err error) {
	claims := UnsubscribeClaims{
		instanceID,
		enrollmentID,
		leadID,
		jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err = token.SignedString([]byte(secretKey))
	return
}

func ValidateUnsubscribeToken(tokenString string, secretKey string) (claims *UnsubscribeClaims, valid bool, err error) {
	token, err := jwt.ParseWithClaims(tokenString, &UnsubscribeClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secretKey), nil
	})
	if token == nil {
		return
	}
	claims, valid = token.Claims.(*UnsubscribeClaims)
	valid = valid && token.Valid
	return
}
