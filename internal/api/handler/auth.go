package handler

import (
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	jwt "github.com/golang-jwt/jwt/v5"
)

func jwtSecret() []byte {
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		return []byte(secret)
	}
	return []byte("nagarseva-dev-secret")
}

// generateJWT issues a token carrying the anonymous reporter ID.
func generateJWT(reporterID string) (string, error) {
	claims := jwt.MapClaims{
		"reporter_id": reporterID,
		"exp":         time.Now().Add(time.Hour * 72).Unix(),
		"iss":         "nagarseva-service",
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret())
}

// validateAndGetReporterID parses the token and extracts the reporter ID.
func validateAndGetReporterID(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return jwtSecret(), nil
	})
	if err != nil || !token.Valid {
		return "", errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid claims")
	}
	reporterID, ok := claims["reporter_id"].(string)
	if !ok || reporterID == "" {
		return "", errors.New("missing reporter_id claim")
	}
	return reporterID, nil
}

// GetReporterToken creates an anonymous reporter ID and returns it with a JWT.
// Reporters present the token for notification listing and push delivery.
func (h *Handler) GetReporterToken(c *gin.Context) {
	reporterUUID, _ := uuid.NewRandom()
	reporterID := reporterUUID.String()

	token, err := generateJWT(reporterID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "reporter_id": reporterID})
}

// reporterFromRequest identifies the reporter from the Authorization header.
func reporterFromRequest(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) < 8 || authHeader[:7] != "Bearer " {
		return "", false
	}
	reporterID, err := validateAndGetReporterID(authHeader[7:])
	if err != nil {
		return "", false
	}
	return reporterID, true
}
