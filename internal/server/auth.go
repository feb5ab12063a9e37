package server

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

type authToken struct {
	TokenHash string    `gorm:"primaryKey;column:token_hash"`
	UserID    int64     `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (authToken) TableName() string { return "auth_tokens" }

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// AuthRequired resolves the bearer token to a user id. Tokens are stored
// hashed; the raw value never touches the database.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		token = strings.TrimSpace(token)
		if !ok || token == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		var record authToken
		err := s.db.WithContext(c.Request.Context()).
			Where("token_hash = ?", hashToken(token)).
			Limit(1).
			Find(&record).Error
		if err != nil {
			AbortWithError(c, err)
			return
		}
		if record.UserID == 0 {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		c.Set(contextUserIDKey, record.UserID)
		c.Next()
	}
}

func currentUserID(c *gin.Context) int64 {
	return c.GetInt64(contextUserIDKey)
}
