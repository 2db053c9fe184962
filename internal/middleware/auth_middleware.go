package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go-offboarding/internal/shared/apperror"
	"go-offboarding/internal/shared/contextutil"
	"go-offboarding/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// AuthMiddleware verifies the HS256 access token and copies the tenant and actor
// claims into the gin context.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var tokenString string

		authHeader := c.GetHeader("Authorization")
		tokenString, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found {
			tokenString = ""
		}

		if tokenString == "" {
			if cookie, err := c.Cookie("access_token"); err == nil {
				tokenString = cookie
			}
		}

		if tokenString == "" {
			response.Error(c, http.StatusUnauthorized, apperror.CodeUnauthorized, "Token not found", nil)
			c.Abort()
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method")
			}
			return []byte(secret), nil
		})

		if err != nil || !token.Valid {
			errObj := apperror.ErrInvalidToken
			if errors.Is(err, jwt.ErrTokenExpired) {
				errObj = apperror.ErrTokenExpired
			}
			response.Error(c, errObj.HTTPStatus, errObj.Code, errObj.Message, nil)
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			response.Error(c, http.StatusUnauthorized, apperror.CodeUnauthorized, "Invalid token claims", nil)
			c.Abort()
			return
		}

		userID, ok := claims["user_id"].(string)
		if !ok || userID == "" {
			response.Error(c, http.StatusUnauthorized, apperror.CodeUnauthorized, "user_id claim is missing", nil)
			c.Abort()
			return
		}

		companyID, ok := claims["company_id"].(string)
		if !ok || companyID == "" {
			response.Error(c, http.StatusUnauthorized, apperror.CodeUnauthorized, "company_id claim is missing", nil)
			c.Abort()
			return
		}

		employeeID, ok := claims["employee_id"].(string)
		if !ok || employeeID == "" {
			response.Error(c, http.StatusUnauthorized, apperror.CodeUnauthorized, "employee_id claim is missing; HR actions need an employee actor", nil)
			c.Abort()
			return
		}

		c.Set("user_id", userID)
		c.Set("employee_id", employeeID)
		c.Set("company_id", companyID)

		// Service layer membaca actor dan logger dari context, bukan dari gin
		ctx := contextutil.WithUserID(c.Request.Context(), employeeID)
		reqLogger := contextutil.GetLogger(ctx, zap.L()).With(
			zap.String("company_id", companyID),
			zap.String("employee_id", employeeID),
		)
		ctx = contextutil.WithLogger(ctx, reqLogger)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
