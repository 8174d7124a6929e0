package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/cognitoidentityprovider"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/rentiva/go-rental-saas/shared/models"
	"github.com/rentiva/go-rental-saas/shared/utils"
)

// AuthMiddleware handles JWT token validation
type AuthMiddleware struct {
	cognitoClient  *cognitoidentityprovider.CognitoIdentityProvider
	userPoolID     string
	db             *gorm.DB
	jwksValidator  *utils.JWKSValidator
	circuitBreaker *utils.CircuitBreaker
}

// CognitoClaims represents Cognito JWT claims
type CognitoClaims struct {
	Sub            string `json:"sub"`
	Email          string `json:"email"`
	Username       string `json:"cognito:username"`
	TokenUse       string `json:"token_use"`
	CustomTenantID string `json:"custom:tenant_id"`
	CustomRole     string `json:"custom:role"`
	jwt.RegisteredClaims
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(region, userPoolID string) (*AuthMiddleware, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region),
	})
	if err != nil {
		return nil, err
	}

	db, err := initDatabase()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	jwksValidator := utils.NewJWKSValidator(region, userPoolID)

	// Fail fast when Cognito is down: max 5 failures, 30 second reset
	circuitBreaker := utils.NewCircuitBreaker(5, 30*time.Second)

	return &AuthMiddleware{
		cognitoClient:  cognitoidentityprovider.New(sess),
		userPoolID:     userPoolID,
		db:             db,
		jwksValidator:  jwksValidator,
		circuitBreaker: circuitBreaker,
	}, nil
}

// RequireAuth middleware validates JWT tokens
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization token required"})
			c.Abort()
			return
		}

		claims, err := am.parseToken(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			c.Abort()
			return
		}

		c.Set("access_token", tokenString)
		c.Set("user_id", claims.Sub)
		c.Set("username", claims.Username)
		c.Set("email", claims.Email)
		c.Set("tenant_id", claims.CustomTenantID)
		c.Set("role", claims.CustomRole)

		c.Next()
	}
}

// RequireRole middleware validates the caller's role
func (am *AuthMiddleware) RequireRole(requiredRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User role not found in context"})
			c.Abort()
			return
		}

		if role != requiredRole {
			c.JSON(http.StatusForbidden, gin.H{
				"error":         "Insufficient permissions",
				"required_role": requiredRole,
				"user_role":     role,
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequireTenantOwnerOrAdmin allows the platform admin everywhere and tenant
// owners on their own tenant only
func (am *AuthMiddleware) RequireTenantOwnerOrAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, _ := c.Get("role")

		if role == "admin" {
			c.Next()
			return
		}

		if role == "tenant_owner" {
			requestedTenantID := c.Param("id")
			userTenantID := c.GetString("tenant_id")

			if requestedTenantID == "" || requestedTenantID == userTenantID {
				c.Next()
				return
			}

			c.JSON(http.StatusForbidden, gin.H{
				"error": "Tenant owners can only manage their own tenant",
			})
			c.Abort()
			return
		}

		c.JSON(http.StatusForbidden, gin.H{
			"error":         "Insufficient permissions",
			"required_role": "tenant_owner or admin",
			"user_role":     role,
		})
		c.Abort()
	}
}

// RequireTenantAccess validates that the caller may read the requested tenant
func (am *AuthMiddleware) RequireTenantAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		userTenantID, exists := c.Get("tenant_id")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Tenant information not found"})
			c.Abort()
			return
		}

		role, _ := c.Get("role")
		if role == "admin" {
			c.Next()
			return
		}

		requestedTenantID := c.Param("id")
		if requestedTenantID == "" {
			requestedTenantID = c.Param("tenant_id")
		}

		if requestedTenantID != "" && requestedTenantID != userTenantID {
			c.JSON(http.StatusForbidden, gin.H{"error": "Access denied to this tenant"})
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequireActiveTenant blocks requests from tenants whose access gate is off.
// The flag mirrors the subscription status (ACTIVE or TRIAL), so a lapsed,
// suspended or canceled tenant is rejected here without consulting the
// subscription row on every request.
func (am *AuthMiddleware) RequireActiveTenant() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, _ := c.Get("role")
		if role == "admin" {
			c.Next()
			return
		}

		tenantIDStr := c.GetString("tenant_id")
		tenantID, err := uuid.Parse(tenantIDStr)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Tenant information not found"})
			c.Abort()
			return
		}

		var tenant models.Tenant
		if err := am.db.Select("is_active").Where("id = ?", tenantID).First(&tenant).Error; err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Tenant not found"})
			c.Abort()
			return
		}

		if !tenant.IsActive {
			c.JSON(http.StatusPaymentRequired, gin.H{
				"error": "Subscription inactive. Contact support to reactivate your account.",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// getCacheKey generates a cache key for the token
func getCacheKey(tokenString string) string {
	hash := sha256.Sum256([]byte(tokenString))
	return "token:" + hex.EncodeToString(hash[:])
}

// extractToken extracts the JWT token from the Authorization header
func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}

	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}

	return authHeader
}

// parseToken parses and caches Cognito JWT claims. Signature verification
// goes through the JWKS validator; parsed claims are cached for an hour.
func (am *AuthMiddleware) parseToken(tokenString string) (*CognitoClaims, error) {
	cacheKey := getCacheKey(tokenString)
	if cachedData, err := utils.CacheGet(cacheKey); err == nil {
		var claims CognitoClaims
		if err := json.Unmarshal([]byte(cachedData), &claims); err == nil {
			return &claims, nil
		}
	}

	token, err := am.jwksValidator.ValidateToken(tokenString)
	if err != nil {
		return nil, fmt.Errorf("JWKS validation failed: %w", err)
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims format")
	}

	claims := &CognitoClaims{
		Sub:            getClaimString(mapClaims, "sub"),
		Email:          getClaimString(mapClaims, "email"),
		Username:       getClaimString(mapClaims, "cognito:username"),
		TokenUse:       getClaimString(mapClaims, "token_use"),
		CustomTenantID: getClaimString(mapClaims, "custom:tenant_id"),
		CustomRole:     getClaimString(mapClaims, "custom:role"),
	}

	// ID tokens carry custom attributes, access tokens don't
	if claims.TokenUse != "access" && claims.TokenUse != "id" {
		return nil, fmt.Errorf("invalid token use: expected 'access' or 'id', got '%s'", claims.TokenUse)
	}

	// Access tokens lack custom attributes; fall back to Cognito and the
	// users table.
	if claims.CustomTenantID == "" || claims.CustomRole == "" {
		if err := am.resolveCustomAttributes(claims); err != nil {
			return nil, err
		}
	}

	if claims.CustomTenantID != "" && claims.CustomRole != "" {
		if cacheData, err := json.Marshal(claims); err == nil {
			_ = utils.CacheSet(cacheKey, string(cacheData), 1*time.Hour)
		}
	}

	return claims, nil
}

func (am *AuthMiddleware) resolveCustomAttributes(claims *CognitoClaims) error {
	var user models.User
	if err := am.db.Where("cognito_id = ?", claims.Sub).First(&user).Error; err != nil {
		return fmt.Errorf("user not found in database: %w", err)
	}

	var getUserOutput *cognitoidentityprovider.AdminGetUserOutput
	err := am.circuitBreaker.Call(func() error {
		var cognitoErr error
		getUserOutput, cognitoErr = am.cognitoClient.AdminGetUser(&cognitoidentityprovider.AdminGetUserInput{
			UserPoolId: aws.String(am.userPoolID),
			Username:   aws.String(claims.Sub),
		})
		return cognitoErr
	})
	if err == nil {
		for _, attr := range getUserOutput.UserAttributes {
			if *attr.Name == "custom:tenant_id" && claims.CustomTenantID == "" {
				claims.CustomTenantID = *attr.Value
			}
			if *attr.Name == "custom:role" && claims.CustomRole == "" {
				claims.CustomRole = *attr.Value
			}
			if *attr.Name == "email" && claims.Email == "" {
				claims.Email = *attr.Value
			}
		}
	}

	if claims.CustomTenantID == "" {
		claims.CustomTenantID = user.TenantID.String()
	}
	if claims.CustomRole == "" {
		claims.CustomRole = string(user.Role)
	}
	if claims.Username == "" {
		claims.Username = claims.Email
		if claims.Username == "" {
			claims.Username = claims.Sub
		}
	}

	return nil
}

// getClaimString safely extracts a string claim from JWT claims
func getClaimString(claims jwt.MapClaims, key string) string {
	if val, ok := claims[key]; ok {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}

// GetUserFromContext extracts user information from the Gin context
func GetUserFromContext(c *gin.Context) (cognitoID, email, tenantID, role string) {
	cognitoID = c.GetString("user_id")
	email = c.GetString("email")
	tenantID = c.GetString("tenant_id")
	role = c.GetString("role")
	return
}

// GetUserInfoFromContext extracts full user information from the Gin context
func GetUserInfoFromContext(c *gin.Context) (*models.UserInfo, error) {
	cognitoID := c.GetString("user_id")
	if cognitoID == "" {
		return nil, fmt.Errorf("user_id not found in context")
	}

	email := c.GetString("email")
	role := c.GetString("role")

	username := c.GetString("username")
	if username == "" {
		username = email
	}

	info := &models.UserInfo{
		CognitoID: cognitoID,
		Username:  username,
		Email:     email,
		Role:      models.UserRole(role),
		IsAdmin:   role == "admin",
	}

	if tenantID, err := uuid.Parse(c.GetString("tenant_id")); err == nil {
		info.TenantID = &tenantID
	}

	return info, nil
}

// GetTenantIDFromContext extracts tenant ID from the Gin context
func GetTenantIDFromContext(c *gin.Context) (uuid.UUID, error) {
	tenantIDStr, exists := c.Get("tenant_id")
	if !exists {
		return uuid.Nil, fmt.Errorf("tenant_id not found in context")
	}

	return uuid.Parse(tenantIDStr.(string))
}

// initDatabase initializes the database connection used for auth lookups
func initDatabase() (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		getEnv("DB_HOST", "postgres"),
		getEnv("DB_USER", "postgres"),
		getEnv("DB_PASSWORD", "password"),
		getEnv("DB_NAME", "rental_saas_db"),
		getEnv("DB_PORT", "5432"),
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	return db, nil
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
