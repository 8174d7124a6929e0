package main

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"os"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/cognitoidentityprovider"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/rentiva/go-rental-saas/shared/lifecycle"
	"github.com/rentiva/go-rental-saas/shared/models"
	"github.com/rentiva/go-rental-saas/shared/utils"
)

const defaultTrialDays = 14

var (
	cognitoClient  *cognitoidentityprovider.CognitoIdentityProvider
	circuitBreaker *utils.CircuitBreaker
)

func init() {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(os.Getenv("AWS_REGION")),
	})
	if err != nil {
		panic("Failed to create AWS session: " + err.Error())
	}
	cognitoClient = cognitoidentityprovider.New(sess)

	// Circuit breaker for Cognito calls (max 5 failures, 30 second reset)
	circuitBreaker = utils.NewCircuitBreaker(5, 30*time.Second)
}

// generateSecretHash creates a secret hash for Cognito authentication
func generateSecretHash(username string) string {
	clientSecret := os.Getenv("COGNITO_CLIENT_SECRET")
	clientID := os.Getenv("COGNITO_CLIENT_ID")

	if clientSecret == "" {
		return ""
	}

	mac := hmac.New(sha256.New, []byte(clientSecret))
	mac.Write([]byte(username + clientID))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// LoginRequest represents the login request
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// CompanySignupRequest represents a self-service company signup. It creates
// the tenant, its owner account, and the trial subscription in one call.
type CompanySignupRequest struct {
	Name        string `json:"name" binding:"required"`
	CompanyName string `json:"company_name" binding:"required"`
	Subdomain   string `json:"subdomain" binding:"required"`
	Country     string `json:"country"`
	Username    string `json:"username" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
}

// RegisterRequest represents staff registration into an existing tenant
type RegisterRequest struct {
	Username string `json:"username" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	TenantID string `json:"tenant_id" binding:"required"`
	Role     string `json:"role,omitempty"`
}

// handleLogin handles user login with circuit breaker
func handleLogin(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}

		authParams := map[string]*string{
			"USERNAME": aws.String(req.Username),
			"PASSWORD": aws.String(req.Password),
		}
		if secretHash := generateSecretHash(req.Username); secretHash != "" {
			authParams["SECRET_HASH"] = aws.String(secretHash)
		}

		authInput := &cognitoidentityprovider.InitiateAuthInput{
			AuthFlow:       aws.String("USER_PASSWORD_AUTH"),
			ClientId:       aws.String(os.Getenv("COGNITO_CLIENT_ID")),
			AuthParameters: authParams,
		}

		var authResult *cognitoidentityprovider.InitiateAuthOutput
		err := circuitBreaker.Call(func() error {
			var cognitoErr error
			authResult, cognitoErr = cognitoClient.InitiateAuth(authInput)
			return cognitoErr
		})

		if err != nil {
			if err == utils.ErrCircuitOpen {
				utils.ServiceUnavailableResponse(c, "Authentication service temporarily unavailable")
			} else {
				utils.UnauthorizedResponse(c, "Invalid credentials")
			}
			return
		}

		accessToken := *authResult.AuthenticationResult.AccessToken
		idToken := *authResult.AuthenticationResult.IdToken

		cognitoID, err := extractCognitoIDFromToken(idToken)
		if err != nil {
			utils.InternalServerErrorResponse(c, "Failed to extract user ID from token")
			return
		}

		userProfile, err := buildUserProfileFromDB(db, cognitoID, req.Username)
		if err != nil {
			utils.InternalServerErrorResponse(c, "Failed to build user profile")
			return
		}

		sessionTTL := time.Duration(*authResult.AuthenticationResult.ExpiresIn) * time.Second
		tokenSession, err := utils.CreateTokenSession(accessToken, userProfile, sessionTTL)
		if err != nil {
			utils.InternalServerErrorResponse(c, "Failed to create session")
			return
		}

		go func() {
			now := time.Now()
			if userProfile.IsAdmin {
				db.Model(&models.Admin{}).Where("cognito_id = ?", userProfile.CognitoID).Update("last_login_at", now)
			} else {
				db.Model(&models.User{}).Where("cognito_id = ?", userProfile.CognitoID).Update("last_login_at", now)
			}
		}()

		response := map[string]interface{}{
			"access_token": accessToken,
			"expires_in":   *authResult.AuthenticationResult.ExpiresIn,
			"token_type":   "Bearer",
			"user_info":    userProfile,
			"session_id":   tokenSession.SessionID,
		}

		utils.OKResponse(c, "Login successful", response)
	}
}

// handleCompanySignup provisions a rental company: tenant row, trial
// subscription, and the owner's Cognito account
func handleCompanySignup(db *gorm.DB, svc *lifecycle.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CompanySignupRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}

		var existingTenant models.Tenant
		if err := db.Where("subdomain = ?", req.Subdomain).First(&existingTenant).Error; err == nil {
			utils.BadRequestResponse(c, "Subdomain already exists")
			return
		}

		country := req.Country
		if country == "" {
			country = "AL"
		}

		tenant := models.Tenant{
			ID:          uuid.New(),
			Name:        req.Name,
			CompanyName: req.CompanyName,
			Subdomain:   req.Subdomain,
			Country:     country,
			IsActive:    true,
		}
		if err := db.Create(&tenant).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to create tenant")
			return
		}

		// Register the owner in Cognito with tenant binding in custom
		// attributes, so tokens carry tenant context without a DB lookup
		userAttributes := []*cognitoidentityprovider.AttributeType{
			{Name: aws.String("email"), Value: aws.String(req.Username)},
			{Name: aws.String("custom:role"), Value: aws.String(string(models.RoleTenantOwner))},
			{Name: aws.String("custom:tenant_id"), Value: aws.String(tenant.ID.String())},
		}

		signUpInput := &cognitoidentityprovider.SignUpInput{
			ClientId:       aws.String(os.Getenv("COGNITO_CLIENT_ID")),
			Username:       aws.String(req.Username),
			Password:       aws.String(req.Password),
			UserAttributes: userAttributes,
		}
		if secretHash := generateSecretHash(req.Username); secretHash != "" {
			signUpInput.SecretHash = aws.String(secretHash)
		}

		var signUpResult *cognitoidentityprovider.SignUpOutput
		cognitoErr := circuitBreaker.Call(func() error {
			var err error
			signUpResult, err = cognitoClient.SignUp(signUpInput)
			return err
		})
		if cognitoErr != nil {
			db.Delete(&tenant)
			if cognitoErr == utils.ErrCircuitOpen {
				utils.ServiceUnavailableResponse(c, "Authentication service temporarily unavailable")
			} else {
				utils.BadRequestResponse(c, "Failed to register owner: "+cognitoErr.Error())
			}
			return
		}

		owner := models.User{
			CognitoID: *signUpResult.UserSub,
			TenantID:  tenant.ID,
			Role:      models.RoleTenantOwner,
			CreatedAt: time.Now(),
		}
		if err := db.Create(&owner).Error; err != nil {
			compensateCognitoUser(req.Username)
			db.Delete(&tenant)
			utils.InternalServerErrorResponse(c, "Failed to complete signup")
			return
		}

		ctx := lifecycle.WithActor(c.Request.Context(), req.Username)
		sub, err := svc.StartTrial(ctx, tenant.ID, defaultTrialDays)
		if err != nil {
			utils.LifecycleErrorResponse(c, err)
			return
		}
		tenant.Subscription = sub

		utils.CreatedResponse(c, "Company registered successfully", map[string]interface{}{
			"tenant":     tenant,
			"cognito_id": owner.CognitoID,
			"username":   req.Username,
			"message":    "Please confirm email before login",
		})
	}
}

// handleRegister registers a staff member into an existing tenant
func handleRegister(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}

		userRole := models.RoleUser
		if req.Role != "" {
			switch req.Role {
			case "tenant_owner", "user":
				userRole = models.UserRole(req.Role)
			case "admin":
				utils.BadRequestResponse(c, "Admin users must be created through a separate process")
				return
			default:
				utils.BadRequestResponse(c, "Invalid role. Must be 'tenant_owner' or 'user'")
				return
			}
		}

		parsedTenantID, err := uuid.Parse(req.TenantID)
		if err != nil {
			utils.BadRequestResponse(c, "Invalid tenant ID")
			return
		}

		var tenant models.Tenant
		if err := db.Where("id = ?", parsedTenantID).First(&tenant).Error; err != nil {
			utils.NotFoundResponse(c, "Tenant not found")
			return
		}

		userAttributes := []*cognitoidentityprovider.AttributeType{
			{Name: aws.String("email"), Value: aws.String(req.Username)},
			{Name: aws.String("custom:role"), Value: aws.String(string(userRole))},
			{Name: aws.String("custom:tenant_id"), Value: aws.String(parsedTenantID.String())},
		}

		signUpInput := &cognitoidentityprovider.SignUpInput{
			ClientId:       aws.String(os.Getenv("COGNITO_CLIENT_ID")),
			Username:       aws.String(req.Username),
			Password:       aws.String(req.Password),
			UserAttributes: userAttributes,
		}
		if secretHash := generateSecretHash(req.Username); secretHash != "" {
			signUpInput.SecretHash = aws.String(secretHash)
		}

		var signUpResult *cognitoidentityprovider.SignUpOutput
		cognitoErr := circuitBreaker.Call(func() error {
			var err error
			signUpResult, err = cognitoClient.SignUp(signUpInput)
			return err
		})
		if cognitoErr != nil {
			if cognitoErr == utils.ErrCircuitOpen {
				utils.ServiceUnavailableResponse(c, "Authentication service temporarily unavailable")
			} else {
				utils.BadRequestResponse(c, "Failed to register user: "+cognitoErr.Error())
			}
			return
		}

		user := models.User{
			CognitoID: *signUpResult.UserSub,
			TenantID:  parsedTenantID,
			Role:      userRole,
			CreatedAt: time.Now(),
		}
		if err := db.Create(&user).Error; err != nil {
			// Roll the Cognito side back so login and DB state stay consistent
			compensateCognitoUser(req.Username)
			utils.InternalServerErrorResponse(c, "Failed to complete registration")
			return
		}

		utils.CreatedResponse(c, "User registered successfully", map[string]interface{}{
			"cognito_id": user.CognitoID,
			"username":   req.Username,
			"role":       string(userRole),
			"tenant_id":  user.TenantID,
			"message":    "User registered successfully. Please confirm email before login.",
		})
	}
}

// compensateCognitoUser deletes an orphaned Cognito account after a failed
// database write
func compensateCognitoUser(username string) {
	err := circuitBreaker.Call(func() error {
		_, deleteErr := cognitoClient.AdminDeleteUser(&cognitoidentityprovider.AdminDeleteUserInput{
			UserPoolId: aws.String(os.Getenv("COGNITO_USER_POOL_ID")),
			Username:   aws.String(username),
		})
		return deleteErr
	})
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"username": username,
			"error":    err,
		}).Warn("Failed to compensate orphaned Cognito user")
	}
}

// handleRefreshToken handles token refresh
func handleRefreshToken(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			RefreshToken string `json:"refresh_token" binding:"required"`
		}

		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}

		authInput := &cognitoidentityprovider.InitiateAuthInput{
			AuthFlow: aws.String("REFRESH_TOKEN_AUTH"),
			ClientId: aws.String(os.Getenv("COGNITO_CLIENT_ID")),
			AuthParameters: map[string]*string{
				"REFRESH_TOKEN": aws.String(req.RefreshToken),
			},
		}

		authResult, err := cognitoClient.InitiateAuth(authInput)
		if err != nil {
			utils.UnauthorizedResponse(c, "Invalid refresh token")
			return
		}

		utils.OKResponse(c, "Token refreshed successfully", map[string]interface{}{
			"access_token": *authResult.AuthenticationResult.AccessToken,
			"expires_in":   *authResult.AuthenticationResult.ExpiresIn,
			"token_type":   "Bearer",
		})
	}
}

// handleLogout revokes the caller's Redis session
func handleLogout(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		accessToken, exists := c.Get("access_token")
		if !exists {
			utils.UnauthorizedResponse(c, "No active session found")
			return
		}

		if err := utils.DeleteTokenSession(accessToken.(string)); err != nil {
			utils.InternalServerErrorResponse(c, "Failed to revoke session")
			return
		}

		utils.OKResponse(c, "Logout successful", nil)
	}
}

// handleConfirmEmail handles manual email confirmation (admin only)
func handleConfirmEmail(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Username string `json:"username" binding:"required"`
		}

		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}

		err := circuitBreaker.Call(func() error {
			_, confirmErr := cognitoClient.AdminConfirmSignUp(&cognitoidentityprovider.AdminConfirmSignUpInput{
				UserPoolId: aws.String(os.Getenv("COGNITO_USER_POOL_ID")),
				Username:   aws.String(req.Username),
			})
			return confirmErr
		})
		if err != nil {
			utils.BadRequestResponse(c, "Failed to confirm email: "+err.Error())
			return
		}

		utils.OKResponse(c, "Email confirmed successfully", map[string]interface{}{
			"username": req.Username,
			"message":  "User can now login",
		})
	}
}

// handleGetUsers handles getting all users (admin only)
func handleGetUsers(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var users []models.User
		if err := db.Preload("Tenant").Find(&users).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to fetch users")
			return
		}

		type UserResponse struct {
			CognitoID   string     `json:"cognito_id"`
			TenantID    uuid.UUID  `json:"tenant_id"`
			TenantName  string     `json:"tenant_name,omitempty"`
			Role        string     `json:"role"`
			CreatedAt   time.Time  `json:"created_at"`
			LastLoginAt *time.Time `json:"last_login_at,omitempty"`
		}

		response := make([]UserResponse, len(users))
		for i, user := range users {
			response[i] = UserResponse{
				CognitoID:   user.CognitoID,
				TenantID:    user.TenantID,
				Role:        string(user.Role),
				CreatedAt:   user.CreatedAt,
				LastLoginAt: user.LastLoginAt,
			}
			if user.Tenant != nil {
				response[i].TenantName = user.Tenant.Name
			}
		}

		utils.OKResponse(c, "Users retrieved successfully", response)
	}
}

// handleGetUser handles getting a specific user
func handleGetUser(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		cognitoID := c.Param("id")

		var user models.User
		if err := db.Preload("Tenant").Where("cognito_id = ?", cognitoID).First(&user).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				utils.NotFoundResponse(c, "User not found")
			} else {
				utils.InternalServerErrorResponse(c, "Failed to fetch user")
			}
			return
		}

		response := map[string]interface{}{
			"cognito_id":    user.CognitoID,
			"tenant_id":     user.TenantID,
			"tenant_name":   "",
			"role":          string(user.Role),
			"created_at":    user.CreatedAt,
			"last_login_at": user.LastLoginAt,
		}
		if user.Tenant != nil {
			response["tenant_name"] = user.Tenant.Name
		}

		utils.OKResponse(c, "User retrieved successfully", response)
	}
}

// handleUpdateUser updates a user's role in Cognito. Role lives in Cognito,
// not in the database, so changes take effect on next login.
func handleUpdateUser(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		cognitoID := c.Param("id")

		var user models.User
		if err := db.Where("cognito_id = ?", cognitoID).First(&user).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				utils.NotFoundResponse(c, "User not found")
			} else {
				utils.InternalServerErrorResponse(c, "Failed to fetch user")
			}
			return
		}

		var updateData struct {
			Role string `json:"role" binding:"required,oneof=user tenant_owner"`
		}
		if err := c.ShouldBindJSON(&updateData); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}

		err := circuitBreaker.Call(func() error {
			_, updateErr := cognitoClient.AdminUpdateUserAttributes(&cognitoidentityprovider.AdminUpdateUserAttributesInput{
				UserPoolId: aws.String(os.Getenv("COGNITO_USER_POOL_ID")),
				Username:   aws.String(cognitoID),
				UserAttributes: []*cognitoidentityprovider.AttributeType{
					{
						Name:  aws.String("custom:role"),
						Value: aws.String(updateData.Role),
					},
				},
			})
			return updateErr
		})
		if err != nil {
			if err == utils.ErrCircuitOpen {
				utils.ServiceUnavailableResponse(c, "Authentication service temporarily unavailable")
			} else {
				utils.InternalServerErrorResponse(c, "Failed to update user role: "+err.Error())
			}
			return
		}

		db.Model(&user).Update("role", updateData.Role)

		utils.OKResponse(c, "User updated successfully. Changes will take effect on next login.", map[string]interface{}{
			"cognito_id": cognitoID,
			"role":       updateData.Role,
		})
	}
}

// handleDeleteUser deletes a user from both Cognito and the database
func handleDeleteUser(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		cognitoID := c.Param("id")

		err := circuitBreaker.Call(func() error {
			_, deleteErr := cognitoClient.AdminDeleteUser(&cognitoidentityprovider.AdminDeleteUserInput{
				UserPoolId: aws.String(os.Getenv("COGNITO_USER_POOL_ID")),
				Username:   aws.String(cognitoID),
			})
			return deleteErr
		})
		if err != nil {
			if err == utils.ErrCircuitOpen {
				utils.ServiceUnavailableResponse(c, "Authentication service temporarily unavailable")
			} else {
				utils.InternalServerErrorResponse(c, "Failed to delete user from Cognito: "+err.Error())
			}
			return
		}

		if err := db.Delete(&models.User{}, "cognito_id = ?", cognitoID).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to delete user from database")
			return
		}

		utils.OKResponse(c, "User deleted successfully", nil)
	}
}

// extractCognitoIDFromToken extracts the Cognito subject from a JWT without
// re-verifying it; the token came straight from Cognito's own response
func extractCognitoIDFromToken(tokenString string) (string, error) {
	token, _, err := new(jwt.Parser).ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("invalid token claims format")
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return "", fmt.Errorf("sub claim not found or not a string")
	}

	return sub, nil
}

// buildUserProfileFromDB builds the Redis session profile from the database
func buildUserProfileFromDB(db *gorm.DB, cognitoID, email string) (models.UserProfile, error) {
	var admin models.Admin
	if err := db.Where("cognito_id = ?", cognitoID).First(&admin).Error; err == nil {
		return models.UserProfile{
			CognitoID: admin.CognitoID,
			Email:     email,
			Role:      "admin",
			TenantID:  nil,
			IsAdmin:   true,
			Metadata:  make(map[string]interface{}),
		}, nil
	}

	var user models.User
	if err := db.Where("cognito_id = ?", cognitoID).First(&user).Error; err != nil {
		return models.UserProfile{}, fmt.Errorf("user not found: %w", err)
	}

	return models.UserProfile{
		CognitoID: user.CognitoID,
		Email:     email,
		Role:      string(user.Role),
		TenantID:  &user.TenantID,
		IsAdmin:   false,
		Metadata:  make(map[string]interface{}),
	}, nil
}
