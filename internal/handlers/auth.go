package handlers

import (
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"

	apperrors "github.com/anonto42/moments/backend/internal/errors"
	"github.com/anonto42/moments/backend/internal/logger"
	"github.com/anonto42/moments/backend/internal/middleware"
	"github.com/anonto42/moments/backend/internal/models"
	"github.com/anonto42/moments/backend/internal/repositories"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// TokenTTL is the lifetime of locally issued JWTs.
const TokenTTL = 72 * time.Hour

var handleChars = regexp.MustCompile(`[^a-z0-9._]+`)

var errLocalAuthDisabled = echo.NewHTTPError(http.StatusNotImplemented, "Local accounts are not enabled")

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	userRepository    repositories.UserRepository
	accountRepository repositories.AccountRepository
	firebaseAuth      middleware.TokenVerifier
	jwtSecret         string
}

// NewAuthHandler creates a new AuthHandler. firebaseAuth may be nil when only
// local accounts are enabled. An empty jwtSecret disables local accounts and
// Firebase login then returns the profile without a token.
func NewAuthHandler(userRepo repositories.UserRepository, accountRepo repositories.AccountRepository, firebaseAuth middleware.TokenVerifier, jwtSecret string) *AuthHandler {
	return &AuthHandler{
		userRepository:    userRepo,
		accountRepository: accountRepo,
		firebaseAuth:      firebaseAuth,
		jwtSecret:         jwtSecret,
	}
}

// RegisterAuthRoutes registers authentication-related routes
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group) {
	g.POST("/signup", h.Signup)
	g.POST("/signin", h.SignIn)
	g.POST("/firebase-login", h.FirebaseLogin)
}

// Signup handles local user registration with email and password
func (h *AuthHandler) Signup(c echo.Context) error {
	if h.jwtSecret == "" {
		return errLocalAuthDisabled
	}
	var req models.SignupRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()

	if _, err := h.accountRepository.GetAccountByEmail(req.Email); err == nil {
		return echo.NewHTTPError(http.StatusConflict, "User with this email already registered")
	} else if !apperrors.IsNotFound(err) {
		return httpError(err)
	}

	taken, err := h.userRepository.IsUsernameTaken(ctx, req.Username, "")
	if err != nil {
		return httpError(err)
	}
	if taken {
		return echo.NewHTTPError(http.StatusConflict, "Username is already taken")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to hash password")
	}

	account := &models.Account{
		UID:      uuid.NewString(),
		Email:    req.Email,
		Password: string(hashedPassword),
	}
	if err := h.accountRepository.CreateAccount(account); err != nil {
		return httpError(err)
	}

	profile, _, err := h.userRepository.EnsureProfile(ctx, &models.UserProfile{
		UID:         account.UID,
		Email:       account.Email,
		DisplayName: req.DisplayName,
		Username:    req.Username,
	})
	if err != nil {
		return httpError(err)
	}

	token, err := h.generateJWT(account.UID, account.Email)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate token after signup")
	}

	logger.Log.Info("Account created", logger.WithUserID(account.UID))
	return c.JSON(http.StatusCreated, echo.Map{"token": token, "user": profile})
}

// SignIn handles local user authentication with email and password
func (h *AuthHandler) SignIn(c echo.Context) error {
	if h.jwtSecret == "" {
		return errLocalAuthDisabled
	}
	var req models.LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	account, err := h.accountRepository.GetAccountByEmail(req.Email)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
		}
		return httpError(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.Password), []byte(req.Password)); err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
	}

	token, err := h.generateJWT(account.UID, account.Email)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate token")
	}

	return c.JSON(http.StatusOK, echo.Map{"token": token})
}

// FirebaseLoginRequest defines the request body for Firebase login
type FirebaseLoginRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

// FirebaseLogin verifies a Firebase ID token and creates the users/{uid}
// profile on first login. A local JWT is issued only when local signing is
// configured; otherwise the client keeps using its Firebase ID token.
func (h *AuthHandler) FirebaseLogin(c echo.Context) error {
	if h.firebaseAuth == nil {
		return echo.NewHTTPError(http.StatusNotImplemented, "Firebase login is not enabled")
	}

	var req FirebaseLoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()

	token, err := h.firebaseAuth.VerifyIDToken(ctx, req.IDToken)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid Firebase ID token")
	}

	email, _ := token.Claims["email"].(string)
	name, _ := token.Claims["name"].(string)
	picture, _ := token.Claims["picture"].(string)

	profile, created, err := h.userRepository.EnsureProfile(ctx, &models.UserProfile{
		UID:         token.UID,
		Email:       email,
		DisplayName: name,
		Username:    defaultUsername(email, token.UID),
		Avatar:      picture,
	})
	if err != nil {
		return httpError(err)
	}
	if created {
		logger.Log.Info("Profile created on first login", logger.WithUserID(token.UID))
	}

	resp := echo.Map{"user": profile, "created": created}
	if h.jwtSecret != "" {
		localJWT, err := h.generateJWT(token.UID, email)
		if err != nil {
			logger.Log.Error("Failed to sign token", zap.Error(err))
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate local JWT")
		}
		resp["token"] = localJWT
	}
	return c.JSON(http.StatusOK, resp)
}

// defaultUsername derives a handle from the email's local part, or from the
// uid when that leaves fewer than 3 characters.
func defaultUsername(email, uid string) string {
	local, _, _ := strings.Cut(strings.ToLower(email), "@")
	handle := handleChars.ReplaceAllString(local, "")
	if len(handle) < 3 {
		handle = "user_" + handleChars.ReplaceAllString(strings.ToLower(uid), "")
	}
	if len(handle) > 30 {
		handle = handle[:30]
	}
	return handle
}

// generateJWT generates a JWT token for a given subject
func (h *AuthHandler) generateJWT(uid, email string) (string, error) {
	if h.jwtSecret == "" {
		return "", errors.New("jwt signing key is empty")
	}
	now := time.Now()
	claims := &models.JwtCustomClaims{
		UID:   uid,
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uid,
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.jwtSecret))
}
