package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type JWTTestSuite struct {
	suite.Suite
	manager *JWTManager
}

func (suite *JWTTestSuite) SetupTest() {
	suite.manager = NewJWTManager(
		"test-secret-key",
		1*time.Hour,
		7*24*time.Hour,
	)
}

func (suite *JWTTestSuite) TestNewJWTManager() {
	manager := NewJWTManager("secret", 1*time.Hour, 24*time.Hour)
	suite.NotNil(manager)
	suite.Equal(1*time.Hour, manager.GetTokenExpiry("access"))
	suite.Equal(24*time.Hour, manager.GetTokenExpiry("refresh"))
}

func (suite *JWTTestSuite) TestGenerateAccessToken() {
	token, jti, err := suite.manager.GenerateAccessToken(123, "testplayer", "test@example.com")
	suite.NoError(err)
	suite.NotEmpty(token)
	suite.NotEmpty(jti)
}

func (suite *JWTTestSuite) TestAccessTokensCarryUniqueJTI() {
	_, jti1, err := suite.manager.GenerateAccessToken(1, "alpha", "a@example.com")
	suite.NoError(err)
	_, jti2, err := suite.manager.GenerateAccessToken(1, "alpha", "a@example.com")
	suite.NoError(err)
	suite.NotEqual(jti1, jti2)
}

func (suite *JWTTestSuite) TestGenerateRefreshToken() {
	token, err := suite.manager.GenerateRefreshToken(456, "jti-456")
	suite.NoError(err)
	suite.NotEmpty(token)
}

func (suite *JWTTestSuite) TestValidateToken() {
	token, jti, err := suite.manager.GenerateAccessToken(789, "validplayer", "valid@example.com")
	suite.NoError(err)

	claims, err := suite.manager.ValidateToken(token)
	suite.NoError(err)
	suite.Equal(uint(789), claims.PlayerID)
	suite.Equal("validplayer", claims.Username)
	suite.Equal("valid@example.com", claims.Email)
	suite.Equal("access", claims.TokenType)
	suite.Equal(jti, claims.JTI())
}

func (suite *JWTTestSuite) TestValidateTokenWrongSecret() {
	token, _, err := suite.manager.GenerateAccessToken(1, "player", "p@example.com")
	suite.NoError(err)

	otherManager := NewJWTManager("different-secret", time.Hour, time.Hour)
	_, err = otherManager.ValidateToken(token)
	suite.Error(err)
}

func (suite *JWTTestSuite) TestValidateTokenGarbage() {
	_, err := suite.manager.ValidateToken("not.a.token")
	suite.Error(err)
}

func (suite *JWTTestSuite) TestValidateExpiredToken() {
	shortManager := NewJWTManager("test-secret-key", -time.Minute, time.Hour)
	token, _, err := shortManager.GenerateAccessToken(1, "player", "p@example.com")
	suite.NoError(err)

	_, err = shortManager.ValidateToken(token)
	suite.Error(err)
}

func (suite *JWTTestSuite) TestRefreshAccessToken() {
	refresh, err := suite.manager.GenerateRefreshToken(42, "jti-42")
	suite.NoError(err)

	access, jti, err := suite.manager.RefreshAccessToken(refresh, "player42", "p42@example.com")
	suite.NoError(err)
	suite.NotEmpty(access)
	suite.NotEmpty(jti)

	claims, err := suite.manager.ValidateToken(access)
	suite.NoError(err)
	suite.Equal(uint(42), claims.PlayerID)
	suite.Equal("access", claims.TokenType)
}

func (suite *JWTTestSuite) TestRefreshRejectsAccessToken() {
	access, _, err := suite.manager.GenerateAccessToken(1, "player", "p@example.com")
	suite.NoError(err)

	_, _, err = suite.manager.RefreshAccessToken(access, "player", "p@example.com")
	suite.Error(err)
}

func TestJWTTestSuite(t *testing.T) {
	suite.Run(t, new(JWTTestSuite))
}
