package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"
)

type PasswordTestSuite struct {
	suite.Suite
}

func (suite *PasswordTestSuite) TestHashPassword() {
	hash, err := HashPassword("correct horse battery staple")
	suite.NoError(err)
	suite.True(strings.HasPrefix(hash, "$argon2id$"))
	suite.Len(strings.Split(hash, "$"), 6)
}

func (suite *PasswordTestSuite) TestHashIsSalted() {
	hash1, err := HashPassword("same-password")
	suite.NoError(err)
	hash2, err := HashPassword("same-password")
	suite.NoError(err)
	suite.NotEqual(hash1, hash2)
}

func (suite *PasswordTestSuite) TestVerifyPassword() {
	hash, err := HashPassword("s3cret!")
	suite.NoError(err)

	ok, err := VerifyPassword("s3cret!", hash)
	suite.NoError(err)
	suite.True(ok)

	ok, err = VerifyPassword("wrong", hash)
	suite.NoError(err)
	suite.False(ok)
}

func (suite *PasswordTestSuite) TestVerifyPasswordMalformed() {
	_, err := VerifyPassword("anything", "not-a-hash")
	suite.Error(err)

	_, err = VerifyPassword("anything", "$bcrypt$v=19$m=1,t=1,p=1$c2FsdA$aGFzaA")
	suite.Error(err)
}

func (suite *PasswordTestSuite) TestHashWithCustomConfig() {
	config := &PasswordConfig{
		Time:    2,
		Memory:  32 * 1024,
		Threads: 2,
		KeyLen:  32,
	}

	hash, err := HashPasswordWithConfig("custom", config)
	suite.NoError(err)
	suite.Contains(hash, "m=32768,t=2,p=2")

	ok, err := VerifyPassword("custom", hash)
	suite.NoError(err)
	suite.True(ok)
}

func (suite *PasswordTestSuite) TestGenerateRandomString() {
	s1, err := GenerateRandomString(32)
	suite.NoError(err)
	suite.Len(s1, 32)

	s2, err := GenerateRandomString(32)
	suite.NoError(err)
	suite.NotEqual(s1, s2)
}

func (suite *PasswordTestSuite) TestGenerateSessionID() {
	id, err := GenerateSessionID()
	suite.NoError(err)
	suite.Len(id, 32)
}

func TestPasswordTestSuite(t *testing.T) {
	suite.Run(t, new(PasswordTestSuite))
}
