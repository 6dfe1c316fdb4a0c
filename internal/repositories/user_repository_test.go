package repositories

import (
	"testing"
	"time"

	"bank-dashboard/internal/database"
	"bank-dashboard/internal/models"

	"github.com/stretchr/testify/suite"
)

func TestUserRepository(t *testing.T) {
	suite.Run(t, new(UserRepositorySuite))
}

type UserRepositorySuite struct {
	suite.Suite
	db   *database.DB
	repo UserRepositoryInterface
}

func (s *UserRepositorySuite) SetupTest() {
	s.db = database.SetupTestDB(s.T())
	s.repo = NewUserRepository(s.db.DB)
}

func (s *UserRepositorySuite) TearDownTest() {
	database.CleanupTestDB(s.T(), s.db)
}

func (s *UserRepositorySuite) newUser(username string) *models.User {
	return &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hashed_password",
	}
}

func (s *UserRepositorySuite) TestUserRepository_Create() {
	user := s.newUser("alice")

	err := s.repo.Create(user)
	s.NoError(err)
	s.NotZero(user.ID)
	s.NotZero(user.CreatedAt)
	s.NotZero(user.UpdatedAt)
}

func (s *UserRepositorySuite) TestUserRepository_Create_Duplicate() {
	s.Require().NoError(s.repo.Create(s.newUser("alice")))

	err := s.repo.Create(s.newUser("alice"))
	s.ErrorIs(err, ErrUserAlreadyExists)
}

func (s *UserRepositorySuite) TestUserRepository_Create_Nil() {
	s.Error(s.repo.Create(nil))
}

func (s *UserRepositorySuite) TestUserRepository_GetByUsername() {
	user := s.newUser("alice")
	s.Require().NoError(s.repo.Create(user))

	found, err := s.repo.GetByUsername("alice")
	s.Require().NoError(err)
	s.Equal(user.ID, found.ID)
	s.Equal("alice@example.com", found.Email)

	_, err = s.repo.GetByUsername("nobody")
	s.ErrorIs(err, ErrUserNotFound)
}

func (s *UserRepositorySuite) TestUserRepository_GetByEmail_CaseInsensitive() {
	user := s.newUser("alice")
	s.Require().NoError(s.repo.Create(user))

	found, err := s.repo.GetByEmail("ALICE@example.com")
	s.Require().NoError(err)
	s.Equal(user.ID, found.ID)

	_, err = s.repo.GetByEmail("missing@example.com")
	s.ErrorIs(err, ErrUserNotFound)
}

func (s *UserRepositorySuite) TestUserRepository_GetByID() {
	user := s.newUser("alice")
	s.Require().NoError(s.repo.Create(user))

	found, err := s.repo.GetByID(user.ID)
	s.Require().NoError(err)
	s.Equal("alice", found.Username)

	_, err = s.repo.GetByID(9999)
	s.ErrorIs(err, ErrUserNotFound)
}

func (s *UserRepositorySuite) TestUserRepository_List() {
	for _, name := range []string{"alice", "bob", "carol"} {
		s.Require().NoError(s.repo.Create(s.newUser(name)))
	}

	users, total, err := s.repo.List(1, 10)
	s.Require().NoError(err)
	s.Equal(int64(3), total)
	s.Require().Len(users, 2)
	s.Equal("bob", users[0].Username)
	s.Equal("carol", users[1].Username)
}

func (s *UserRepositorySuite) TestUserRepository_UpdateFields() {
	user := s.newUser("alice")
	s.Require().NoError(s.repo.Create(user))
	s.Require().NoError(s.repo.Create(s.newUser("bob")))

	err := s.repo.UpdateFields(user.ID, map[string]interface{}{"email": "new@example.com"})
	s.Require().NoError(err)

	found, err := s.repo.GetByID(user.ID)
	s.Require().NoError(err)
	s.Equal("new@example.com", found.Email)

	err = s.repo.UpdateFields(user.ID, map[string]interface{}{"email": "bob@example.com"})
	s.ErrorIs(err, ErrEmailAlreadyExists)

	err = s.repo.UpdateFields(9999, map[string]interface{}{"email": "ghost@example.com"})
	s.ErrorIs(err, ErrUserNotFound)
}

func (s *UserRepositorySuite) TestUserRepository_LoginAttempts() {
	user := s.newUser("alice")
	s.Require().NoError(s.repo.Create(user))

	for i := 0; i < models.MaxFailedLoginAttempts; i++ {
		user.IncrementFailedAttempts(models.MaxFailedLoginAttempts)
	}
	s.Require().NoError(s.repo.UpdateFailedLoginAttempts(user))

	locked, err := s.repo.GetByID(user.ID)
	s.Require().NoError(err)
	s.Equal(models.MaxFailedLoginAttempts, locked.FailedLoginAttempts)
	s.True(locked.IsLocked())

	s.Require().NoError(s.repo.RecordSuccessfulLogin(user.ID))

	unlocked, err := s.repo.GetByID(user.ID)
	s.Require().NoError(err)
	s.Zero(unlocked.FailedLoginAttempts)
	s.False(unlocked.IsLocked())
	s.Require().NotNil(unlocked.LastLoginAt)
	s.WithinDuration(time.Now(), *unlocked.LastLoginAt, time.Minute)
}

func (s *UserRepositorySuite) TestUserRepository_Delete_RemovesAccounts() {
	user := database.CreateTestUser(s.T(), s.db, "alice")
	other := database.CreateTestUser(s.T(), s.db, "bob")
	database.CreateTestAccount(s.T(), s.db, user, "10")
	database.CreateTestAccount(s.T(), s.db, other, "20")

	s.Require().NoError(s.repo.Delete(user.ID))

	_, err := s.repo.GetByID(user.ID)
	s.ErrorIs(err, ErrUserNotFound)

	var remaining int64
	s.Require().NoError(s.db.Model(&models.Account{}).Count(&remaining).Error)
	s.Equal(int64(1), remaining)

	s.ErrorIs(s.repo.Delete(user.ID), ErrUserNotFound)
}
