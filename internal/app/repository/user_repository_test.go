package repository

import (
	"context"
	"testing"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupUserTest(t *testing.T) (*gorm.DB, UserRepository) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	return testDB, NewUserRepository(testDB)
}

func newTestUser(email string) *model.User {
	return &model.User{
		Name:     "Ann",
		Email:    email,
		Password: "pw123",
		Role:     model.RoleUser,
	}
}

func TestUserRepository_Create(t *testing.T) {
	_, repo := setupUserTest(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		user    *model.User
		wantErr bool
	}{
		{
			name:    "Valid user",
			user:    newTestUser("ann@x.com"),
			wantErr: false,
		},
		{
			name:    "Duplicate email",
			user:    newTestUser("ann@x.com"),
			wantErr: true,
		},
		{
			name:    "Email differing only in case is distinct",
			user:    newTestUser("Ann@x.com"),
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.Create(ctx, tt.user)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotZero(t, tt.user.ID)
			assert.Empty(t, tt.user.Password)
			assert.NotEmpty(t, tt.user.PasswordHash)
			assert.NotNil(t, tt.user.Cart)
		})
	}
}

func TestUserRepository_FindByIDWithoutPassword(t *testing.T) {
	_, repo := setupUserTest(t)
	ctx := context.Background()

	user := newTestUser("ann@x.com")
	require.NoError(t, repo.Create(ctx, user))

	full, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, full.PasswordHash)

	session, err := repo.FindByIDWithoutPassword(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, session.Email)
	assert.Empty(t, session.PasswordHash)

	_, err = repo.FindByIDWithoutPassword(ctx, 9999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUserRepository_FindByEmail(t *testing.T) {
	_, repo := setupUserTest(t)
	ctx := context.Background()

	user := newTestUser("ann@x.com")
	require.NoError(t, repo.Create(ctx, user))

	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{name: "Existing email", email: "ann@x.com"},
		{name: "Unknown email", email: "bob@x.com", wantErr: true},
		{name: "Different case", email: "ANN@x.com", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found, err := repo.FindByEmail(ctx, tt.email)
			if tt.wantErr {
				assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
				assert.Nil(t, found)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, user.ID, found.ID)
			assert.True(t, found.MatchPassword("pw123"))
		})
	}
}

func TestUserRepository_ExistsByEmail(t *testing.T) {
	_, repo := setupUserTest(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newTestUser("ann@x.com")))

	exists, err := repo.ExistsByEmail(ctx, "ann@x.com")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByEmail(ctx, "bob@x.com")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestUserRepository_SaveCart(t *testing.T) {
	_, repo := setupUserTest(t)
	ctx := context.Background()

	user := newTestUser("ann@x.com")
	require.NoError(t, repo.Create(ctx, user))

	session, err := repo.FindByIDWithoutPassword(ctx, user.ID)
	require.NoError(t, err)

	session.Cart = model.Cart{
		{Product: 1, Name: "Book", Price: 12.5, Quantity: 2},
		{Product: 2, Name: "Pen", Price: 1, Quantity: 1},
	}
	require.NoError(t, repo.SaveCart(ctx, session))

	reloaded, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, session.Cart, reloaded.Cart)
	// saving from a password-less projection must keep the stored hash
	assert.True(t, reloaded.MatchPassword("pw123"))
}

func TestUserRepository_SaveCart_DeletedUser(t *testing.T) {
	_, repo := setupUserTest(t)
	ctx := context.Background()

	user := newTestUser("ann@x.com")
	require.NoError(t, repo.Create(ctx, user))
	require.NoError(t, repo.Delete(ctx, user.ID))

	user.Cart = model.Cart{{Product: 1, Quantity: 1}}
	assert.ErrorIs(t, repo.SaveCart(ctx, user), gorm.ErrRecordNotFound)
}

// Two writers that loaded the same user both save; the last save wins and
// the first writer's line is lost. This is the documented behaviour.
func TestUserRepository_SaveCart_LastWriteWins(t *testing.T) {
	_, repo := setupUserTest(t)
	ctx := context.Background()

	user := newTestUser("ann@x.com")
	require.NoError(t, repo.Create(ctx, user))

	first, err := repo.FindByIDWithoutPassword(ctx, user.ID)
	require.NoError(t, err)
	second, err := repo.FindByIDWithoutPassword(ctx, user.ID)
	require.NoError(t, err)

	first.Cart = first.Cart.Add(model.CartLine{Product: 1, Name: "A", Price: 5, Quantity: 1})
	second.Cart = second.Cart.Add(model.CartLine{Product: 2, Name: "B", Price: 7, Quantity: 1})

	require.NoError(t, repo.SaveCart(ctx, first))
	require.NoError(t, repo.SaveCart(ctx, second))

	reloaded, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, reloaded.Cart, 1)
	assert.Equal(t, uint(2), reloaded.Cart[0].Product)
}
