package userstore_test

import (
	"testing"

	userstore "github.com/dalemusser/applytrack/internal/app/store/users"
	"github.com/dalemusser/applytrack/internal/domain/models"
	"github.com/dalemusser/applytrack/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.User{
		FullName: "  Sam   Rivera ",
		Email:    " Sam@Example.COM ",
	}, "swordfish-42")
	require.NoError(t, err)

	assert.False(t, created.ID.IsZero())
	assert.Equal(t, "Sam Rivera", created.FullName)
	assert.Equal(t, "sam@example.com", created.Email)
	assert.Equal(t, "sam@example.com", created.EmailCI)
	assert.Equal(t, models.UserStatusActive, created.Status)
	assert.NotEqual(t, "swordfish-42", created.PasswordHash)
	assert.False(t, created.CreatedAt.IsZero())
}

func TestStore_Create_DuplicateEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.EnsureIndexes(t, db)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.Create(ctx, models.User{FullName: "A", Email: "dup@example.com"}, "swordfish-42")
	require.NoError(t, err)

	_, err = store.Create(ctx, models.User{FullName: "B", Email: "DUP@example.com"}, "swordfish-42")
	assert.ErrorIs(t, err, userstore.ErrDuplicateEmail)
}

func TestStore_Create_Invalid(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.Create(ctx, models.User{FullName: "", Email: "x@example.com"}, "swordfish-42")
	assert.Error(t, err)

	_, err = store.Create(ctx, models.User{FullName: "X", Email: "not-an-email"}, "swordfish-42")
	assert.Error(t, err)

	_, err = store.Create(ctx, models.User{FullName: "X", Email: "x@example.com", Status: "paused"}, "swordfish-42")
	assert.Error(t, err)
}

func TestStore_GetByEmail_CaseInsensitive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fixtures.CreateUser(ctx, "Casey", "casey@example.com")

	got, err := store.GetByEmail(ctx, "  CASEY@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = store.GetByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, mongo.ErrNoDocuments)
}

func TestStore_Authenticate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fixtures.CreateUser(ctx, "Casey", "casey@example.com")
	fixtures.CreateDisabledUser(ctx, "Off", "off@example.com")

	got, err := store.Authenticate(ctx, "casey@example.com", testutil.FixturePassword)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = store.Authenticate(ctx, "casey@example.com", "wrong-password")
	assert.ErrorIs(t, err, mongo.ErrNoDocuments)

	_, err = store.Authenticate(ctx, "off@example.com", testutil.FixturePassword)
	assert.ErrorIs(t, err, mongo.ErrNoDocuments)
}

func TestStore_TouchLogin(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fixtures.CreateUser(ctx, "Casey", "casey@example.com")
	require.NoError(t, store.TouchLogin(ctx, u.ID))

	got, err := store.GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastLoginAt)
}

func TestStore_UpdateNameAndPassword(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fixtures.CreateUser(ctx, "Casey", "casey@example.com")

	require.NoError(t, store.UpdateName(ctx, u.ID, " Casey  Jones "))
	got, err := store.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Casey Jones", got.FullName)

	assert.Error(t, store.UpdateName(ctx, u.ID, "   "))
	assert.ErrorIs(t, store.UpdateName(ctx, primitive.NewObjectID(), "X"), mongo.ErrNoDocuments)

	err = store.UpdatePassword(ctx, u.ID, "wrong", "new-password-1")
	assert.ErrorIs(t, err, userstore.ErrWrongPassword)

	require.NoError(t, store.UpdatePassword(ctx, u.ID, testutil.FixturePassword, "new-password-1"))
	_, err = store.Authenticate(ctx, "casey@example.com", "new-password-1")
	assert.NoError(t, err)
}

func TestStore_SetStatusByEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fixtures.CreateUser(ctx, "Casey", "casey@example.com")

	require.NoError(t, store.SetStatusByEmail(ctx, "Casey@Example.com", models.UserStatusDisabled))
	got, err := store.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UserStatusDisabled, got.Status)

	assert.Error(t, store.SetStatusByEmail(ctx, "casey@example.com", "paused"))
	assert.ErrorIs(t, store.SetStatusByEmail(ctx, "nobody@example.com", "active"), mongo.ErrNoDocuments)
}

func TestFetcher_FetchUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	f := userstore.NewFetcher(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	active := fixtures.CreateUser(ctx, "Casey", "casey@example.com")
	disabled := fixtures.CreateDisabledUser(ctx, "Off", "off@example.com")

	su := f.FetchUser(ctx, active.ID.Hex())
	require.NotNil(t, su)
	assert.Equal(t, "Casey", su.Name)
	assert.Equal(t, "casey@example.com", su.Email)

	assert.Nil(t, f.FetchUser(ctx, disabled.ID.Hex()))
	assert.Nil(t, f.FetchUser(ctx, primitive.NewObjectID().Hex()))
	assert.Nil(t, f.FetchUser(ctx, "garbage"))
}
