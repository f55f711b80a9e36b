package services

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"testing"

	"github.com/kev405/toolflow-backend/internal/store"
	"github.com/kev405/toolflow-backend/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// fakeUserRepo is an in-memory UserRepository for service tests.
type fakeUserRepo struct {
	users        map[int64]types.User
	roles        map[int64][]types.Role
	nextID       int64
	createCalls  int
	replaceCalls int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users: make(map[int64]types.User),
		roles: make(map[int64][]types.Role),
	}
}

func (f *fakeUserRepo) seed(user types.User, roles ...types.Role) types.User {
	f.nextID++
	user.ID = f.nextID
	f.users[user.ID] = user
	f.roles[user.ID] = roles
	return user
}

func (f *fakeUserRepo) GetByID(_ context.Context, id int64) (types.User, error) {
	user, ok := f.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) GetByUsername(_ context.Context, username string) (types.User, error) {
	for _, user := range f.users {
		if user.Username == username && user.Status {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (f *fakeUserRepo) ExistsByUsername(_ context.Context, username string) (bool, error) {
	for _, user := range f.users {
		if user.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserRepo) Create(_ context.Context, user types.User, roles []types.Role) (types.User, error) {
	f.createCalls++
	for _, existing := range f.users {
		if existing.Username == user.Username {
			return types.User{}, store.ErrAlreadyExists
		}
	}
	f.nextID++
	user.ID = f.nextID
	f.users[user.ID] = user
	f.roles[user.ID] = roles
	return user, nil
}

func (f *fakeUserRepo) Update(_ context.Context, user types.User) (types.User, error) {
	if _, ok := f.users[user.ID]; !ok {
		return types.User{}, store.ErrNotFound
	}
	f.users[user.ID] = user
	return user, nil
}

func (f *fakeUserRepo) SoftDelete(_ context.Context, id int64) error {
	user, ok := f.users[id]
	if !ok {
		return store.ErrNotFound
	}
	user.Status = false
	f.users[id] = user
	return nil
}

func (f *fakeUserRepo) RolesByUserID(_ context.Context, userID int64) ([]types.Role, error) {
	return f.roles[userID], nil
}

func (f *fakeUserRepo) ReplaceRoles(_ context.Context, userID int64, roles []types.Role, _ int64) error {
	f.replaceCalls++
	f.roles[userID] = roles
	return nil
}

func (f *fakeUserRepo) List(_ context.Context, _ store.UserPage) ([]types.User, int, error) {
	active := make([]types.User, 0, len(f.users))
	for _, user := range f.users {
		if user.Status {
			active = append(active, user)
		}
	}
	sort.Slice(active, func(i, j int) bool { return active[i].ID < active[j].ID })
	return active, len(active), nil
}

func TestValidateRoles(t *testing.T) {
	tests := []struct {
		name    string
		roles   []types.Role
		want    []types.Role
		wantErr bool
	}{
		{
			name:    "empty set rejected",
			roles:   nil,
			wantErr: true,
		},
		{
			name:  "single student allowed",
			roles: []types.Role{types.RoleStudent},
			want:  []types.Role{types.RoleStudent},
		},
		{
			name:    "student mixed with teacher rejected",
			roles:   []types.Role{types.RoleStudent, types.RoleTeacher},
			wantErr: true,
		},
		{
			name:    "unknown role rejected",
			roles:   []types.Role{"SUPERUSER"},
			wantErr: true,
		},
		{
			name:  "duplicates collapse",
			roles: []types.Role{types.RoleAdministrator, types.RoleAdministrator},
			want:  []types.Role{types.RoleAdministrator},
		},
		{
			name:  "admin and teacher may combine",
			roles: []types.Role{types.RoleAdministrator, types.RoleTeacher},
			want:  []types.Role{types.RoleAdministrator, types.RoleTeacher},
		},
		{
			name:    "duplicated student stays exclusive",
			roles:   []types.Role{types.RoleStudent, types.RoleStudent},
			want:    []types.Role{types.RoleStudent},
			wantErr: false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ValidateRoles(tc.roles)
			if tc.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidRoleAssignment)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestRegister_Success(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewUserService(repo, nil)

	resp, err := svc.Register(context.Background(), UserRequest{
		Name:             "John",
		LastName:         "Doe",
		Username:         "johndoe",
		Email:            "john@example.com",
		Password:         "s3cret-pass",
		RepeatedPassword: "s3cret-pass",
		Roles:            []types.Role{types.RoleTeacher},
	})
	require.NoError(t, err)

	assert.Equal(t, "johndoe", resp.Username)
	assert.Equal(t, []types.Role{types.RoleTeacher}, resp.Roles)
	assert.NotZero(t, resp.ID)

	stored := repo.users[resp.ID]
	assert.True(t, stored.Status, "new accounts start active")
	assert.NotEqual(t, "s3cret-pass", stored.PasswordHash, "password must be stored hashed")
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("s3cret-pass")))
}

func TestRegister_NeverEchoesPassword(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewUserService(repo, nil)

	resp, err := svc.Register(context.Background(), UserRequest{
		Name:             "Jane",
		Username:         "jane",
		Password:         "pass-word",
		RepeatedPassword: "pass-word",
		Roles:            []types.Role{types.RoleAdministrator},
	})
	require.NoError(t, err)

	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.NotContains(t, strings.ToLower(string(raw)), "password")
	assert.NotContains(t, string(raw), "pass-word")
}

func TestRegister_DuplicateUsername(t *testing.T) {
	repo := newFakeUserRepo()
	repo.seed(types.User{Username: "taken", Status: false}, types.RoleStudent)
	svc := NewUserService(repo, nil)

	_, err := svc.Register(context.Background(), UserRequest{
		Name:             "Other",
		Username:         "taken",
		Password:         "pw",
		RepeatedPassword: "pw",
		Roles:            []types.Role{types.RoleTeacher},
	})
	require.ErrorIs(t, err, store.ErrAlreadyExists,
		"an inactive account still reserves its username")
	assert.Zero(t, repo.createCalls, "nothing may be persisted on a duplicate")
}

func TestRegister_PasswordMismatch(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewUserService(repo, nil)

	_, err := svc.Register(context.Background(), UserRequest{
		Username:         "mismatch",
		Password:         "one",
		RepeatedPassword: "two",
		Roles:            []types.Role{types.RoleTeacher},
	})
	require.ErrorIs(t, err, ErrInvalidPassword)
	assert.Zero(t, repo.createCalls)
}

func TestRegister_BlankPassword(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewUserService(repo, nil)

	_, err := svc.Register(context.Background(), UserRequest{
		Username:         "blank",
		Password:         "   ",
		RepeatedPassword: "   ",
		Roles:            []types.Role{types.RoleTeacher},
	})
	require.ErrorIs(t, err, ErrInvalidPassword)
}

func TestUpdate_ReplacesChangedRoleSet(t *testing.T) {
	repo := newFakeUserRepo()
	seeded := repo.seed(types.User{Username: "mutable", Status: true}, types.RoleTeacher)
	svc := NewUserService(repo, nil)

	resp, err := svc.Update(context.Background(), seeded.ID, UserRequest{
		Name:     "Renamed",
		Username: "mutable",
		Roles:    []types.Role{types.RoleAdministrator, types.RoleTeacher},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, repo.replaceCalls)
	assert.ElementsMatch(t, []types.Role{types.RoleAdministrator, types.RoleTeacher}, repo.roles[seeded.ID])
	assert.Equal(t, "Renamed", resp.Name)
}

func TestUpdate_SameRoleSetSkipsReplace(t *testing.T) {
	repo := newFakeUserRepo()
	seeded := repo.seed(types.User{Username: "steady", Status: true}, types.RoleTeacher, types.RoleAdministrator)
	svc := NewUserService(repo, nil)

	_, err := svc.Update(context.Background(), seeded.ID, UserRequest{
		Username: "steady",
		Roles:    []types.Role{types.RoleAdministrator, types.RoleTeacher},
	})
	require.NoError(t, err)
	assert.Zero(t, repo.replaceCalls, "order-insensitive equality must skip the rewrite")
}

func TestUpdate_InvalidRolesRejectedBeforePersisting(t *testing.T) {
	repo := newFakeUserRepo()
	seeded := repo.seed(types.User{Username: "strict", Status: true}, types.RoleTeacher)
	svc := NewUserService(repo, nil)

	_, err := svc.Update(context.Background(), seeded.ID, UserRequest{
		Username: "strict",
		Roles:    []types.Role{types.RoleStudent, types.RoleAdministrator},
	})
	require.ErrorIs(t, err, ErrInvalidRoleAssignment)
	assert.Equal(t, []types.Role{types.RoleTeacher}, repo.roles[seeded.ID])
}

func TestDelete_SoftDeletesOnly(t *testing.T) {
	repo := newFakeUserRepo()
	seeded := repo.seed(types.User{Username: "leaver", Status: true}, types.RoleStudent)
	svc := NewUserService(repo, nil)

	require.NoError(t, svc.Delete(context.Background(), seeded.ID, 1))

	stored, ok := repo.users[seeded.ID]
	require.True(t, ok, "soft delete keeps the row")
	assert.False(t, stored.Status)

	_, err := svc.Get(context.Background(), seeded.ID)
	require.NoError(t, err, "lookup by id still resolves inactive users")
}

func TestList_InvalidSearchColumn(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewUserService(repo, nil)

	_, _, err := svc.List(context.Background(), ListUsersParams{
		Search:       "x",
		SearchColumn: "password_hash",
	})
	require.ErrorIs(t, err, ErrInvalidSearchColumn)

	_, _, err = svc.List(context.Background(), ListUsersParams{SortColumn: "drop table"})
	require.ErrorIs(t, err, ErrInvalidSearchColumn)
}

func TestList_ExcludesInactiveUsers(t *testing.T) {
	repo := newFakeUserRepo()
	repo.seed(types.User{Username: "active", Status: true}, types.RoleTeacher)
	repo.seed(types.User{Username: "gone", Status: false}, types.RoleTeacher)
	svc := NewUserService(repo, nil)

	users, total, err := svc.List(context.Background(), ListUsersParams{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, users, 1)
	assert.Equal(t, "active", users[0].Username)
}

func TestRoles_ClosedEnumeration(t *testing.T) {
	svc := NewUserService(newFakeUserRepo(), nil)
	assert.Equal(t, types.AllRoles(), svc.Roles())
}
