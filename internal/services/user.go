package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/kev405/toolflow-backend/internal/audit"
	"github.com/kev405/toolflow-backend/internal/store"
	"github.com/kev405/toolflow-backend/types"
	"golang.org/x/crypto/bcrypt"
)

// UserRepository defines persistence operations for users and their roles.
type UserRepository interface {
	GetByID(ctx context.Context, id int64) (types.User, error)
	GetByUsername(ctx context.Context, username string) (types.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	Create(ctx context.Context, user types.User, roles []types.Role) (types.User, error)
	Update(ctx context.Context, user types.User) (types.User, error)
	SoftDelete(ctx context.Context, id int64) error
	RolesByUserID(ctx context.Context, userID int64) ([]types.Role, error)
	ReplaceRoles(ctx context.Context, userID int64, roles []types.Role, actorID int64) error
	List(ctx context.Context, page store.UserPage) ([]types.User, int, error)
}

// UserRequest is the registration/update payload.
type UserRequest struct {
	Name             string       `json:"name"`
	Username         string       `json:"username"`
	Password         string       `json:"password"`
	RepeatedPassword string       `json:"repeatedPassword"`
	LastName         string       `json:"lastName"`
	Phone            string       `json:"phone"`
	Email            string       `json:"email"`
	CreatedBy        int64        `json:"createdBy"`
	UpdatedBy        int64        `json:"updatedBy"`
	Roles            []types.Role `json:"roles"`
}

// UserResponse is the public view of a user. It never carries the password
// in any form.
type UserResponse struct {
	ID       int64        `json:"id"`
	Name     string       `json:"name"`
	Username string       `json:"username"`
	LastName string       `json:"lastName"`
	Email    string       `json:"email"`
	Phone    string       `json:"phone"`
	Roles    []types.Role `json:"roles"`
}

// ListUsersParams describes pagination, sorting and search for user pages.
type ListUsersParams struct {
	Page         int
	Limit        int
	SortColumn   string
	SortDesc     bool
	Search       string
	SearchColumn string
}

// UserService implements registration, update, soft deletion and listing of
// users, enforcing the role-assignment and password-confirmation invariants.
type UserService struct {
	repo    UserRepository
	auditor *audit.Publisher
}

func NewUserService(repo UserRepository, auditor *audit.Publisher) *UserService {
	return &UserService{repo: repo, auditor: auditor}
}

// Register validates and persists a new user. Order matters: the uniqueness
// check runs before password hashing so a duplicate costs no bcrypt work,
// and no persistence happens before every validation has passed. A unique
// index violation racing past the check still maps to ErrAlreadyExists.
func (s *UserService) Register(ctx context.Context, req UserRequest) (UserResponse, error) {
	req.Username = strings.TrimSpace(req.Username)

	exists, err := s.repo.ExistsByUsername(ctx, req.Username)
	if err != nil {
		return UserResponse{}, err
	}
	if exists {
		return UserResponse{}, store.ErrAlreadyExists
	}

	if err := validatePassword(req.Password, req.RepeatedPassword); err != nil {
		return UserResponse{}, err
	}

	roles, err := ValidateRoles(req.Roles)
	if err != nil {
		return UserResponse{}, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return UserResponse{}, err
	}

	user := types.User{
		Name:         strings.TrimSpace(req.Name),
		LastName:     strings.TrimSpace(req.LastName),
		Username:     req.Username,
		Email:        strings.TrimSpace(req.Email),
		Phone:        strings.TrimSpace(req.Phone),
		PasswordHash: string(hashed),
		Status:       true,
		CreatedBy:    req.CreatedBy,
		UpdatedBy:    req.UpdatedBy,
	}

	created, err := s.repo.Create(ctx, user, roles)
	if err != nil {
		return UserResponse{}, err
	}

	if s.auditor != nil {
		s.auditor.Record(ctx, "user.registered", "user", created.ID, req.CreatedBy)
	}
	return buildUserResponse(created, roles), nil
}

// Update edits an existing user and replaces its full role set when the set
// changed. Old associations are deleted and the new ones inserted; no diff
// is computed.
func (s *UserService) Update(ctx context.Context, id int64, req UserRequest) (UserResponse, error) {
	roles, err := ValidateRoles(req.Roles)
	if err != nil {
		return UserResponse{}, err
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return UserResponse{}, err
	}

	user.Name = strings.TrimSpace(req.Name)
	user.LastName = strings.TrimSpace(req.LastName)
	user.Username = strings.TrimSpace(req.Username)
	user.Email = strings.TrimSpace(req.Email)
	user.Phone = strings.TrimSpace(req.Phone)
	user.UpdatedBy = req.UpdatedBy

	updated, err := s.repo.Update(ctx, user)
	if err != nil {
		return UserResponse{}, err
	}

	existing, err := s.repo.RolesByUserID(ctx, id)
	if err != nil {
		return UserResponse{}, err
	}
	if !sameRoleSet(existing, roles) {
		if err := s.repo.ReplaceRoles(ctx, id, roles, req.UpdatedBy); err != nil {
			return UserResponse{}, err
		}
	}

	if s.auditor != nil {
		s.auditor.Record(ctx, "user.updated", "user", id, req.UpdatedBy)
	}
	return buildUserResponse(updated, roles), nil
}

// Delete soft-deletes a user: the account is marked inactive, never removed.
func (s *UserService) Delete(ctx context.Context, id, actorID int64) error {
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}
	if s.auditor != nil {
		s.auditor.Record(ctx, "user.deleted", "user", id, actorID)
	}
	return nil
}

// Get returns one user with its role set.
func (s *UserService) Get(ctx context.Context, id int64) (UserResponse, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return UserResponse{}, err
	}
	roles, err := s.repo.RolesByUserID(ctx, id)
	if err != nil {
		return UserResponse{}, err
	}
	return buildUserResponse(user, roles), nil
}

// List returns a page of active users. Search and sort columns are checked
// against the whitelist before any query is built.
func (s *UserService) List(ctx context.Context, params ListUsersParams) ([]UserResponse, int, error) {
	if params.SearchColumn != "" && !store.ValidUserColumn(params.SearchColumn) {
		return nil, 0, fmt.Errorf("%w: %s", ErrInvalidSearchColumn, params.SearchColumn)
	}
	if params.SortColumn != "" && !store.ValidUserColumn(params.SortColumn) {
		return nil, 0, fmt.Errorf("%w: %s", ErrInvalidSearchColumn, params.SortColumn)
	}
	if params.Page < 1 {
		params.Page = 1
	}
	if params.Limit < 1 {
		params.Limit = 10
	}

	users, total, err := s.repo.List(ctx, store.UserPage{
		Offset:       (params.Page - 1) * params.Limit,
		Limit:        params.Limit,
		SortColumn:   params.SortColumn,
		SortDesc:     params.SortDesc,
		Search:       params.Search,
		SearchColumn: params.SearchColumn,
	})
	if err != nil {
		return nil, 0, err
	}

	responses := make([]UserResponse, 0, len(users))
	for _, user := range users {
		roles, err := s.repo.RolesByUserID(ctx, user.ID)
		if err != nil {
			return nil, 0, err
		}
		responses = append(responses, buildUserResponse(user, roles))
	}
	return responses, total, nil
}

// Roles returns the closed role enumeration.
func (s *UserService) Roles() []types.Role {
	return types.AllRoles()
}

// ValidateRoles checks and normalizes a requested role set: the list must be
// present and non-empty, every value must name a known role, duplicates are
// dropped, and STUDENT may not be combined with any other role.
func ValidateRoles(roles []types.Role) ([]types.Role, error) {
	if len(roles) == 0 {
		return nil, fmt.Errorf("%w: roles cannot be empty", ErrInvalidRoleAssignment)
	}

	seen := make(map[types.Role]struct{}, len(roles))
	deduped := make([]types.Role, 0, len(roles))
	for _, role := range roles {
		parsed, err := types.ParseRole(string(role))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidRoleAssignment, err)
		}
		if _, ok := seen[parsed]; ok {
			continue
		}
		seen[parsed] = struct{}{}
		deduped = append(deduped, parsed)
	}

	if _, ok := seen[types.RoleStudent]; ok && len(deduped) > 1 {
		return nil, fmt.Errorf("%w: a student user can only have the STUDENT role exclusively", ErrInvalidRoleAssignment)
	}
	return deduped, nil
}

func validatePassword(password, repeated string) error {
	if strings.TrimSpace(password) == "" || strings.TrimSpace(repeated) == "" {
		return ErrInvalidPassword
	}
	if password != repeated {
		return ErrInvalidPassword
	}
	return nil
}

func sameRoleSet(a, b []types.Role) bool {
	if len(a) != len(b) {
		return false
	}
	as := append([]types.Role(nil), a...)
	bs := append([]types.Role(nil), b...)
	sort.Slice(as, func(i, j int) bool { return as[i] < as[j] })
	sort.Slice(bs, func(i, j int) bool { return bs[i] < bs[j] })
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}

func buildUserResponse(user types.User, roles []types.Role) UserResponse {
	return UserResponse{
		ID:       user.ID,
		Name:     user.Name,
		Username: user.Username,
		LastName: user.LastName,
		Email:    user.Email,
		Phone:    user.Phone,
		Roles:    roles,
	}
}
