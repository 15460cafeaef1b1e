package usecase

import (
	"context"
	"time"

	"github.com/bitlane/admin-iam/internal/core/domain"
	"github.com/bitlane/admin-iam/internal/repository"
)

type stubUserRepository struct {
	users       map[string]domain.User
	byEmail     map[string]string
	created     []domain.User
	createdRole [][]string
	deleted     []string
	loginStates []loginStateCall
	createErr   error

	listed      []domain.User
	listedTotal int
	listCalls   [][2]int
}

type loginStateCall struct {
	userID         string
	failedAttempts int
	lockedUntil    *time.Time
	lastLogin      *time.Time
}

func newStubUserRepository(users ...domain.User) *stubUserRepository {
	repo := &stubUserRepository{
		users:   make(map[string]domain.User),
		byEmail: make(map[string]string),
	}
	for _, user := range users {
		repo.users[user.ID] = user
		repo.byEmail[user.Email] = user.ID
	}
	return repo
}

func (r *stubUserRepository) Create(_ context.Context, user domain.User, roleIDs []string) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.created = append(r.created, user)
	r.createdRole = append(r.createdRole, roleIDs)
	r.users[user.ID] = user
	r.byEmail[user.Email] = user.ID
	return nil
}

func (r *stubUserRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	if user, ok := r.users[id]; ok {
		copy := user
		return &copy, nil
	}
	return nil, repository.ErrNotFound
}

func (r *stubUserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	if id, ok := r.byEmail[email]; ok {
		user := r.users[id]
		return &user, nil
	}
	return nil, repository.ErrNotFound
}

func (r *stubUserRepository) List(_ context.Context, offset, limit int) ([]domain.User, int, error) {
	r.listCalls = append(r.listCalls, [2]int{offset, limit})
	if offset >= len(r.listed) {
		return nil, r.listedTotal, nil
	}
	end := offset + limit
	if end > len(r.listed) {
		end = len(r.listed)
	}
	return r.listed[offset:end], r.listedTotal, nil
}

func (r *stubUserRepository) Delete(_ context.Context, id string) error {
	if _, ok := r.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.users, id)
	r.deleted = append(r.deleted, id)
	return nil
}

func (r *stubUserRepository) UpdateLoginState(_ context.Context, userID string, failedAttempts int, lockedUntil *time.Time, lastLogin *time.Time) error {
	r.loginStates = append(r.loginStates, loginStateCall{
		userID:         userID,
		failedAttempts: failedAttempts,
		lockedUntil:    lockedUntil,
		lastLogin:      lastLogin,
	})

	user, ok := r.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	user.FailedLoginAttempts = failedAttempts
	user.LockedUntil = lockedUntil
	if lastLogin != nil {
		user.LastLogin = lastLogin
	}
	r.users[userID] = user
	return nil
}

//

type stubRoleRepository struct {
	roles        map[string]domain.Role
	byName       map[string]string
	assignments  map[string]map[string]bool
	userRoles    map[string][]domain.Role
	translations map[string][]domain.RoleTranslation
	listed       []domain.RoleWithTranslation
	listedTotal  int
	listLanguage string

	created    []domain.Role
	createdTrs [][]domain.RoleTranslation
	updated    []domain.Role
	updatedTrs [][]domain.RoleTranslation
	deletedIDs []string
	assigns    [][2]string
	removes    [][2]string

	createErr error
	updateErr error
	deleteErr error
}

func newStubRoleRepository(roles ...domain.Role) *stubRoleRepository {
	repo := &stubRoleRepository{
		roles:        make(map[string]domain.Role),
		byName:       make(map[string]string),
		assignments:  make(map[string]map[string]bool),
		userRoles:    make(map[string][]domain.Role),
		translations: make(map[string][]domain.RoleTranslation),
	}
	for _, role := range roles {
		repo.roles[role.ID] = role
		repo.byName[role.Name] = role.ID
	}
	return repo
}

func (r *stubRoleRepository) Create(_ context.Context, role domain.Role, translations []domain.RoleTranslation) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.created = append(r.created, role)
	r.createdTrs = append(r.createdTrs, translations)
	r.roles[role.ID] = role
	r.byName[role.Name] = role.ID
	r.translations[role.ID] = translations
	return nil
}

func (r *stubRoleRepository) GetByName(_ context.Context, name string) (*domain.Role, error) {
	if id, ok := r.byName[name]; ok {
		role := r.roles[id]
		return &role, nil
	}
	return nil, repository.ErrNotFound
}

func (r *stubRoleRepository) GetByID(_ context.Context, id string) (*domain.Role, error) {
	if role, ok := r.roles[id]; ok {
		copy := role
		return &copy, nil
	}
	return nil, repository.ErrNotFound
}

func (r *stubRoleRepository) Update(_ context.Context, role domain.Role, translations []domain.RoleTranslation) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	current, ok := r.roles[role.ID]
	if !ok {
		return repository.ErrNotFound
	}
	delete(r.byName, current.Name)
	r.roles[role.ID] = role
	r.byName[role.Name] = role.ID
	r.translations[role.ID] = translations
	r.updated = append(r.updated, role)
	r.updatedTrs = append(r.updatedTrs, translations)
	return nil
}

func (r *stubRoleRepository) Delete(_ context.Context, id string) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	role, ok := r.roles[id]
	if !ok {
		return repository.ErrNotFound
	}
	delete(r.roles, id)
	delete(r.byName, role.Name)
	delete(r.translations, id)
	r.deletedIDs = append(r.deletedIDs, id)
	return nil
}

func (r *stubRoleRepository) ListWithTranslations(_ context.Context, languageKey string, offset, limit int) ([]domain.RoleWithTranslation, int, error) {
	r.listLanguage = languageKey
	if offset >= len(r.listed) {
		return nil, r.listedTotal, nil
	}
	end := offset + limit
	if end > len(r.listed) {
		end = len(r.listed)
	}
	return r.listed[offset:end], r.listedTotal, nil
}

func (r *stubRoleRepository) ListTranslations(_ context.Context, roleID string) ([]domain.RoleTranslation, error) {
	return r.translations[roleID], nil
}

func (r *stubRoleRepository) ListByUser(_ context.Context, userID string) ([]domain.Role, error) {
	return r.userRoles[userID], nil
}

func (r *stubRoleRepository) IsAssigned(_ context.Context, roleID, userID string) (bool, error) {
	return r.assignments[userID][roleID], nil
}

func (r *stubRoleRepository) AssignToUser(_ context.Context, roleID, userID string) error {
	if r.assignments[userID] == nil {
		r.assignments[userID] = make(map[string]bool)
	}
	r.assignments[userID][roleID] = true
	r.assigns = append(r.assigns, [2]string{roleID, userID})
	return nil
}

func (r *stubRoleRepository) RemoveFromUser(_ context.Context, roleID, userID string) error {
	if !r.assignments[userID][roleID] {
		return repository.ErrNotFound
	}
	delete(r.assignments[userID], roleID)
	r.removes = append(r.removes, [2]string{roleID, userID})
	return nil
}

//

type stubRefreshTokenRepository struct {
	tokens     map[string]domain.RefreshToken
	replaceErr error
	createErr  error

	createdTokens []domain.RefreshToken
	replacedWith  []domain.RefreshToken
	revokedValues []string
}

func newStubRefreshTokenRepository(tokens ...domain.RefreshToken) *stubRefreshTokenRepository {
	repo := &stubRefreshTokenRepository{tokens: make(map[string]domain.RefreshToken)}
	for _, token := range tokens {
		repo.tokens[token.Value] = token
	}
	return repo
}

func (r *stubRefreshTokenRepository) Create(_ context.Context, token domain.RefreshToken) error {
	if r.createErr != nil {
		return r.createErr
	}
	for value, existing := range r.tokens {
		if existing.UserID == token.UserID && !existing.Revoked {
			existing.Revoked = true
			r.tokens[value] = existing
		}
	}
	r.tokens[token.Value] = token
	r.createdTokens = append(r.createdTokens, token)
	return nil
}

func (r *stubRefreshTokenRepository) Replace(_ context.Context, presentedValue string, next domain.RefreshToken) error {
	if r.replaceErr != nil {
		return r.replaceErr
	}
	presented, ok := r.tokens[presentedValue]
	if !ok {
		return repository.ErrNotFound
	}
	if presented.Revoked {
		return repository.ErrNoLongerActive
	}
	for value, existing := range r.tokens {
		if existing.UserID == next.UserID && !existing.Revoked {
			existing.Revoked = true
			r.tokens[value] = existing
		}
	}
	r.tokens[next.Value] = next
	r.replacedWith = append(r.replacedWith, next)
	return nil
}

func (r *stubRefreshTokenRepository) GetByValue(_ context.Context, value string) (*domain.RefreshToken, error) {
	if token, ok := r.tokens[value]; ok {
		copy := token
		return &copy, nil
	}
	return nil, repository.ErrNotFound
}

func (r *stubRefreshTokenRepository) Revoke(_ context.Context, value string) error {
	token, ok := r.tokens[value]
	if !ok {
		return repository.ErrNotFound
	}
	token.Revoked = true
	r.tokens[value] = token
	r.revokedValues = append(r.revokedValues, value)
	return nil
}

//

type recordingPublisher struct {
	logins      []domain.UserLoggedInEvent
	rotations   []domain.TokensRotatedEvent
	revocations []domain.RefreshTokenRevokedEvent
	roleChanges []domain.RoleChangedEvent
	assignments []domain.RoleAssignmentChangedEvent
	userCreates []domain.UserCreatedEvent
	userDeletes []domain.UserDeletedEvent
	err         error
}

func (p *recordingPublisher) PublishUserLoggedIn(_ context.Context, event domain.UserLoggedInEvent) error {
	p.logins = append(p.logins, event)
	return p.err
}

func (p *recordingPublisher) PublishTokensRotated(_ context.Context, event domain.TokensRotatedEvent) error {
	p.rotations = append(p.rotations, event)
	return p.err
}

func (p *recordingPublisher) PublishRefreshTokenRevoked(_ context.Context, event domain.RefreshTokenRevokedEvent) error {
	p.revocations = append(p.revocations, event)
	return p.err
}

func (p *recordingPublisher) PublishRoleChanged(_ context.Context, event domain.RoleChangedEvent) error {
	p.roleChanges = append(p.roleChanges, event)
	return p.err
}

func (p *recordingPublisher) PublishRoleAssignmentChanged(_ context.Context, event domain.RoleAssignmentChangedEvent) error {
	p.assignments = append(p.assignments, event)
	return p.err
}

func (p *recordingPublisher) PublishUserCreated(_ context.Context, event domain.UserCreatedEvent) error {
	p.userCreates = append(p.userCreates, event)
	return p.err
}

func (p *recordingPublisher) PublishUserDeleted(_ context.Context, event domain.UserDeletedEvent) error {
	p.userDeletes = append(p.userDeletes, event)
	return p.err
}
