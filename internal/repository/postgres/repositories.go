package postgres

// Repositories groups concrete PostgreSQL repository implementations.
type Repositories struct {
	Users         *UserRepository
	Roles         *RoleRepository
	RefreshTokens *RefreshTokenRepository
}

// NewRepositories wires all repositories backed by the provided pool.
func NewRepositories(client pgClient) *Repositories {
	return &Repositories{
		Users:         NewUserRepository(client),
		Roles:         NewRoleRepository(client),
		RefreshTokens: NewRefreshTokenRepository(client),
	}
}
