package domain

type CtxKey string

const (
	KeyAdminSubject CtxKey = "AdminSubject"
	KeyAdminRole    CtxKey = "AdminRole"
)

// RoleAdmin is the only role accepted on the admin surface
const RoleAdmin = "admin"
