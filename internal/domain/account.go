package domain

import "context"

// SuperAdminName is the reserved account name. The record with this name is
// the super-admin: it can manage other accounts, sees every tenant's
// applications, and must never be deleted.
const SuperAdminName = "admin"

// Account is a tenant credential document. Name doubles as the tenant scope
// key and display name. Code is the login secret: either a bcrypt hash or,
// for legacy records imported from the original deployment, the plaintext
// password itself.
type Account struct {
	ID   string `json:"id" firestore:"-"`
	Name string `json:"name" firestore:"name"`
	Code string `json:"code" firestore:"code"`
	Role string `json:"role" firestore:"role"`
}

func (a Account) IsSuperAdmin() bool {
	return a.Name == SuperAdminName
}

type AccountRepository interface {
	Create(context.Context, *Account) error
	// GetByName returns the account whose name equals the tenant scope key,
	// or ErrNotFound.
	GetByName(context.Context, string) (Account, error)
	// GetAll returns every account, super-admin first.
	GetAll(context.Context) ([]Account, error)
	Delete(context.Context, string) error
}
