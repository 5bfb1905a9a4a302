package repository

import (
	"context"
	"sort"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/lchen-dev/safety-portal/internal/domain"
)

const accountsCollection = "accounts"

type firestoreAccountRepository struct {
	client *firestore.Client
}

func NewFirestoreAccount(client *firestore.Client) domain.AccountRepository {
	return &firestoreAccountRepository{client: client}
}

// Create implements domain.AccountRepository.
func (f *firestoreAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	ref, _, err := f.client.Collection(accountsCollection).Add(ctx, account)
	if err != nil {
		return err
	}
	account.ID = ref.ID
	return nil
}

// GetByName implements domain.AccountRepository.
func (f *firestoreAccountRepository) GetByName(ctx context.Context, name string) (domain.Account, error) {
	var account domain.Account
	docs := f.client.Collection(accountsCollection).Where("name", "==", name).Limit(1).Documents(ctx)
	defer docs.Stop()
	snap, err := docs.Next()
	if err == iterator.Done {
		return account, domain.ErrNotFound
	}
	if err != nil {
		return account, err
	}
	if err := snap.DataTo(&account); err != nil {
		return account, err
	}
	account.ID = snap.Ref.ID
	return account, nil
}

// GetAll implements domain.AccountRepository.
func (f *firestoreAccountRepository) GetAll(ctx context.Context) ([]domain.Account, error) {
	accounts := make([]domain.Account, 0)
	docs := f.client.Collection(accountsCollection).Documents(ctx)
	defer docs.Stop()
	for {
		snap, err := docs.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return accounts, err
		}
		var account domain.Account
		if err := snap.DataTo(&account); err != nil {
			return accounts, err
		}
		account.ID = snap.Ref.ID
		accounts = append(accounts, account)
	}
	sortAccounts(accounts)
	return accounts, nil
}

// Delete implements domain.AccountRepository.
func (f *firestoreAccountRepository) Delete(ctx context.Context, id string) error {
	_, err := f.client.Collection(accountsCollection).Doc(id).Delete(ctx)
	return err
}

// sortAccounts orders by name with the super-admin always first.
func sortAccounts(accounts []domain.Account) {
	sort.SliceStable(accounts, func(i, j int) bool {
		if accounts[i].IsSuperAdmin() != accounts[j].IsSuperAdmin() {
			return accounts[i].IsSuperAdmin()
		}
		return accounts[i].Name < accounts[j].Name
	})
}
