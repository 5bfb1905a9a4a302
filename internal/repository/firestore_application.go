package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/lchen-dev/safety-portal/internal/domain"
)

const applicationsCollection = "applications"

type firestoreApplicationRepository struct {
	client *firestore.Client
}

func NewFirestoreApplication(client *firestore.Client) domain.ApplicationRepository {
	return &firestoreApplicationRepository{client: client}
}

// Create implements domain.ApplicationRepository.
func (f *firestoreApplicationRepository) Create(ctx context.Context, app *domain.Application) error {
	ref, _, err := f.client.Collection(applicationsCollection).Add(ctx, app)
	if err != nil {
		return err
	}
	app.ID = ref.ID
	return nil
}

// GetByID implements domain.ApplicationRepository.
func (f *firestoreApplicationRepository) GetByID(ctx context.Context, id string) (domain.Application, error) {
	var app domain.Application
	snap, err := f.client.Collection(applicationsCollection).Doc(id).Get(ctx)
	if err != nil {
		if snap != nil && !snap.Exists() {
			return app, domain.ErrNotFound
		}
		return app, err
	}
	if err := snap.DataTo(&app); err != nil {
		return app, err
	}
	app.ID = snap.Ref.ID
	return app, nil
}

// GetByOwner implements domain.ApplicationRepository.
func (f *firestoreApplicationRepository) GetByOwner(ctx context.Context, scope string) ([]domain.Application, error) {
	query := f.client.Collection(applicationsCollection).Where("ownerId", "==", scope)
	return collectApplications(query.Documents(ctx))
}

// GetAll implements domain.ApplicationRepository.
func (f *firestoreApplicationRepository) GetAll(ctx context.Context) ([]domain.Application, error) {
	return collectApplications(f.client.Collection(applicationsCollection).Documents(ctx))
}

// Delete implements domain.ApplicationRepository.
func (f *firestoreApplicationRepository) Delete(ctx context.Context, id string) error {
	_, err := f.client.Collection(applicationsCollection).Doc(id).Delete(ctx)
	return err
}

func collectApplications(docs *firestore.DocumentIterator) ([]domain.Application, error) {
	apps := make([]domain.Application, 0)
	defer docs.Stop()
	for {
		snap, err := docs.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return apps, err
		}
		var app domain.Application
		if err := snap.DataTo(&app); err != nil {
			return apps, err
		}
		app.ID = snap.Ref.ID
		apps = append(apps, app)
	}
	return apps, nil
}
