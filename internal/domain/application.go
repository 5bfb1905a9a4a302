package domain

import "context"

// Worker is one person on an application's entry list. All fields are plain
// text; Birthday uses the YYYY/MM/DD separator convention.
type Worker struct {
	Name      string `json:"name" firestore:"name"`
	IDNumber  string `json:"idNumber" firestore:"idNumber"`
	BloodType string `json:"bloodType" firestore:"bloodType"`
	Birthday  string `json:"birthday" firestore:"birthday"`
}

// Application is one submitted vendor safety form. ID is assigned by the
// store and immutable once created. CreatedAt is stamped by the submitter,
// not validated server-side.
type Application struct {
	ID            string   `json:"id" firestore:"-"`
	Applicant     string   `json:"applicant" firestore:"applicant"`
	Phone         string   `json:"phone" firestore:"phone"`
	VendorName    string   `json:"vendor_name" firestore:"vendor_name"`
	VendorRep     string   `json:"vendor_rep" firestore:"vendor_rep"`
	ContactPerson string   `json:"contact_person" firestore:"contact_person"`
	CreatedAt     string   `json:"createdAt" firestore:"createdAt"`
	OwnerID       string   `json:"ownerId" firestore:"ownerId"`
	OwnerName     string   `json:"ownerName" firestore:"ownerName"`
	Status        string   `json:"status" firestore:"status"`
	Workers       []Worker `json:"workers" firestore:"workers"`
}

type ApplicationRepository interface {
	// Create stores the application under a fresh store-assigned id and
	// writes that id back to app.ID.
	Create(context.Context, *Application) error
	GetByID(context.Context, string) (Application, error)
	// GetByOwner returns the applications whose ownerId equals scope.
	GetByOwner(context.Context, string) ([]Application, error)
	// GetAll returns every application, for the super-admin view.
	GetAll(context.Context) ([]Application, error)
	Delete(context.Context, string) error
}
