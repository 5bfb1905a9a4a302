package repository

import (
	"context"
	"encoding/json"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/lchen-dev/safety-portal/internal/domain"
)

type postgresApplicationRepository struct {
	conn Connection
}

// NewPostgresApplication returns an ApplicationRepository backed by the
// applications table, with the worker list stored as a jsonb column.
func NewPostgresApplication(conn Connection) domain.ApplicationRepository {
	return &postgresApplicationRepository{conn: conn}
}

type applicationDto struct {
	ID            string
	Applicant     string
	Phone         string
	VendorName    string
	VendorRep     string
	ContactPerson string
	CreatedAt     string
	OwnerId       string
	OwnerName     string
	Status        string
	Workers       []byte
}

func mapDtoApplication(dto applicationDto) (domain.Application, error) {
	app := domain.Application{
		ID:            dto.ID,
		Applicant:     dto.Applicant,
		Phone:         dto.Phone,
		VendorName:    dto.VendorName,
		VendorRep:     dto.VendorRep,
		ContactPerson: dto.ContactPerson,
		CreatedAt:     dto.CreatedAt,
		OwnerID:       dto.OwnerId,
		OwnerName:     dto.OwnerName,
		Status:        dto.Status,
		Workers:       []domain.Worker{},
	}
	if len(dto.Workers) > 0 {
		if err := json.Unmarshal(dto.Workers, &app.Workers); err != nil {
			return app, err
		}
	}
	return app, nil
}

func mapDtoApplications(dtos []applicationDto) ([]domain.Application, error) {
	apps := make([]domain.Application, 0, len(dtos))
	for _, dto := range dtos {
		app, err := mapDtoApplication(dto)
		if err != nil {
			return apps, err
		}
		apps = append(apps, app)
	}
	return apps, nil
}

// Create implements domain.ApplicationRepository.
func (p *postgresApplicationRepository) Create(ctx context.Context, app *domain.Application) error {
	workers := lo.Ternary(app.Workers != nil, app.Workers, []domain.Worker{})
	workersJson, err := json.Marshal(workers)
	if err != nil {
		return err
	}
	id := uuid.NewString()
	query := `
		INSERT INTO applications (id, applicant, phone, vendor_name, vendor_rep, contact_person, created_at, owner_id, owner_name, status, workers)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err = p.conn.Exec(ctx, query,
		id, app.Applicant, app.Phone, app.VendorName, app.VendorRep,
		app.ContactPerson, app.CreatedAt, app.OwnerID, app.OwnerName, app.Status, workersJson)
	if err != nil {
		return err
	}
	app.ID = id
	return nil
}

// GetByID implements domain.ApplicationRepository.
func (p *postgresApplicationRepository) GetByID(ctx context.Context, id string) (domain.Application, error) {
	var dto applicationDto
	err := pgxscan.Get(ctx, p.conn, &dto, "SELECT * FROM applications WHERE id = $1", id)
	if err != nil {
		if pgxscan.NotFound(err) {
			return domain.Application{}, domain.ErrNotFound
		}
		return domain.Application{}, err
	}
	return mapDtoApplication(dto)
}

// GetByOwner implements domain.ApplicationRepository.
func (p *postgresApplicationRepository) GetByOwner(ctx context.Context, scope string) ([]domain.Application, error) {
	dtos := make([]applicationDto, 0)
	err := pgxscan.Select(ctx, p.conn, &dtos, "SELECT * FROM applications WHERE owner_id = $1", scope)
	if err != nil {
		return nil, err
	}
	return mapDtoApplications(dtos)
}

// GetAll implements domain.ApplicationRepository.
func (p *postgresApplicationRepository) GetAll(ctx context.Context) ([]domain.Application, error) {
	dtos := make([]applicationDto, 0)
	err := pgxscan.Select(ctx, p.conn, &dtos, "SELECT * FROM applications")
	if err != nil {
		return nil, err
	}
	return mapDtoApplications(dtos)
}

// Delete implements domain.ApplicationRepository.
func (p *postgresApplicationRepository) Delete(ctx context.Context, id string) error {
	_, err := p.conn.Exec(ctx, "DELETE FROM applications WHERE id = $1", id)
	return err
}
