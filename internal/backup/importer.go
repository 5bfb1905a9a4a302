package backup

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/lchen-dev/safety-portal/internal/domain"
)

// maxConcurrentWrites bounds how many store writes an import has in flight.
const maxConcurrentWrites = 4

// Outcome is the aggregate result of one import run.
type Outcome struct {
	Succeeded int
	Failed    int
}

func (o Outcome) String() string {
	return fmt.Sprintf("%d succeeded, %d failed", o.Succeeded, o.Failed)
}

// Importer restores parsed backup applications into the store. Import is
// strictly additive: every group becomes a new document, so re-importing the
// same file duplicates every application.
type Importer struct {
	logger *slog.Logger
	repo   domain.ApplicationRepository
}

func NewImporter(logger *slog.Logger, repo domain.ApplicationRepository) *Importer {
	return &Importer{logger: logger, repo: repo}
}

// Run writes each application as a fresh document, stamping the given tenant
// scope over whatever ownership the file carried. Writes run concurrently
// with a bounded limit; a failed write never rolls back or blocks its
// siblings, it is only counted in the outcome.
func (im *Importer) Run(ctx context.Context, apps []domain.Application, scope, scopeName string) Outcome {
	var (
		mu      sync.Mutex
		outcome Outcome
	)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentWrites)

	for i := range apps {
		app := apps[i]
		app.ID = ""
		app.OwnerID = scope
		app.OwnerName = scopeName
		if app.Status == "" {
			app.Status = "pending"
		}
		g.Go(func() error {
			err := im.repo.Create(ctx, &app)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				im.logger.Error("import write failed", "error", err, "applicant", app.Applicant)
				outcome.Failed++
				return nil
			}
			outcome.Succeeded++
			return nil
		})
	}
	_ = g.Wait()

	im.logger.Info("import finished", "succeeded", outcome.Succeeded, "failed", outcome.Failed, "scope", scope)
	return outcome
}
