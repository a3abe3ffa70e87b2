package container

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/garyjia/tkdn-compliance/internal/application/service"
	"github.com/garyjia/tkdn-compliance/internal/domain/apperr"
	"github.com/garyjia/tkdn-compliance/internal/domain/compliance"
	"github.com/garyjia/tkdn-compliance/internal/domain/entity"
	"github.com/garyjia/tkdn-compliance/internal/domain/event"
)

func testConfig(t *testing.T) *Config {
	t.Helper()
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.Database.Path = filepath.Join(dir, "tkdn.db")
	cfg.Storage.ReportDir = filepath.Join(dir, "generated")
	return cfg
}

func startContainer(t *testing.T, cfg *Config) *Container {
	t.Helper()
	c, err := NewContainer(cfg, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, c.Start(context.Background()))
	t.Cleanup(func() {
		if !c.closed.Load() {
			_ = c.Close()
		}
	})
	return c
}

func TestNewContainerValidation(t *testing.T) {
	_, err := NewContainer(nil, zap.NewNop())
	assert.Error(t, err)

	_, err = NewContainer(DefaultConfig(), nil)
	assert.Error(t, err)

	cfg := DefaultConfig()
	cfg.Storage.ReportDir = ""
	_, err = NewContainer(cfg, zap.NewNop())
	assert.ErrorContains(t, err, "report_dir")
}

func newSubmissionInput() service.CreateSubmissionInput {
	var docs []service.DocumentUpload
	for _, typ := range entity.RequiredDocumentTypes() {
		docs = append(docs, service.DocumentUpload{
			Type:       typ,
			FileUpload: service.FileUpload{FileName: string(typ) + ".pdf", MimeType: "application/pdf", Content: []byte("%PDF-1.4")},
		})
	}

	return service.CreateSubmissionInput{
		PPK: entity.PPKInfo{
			Name:       "Siti Rahmawati",
			NationalID: "3174012345678901",
			Email:      "siti@dinkes.go.id",
			Phone:      "+62 812-3456-7890",
			WorkUnit:   "Dinas Kesehatan",
			Position:   "PPK",
		},
		Items: []service.ItemInput{
			{Name: "Laptop", Quantity: 10, Unit: "unit", Category: compliance.CategoryElectronicsTelematics, FinalPrice: 15000000, ForeignPrice: 5000000, DomesticValuePercent: 20},
		},
		Documents: docs,
	}
}

func TestContainerLifecycle(t *testing.T) {
	c := startContainer(t, testConfig(t))

	assert.True(t, c.Ready())
	assert.Error(t, c.Start(context.Background()), "second start is rejected")

	for component, err := range c.Health(context.Background()) {
		assert.NoError(t, err, component)
	}

	for _, typ := range event.AllTypes() {
		assert.ElementsMatch(t, []string{handlerMetrics, handlerOwnerNotice}, c.Dispatcher().HandlerNames(typ), typ)
	}

	require.NoError(t, c.Close())
	assert.False(t, c.Ready())
	assert.Error(t, c.Close())
	assert.Error(t, c.Start(context.Background()))
}

func TestContainerCustomPolicyFile(t *testing.T) {
	cfg := testConfig(t)
	cfg.Access.PolicyFile = filepath.Join(t.TempDir(), "missing.csv")

	c, err := NewContainer(cfg, zap.NewNop())
	require.NoError(t, err)
	assert.ErrorContains(t, c.Start(context.Background()), "access policy")
}

func TestContainerCustomMigrationsDir(t *testing.T) {
	cfg := testConfig(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "001_broken.sql"), []byte("CREATE TABLE ("), 0644))
	cfg.Database.MigrationsDir = dir

	c, err := NewContainer(cfg, zap.NewNop())
	require.NoError(t, err)
	assert.ErrorContains(t, c.Start(context.Background()), "migrations")
}

func TestContainerEndToEnd(t *testing.T) {
	c := startContainer(t, testConfig(t))
	svc := c.Services()
	ctx := context.Background()

	officer := entity.Caller{ID: "officer-1", Role: entity.RoleOfficer}
	reviewer := entity.Caller{ID: "reviewer-1", Role: entity.RoleReviewer}

	created, err := svc.Submission.Create(ctx, officer, newSubmissionInput())
	require.NoError(t, err)
	assert.Equal(t, entity.StatusPending, created.Status)
	assert.Regexp(t, `^TKDN-\d{4}-0001$`, created.ID)

	list, err := svc.Submission.List(ctx, officer, "")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 1, list[0].ItemCount)

	date := time.Now().AddDate(0, 0, 7).UTC().Truncate(24 * time.Hour)
	accepted, err := svc.Review.Review(ctx, reviewer, created.ID, service.ReviewInput{
		Target:           entity.StatusAccepted,
		Notes:            "documents complete",
		PresentationDate: &date,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusAccepted, accepted.Status)

	_, err = svc.Review.Review(ctx, reviewer, created.ID, service.ReviewInput{Target: entity.StatusRejected, Notes: "late"})
	assert.ErrorIs(t, err, apperr.ErrAlreadyFinalized)

	doc, err := svc.Justification.Upload(ctx, officer, created.ID, service.FileUpload{
		FileName: "justifikasi.pdf",
		MimeType: "application/pdf",
		Content:  []byte("%PDF-1.4 justification"),
	})
	require.NoError(t, err)
	assert.Equal(t, entity.JustificationPending, doc.JustificationStatus)

	reviewed, err := svc.Justification.Review(ctx, reviewer, created.ID, entity.JustificationApproved, "")
	require.NoError(t, err)
	assert.Equal(t, entity.JustificationApproved, reviewed.JustificationStatus)

	full, err := svc.Submission.Get(ctx, officer, created.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, full.History)
	require.NotNil(t, full.Justification())

	report, err := svc.Report.Export(ctx, reviewer)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(c.Config().Storage.ReportDir, report.Path))

	require.NoError(t, svc.Submission.Purge(ctx, reviewer, created.ID))
	_, err = svc.Submission.Get(ctx, reviewer, created.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestContainerConcurrentFinalizationFirstWins(t *testing.T) {
	cfg := testConfig(t)
	cfg.Events.Synchronous = true
	c := startContainer(t, cfg)
	svc := c.Services()
	ctx := context.Background()

	officer := entity.Caller{ID: "officer-1", Role: entity.RoleOfficer}
	const reviewers = 8

	for round := 0; round < 5; round++ {
		created, err := svc.Submission.Create(ctx, officer, newSubmissionInput())
		require.NoError(t, err)

		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			ok        int
			finalized int
			other     []error
		)
		for i := 0; i < reviewers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				target := entity.StatusAccepted
				if i%2 == 1 {
					target = entity.StatusRejected
				}
				reviewer := entity.Caller{ID: "reviewer-" + string(rune('a'+i)), Role: entity.RoleReviewer}
				_, err := svc.Review.Review(ctx, reviewer, created.ID, service.ReviewInput{Target: target, Notes: "decided"})

				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					ok++
				case errors.Is(err, apperr.ErrAlreadyFinalized):
					finalized++
				default:
					other = append(other, err)
				}
			}(i)
		}
		wg.Wait()

		assert.Equal(t, 1, ok, "round %d", round)
		assert.Equal(t, reviewers-1, finalized, "round %d", round)
		assert.Empty(t, other, "round %d", round)

		full, err := svc.Submission.Get(ctx, officer, created.ID)
		require.NoError(t, err)
		assert.True(t, full.Status == entity.StatusAccepted || full.Status == entity.StatusRejected)
	}
}

func TestContainerListingIsolatesStarOwner(t *testing.T) {
	c := startContainer(t, testConfig(t))
	svc := c.Services()
	ctx := context.Background()

	officer := entity.Caller{ID: "officer-1", Role: entity.RoleOfficer}
	star := entity.Caller{ID: "*", Role: entity.RoleOfficer}
	reviewer := entity.Caller{ID: "reviewer-1", Role: entity.RoleReviewer}

	_, err := svc.Submission.Create(ctx, officer, newSubmissionInput())
	require.NoError(t, err)
	_, err = svc.Submission.Create(ctx, star, newSubmissionInput())
	require.NoError(t, err)

	all, err := svc.Submission.List(ctx, reviewer, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	own, err := svc.Submission.List(ctx, star, "")
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, "*", own[0].OwnerID)
}

func TestConvertToZapFields(t *testing.T) {
	fields := convertToZapFields("submission_id", "TKDN-2025-0001", 42, "skipped", "error", assert.AnError, "dangling")
	require.Len(t, fields, 2)
	assert.Equal(t, "submission_id", fields[0].Key)
	assert.Equal(t, "error", fields[1].Key)
}
