package services

import (
	"context"
	"errors"
	"testing"

	"github.com/Lllllllleong/qualitydocs/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransitionTable(t *testing.T) {
	allowed := map[models.Status][]models.Status{
		models.StatusDraft:     {models.StatusInReview},
		models.StatusInReview:  {models.StatusDraft, models.StatusApproved},
		models.StatusApproved:  {models.StatusInReview, models.StatusPublished},
		models.StatusPublished: {models.StatusObsolete},
		models.StatusObsolete:  nil,
	}
	for _, from := range models.Statuses {
		for _, to := range models.Statuses {
			want := false
			for _, ok := range allowed[from] {
				if ok == to {
					want = true
				}
			}
			got, err := Transition(from, to)
			if want {
				assert.NoError(t, err, "%s -> %s", from, to)
				assert.Equal(t, to, got)
				continue
			}
			assert.ErrorIs(t, err, ErrInvalidTransition, "%s -> %s", from, to)
			var ite *InvalidTransitionError
			require.True(t, errors.As(err, &ite))
			assert.Equal(t, from, ite.From)
			assert.Equal(t, to, ite.To)
		}
	}
	assert.Empty(t, AllowedTransitions(models.StatusObsolete))
}

func TestWorkflowToObsolete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	doc := f.create(t, models.CreateDocumentRequest{Title: "Purchasing"})
	assert.Equal(t, models.StatusDraft, doc.Status)

	doc, err := f.svc.ChangeStatus(ctx, doc.ID, models.StatusInReview, "bob")
	require.NoError(t, err)

	doc, err = f.svc.Approve(ctx, doc.ID, "carol")
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, doc.Status)
	assert.Equal(t, "carol", doc.ApprovedBy)
	require.NotNil(t, doc.ApprovedAt)
	assert.True(t, doc.ApprovedAt.Equal(testNow))

	effective := testNow.AddDate(0, 0, 7)
	doc, err = f.svc.Publish(ctx, doc.ID, effective, "carol")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPublished, doc.Status)
	assert.True(t, doc.EffectiveDate.Equal(effective))

	doc, err = f.svc.MarkObsolete(ctx, doc.ID, "dave")
	require.NoError(t, err)
	assert.Equal(t, models.StatusObsolete, doc.Status)
	assert.Equal(t, "dave", doc.UpdatedBy)

	_, err = f.svc.ChangeStatus(ctx, doc.ID, models.StatusDraft, "dave")
	assert.ErrorIs(t, err, ErrInvalidTransition, "obsolete is terminal")
}

func TestRejectedTransitionLeavesDocumentUntouched(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	doc := f.create(t, models.CreateDocumentRequest{Title: "Draft only"})

	_, err := f.svc.Publish(ctx, doc.ID, testNow, "bob")
	require.ErrorIs(t, err, ErrInvalidTransition)
	_, err = f.svc.Approve(ctx, doc.ID, "bob")
	require.ErrorIs(t, err, ErrInvalidTransition)

	got, err := f.svc.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDraft, got.Status)
	assert.Empty(t, got.ApprovedBy)
	assert.Nil(t, got.EffectiveDate)
}

func TestChangeStatusErrors(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.ChangeStatus(context.Background(), "missing", models.StatusInReview, "bob")
	assert.ErrorIs(t, err, ErrNotFound)

	doc := f.create(t, models.CreateDocumentRequest{})
	_, err = f.svc.ChangeStatus(context.Background(), doc.ID, "shredded", "bob")
	assert.ErrorIs(t, err, ErrInvalidDocument)
}
