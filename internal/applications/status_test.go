package applications

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetUnknownToken(t *testing.T) {
	f := newFixture(t)
	_, err := f.status.Get(context.Background(), "app-nope")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRepeatedReadsAreIdentical(t *testing.T) {
	f := newFixture(t)
	receipt, err := f.apps.Submit(context.Background(), ashaSubmission())
	require.NoError(t, err)

	first, err := f.status.Get(context.Background(), receipt.Token)
	require.NoError(t, err)
	before := f.doc.Bytes()
	second, err := f.status.Get(context.Background(), receipt.Token)
	require.NoError(t, err)

	require.Equal(t, first, second)
	require.Equal(t, before, f.doc.Bytes())
}

func TestStatusLifecycleAppliedInterviewOffer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	receipt, err := f.apps.Submit(ctx, ashaSubmission())
	require.NoError(t, err)

	_, err = f.status.UpdateStatus(ctx, receipt.Token, StatusInterview, testAdminKey)
	require.NoError(t, err)
	rec, err := f.status.UpdateStatus(ctx, receipt.Token, StatusOffer, testAdminKey)
	require.NoError(t, err)

	require.Equal(t, StatusOffer, rec.Status)
	require.Len(t, rec.History, 3)
	require.Equal(t, []string{StatusApplied, StatusInterview, StatusOffer}, []string{rec.History[0].Status, rec.History[1].Status, rec.History[2].Status})
	require.True(t, rec.History[0].At.Before(rec.History[1].At))
	require.True(t, rec.History[1].At.Before(rec.History[2].At))
	require.Equal(t, StatusInterview, PreviousStatus(rec))

	stored, err := f.status.Get(ctx, receipt.Token)
	require.NoError(t, err)
	require.Equal(t, rec, stored)
}

func TestHistoryIsAppendOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	receipt, err := f.apps.Submit(ctx, ashaSubmission())
	require.NoError(t, err)

	prev, err := f.status.Get(ctx, receipt.Token)
	require.NoError(t, err)
	for _, status := range []string{StatusUnderReview, StatusInterview, StatusRejected, "On Hold"} {
		rec, err := f.status.UpdateStatus(ctx, receipt.Token, status, testAdminKey)
		require.NoError(t, err)
		require.Len(t, rec.History, len(prev.History)+1)
		require.Equal(t, prev.History, rec.History[:len(prev.History)])
		require.Equal(t, status, rec.History[len(rec.History)-1].Status)
		require.Equal(t, status, rec.Status)
		prev = rec
	}
}

func TestUnauthorizedUpdateLeavesStoreUntouched(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	receipt, err := f.apps.Submit(ctx, ashaSubmission())
	require.NoError(t, err)
	before := f.doc.Bytes()

	for _, cred := range []string{"", "wrong", testAdminKey + "x"} {
		_, err := f.status.UpdateStatus(ctx, receipt.Token, StatusHired, cred)
		require.ErrorIs(t, err, ErrForbidden)
	}
	_, err = f.status.UpdateStatus(ctx, "app-unknown", StatusHired, "wrong")
	require.ErrorIs(t, err, ErrForbidden, "authorization runs before lookup")
	require.Equal(t, before, f.doc.Bytes())
}

func TestUpdateStatusValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	receipt, err := f.apps.Submit(ctx, ashaSubmission())
	require.NoError(t, err)
	before := f.doc.Bytes()

	_, err = f.status.UpdateStatus(ctx, receipt.Token, "   ", testAdminKey)
	require.ErrorIs(t, err, ErrInvalidArgument)
	_, err = f.status.UpdateStatus(ctx, "app-unknown", StatusHired, testAdminKey)
	require.ErrorIs(t, err, ErrNotFound)
	require.Equal(t, before, f.doc.Bytes())
}

func TestEmptySecretAuthorizesNobody(t *testing.T) {
	f := newFixture(t)
	f.status.Auth = NewSecretAuthorizer("")
	receipt, err := f.apps.Submit(context.Background(), ashaSubmission())
	require.NoError(t, err)

	_, err = f.status.UpdateStatus(context.Background(), receipt.Token, StatusHired, "")
	require.ErrorIs(t, err, ErrForbidden)
}

func TestSecretAuthorizer(t *testing.T) {
	a := NewSecretAuthorizer(" key ")
	require.True(t, a.Authorize("key"))
	require.False(t, a.Authorize("KEY"))
	require.False(t, a.Authorize(""))

	var nilAuth *SecretAuthorizer
	require.False(t, nilAuth.Authorize("key"))
}
