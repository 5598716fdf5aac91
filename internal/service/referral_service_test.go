package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-lms-api/internal/dto"
	"github.com/noah-isme/gema-lms-api/internal/models"
	"github.com/noah-isme/gema-lms-api/internal/repository"
)

func TestReferralApplyUnlocksApplicantAndReferrerAtThreshold(t *testing.T) {
	f := newTestFixture(t)
	ctx := context.Background()
	svc := NewReferralService(f.deps)

	referrer := f.student(t, "Ref")
	friends := []models.Student{f.student(t, "Amy"), f.student(t, "Bob"), f.student(t, "Cal")}

	for i, friend := range friends {
		info, err := svc.Apply(ctx, friend.ID, dto.ReferralApplyRequest{Code: strings.ToLower(referrer.ReferralCode)})
		require.NoError(t, err)
		require.True(t, info.IsPremiumUnlocked)
		require.True(t, info.HasAppliedCode)

		stored := f.reloadStudent(t, referrer.ID)
		require.Equal(t, i+1, stored.ReferralCount)
		require.Equal(t, i == len(friends)-1, stored.IsPremiumUnlocked)
	}

	info, err := svc.GetInfo(ctx, referrer.ID)
	require.NoError(t, err)
	require.Equal(t, 3, info.ReferralCount)
	require.Equal(t, 3, info.RequiredReferrals)
	require.Zero(t, info.Remaining)
	require.True(t, info.IsPremiumUnlocked)
	require.False(t, info.HasAppliedCode)

	_, total, err := f.activityLog.List(ctx, repository.ActivityLogFilter{Action: models.ActivityReferralApplied})
	require.NoError(t, err)
	require.Equal(t, int64(3), total)
}

func TestReferralApplyRejections(t *testing.T) {
	f := newTestFixture(t)
	ctx := context.Background()
	svc := NewReferralService(f.deps)

	student := f.student(t, "Dee")
	referrer := f.student(t, "Eli")

	_, err := svc.Apply(ctx, student.ID, dto.ReferralApplyRequest{Code: student.ReferralCode})
	require.ErrorIs(t, err, ErrSelfReferral)
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Apply(ctx, student.ID, dto.ReferralApplyRequest{Code: "LMSNOPE0000"})
	require.ErrorIs(t, err, ErrReferralCodeNotFound)

	_, err = svc.Apply(ctx, student.ID, dto.ReferralApplyRequest{Code: "!!"})
	require.Error(t, err)

	_, err = svc.Apply(ctx, student.ID, dto.ReferralApplyRequest{Code: referrer.ReferralCode})
	require.NoError(t, err)

	_, err = svc.Apply(ctx, student.ID, dto.ReferralApplyRequest{Code: referrer.ReferralCode})
	require.ErrorIs(t, err, ErrReferralAlreadyApplied)
	require.ErrorIs(t, err, ErrConflict)

	require.Equal(t, 1, f.reloadStudent(t, referrer.ID).ReferralCount)

	info, err := svc.GetInfo(ctx, referrer.ID)
	require.NoError(t, err)
	require.Equal(t, 2, info.Remaining)
	require.False(t, info.IsPremiumUnlocked)
}
