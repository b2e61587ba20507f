package models

import (
	"testing"
	"time"

	"github.com/nexvora/crm_backend/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeItemTotals(t *testing.T) {
	items, total, err := computeItemTotals([]NewProposalItem{
		{ServiceId: 1, Quantity: 2, Price: decimal.NewFromInt(125)},
		{ServiceId: 2, Quantity: 3, Price: decimal.NewFromInt(100)},
	})
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.True(t, items[0].Total.Equal(decimal.NewFromInt(250)), "2 x 125 = 250, got %s", items[0].Total)
	assert.True(t, items[1].Total.Equal(decimal.NewFromInt(300)), "3 x 100 = 300, got %s", items[1].Total)
	assert.True(t, total.Equal(decimal.NewFromInt(550)), "document total 550, got %s", total)
}

func TestComputeItemTotals_FractionalPrice(t *testing.T) {
	items, total, err := computeItemTotals([]NewProposalItem{
		{ServiceId: 1, Quantity: 3, Price: decimal.RequireFromString("19.99")},
	})
	require.NoError(t, err)
	assert.Equal(t, "59.97", items[0].Total.String())
	assert.Equal(t, "59.97", total.String())
}

func TestComputeItemTotals_Rejections(t *testing.T) {
	cases := []struct {
		name  string
		items []NewProposalItem
		field string
	}{
		{"empty set", nil, "items"},
		{"zero quantity", []NewProposalItem{{ServiceId: 1, Quantity: 0, Price: decimal.NewFromInt(10)}}, "quantity"},
		{"negative quantity", []NewProposalItem{{ServiceId: 1, Quantity: -1, Price: decimal.NewFromInt(10)}}, "quantity"},
		{"negative price", []NewProposalItem{{ServiceId: 1, Quantity: 1, Price: decimal.NewFromInt(-10)}}, "price"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := computeItemTotals(tc.items)
			require.Error(t, err)
			assert.Equal(t, utils.ErrorKindValidation, utils.KindOf(err))
			var appErr *utils.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tc.field, appErr.Field)
		})
	}
}

func TestApplyStatusStamps_SentStampedOnce(t *testing.T) {
	first := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	second := first.Add(48 * time.Hour)

	p := &Proposal{Status: ProposalStatusDraft}
	applyStatusStamps(p, ProposalStatusSent, 7, first)
	require.NotNil(t, p.SentAt)
	assert.Equal(t, first, *p.SentAt)
	assert.Equal(t, ProposalStatusSent, p.Status)

	// Leave SENT and come back: the original stamp survives.
	applyStatusStamps(p, ProposalStatusDraft, 7, second)
	applyStatusStamps(p, ProposalStatusSent, 7, second)
	assert.Equal(t, first, *p.SentAt)
}

func TestApplyStatusStamps_ReviewRecordsReviewer(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	p := &Proposal{Status: ProposalStatusSent}
	applyStatusStamps(p, ProposalStatusReview, 42, now)
	require.NotNil(t, p.ReviewedAt)
	require.NotNil(t, p.ReviewedBy)
	assert.Equal(t, now, *p.ReviewedAt)
	assert.Equal(t, 42, *p.ReviewedBy)
}

func TestApplyStatusStamps_SameStatusIsNoop(t *testing.T) {
	now := time.Now()
	p := &Proposal{Status: ProposalStatusSent}
	applyStatusStamps(p, ProposalStatusSent, 7, now)
	assert.Nil(t, p.SentAt, "re-asserting the current status must not stamp")
}

func TestApplyStatusStamps_UnknownStatusPassesThrough(t *testing.T) {
	now := time.Now()
	p := &Proposal{Status: ProposalStatusDraft}
	applyStatusStamps(p, ProposalStatus("ARCHIVED"), 7, now)
	assert.Equal(t, ProposalStatus("ARCHIVED"), p.Status)
	assert.Nil(t, p.SentAt)
	assert.Nil(t, p.ReviewedAt)
}
