package statistics_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/umkm-stats-api/internal/application/statistics"
	"github.com/jhoicas/umkm-stats-api/internal/domain"
	"github.com/jhoicas/umkm-stats-api/internal/domain/entity"
)

var wib = time.FixedZone("WIB", 7*3600)

func fixedClock(t time.Time) statistics.Option {
	return statistics.WithClock(func() time.Time { return t })
}

func TestGetDashboard_MonthOverMonth(t *testing.T) {
	repo := &fakeSalesRepo{lines: marchScenario()}
	uc := newUseCase(repo, fixedClock(time.Date(2024, time.March, 20, 10, 0, 0, 0, wib)), statistics.WithLocation(wib))

	out, err := uc.GetDashboard(context.Background(), actorA, "")
	require.NoError(t, err)
	assert.Equal(t, 2, repo.callCount(), "mes actual y mes anterior")

	assert.Equal(t, "2024-03", out.Month)
	assert.Equal(t, "Maret 2024", out.MonthLabel)
	assert.Equal(t, "2024-02", out.PreviousMonth)
	assert.Equal(t, "Februari 2024", out.PreviousMonthLabel)

	assert.True(t, out.Current.Revenue.Equal(dec("400")))
	assert.True(t, out.Previous.Revenue.Equal(dec("50")))
	assert.True(t, out.Deltas.RevenuePercent.Equal(dec("700")))
	assert.True(t, out.Deltas.TransactionsPercent.Equal(dec("300")))
	assert.True(t, out.Deltas.UnitsPercent.Equal(dec("600")))
	assert.True(t, out.Deltas.GrossProfitPercent.Equal(dec("566.67")), "got %s", out.Deltas.GrossProfitPercent)

	require.Len(t, out.TopProducts, 2)
	assert.Equal(t, prodKeripik, out.TopProducts[0].Key)
	require.Len(t, out.TopLocations, 2)
	assert.Equal(t, loc1, out.TopLocations[0].Key)
}

func TestGetDashboard_DeltaSentinels(t *testing.T) {
	repo := &fakeSalesRepo{lines: marchScenario()}

	// Vendedor B: ventas en marzo, nada en febrero.
	uc := newUseCase(repo, fixedClock(time.Date(2024, time.March, 5, 9, 0, 0, 0, time.UTC)))
	out, err := uc.GetDashboard(context.Background(), actorB, "")
	require.NoError(t, err)
	assert.True(t, out.Deltas.RevenuePercent.Equal(dec("100")), "previo cero y actual positivo")
	assert.True(t, out.Deltas.TransactionsPercent.Equal(dec("100")))

	// Sin ventas en ningún mes.
	uc = newUseCase(repo, fixedClock(time.Date(2025, time.June, 5, 9, 0, 0, 0, time.UTC)))
	out, err = uc.GetDashboard(context.Background(), actorB, "en")
	require.NoError(t, err)
	assert.True(t, out.Deltas.RevenuePercent.IsZero(), "ambos cero")
	assert.True(t, out.Deltas.GrossProfitPercent.IsZero())
	assert.False(t, out.Current.MarginPercent.Valid)
	assert.Empty(t, out.TopProducts)
	assert.Equal(t, "June 2025", out.MonthLabel)
}

func TestGetDashboard_CurrentMonthFollowsConfiguredZone(t *testing.T) {
	repo := &fakeSalesRepo{lines: marchScenario()}
	// 31 de marzo 20:00 UTC ya es 1 de abril en WIB.
	uc := newUseCase(repo, fixedClock(time.Date(2024, time.March, 31, 20, 0, 0, 0, time.UTC)), statistics.WithLocation(wib))

	out, err := uc.GetDashboard(context.Background(), actorAdmin, "")
	require.NoError(t, err)
	assert.Equal(t, "2024-04", out.Month)
	assert.Equal(t, "2024-03", out.PreviousMonth)
	assert.True(t, out.Previous.Revenue.Equal(dec("450")))
	assert.True(t, out.Deltas.RevenuePercent.Equal(dec("-100")))
}

func TestGetDashboard_JanuaryComparesWithPreviousDecember(t *testing.T) {
	repo := &fakeSalesRepo{}
	uc := newUseCase(repo, fixedClock(time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)))

	out, err := uc.GetDashboard(context.Background(), actorA, "")
	require.NoError(t, err)
	assert.Equal(t, "2023-12", out.PreviousMonth)
}

func TestGetDashboard_Errors(t *testing.T) {
	repo := &fakeSalesRepo{err: errors.New("db caída")}
	_, err := newUseCase(repo).GetDashboard(context.Background(), actorA, "")
	assert.Error(t, err)

	repo = &fakeSalesRepo{}
	_, err = newUseCase(repo).GetDashboard(context.Background(), entity.Actor{UserID: sellerA, Role: "guest"}, "")
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Zero(t, repo.callCount())
}
