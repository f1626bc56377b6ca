package runtime

import (
	"salesroom/domain"
	"sort"

	"github.com/samber/lo"
)

func dashboardSnapshot(deals []domain.ActiveDeal) domain.DashboardSnapshot {
	return lo.Map(deals, func(r domain.ActiveDeal, _ int) domain.Pair[string, domain.ActiveDeal] {
		return domain.Pair[string, domain.ActiveDeal]{Key: r.DealID, Value: r}
	})
}

func controlSnapshot(bySalesperson map[string]string) domain.ControlSnapshot {
	ids := lo.Keys(bySalesperson)
	sort.Strings(ids)
	return lo.Map(ids, func(id string, _ int) domain.Pair[string, string] {
		return domain.Pair[string, string]{Key: id, Value: bySalesperson[id]}
	})
}

func quotaSnapshot(quotas []domain.Quota) domain.QuotaSnapshot {
	return lo.Map(quotas, func(q domain.Quota, _ int) domain.Pair[string, domain.Quota] {
		return domain.Pair[string, domain.Quota]{Key: q.SalespersonID, Value: q}
	})
}

// forecastSnapshot applies the display order: salespeople by id, calls by scheduled time.
func forecastSnapshot(all map[string][]domain.Forecast) domain.ForecastSnapshot {
	ids := lo.Keys(all)
	sort.Strings(ids)
	return lo.Map(ids, func(id string, _ int) domain.Pair[string, []domain.Forecast] {
		list := all[id]
		domain.SortForDisplay(list)
		return domain.Pair[string, []domain.Forecast]{Key: id, Value: list}
	})
}
