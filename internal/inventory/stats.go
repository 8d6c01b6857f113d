package inventory

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stockbar/stockbar-backend/pkg/db/models"
	pkgerrors "github.com/stockbar/stockbar-backend/pkg/errors"
)

// statsKey groups SALE rows per actor and station. Sales rung up by the same
// bartender at two different stations stay separate lines.
type statsKey struct {
	userID     uuid.UUID
	stationID  int64
	hasStation bool
}

type statsAccumulator struct {
	saleIDs map[string]bool
	revenue decimal.Decimal
}

// GetUserSalesStats aggregates the SALE audit log per (user, station) pair.
// A sale with three line items counts once; revenue is always base price times
// quantity so leaderboards are not skewed by dynamic price swings. Rows with
// no recorded actor are skipped.
func (s *service) GetUserSalesStats(ctx context.Context, orgID int64) ([]UserSalesStats, error) {
	rows, err := s.repo.ListSaleRowsByOrganization(ctx, orgID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing sale transactions")
	}

	groups := map[statsKey]*statsAccumulator{}
	for _, row := range rows {
		if row.CreatedBy == nil {
			continue
		}
		key := statsKey{userID: *row.CreatedBy}
		if row.StationID != nil {
			key.stationID = *row.StationID
			key.hasStation = true
		}
		acc := groups[key]
		if acc == nil {
			acc = &statsAccumulator{saleIDs: map[string]bool{}, revenue: decimal.Zero}
			groups[key] = acc
		}
		acc.saleIDs[saleIdentity(row)] = true
		acc.revenue = acc.revenue.Add(row.BasePrice.Mul(row.QuantityChange.Abs()))
	}

	userIDs := make([]uuid.UUID, 0, len(groups))
	seenUsers := map[uuid.UUID]bool{}
	stationIDs := make([]int64, 0, len(groups))
	seenStations := map[int64]bool{}
	for key := range groups {
		if !seenUsers[key.userID] {
			seenUsers[key.userID] = true
			userIDs = append(userIDs, key.userID)
		}
		if key.hasStation && !seenStations[key.stationID] {
			seenStations[key.stationID] = true
			stationIDs = append(stationIDs, key.stationID)
		}
	}
	usersByID, err := s.lookupUsers(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	stationsByID, err := s.lookupStations(ctx, stationIDs)
	if err != nil {
		return nil, err
	}

	stats := make([]UserSalesStats, 0, len(groups))
	for key, acc := range groups {
		entry := UserSalesStats{
			UserID:       key.userID.String(),
			UserName:     "Unknown User",
			UserEmail:    "unknown@email.com",
			SalesCount:   int64(len(acc.saleIDs)),
			TotalRevenue: acc.revenue,
		}
		if user, ok := usersByID[key.userID]; ok {
			entry.UserName = user.Name
			entry.UserEmail = user.Email
		}
		if key.hasStation {
			stationID := key.stationID
			entry.StationID = &stationID
			if station, ok := stationsByID[key.stationID]; ok {
				name := station.Name
				entry.StationName = &name
			}
		}
		stats = append(stats, entry)
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].SalesCount != stats[j].SalesCount {
			return stats[i].SalesCount > stats[j].SalesCount
		}
		return stats[i].UserID < stats[j].UserID
	})
	return stats, nil
}

// GetStationSalesStats aggregates the SALE audit log per station. Rows with no
// recorded station are skipped.
func (s *service) GetStationSalesStats(ctx context.Context, orgID int64) ([]StationSalesStats, error) {
	rows, err := s.repo.ListSaleRowsByOrganization(ctx, orgID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing sale transactions")
	}

	groups := map[int64]*statsAccumulator{}
	for _, row := range rows {
		if row.StationID == nil {
			continue
		}
		acc := groups[*row.StationID]
		if acc == nil {
			acc = &statsAccumulator{saleIDs: map[string]bool{}, revenue: decimal.Zero}
			groups[*row.StationID] = acc
		}
		acc.saleIDs[saleIdentity(row)] = true
		acc.revenue = acc.revenue.Add(row.BasePrice.Mul(row.QuantityChange.Abs()))
	}

	stationIDs := make([]int64, 0, len(groups))
	for id := range groups {
		stationIDs = append(stationIDs, id)
	}
	stationsByID, err := s.lookupStations(ctx, stationIDs)
	if err != nil {
		return nil, err
	}

	stats := make([]StationSalesStats, 0, len(groups))
	for id, acc := range groups {
		entry := StationSalesStats{
			StationID:    id,
			SalesCount:   int64(len(acc.saleIDs)),
			TotalRevenue: acc.revenue,
		}
		if station, ok := stationsByID[id]; ok {
			name := station.Name
			entry.StationName = &name
		}
		stats = append(stats, entry)
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].SalesCount != stats[j].SalesCount {
			return stats[i].SalesCount > stats[j].SalesCount
		}
		return stats[i].StationID < stats[j].StationID
	})
	return stats, nil
}

func (s *service) lookupStations(ctx context.Context, ids []int64) (map[int64]models.Station, error) {
	if s.stations == nil || len(ids) == 0 {
		return map[int64]models.Station{}, nil
	}
	return s.stations.FindByIDs(ctx, ids)
}

// saleIdentity names one sale. Old rows written before reference ids existed
// fall back to the transaction id so each counts as its own sale.
func saleIdentity(row SaleRow) string {
	if row.ReferenceID != nil && *row.ReferenceID != "" {
		return *row.ReferenceID
	}
	return fmt.Sprintf("txn-%d", row.TransactionID)
}
