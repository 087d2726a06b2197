package util

import (
	"math/rand/v2"

	"github.com/aiwolfdial/storyteller-server/model"
)

func SelectRandom[T any](r *rand.Rand, items []T) T {
	return items[r.IntN(len(items))]
}

func Shuffle[T any](r *rand.Rand, items []T) {
	r.Shuffle(len(items), func(i, j int) { items[i], items[j] = items[j], items[i] })
}

func FilterSeats(seats []model.Seat, filter func(model.Seat) bool) []model.Seat {
	filtered := make([]model.Seat, 0)
	for _, seat := range seats {
		if filter(seat) {
			filtered = append(filtered, seat)
		}
	}
	return filtered
}

func AliveSeats(seats []model.Seat) []model.Seat {
	return FilterSeats(seats, func(s model.Seat) bool { return !s.IsDead })
}

// UsedRoleIDs は exceptID 以外の座席が本当の役職または見かけの役職として使っている役職
func UsedRoleIDs(seats []model.Seat, exceptID int) map[string]struct{} {
	used := make(map[string]struct{})
	for _, seat := range seats {
		if seat.ID == exceptID {
			continue
		}
		if seat.RealRoleID != "" {
			used[seat.RealRoleID] = struct{}{}
		}
		if seat.SeenRoleID != "" {
			used[seat.SeenRoleID] = struct{}{}
		}
	}
	return used
}

func ExcludeRoles(roleIDs []string, used map[string]struct{}) []string {
	filtered := make([]string, 0, len(roleIDs))
	for _, id := range roleIDs {
		if _, ok := used[id]; !ok {
			filtered = append(filtered, id)
		}
	}
	return filtered
}
