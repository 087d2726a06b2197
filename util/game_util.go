package util

import (
	"fmt"

	"github.com/aiwolfdial/storyteller-server/model"
)

const (
	MinCompositionSeats = 5
	MaxCompositionSeats = 15
)

// MartyrRole は処刑されると悪陣営が勝つ役職
const MartyrRole = "saint"

func GetStandardComposition(catalog *model.Catalog, seatCount int) (model.Composition, bool) {
	if seatCount < MinCompositionSeats || seatCount > MaxCompositionSeats {
		return model.Composition{}, false
	}
	return catalog.CompositionFor(seatCount)
}

func CountAlive(seats []model.Seat) int {
	var count int
	for _, seat := range seats {
		if !seat.IsDead {
			count++
		}
	}
	return count
}

func CountAliveTeams(seats []model.Seat, catalog *model.Catalog) (int, int) {
	var good, evil int
	for _, seat := range seats {
		if seat.IsDead {
			continue
		}
		switch catalog.TeamOf(seat.RealRoleID).Alignment() {
		case model.A_GOOD:
			good++
		case model.A_EVIL:
			evil++
		}
	}
	return good, evil
}

// CalcWinner は勝敗を判定する。executed は直前に処刑された座席で、なければ nil。
func CalcWinner(seats []model.Seat, catalog *model.Catalog, executed *model.Seat) (model.Alignment, string) {
	if executed != nil && executed.RealRoleID == MartyrRole {
		return model.A_EVIL, fmt.Sprintf("%s が処刑されました", executed.RealRoleID)
	}
	var demons, aliveDemons int
	for _, seat := range seats {
		if catalog.TeamOf(seat.RealRoleID) == model.T_DEMON {
			demons++
			if !seat.IsDead {
				aliveDemons++
			}
		}
	}
	if demons > 0 && aliveDemons == 0 {
		return model.A_GOOD, "デーモンが全員死亡しました"
	}
	if demons > 0 && CountAlive(seats) <= 2 {
		return model.A_EVIL, "生存者が2人以下になりました"
	}
	return model.A_NONE, ""
}
