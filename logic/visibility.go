package logic

import (
	"slices"

	"github.com/aiwolfdial/storyteller-server/model"
)

// SplitGameState はセッションを公開部分と語り部専用の秘密部分に分ける
func SplitGameState(session *model.Session) (*model.Session, *model.SecretState) {
	public := session.Clone()
	secret := &model.SecretState{
		RoomID:           session.RoomID,
		Seats:            make([]model.SecretSeat, 0, len(session.Seats)),
		StorytellerNotes: slices.Clone(session.StorytellerNotes),
	}
	for i := range public.Seats {
		secret.Seats = append(secret.Seats, model.SecretSeat{
			ID:         public.Seats[i].ID,
			RealRoleID: public.Seats[i].RealRoleID,
		})
		public.Seats[i].RealRoleID = ""
	}
	public.StorytellerNotes = nil
	return public, secret
}

// MergeGameState は公開部分に秘密部分を重ねて語り部の完全な状態を復元する
func MergeGameState(public *model.Session, secret *model.SecretState) *model.Session {
	merged := public.Clone()
	if secret == nil {
		return merged
	}
	realRoles := make(map[int]string, len(secret.Seats))
	for _, seat := range secret.Seats {
		realRoles[seat.ID] = seat.RealRoleID
	}
	for i := range merged.Seats {
		if real, ok := realRoles[merged.Seats[i].ID]; ok {
			merged.Seats[i].RealRoleID = real
		}
	}
	merged.StorytellerNotes = slices.Clone(secret.StorytellerNotes)
	return merged
}

// ViewerRoleID は閲覧者が座っている座席の役職を返す。本当の役職を優先する。
func ViewerRoleID(session *model.Session, viewerUserID string) string {
	seat := session.FindSeatByUser(viewerUserID)
	if seat == nil {
		return ""
	}
	if seat.RealRoleID != "" {
		return seat.RealRoleID
	}
	return seat.SeenRoleID
}

func FilterSeatForUser(seat model.Seat, viewerUserID string, isPrivileged bool, viewerRoleID string, catalog *model.Catalog) model.Seat {
	if isPrivileged {
		return seat.Clone()
	}
	filtered := seat.Clone()
	if catalog != nil && catalog.IsRevealAll(viewerRoleID) {
		filtered.RoleID = seat.SeenRoleID
		return filtered
	}
	filtered.RealRoleID = ""
	filtered.Statuses = []model.SeatStatus{}
	filtered.Reminders = publicReminders(seat.Reminders)
	// 自分の座席でも状態と非公開のリマインダーは見せない。
	// DRUNK や POISONED が残ると見かけの役職が偽りだと分かってしまう。
	if viewerUserID != "" && seat.UserID == viewerUserID {
		filtered.RoleID = seat.SeenRoleID
		return filtered
	}
	filtered.RoleID = ""
	filtered.SeenRoleID = ""
	filtered.HasUsedAbility = false
	return filtered
}

func publicReminders(reminders []model.Reminder) []model.Reminder {
	public := make([]model.Reminder, 0)
	for _, r := range reminders {
		if r.IsPublic() {
			public = append(public, r)
		}
	}
	return public
}

func canSeeMessage(message model.ChatMessage, viewerUserID string) bool {
	if !message.IsPrivate {
		return true
	}
	return viewerUserID != "" && (message.SenderID == viewerUserID || message.RecipientID == viewerUserID)
}

// FilterGameStateForUser は閲覧者に見せてよい形にセッションを投影する
func FilterGameStateForUser(session *model.Session, viewerUserID string, isPrivileged bool, catalog *model.Catalog) *model.Session {
	if isPrivileged {
		return session.Clone()
	}
	viewerRoleID := ViewerRoleID(session, viewerUserID)
	filtered := session.Clone()
	for i := range filtered.Seats {
		filtered.Seats[i] = FilterSeatForUser(session.Seats[i], viewerUserID, false, viewerRoleID, catalog)
	}
	filtered.StorytellerNotes = nil

	viewerSeat := session.FindSeatByUser(viewerUserID)
	requests := make([]model.NightActionRequest, 0)
	if viewerSeat != nil {
		for _, request := range session.NightActionRequests {
			if request.SeatID == viewerSeat.ID {
				requests = append(requests, request)
			}
		}
	}
	filtered.NightActionRequests = requests

	messages := make([]model.ChatMessage, 0, len(session.Messages))
	for _, message := range session.Messages {
		if canSeeMessage(message, viewerUserID) {
			messages = append(messages, message)
		}
	}
	filtered.Messages = messages
	return filtered
}
