package server

// MessageType identifies a WebSocket message on the wire.
type MessageType string

const (
	// Client to server commands
	MessageTypeCreateGame          MessageType = "create_game"
	MessageTypeJoinGame            MessageType = "join_game"
	MessageTypeRejoinGame          MessageType = "rejoin_game"
	MessageTypeAddBot              MessageType = "add_bot"
	MessageTypeStartGame           MessageType = "start_game"
	MessageTypeResetGame           MessageType = "reset_game"
	MessageTypeDrawCard            MessageType = "draw_card"
	MessageTypeReadyToDiscard      MessageType = "ready_to_discard"
	MessageTypeDiscardCard         MessageType = "discard_card"
	MessageTypeLayDownDraftMelds   MessageType = "lay_down_draft_melds"
	MessageTypeAddToMeld           MessageType = "add_to_meld"
	MessageTypeAddDraftMeld        MessageType = "add_draft_meld"
	MessageTypeRemoveDraftMeld     MessageType = "remove_draft_meld"
	MessageTypeRemoveCardFromDraft MessageType = "remove_card_from_draft"
	MessageTypeReorderDraftMeld    MessageType = "reorder_draft_meld"
	MessageTypeAddCardsToDraft     MessageType = "add_cards_to_draft"
	MessageTypeReorderHand         MessageType = "reorder_hand"
	MessageTypeCall                MessageType = "call"
	MessageTypeRespondToCall       MessageType = "respond_to_call"

	// Server to client events
	MessageTypeGameJoined     MessageType = "game_joined"
	MessageTypeGameUpdate     MessageType = "game_update"
	MessageTypePlayerJoined   MessageType = "player_joined"
	MessageTypeCallWindowOpen MessageType = "call_window_open"
	MessageTypeCallRequested  MessageType = "call_requested"
	MessageTypeCallApproved   MessageType = "call_approved"
	MessageTypeCallDenied     MessageType = "call_denied"
	MessageTypeError          MessageType = "error"
)

func (mt MessageType) String() string {
	return string(mt)
}
