package relay

import "strings"

// Inbound event tags.
const (
	EventJoin            = "join"
	EventMessage         = "message"
	EventTyping          = "typing"
	EventPrivateMessage  = "private-message"
	EventAddFriend       = "add-friend"
	EventRequestPresence = "request-presence"
	EventKeepalive       = "keepalive"
)

// Outbound event tags.
const (
	EventOnlineList   = "online-list"
	EventTypingStatus = "typing-status"
	EventPresence     = "presence"
	EventJoined       = "joined"
)

// Identity is the user a connection presents on join.
type Identity struct {
	ID    string `json:"id"              validate:"required"`
	Name  string `json:"name"            validate:"required"`
	Role  string `json:"role,omitempty"`
	Emoji string `json:"emoji,omitempty"`
}

// envelope is only used to peek at the "type" tag of a frame.
type envelope struct {
	Type string `json:"type"`
}

// ──────────────────────────── Inbound frames ──────────────────────────────────

type JoinRequest struct {
	RoomID string    `json:"roomId" validate:"required"`
	User   *Identity `json:"user"   validate:"required"`
}

func (r *JoinRequest) normalize() {
	r.RoomID = strings.TrimSpace(r.RoomID)
	if r.User != nil {
		r.User.ID = strings.TrimSpace(r.User.ID)
		r.User.Name = strings.TrimSpace(r.User.Name)
	}
}

type MessageRequest struct {
	Text string `json:"text" validate:"required"`
}

// TypingRequest uses a pointer so that an absent flag is rejected while
// an explicit false is accepted.
type TypingRequest struct {
	Typing *bool `json:"typing" validate:"required"`
}

type PrivateMessageRequest struct {
	To   string `json:"to"   validate:"required"`
	Text string `json:"text" validate:"required"`
}

func (r *PrivateMessageRequest) normalize() { r.To = strings.TrimSpace(r.To) }

type AddFriendRequest struct {
	Friend string `json:"friend" validate:"required"`
}

func (r *AddFriendRequest) normalize() { r.Friend = strings.TrimSpace(r.Friend) }

type EmptyRequest struct{}

// ──────────────────────────── Outbound frames ─────────────────────────────────

type OnlineList struct {
	Type  string     `json:"type"`
	Users []Identity `json:"users"`
}

type ChatMessage struct {
	Type string   `json:"type"`
	User Identity `json:"user"`
	Text string   `json:"text"`
}

// TypingStatus lists the names of the other members currently typing.
type TypingStatus struct {
	Type  string   `json:"type"`
	Users []string `json:"users"`
}

// PresenceView is one row of a viewer's global presence list. Room is nil
// when the viewer and the target are not mutual friends.
type PresenceView struct {
	Name       string  `json:"name"`
	Room       *string `json:"room"`
	CanSeeRoom bool    `json:"canSeeRoom"`
}

type Presence struct {
	Type  string         `json:"type"`
	Users []PresenceView `json:"users"`
}

type PrivateMessage struct {
	Type string   `json:"type"`
	From string   `json:"from"`
	To   string   `json:"to"`
	User Identity `json:"user"`
	Text string   `json:"text"`
}

type Joined struct {
	Type   string `json:"type"`
	RoomID string `json:"roomId"`
}
