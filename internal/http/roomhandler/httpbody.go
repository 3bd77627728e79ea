package roomhandler

import "chatrelay/internal/relay"

type RoomResponse struct {
	ID    string           `json:"id"    example:"lobby"`
	Users []relay.Identity `json:"users"`
} // @name RoomResponse

type HealthResponse struct {
	Status string `json:"status" example:"ok"`
} // @name HealthResponse

type ErrorResponse struct {
	Error string `json:"error"`
} // @name ErrorResponse
