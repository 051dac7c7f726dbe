package config

const (
	RoomCodeRequired      = "room code is required"
	InvalidRoomCodeFormat = "invalid room code format"
	UserRequired          = "user is required"
	UserIdRequired        = "user id is required"
	RoomNotFound          = "Meeting room not found. Please check the code."
	RoomAlreadyExists     = "room already exists"
	LivekitNotConfigured  = "LiveKit credentials not configured"
	FailedToGenerateToken = "failed to generate token"
	FailedToCheckRoom     = "failed to check room existence"
	InvalidApiKey         = "invalid API key"
	HashSignatureRequired = "hash signature value required"
	SignatureVerifyFailed = "can't verify provided information"
	OnlyHostCanEnd        = "Only host can end the room"
	RoomStateNotFound     = "no saved state for this room"
	InvalidSegment        = "segment index, text and timestamp are required"
)
