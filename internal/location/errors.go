package location

import "errors"

var (
	// ErrHouseNotFound is returned when a house ID does not exist.
	ErrHouseNotFound = errors.New("location: house not found")

	// ErrRoomNotFound is returned when a room ID does not exist.
	ErrRoomNotFound = errors.New("location: room not found")

	// ErrHouseExists is returned when adding a house with an ID already in use.
	ErrHouseExists = errors.New("location: house already exists")

	// ErrRoomExists is returned when adding a room with an ID already in use.
	ErrRoomExists = errors.New("location: room already exists")

	// ErrInvalidName is returned when a name is empty or too long.
	ErrInvalidName = errors.New("location: invalid name")
)
