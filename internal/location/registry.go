package location

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Logger defines the logging interface used by the Registry.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Registry holds houses and rooms in memory.
//
// All public methods are thread-safe. Values are returned by copy.
type Registry struct {
	mu     sync.RWMutex
	houses map[string]House
	rooms  map[string]Room
	logger Logger
}

// NewRegistry creates an empty location registry.
func NewRegistry() *Registry {
	return &Registry{
		houses: make(map[string]House),
		rooms:  make(map[string]Room),
		logger: noopLogger{},
	}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger Logger) {
	r.logger = logger
}

// AddHouse registers a house. An empty ID is replaced with a generated one.
func (r *Registry) AddHouse(_ context.Context, h House) (House, error) {
	if err := ValidateName(h.Name); err != nil {
		return House{}, err
	}
	if h.ID == "" {
		h.ID = GenerateID()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.houses[h.ID]; ok {
		return House{}, fmt.Errorf("%w: %s", ErrHouseExists, h.ID)
	}
	r.houses[h.ID] = h

	r.logger.Info("house added", "id", h.ID, "name", h.Name)
	return h, nil
}

// AddRoom registers a room. The owning house must already exist.
func (r *Registry) AddRoom(_ context.Context, room Room) (Room, error) {
	if err := ValidateName(room.Name); err != nil {
		return Room{}, err
	}
	if room.ID == "" {
		room.ID = GenerateID()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.houses[room.HouseID]; !ok {
		return Room{}, fmt.Errorf("%w: %s", ErrHouseNotFound, room.HouseID)
	}
	if _, ok := r.rooms[room.ID]; ok {
		return Room{}, fmt.Errorf("%w: %s", ErrRoomExists, room.ID)
	}
	r.rooms[room.ID] = room

	r.logger.Info("room added", "id", room.ID, "house_id", room.HouseID, "name", room.Name)
	return room, nil
}

// GetHouse returns a house by ID.
func (r *Registry) GetHouse(_ context.Context, id string) (House, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h, ok := r.houses[id]
	if !ok {
		return House{}, ErrHouseNotFound
	}
	return h, nil
}

// GetRoom returns a room by ID.
func (r *Registry) GetRoom(_ context.Context, id string) (Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room, ok := r.rooms[id]
	if !ok {
		return Room{}, ErrRoomNotFound
	}
	return room, nil
}

// ListHouses returns all houses ordered by name.
func (r *Registry) ListHouses(_ context.Context) []House {
	r.mu.RLock()
	houses := make([]House, 0, len(r.houses))
	for _, h := range r.houses {
		houses = append(houses, h)
	}
	r.mu.RUnlock()

	sort.Slice(houses, func(i, j int) bool {
		if houses[i].Name != houses[j].Name {
			return houses[i].Name < houses[j].Name
		}
		return houses[i].ID < houses[j].ID
	})
	return houses
}

// ListRoomsByHouse returns the rooms of a house ordered by name.
// Returns ErrHouseNotFound if the house does not exist.
func (r *Registry) ListRoomsByHouse(_ context.Context, houseID string) ([]Room, error) {
	r.mu.RLock()
	if _, ok := r.houses[houseID]; !ok {
		r.mu.RUnlock()
		return nil, ErrHouseNotFound
	}
	rooms := make([]Room, 0)
	for _, room := range r.rooms {
		if room.HouseID == houseID {
			rooms = append(rooms, room)
		}
	}
	r.mu.RUnlock()

	sort.Slice(rooms, func(i, j int) bool {
		if rooms[i].Name != rooms[j].Name {
			return rooms[i].Name < rooms[j].Name
		}
		return rooms[i].ID < rooms[j].ID
	})
	return rooms, nil
}
