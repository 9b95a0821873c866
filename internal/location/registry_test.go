package location

import (
	"context"
	"errors"
	"testing"
)

func setupRegistry(t *testing.T) *Registry {
	t.Helper()
	r := NewRegistry()
	ctx := context.Background()
	if _, err := r.AddHouse(ctx, House{ID: "house-1", Name: "Main House"}); err != nil {
		t.Fatalf("AddHouse() error = %v", err)
	}
	return r
}

func TestRegistry_AddHouse(t *testing.T) {
	r := NewRegistry()
	ctx := context.Background()

	h, err := r.AddHouse(ctx, House{Name: "Cottage"})
	if err != nil {
		t.Fatalf("AddHouse() error = %v", err)
	}
	if h.ID == "" {
		t.Error("AddHouse() did not generate an ID")
	}

	got, err := r.GetHouse(ctx, h.ID)
	if err != nil {
		t.Fatalf("GetHouse() error = %v", err)
	}
	if got != h {
		t.Errorf("GetHouse() = %+v, want %+v", got, h)
	}

	if _, err := r.AddHouse(ctx, House{ID: h.ID, Name: "Again"}); !errors.Is(err, ErrHouseExists) {
		t.Errorf("AddHouse(duplicate) error = %v, want ErrHouseExists", err)
	}
}

func TestRegistry_AddHouseInvalidName(t *testing.T) {
	r := NewRegistry()
	if _, err := r.AddHouse(context.Background(), House{Name: "   "}); !errors.Is(err, ErrInvalidName) {
		t.Errorf("AddHouse() error = %v, want ErrInvalidName", err)
	}
}

func TestRegistry_AddRoom(t *testing.T) {
	r := setupRegistry(t)
	ctx := context.Background()

	room, err := r.AddRoom(ctx, Room{ID: "kitchen", HouseID: "house-1", Name: "Kitchen"})
	if err != nil {
		t.Fatalf("AddRoom() error = %v", err)
	}

	got, err := r.GetRoom(ctx, "kitchen")
	if err != nil {
		t.Fatalf("GetRoom() error = %v", err)
	}
	if got != room {
		t.Errorf("GetRoom() = %+v, want %+v", got, room)
	}

	if _, err := r.AddRoom(ctx, Room{ID: "kitchen", HouseID: "house-1", Name: "Kitchen 2"}); !errors.Is(err, ErrRoomExists) {
		t.Errorf("AddRoom(duplicate) error = %v, want ErrRoomExists", err)
	}
	if _, err := r.AddRoom(ctx, Room{HouseID: "nowhere", Name: "Attic"}); !errors.Is(err, ErrHouseNotFound) {
		t.Errorf("AddRoom(unknown house) error = %v, want ErrHouseNotFound", err)
	}
}

func TestRegistry_NotFound(t *testing.T) {
	r := setupRegistry(t)
	ctx := context.Background()

	if _, err := r.GetHouse(ctx, "missing"); !errors.Is(err, ErrHouseNotFound) {
		t.Errorf("GetHouse() error = %v, want ErrHouseNotFound", err)
	}
	if _, err := r.GetRoom(ctx, "missing"); !errors.Is(err, ErrRoomNotFound) {
		t.Errorf("GetRoom() error = %v, want ErrRoomNotFound", err)
	}
	if _, err := r.ListRoomsByHouse(ctx, "missing"); !errors.Is(err, ErrHouseNotFound) {
		t.Errorf("ListRoomsByHouse() error = %v, want ErrHouseNotFound", err)
	}
}

func TestRegistry_Listing(t *testing.T) {
	r := setupRegistry(t)
	ctx := context.Background()

	if _, err := r.AddHouse(ctx, House{ID: "house-2", Name: "Annex"}); err != nil {
		t.Fatalf("AddHouse() error = %v", err)
	}
	for _, room := range []Room{
		{ID: "r-lounge", HouseID: "house-1", Name: "Lounge"},
		{ID: "r-bed", HouseID: "house-1", Name: "Bedroom"},
		{ID: "r-office", HouseID: "house-2", Name: "Office"},
	} {
		if _, err := r.AddRoom(ctx, room); err != nil {
			t.Fatalf("AddRoom(%s) error = %v", room.ID, err)
		}
	}

	houses := r.ListHouses(ctx)
	if len(houses) != 2 || houses[0].Name != "Annex" {
		t.Errorf("ListHouses() = %+v, want Annex first", houses)
	}

	rooms, err := r.ListRoomsByHouse(ctx, "house-1")
	if err != nil {
		t.Fatalf("ListRoomsByHouse() error = %v", err)
	}
	if len(rooms) != 2 || rooms[0].ID != "r-bed" || rooms[1].ID != "r-lounge" {
		t.Errorf("ListRoomsByHouse() = %+v", rooms)
	}
}
