package anticheat

import (
	"context"
	"testing"

	"google.golang.org/grpc/codes"

	"github.com/mapleleafu/santaflap/santaflap-backend/models"
	"github.com/mapleleafu/santaflap/santaflap-backend/repository"
)

func seedPlayers(t *testing.T, store *repository.MemStore, players ...models.Player) {
	t.Helper()
	for i := range players {
		if _, err := store.RaiseBestScore(context.Background(), &players[i]); err != nil {
			t.Fatal(err)
		}
	}
}

func TestTopPlayersFiltersInvalidEntries(t *testing.T) {
	store := repository.NewMemStore()
	seedPlayers(t, store,
		models.Player{PlayerID: "1111", Score: 40},
		models.Player{PlayerID: "2222", Score: 90},
		models.Player{PlayerID: "3333", Score: 20001},
		models.Player{PlayerID: "abcd", Score: 70},
		models.Player{PlayerID: "4444", Score: 0},
		models.Player{PlayerID: "5555", Score: 10000},
	)
	svc := NewService(store, DefaultPolicy())

	got, err := svc.TopPlayers(context.Background(), 0)
	if err != nil {
		t.Fatal(err)
	}
	want := []models.LeaderboardEntry{
		{PlayerID: "5555", Score: 10000},
		{PlayerID: "2222", Score: 90},
		{PlayerID: "1111", Score: 40},
	}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("entry %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestTopPlayersLimit(t *testing.T) {
	store := repository.NewMemStore()
	seedPlayers(t, store,
		models.Player{PlayerID: "1111", Score: 1},
		models.Player{PlayerID: "2222", Score: 2},
		models.Player{PlayerID: "3333", Score: 3},
	)
	svc := NewService(store, DefaultPolicy())

	got, err := svc.TopPlayers(context.Background(), 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].PlayerID != "3333" {
		t.Fatalf("got %v", got)
	}
}

func TestTopPlayersNotShortenedByBadRows(t *testing.T) {
	store := repository.NewMemStore()
	seedPlayers(t, store,
		models.Player{PlayerID: "abcd", Score: 900},
		models.Player{PlayerID: "12", Score: 800},
		models.Player{PlayerID: "9999", Score: 50000},
		models.Player{PlayerID: "1111", Score: 30},
		models.Player{PlayerID: "2222", Score: 20},
		models.Player{PlayerID: "3333", Score: 10},
	)
	svc := NewService(store, DefaultPolicy())

	got, err := svc.TopPlayers(context.Background(), 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 || got[0].PlayerID != "1111" || got[2].PlayerID != "3333" {
		t.Fatalf("got %v, want the three valid players", got)
	}
}

func TestPlayerScore(t *testing.T) {
	store := repository.NewMemStore()
	seedPlayers(t, store, models.Player{PlayerID: "1234", Score: 12})
	svc := NewService(store, DefaultPolicy())

	if score, err := svc.PlayerScore(context.Background(), " 1234 "); err != nil || score != 12 {
		t.Fatalf("PlayerScore = %d, %v", score, err)
	}
	if score, err := svc.PlayerScore(context.Background(), "9999"); err != nil || score != 0 {
		t.Fatalf("unknown player = %d, %v", score, err)
	}
	_, err := svc.PlayerScore(context.Background(), "12a4")
	wantError(t, err, codes.InvalidArgument, "Invalid player ID")
}
