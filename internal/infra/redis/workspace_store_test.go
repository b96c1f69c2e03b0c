package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"talentflow-assessments/internal/app"
	"talentflow-assessments/internal/infra/memory"
)

func TestWorkspaceStoreSetsAndClearsKeys(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewWorkspaceStore(client, time.Minute)

	_ = store.GetOrCreate("ws-1")
	if !mr.Exists("talentflow:workspace:ws-1") {
		t.Fatalf("expected redis key to be set")
	}

	mr.FastForward(30 * time.Second)
	if err := store.Touch(context.Background(), "ws-1"); err != nil {
		t.Fatalf("touch: %v", err)
	}
	if ttl := mr.TTL("talentflow:workspace:ws-1"); ttl != time.Minute {
		t.Fatalf("expected ttl refreshed to 1m, got %v", ttl)
	}

	store.DeleteIfIdle("ws-1")
	if mr.Exists("talentflow:workspace:ws-1") {
		t.Fatalf("expected redis key to be removed")
	}
	if _, ok := store.Get("ws-1"); ok {
		t.Fatalf("expected workspace removed")
	}
}

func TestServiceTouchRefreshesLiveness(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	workspaces := NewWorkspaceStore(client, time.Minute)
	store := memory.NewSeededStore()
	service := app.NewAssessmentService(workspaces, store, store)
	ctx := context.Background()

	service.Open("ws-1")
	mr.FastForward(45 * time.Second)
	service.Touch(ctx, "ws-1")
	mr.FastForward(45 * time.Second)
	if !mr.Exists("talentflow:workspace:ws-1") {
		t.Fatalf("expected liveness marker kept alive by touch")
	}

	// unknown workspaces are not resurrected
	service.Touch(ctx, "ws-2")
	if mr.Exists("talentflow:workspace:ws-2") {
		t.Fatalf("expected no marker for unopened workspace")
	}
}
