package fetchers

import (
	"errors"
	"testing"

	"covidviz/internal/models"
)

func TestReadyFiresOnce(t *testing.T) {
	r := NewReady()
	var order []string
	r.Subscribe(func(*models.Store) { order = append(order, "line") })
	r.Subscribe(func(*models.Store) { order = append(order, "map") })

	store := models.NewStore(nil, nil, nil)
	if !r.Publish(store) {
		t.Fatal("first Publish should fire")
	}
	if r.Publish(store) || r.Fail(errors.New("late")) {
		t.Error("later calls must not fire again")
	}

	if len(order) != 2 || order[0] != "line" || order[1] != "map" {
		t.Errorf("subscribers should run once in order, got %v", order)
	}
	if r.Err() != nil {
		t.Errorf("unexpected error %v", r.Err())
	}

	select {
	case <-r.Done():
	default:
		t.Error("Done should be closed")
	}
}

func TestReadyLateSubscriber(t *testing.T) {
	r := NewReady()
	store := models.NewStore(nil, nil, nil)
	r.Publish(store)

	var got *models.Store
	r.Subscribe(func(s *models.Store) { got = s })
	if got != store {
		t.Error("late subscriber should be called with the store immediately")
	}
}

func TestReadyFail(t *testing.T) {
	r := NewReady()
	called := false
	r.Subscribe(func(*models.Store) { called = true })

	boom := errors.New("boom")
	r.Fail(boom)
	r.Subscribe(func(*models.Store) { called = true })

	if called {
		t.Error("subscribers must not run after Fail")
	}
	if !errors.Is(r.Err(), boom) || r.Store() != nil {
		t.Errorf("unexpected state: err=%v store=%v", r.Err(), r.Store())
	}
}
