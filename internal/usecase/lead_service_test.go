package usecase_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang/mock/gomock"

	"github.com/Gunvolt24/autoagent/internal/domain"
	"github.com/Gunvolt24/autoagent/internal/ports/mocks"
	"github.com/Gunvolt24/autoagent/internal/usecase"
	"github.com/Gunvolt24/autoagent/pkg/validate"
)

var fixedNow = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func validLeadRequest() domain.LeadRequest {
	return domain.LeadRequest{
		VehicleID: "mc-1",
		VIN:       "4T1G11AK5NU000001",
		DealerID:  "dealer-7",
		User:      domain.LeadUser{Name: "Ann", Email: "ann@example.com"},
		Consent:   true,
	}
}

type leadDeps struct {
	repo      *mocks.MockLeadRepository
	sealer    *mocks.MockPayloadSealer
	forwarder *mocks.MockLeadForwarder
}

func newLeadService(t *testing.T, withForwarder bool) (*usecase.LeadService, leadDeps) {
	ctrl := gomock.NewController(t)
	d := leadDeps{
		repo:   mocks.NewMockLeadRepository(ctrl),
		sealer: mocks.NewMockPayloadSealer(ctrl),
	}
	var svc *usecase.LeadService
	opts := usecase.LeadOptions{MaxPerIP: 2, Window: time.Hour, Now: func() time.Time { return fixedNow }}
	if withForwarder {
		d.forwarder = mocks.NewMockLeadForwarder(ctrl)
		svc = usecase.NewLeadService(d.repo, validate.NewLeadValidator(), d.sealer, d.forwarder, noopLogger{}, opts)
	} else {
		svc = usecase.NewLeadService(d.repo, validate.NewLeadValidator(), d.sealer, nil, noopLogger{}, opts)
	}
	return svc, d
}

func TestSubmit_StoresSealedAndForwards(t *testing.T) {
	svc, d := newLeadService(t, true)
	req := validLeadRequest()

	var saved domain.LeadRecord
	gomock.InOrder(
		d.repo.EXPECT().CountByIPSince(gomock.Any(), "203.0.113.9", fixedNow.Add(-time.Hour)).Return(1, nil),
		d.sealer.EXPECT().Seal(domain.LeadPayload{
			User: req.User, VehicleID: req.VehicleID, DealerID: req.DealerID, VIN: req.VIN,
		}).Return("c2VhbGVk", nil),
		d.repo.EXPECT().Save(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, r domain.LeadRecord) error {
			saved = r
			return nil
		}),
	)
	forwarded := make(chan domain.ForwardedLead, 1)
	d.forwarder.EXPECT().Forward(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, l domain.ForwardedLead) error {
		if _, ok := ctx.Deadline(); !ok {
			t.Errorf("forward must run under its own deadline")
		}
		forwarded <- l
		return nil
	})

	receipt, err := svc.Submit(context.Background(), req, "203.0.113.9")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	svc.Wait()

	if receipt.LeadID == "" || receipt.LeadID != saved.ID {
		t.Fatalf("receipt must carry stored id: %+v vs %+v", receipt, saved)
	}
	if saved.EncPayload != "c2VhbGVk" || saved.IPAddress != "203.0.113.9" || saved.CreatedAt != fixedNow.UnixMilli() {
		t.Fatalf("unexpected stored record: %+v", saved)
	}
	got := <-forwarded
	if got.LeadID != saved.ID || got.EncPayload != saved.EncPayload || got.VIN != req.VIN {
		t.Fatalf("unexpected forwarded lead: %+v", got)
	}
}

func TestSubmit_RateLimited(t *testing.T) {
	svc, d := newLeadService(t, true)

	d.repo.EXPECT().CountByIPSince(gomock.Any(), "203.0.113.9", gomock.Any()).Return(2, nil)

	_, err := svc.Submit(context.Background(), validLeadRequest(), "203.0.113.9")
	if !errors.Is(err, domain.ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}

func TestSubmit_ConcurrentSameIPRespectsLimit(t *testing.T) {
	svc, d := newLeadService(t, false)

	var (
		mu     sync.Mutex
		stored int
	)
	d.repo.EXPECT().CountByIPSince(gomock.Any(), "198.51.100.4", gomock.Any()).
		DoAndReturn(func(context.Context, string, time.Time) (int, error) {
			mu.Lock()
			n := stored
			mu.Unlock()
			time.Sleep(5 * time.Millisecond) // окно между подсчётом и записью
			return n, nil
		}).AnyTimes()
	d.sealer.EXPECT().Seal(gomock.Any()).Return("sealed", nil).AnyTimes()
	d.repo.EXPECT().Save(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, domain.LeadRecord) error {
			mu.Lock()
			stored++
			mu.Unlock()
			return nil
		}).AnyTimes()

	const callers = 8
	var (
		wg      sync.WaitGroup
		ok      atomic.Int32
		limited atomic.Int32
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Submit(context.Background(), validLeadRequest(), "198.51.100.4")
			switch {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, domain.ErrRateLimited):
				limited.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if ok.Load() != 2 || limited.Load() != callers-2 || stored != 2 {
		t.Fatalf("created=%d limited=%d stored=%d, want 2/%d/2", ok.Load(), limited.Load(), stored, callers-2)
	}
}

func TestSubmit_InvalidSkipsStore(t *testing.T) {
	svc, _ := newLeadService(t, true)

	req := validLeadRequest()
	req.Consent = false

	_, err := svc.Submit(context.Background(), req, "203.0.113.9")
	if !errors.Is(err, domain.ErrInvalidLead) {
		t.Fatalf("expected ErrInvalidLead, got %v", err)
	}
}

func TestSubmit_NoIPSkipsLimit_NoForwarder(t *testing.T) {
	svc, d := newLeadService(t, false)

	d.sealer.EXPECT().Seal(gomock.Any()).Return("x", nil)
	d.repo.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)

	if _, err := svc.Submit(context.Background(), validLeadRequest(), ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	svc.Wait()
}

func TestSubmit_ForwardFailureDoesNotFailRequest(t *testing.T) {
	svc, d := newLeadService(t, true)

	d.repo.EXPECT().CountByIPSince(gomock.Any(), gomock.Any(), gomock.Any()).Return(0, nil)
	d.sealer.EXPECT().Seal(gomock.Any()).Return("x", nil)
	d.repo.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)
	d.forwarder.EXPECT().Forward(gomock.Any(), gomock.Any()).Return(errors.New("dashboard down"))

	ctx, cancel := context.WithCancel(context.Background())
	_, err := svc.Submit(ctx, validLeadRequest(), "203.0.113.9")
	cancel() // отмена запроса не должна мешать пересылке
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	svc.Wait()
}

func TestSubmit_StoreError(t *testing.T) {
	svc, d := newLeadService(t, true)

	d.repo.EXPECT().CountByIPSince(gomock.Any(), gomock.Any(), gomock.Any()).Return(0, nil)
	d.sealer.EXPECT().Seal(gomock.Any()).Return("x", nil)
	d.repo.EXPECT().Save(gomock.Any(), gomock.Any()).Return(errors.New("disk full"))

	if _, err := svc.Submit(context.Background(), validLeadRequest(), "203.0.113.9"); err == nil {
		t.Fatalf("expected store error")
	}
}

func TestSubmitFromArgs_BadJSON(t *testing.T) {
	svc, _ := newLeadService(t, false)

	_, err := svc.SubmitFromArgs(context.Background(), json.RawMessage(`{"vehicleId":1}`), "")
	if !errors.Is(err, domain.ErrInvalidLead) {
		t.Fatalf("expected ErrInvalidLead, got %v", err)
	}
}
