package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/angelmondragon/fooddash-backend/internal/address"
	"github.com/angelmondragon/fooddash-backend/internal/users"
	"github.com/angelmondragon/fooddash-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/fooddash-backend/pkg/errors"
)

type stubUserService struct {
	created      users.CreateUserDTO
	address      users.SetAddressInput
	gotID        uuid.UUID
	availability enums.RiderAvailability
	riderFilter  *enums.RiderAvailability
}

func (s *stubUserService) Create(_ context.Context, input users.CreateUserDTO) (*users.UserDTO, error) {
	s.created = input
	return &users.UserDTO{ID: input.ID, Username: input.Username, Email: input.Email, Role: input.Role}, nil
}

func (s *stubUserService) Get(_ context.Context, id uuid.UUID) (*users.UserDTO, error) {
	s.gotID = id
	return &users.UserDTO{ID: id, Role: enums.UserRoleCustomer}, nil
}

func (s *stubUserService) SetAddress(_ context.Context, id uuid.UUID, input users.SetAddressInput) (*users.UserDTO, error) {
	s.gotID = id
	s.address = input
	return &users.UserDTO{ID: id}, nil
}

func (s *stubUserService) SetAvailability(_ context.Context, id uuid.UUID, availability enums.RiderAvailability) (*users.UserDTO, error) {
	s.gotID = id
	s.availability = availability
	return &users.UserDTO{ID: id, Role: enums.UserRoleRider, Availability: availability}, nil
}

func (s *stubUserService) ListCustomers(context.Context) ([]users.UserDTO, error) {
	return []users.UserDTO{{Username: "bea", Role: enums.UserRoleCustomer}}, nil
}

func (s *stubUserService) ListRiders(_ context.Context, availability *enums.RiderAvailability) ([]users.UserDTO, error) {
	s.riderFilter = availability
	return []users.UserDTO{}, nil
}

func TestUserCreateNormalizesInput(t *testing.T) {
	stub := &stubUserService{}
	id := uuid.New()
	body := `{"id":"` + id.String() + `","username":" maria ","email":"Maria@Example.COM","role":"rider"}`
	rec := httptest.NewRecorder()
	UserCreate(stub, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/users", strings.NewReader(body)))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
	if stub.created.Email != "maria@example.com" || stub.created.Username != "maria" {
		t.Fatalf("unexpected input %+v", stub.created)
	}
	if stub.created.Role != enums.UserRoleRider {
		t.Fatalf("expected rider role, got %s", stub.created.Role)
	}
}

func TestUserCreateRejectsUnknownRole(t *testing.T) {
	body := `{"id":"` + uuid.NewString() + `","username":"maria","email":"maria@example.com","role":"chef"}`
	rec := httptest.NewRecorder()
	UserCreate(&stubUserService{}, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/users", strings.NewReader(body)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestMeUsesCallerIdentity(t *testing.T) {
	stub := &stubUserService{}
	caller := uuid.New()

	rec := httptest.NewRecorder()
	Me(stub, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/me", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without identity, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req = req.WithContext(asCaller(req.Context(), caller, string(enums.UserRoleCustomer)))
	rec = httptest.NewRecorder()
	Me(stub, nil).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if stub.gotID != caller {
		t.Fatalf("expected lookup of %s, got %s", caller, stub.gotID)
	}
}

func TestMeSetAddressForwardsPlaceID(t *testing.T) {
	stub := &stubUserService{}
	caller := uuid.New()
	req := httptest.NewRequest(http.MethodPut, "/api/v1/me/address", strings.NewReader(`{"placeId":"  ChIJ123  "}`))
	req = req.WithContext(asCaller(req.Context(), caller, string(enums.UserRoleCustomer)))

	rec := httptest.NewRecorder()
	MeSetAddress(stub, nil).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if stub.address.PlaceID != "ChIJ123" || stub.address.Location != nil {
		t.Fatalf("unexpected address input %+v", stub.address)
	}
}

func TestMeSetAvailabilityParsesStatus(t *testing.T) {
	stub := &stubUserService{}
	caller := uuid.New()
	req := httptest.NewRequest(http.MethodPut, "/api/v1/me/status", strings.NewReader(`{"status":"Online"}`))
	req = req.WithContext(asCaller(req.Context(), caller, string(enums.UserRoleRider)))

	rec := httptest.NewRecorder()
	MeSetAvailability(stub, nil).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if stub.gotID != caller || stub.availability != enums.RiderOnline {
		t.Fatalf("unexpected call id=%s availability=%q", stub.gotID, stub.availability)
	}

	req = httptest.NewRequest(http.MethodPut, "/api/v1/me/status", strings.NewReader(`{"status":"away"}`))
	req = req.WithContext(asCaller(req.Context(), caller, string(enums.UserRoleRider)))
	rec = httptest.NewRecorder()
	MeSetAvailability(stub, nil).ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestUserListRidersStatusFilter(t *testing.T) {
	stub := &stubUserService{}
	rec := httptest.NewRecorder()
	UserListRiders(stub, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/users/riders?status=online", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if stub.riderFilter == nil || *stub.riderFilter != enums.RiderOnline {
		t.Fatalf("expected online filter, got %v", stub.riderFilter)
	}

	rec = httptest.NewRecorder()
	UserListRiders(stub, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/users/riders", nil))
	if rec.Code != http.StatusOK || stub.riderFilter != nil {
		t.Fatalf("expected unfiltered listing, got %d filter %v", rec.Code, stub.riderFilter)
	}

	rec = httptest.NewRecorder()
	UserListRiders(stub, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/users/riders?status=busy", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestUserListCustomers(t *testing.T) {
	rec := httptest.NewRecorder()
	UserListCustomers(&stubUserService{}, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/users/customers", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"bea"`) {
		t.Fatalf("unexpected response %d %s", rec.Code, rec.Body.String())
	}
}

type stubAddressService struct {
	suggest address.SuggestRequest
	err     error
}

func (s *stubAddressService) Suggest(_ context.Context, req address.SuggestRequest) ([]address.Suggestion, error) {
	s.suggest = req
	if s.err != nil {
		return nil, s.err
	}
	return []address.Suggestion{{PlaceID: "p1", Description: "Makati City"}}, nil
}

func (s *stubAddressService) Resolve(_ context.Context, req address.ResolveRequest) (address.Location, error) {
	if s.err != nil {
		return address.Location{}, s.err
	}
	return address.Location{PlaceID: req.PlaceID, Line: "Ayala Ave, Makati"}, nil
}

func TestAddressSuggestFallsBackToQueryParam(t *testing.T) {
	stub := &stubAddressService{}
	rec := httptest.NewRecorder()
	AddressSuggest(stub, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/addresses/suggest?query=ayala&country=ph", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if stub.suggest.Query != "ayala" || stub.suggest.Country != "ph" {
		t.Fatalf("unexpected request %+v", stub.suggest)
	}
}

func TestAddressResolveRequiresPlaceID(t *testing.T) {
	rec := httptest.NewRecorder()
	AddressResolve(&stubAddressService{}, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/addresses/resolve", strings.NewReader(`{}`)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}

	stub := &stubAddressService{err: pkgerrors.New(pkgerrors.CodeDependency, "places unavailable")}
	rec = httptest.NewRecorder()
	AddressResolve(stub, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/addresses/resolve", strings.NewReader(`{"placeId":"p1"}`)))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", rec.Code)
	}
}
