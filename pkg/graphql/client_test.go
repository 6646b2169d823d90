package graphql

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

type capturedRequest struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName"`
	Variables     map[string]any `json:"variables"`
}

func newTestServer(t *testing.T, status int, body string, capture *capturedRequest, auth *string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if capture != nil {
			if err := json.NewDecoder(r.Body).Decode(capture); err != nil {
				t.Errorf("decode request: %v", err)
			}
		}
		if auth != nil {
			*auth = r.Header.Get("Authorization")
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestQuery_DecodesRootField(t *testing.T) {
	var captured capturedRequest
	srv := newTestServer(t, http.StatusOK, `{"data":{"zipcodeDetails":{"zipcode":"02451","city":"Waltham","state":"MA"}}}`, &captured, nil)

	client, err := NewClient(srv.URL)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	got, err := Query[ZipcodeDetails](context.Background(), client, OpZipcodeDetails, map[string]any{"zipcode": "02451"})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}

	want := ZipcodeDetails{Zipcode: "02451", City: "Waltham", State: "MA"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}
	if captured.OperationName != OpZipcodeDetails {
		t.Fatalf("expected operationName %q, got %q", OpZipcodeDetails, captured.OperationName)
	}
	if !strings.HasPrefix(captured.Query, "query ZipcodeDetails") {
		t.Fatalf("unexpected query text: %q", captured.Query)
	}
	if captured.Variables["zipcode"] != "02451" {
		t.Fatalf("unexpected variables: %#v", captured.Variables)
	}
}

func TestMutate_SendsBearerToken(t *testing.T) {
	var auth string
	srv := newTestServer(t, http.StatusOK, `{"data":{"providerPhoneUpdate":{"__typename":"ProviderPhoneUpdateSuccess"}}}`, nil, &auth)

	client, err := NewClient(srv.URL)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	ctx := WithAuthToken(context.Background(), "tok-123")
	result, err := Mutate[MutationResult](ctx, client, OpProviderPhoneUpdate, Input(ProviderPhoneUpdateInput{PhoneNumber: "6175551234"}))
	if err != nil {
		t.Fatalf("Mutate: %v", err)
	}
	if result.Err() != nil {
		t.Fatalf("expected success branch, got %v", result.Err())
	}
	if auth != "Bearer tok-123" {
		t.Fatalf("expected bearer header, got %q", auth)
	}
}

func TestMutate_UnionErrorBranch(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, `{"data":{"seekerCreate":{"__typename":"SeekerCreateError","errors":[{"field":"email","message":"Email already in use","code":"DUPLICATE"}]}}}`, nil, nil)

	client, _ := NewClient(srv.URL)
	result, err := Mutate[MutationResult](context.Background(), client, OpSeekerCreate, Input(SeekerCreateInput{Email: "a@b.co"}))
	if err != nil {
		t.Fatalf("Mutate: %v", err)
	}

	var inputErrs InputErrors
	if !errors.As(result.Err(), &inputErrs) {
		t.Fatalf("expected InputErrors, got %v", result.Err())
	}
	want := map[string][]string{"email": {"Email already in use"}}
	if diff := cmp.Diff(want, inputErrs.Payload()); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestExecute_GraphQLErrors(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, `{"errors":[{"message":"not logged in","path":["providerPhoneUpdate"],"extensions":{"code":"UNAUTHENTICATED"}}],"data":null}`, nil, nil)

	client, _ := NewClient(srv.URL)
	_, err := Mutate[MutationResult](context.Background(), client, OpProviderPhoneUpdate, nil)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}

	var gqlErrs Errors
	if !errors.As(err, &gqlErrs) {
		t.Fatalf("expected Errors, got %T", err)
	}
	want := map[string][]string{"providerPhoneUpdate": {"not logged in"}}
	if diff := cmp.Diff(want, gqlErrs.Payload()); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestExecute_HTTPError(t *testing.T) {
	srv := newTestServer(t, http.StatusBadGateway, `upstream down`, nil, nil)

	var observed string
	var observedErr error
	client, _ := NewClient(srv.URL, WithObserver(func(op string, _ time.Duration, err error) {
		observed = op
		observedErr = err
	}))

	_, err := Query[NearbyCaregivers](context.Background(), client, OpNearbyCaregiversCount, nil)
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected HTTPError, got %v", err)
	}
	if httpErr.StatusCode != http.StatusBadGateway {
		t.Fatalf("unexpected status %d", httpErr.StatusCode)
	}
	if observed != OpNearbyCaregiversCount || observedErr == nil {
		t.Fatalf("observer not notified: %q %v", observed, observedErr)
	}
}

func TestExecute_ResponseLimit(t *testing.T) {
	body := `{"data":{"nearbyCaregiversCount":{"count":12,"radius":10}}}`
	srv := newTestServer(t, http.StatusOK, body, nil, nil)

	exact, _ := NewClient(srv.URL, WithMaxResponseBytes(int64(len(body))))
	got, err := Query[NearbyCaregivers](context.Background(), exact, OpNearbyCaregiversCount, nil)
	if err != nil {
		t.Fatalf("body at the limit should parse: %v", err)
	}
	if diff := cmp.Diff(NearbyCaregivers{Count: 12, Radius: 10}, got); diff != "" {
		t.Fatalf("result mismatch (-want +got):\n%s", diff)
	}

	short, _ := NewClient(srv.URL, WithMaxResponseBytes(int64(len(body)-1)))
	_, err = Query[NearbyCaregivers](context.Background(), short, OpNearbyCaregiversCount, nil)
	if !errors.Is(err, ErrResponseTooLarge) {
		t.Fatalf("expected ErrResponseTooLarge, got %v", err)
	}
}

func TestQuery_RejectsKindMismatch(t *testing.T) {
	client, _ := NewClient("http://127.0.0.1:0")
	if _, err := Query[MutationResult](context.Background(), client, OpSeekerCreate, nil); err == nil {
		t.Fatalf("expected kind mismatch error")
	}
}

func TestLookup_AllDocumentsLoad(t *testing.T) {
	for _, name := range Names() {
		doc, err := Lookup(name)
		if err != nil {
			t.Fatalf("Lookup(%q): %v", name, err)
		}
		if !strings.Contains(doc.Text, doc.Field) {
			t.Fatalf("document %s does not select %s", name, doc.Field)
		}
	}
	if _, err := Lookup("Nope"); err == nil {
		t.Fatalf("expected unknown operation error")
	}
}

func TestParseEnum(t *testing.T) {
	if got := ParseEnum[PaymentType]("cash or check"); got != PaymentCashOrCheck {
		t.Fatalf("unexpected enum %q", got)
	}
	if !ParseEnum[ServiceType]("child-care").Valid() {
		t.Fatalf("expected valid service type")
	}
}
