package graphql

import (
	"context"
	"fmt"
	"sync"

	"github.com/tidwall/gjson"
)

// StubExecutor answers operations from canned `data` objects. It backs the
// offline modes of the command line and tests that do not need a server.
type StubExecutor struct {
	mu        sync.Mutex
	responses map[string]string
	errs      map[string]error
	calls     []Request
}

var _ Executor = (*StubExecutor)(nil)

// NewStubExecutor seeds the stub with DefaultStubResponses and the given
// overrides.
func NewStubExecutor(overrides map[string]string) *StubExecutor {
	responses := DefaultStubResponses()
	for name, data := range overrides {
		responses[name] = data
	}
	return &StubExecutor{responses: responses, errs: map[string]error{}}
}

// DefaultStubResponses returns a successful response for every shipped
// operation.
func DefaultStubResponses() map[string]string {
	return map[string]string{
		OpZipcodeDetails:                    `{"zipcodeDetails":{"zipcode":"02451","city":"Waltham","state":"MA"}}`,
		OpNearbyCaregiversCount:             `{"nearbyCaregiversCount":{"count":42,"radius":10}}`,
		OpSeekerCreate:                      `{"seekerCreate":{"__typename":"SeekerCreateSuccess","memberId":"offline-seeker","authToken":"offline-token"}}`,
		OpProviderCreate:                    `{"providerCreate":{"__typename":"ProviderCreateSuccess","memberId":"offline-provider","authToken":"offline-token"}}`,
		OpProviderNameUpdate:                `{"providerNameUpdate":{"__typename":"ProviderNameUpdateSuccess"}}`,
		OpProviderPhoneUpdate:               `{"providerPhoneUpdate":{"__typename":"ProviderPhoneUpdateSuccess"}}`,
		OpCaregiverAttributesUpdate:         `{"caregiverAttributesUpdate":{"__typename":"CaregiverAttributesUpdateSuccess"}}`,
		OpProviderJobInterestUpdate:         `{"providerJobInterestUpdate":{"__typename":"ProviderJobInterestUpdateSuccess"}}`,
		OpUniversalProviderAttributesUpdate: `{"universalProviderAttributesUpdate":{"__typename":"UniversalProviderAttributesUpdateSuccess"}}`,
		OpSeekerJobCreate:                   `{"seekerJobCreate":{"__typename":"SeekerJobCreateSuccess","jobId":"offline-job"}}`,
	}
}

// Fail makes name return err until cleared with a nil error.
func (s *StubExecutor) Fail(name string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.errs, name)
		return
	}
	s.errs[name] = err
}

// Calls returns the requests executed so far.
func (s *StubExecutor) Calls() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.calls...)
}

func (s *StubExecutor) Execute(ctx context.Context, req Request) (Response, error) {
	if err := ctx.Err(); err != nil {
		return Response{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, req)
	if err := s.errs[req.Name]; err != nil {
		return Response{}, err
	}
	data, ok := s.responses[req.Name]
	if !ok {
		return Response{}, fmt.Errorf("graphql: stub has no response for %s", req.Name)
	}
	return Response{Operation: req.Name, Data: gjson.Parse(data)}, nil
}
