package staffgate

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/starwalkn/staffgate/internal/metric"
)

type fakeUpstream struct {
	mu sync.Mutex

	listCalls   int
	getCalls    int
	createCalls int
	deleteCalls int

	deletedNames []string

	list   func(call int) (*Envelope[[]*RawEmployee], error)
	get    func(call int, id string) (*Envelope[*RawEmployee], error)
	create func(call int, input CreateEmployeeInput) (*Envelope[*RawEmployee], error)
	delete func(call int, name string) error
}

func (f *fakeUpstream) ListAll(_ context.Context) (*Envelope[[]*RawEmployee], error) {
	f.mu.Lock()
	f.listCalls++
	call := f.listCalls
	f.mu.Unlock()

	if f.list == nil {
		return &Envelope[[]*RawEmployee]{}, nil
	}

	return f.list(call)
}

func (f *fakeUpstream) GetByID(_ context.Context, id string) (*Envelope[*RawEmployee], error) {
	f.mu.Lock()
	f.getCalls++
	call := f.getCalls
	f.mu.Unlock()

	if f.get == nil {
		return nil, statusErr(http.StatusNotFound)
	}

	return f.get(call, id)
}

func (f *fakeUpstream) Create(_ context.Context, input CreateEmployeeInput) (*Envelope[*RawEmployee], error) {
	f.mu.Lock()
	f.createCalls++
	call := f.createCalls
	f.mu.Unlock()

	if f.create == nil {
		return nil, statusErr(http.StatusInternalServerError)
	}

	return f.create(call, input)
}

func (f *fakeUpstream) DeleteByName(_ context.Context, name string) error {
	f.mu.Lock()
	f.deleteCalls++
	call := f.deleteCalls
	f.deletedNames = append(f.deletedNames, name)
	f.mu.Unlock()

	if f.delete == nil {
		return nil
	}

	return f.delete(call, name)
}

func (f *fakeUpstream) calls() (list, get, create, del int) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.listCalls, f.getCalls, f.createCalls, f.deleteCalls
}

func statusErr(status int) *UpstreamError {
	return &UpstreamError{Kind: UpstreamBadStatus, Status: status}
}

func ptr[T any](v T) *T {
	return &v
}

func rawEmployee(id, name string, salary int) *RawEmployee {
	return &RawEmployee{
		ID:     id,
		Name:   ptr(name),
		Salary: ptr(salary),
		Age:    ptr(30),
		Title:  ptr("Engineer"),
		Email:  ptr(id + "@company.com"),
	}
}

func listOf(records ...*RawEmployee) func(int) (*Envelope[[]*RawEmployee], error) {
	return func(int) (*Envelope[[]*RawEmployee], error) {
		return &Envelope[[]*RawEmployee]{Data: records, Status: "Successfully processed request."}, nil
	}
}

// fastPolicy keeps the real backoff shape with delays short enough for tests.
func fastPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:     3,
		InitialInterval: time.Millisecond,
		Jitter:          0.5,
		MaxInterval:     5 * time.Millisecond,
	}
}

func newTestService(t *testing.T, up Upstream) *Service {
	t.Helper()

	retrier := NewRetrier(fastPolicy(), Classify, zap.NewNop(), metric.NewNop())

	return NewService(up, retrier, zap.NewNop())
}
