// Package mockapi is an in-memory stand-in for the upstream employee API. It serves the
// same routes and envelope shape, and can be told to fail on demand.
package mockapi

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BasePath is where the employee routes are mounted.
const BasePath = "/api/v1/employee"

const (
	statusOK     = "Successfully processed request."
	statusFailed = "Failed to process request."
)

type Employee struct {
	ID     string `json:"id"`
	Name   string `json:"employee_name"`
	Salary int    `json:"employee_salary"`
	Age    int    `json:"employee_age"`
	Title  string `json:"employee_title"`
	Email  string `json:"employee_email"`
}

type createInput struct {
	Name   string `json:"name"`
	Salary *int   `json:"salary"`
	Age    *int   `json:"age"`
	Title  string `json:"title"`
}

type envelope struct {
	Data   any    `json:"data"`
	Status string `json:"status"`
}

type Options struct {
	// RateLimitRatio is the share of requests answered with 429, between 0 and 1.
	RateLimitRatio float64
	// RetryAfter is sent with every 429. Zero omits the header.
	RetryAfter time.Duration
}

type API struct {
	mu        sync.Mutex
	employees []Employee
	failures  []int
	requests  int
	rnd       *rand.Rand

	opts Options
	mux  chi.Router
	log  *zap.Logger
}

func New(opts Options, log *zap.Logger) *API {
	a := &API{
		opts: opts,
		rnd:  rand.New(rand.NewPCG(1, 2)), //nolint:gosec // fixture data
		log:  log,
	}

	r := chi.NewRouter()
	r.Use(a.injectFailures)
	r.Route(BasePath, func(r chi.Router) {
		r.Get("/", a.list)
		r.Post("/", a.create)
		r.Get("/{id}", a.get)
		r.Delete("/{name}", a.deleteByName)
	})

	a.mux = r

	return a
}

func (a *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mux.ServeHTTP(w, r)
}

var (
	firstNames = []string{"Raj", "Anna", "Tom", "Priya", "Marcus", "Lena", "Diego", "Yuki", "Omar", "Sofia"}
	lastNames  = []string{"Patel", "Novak", "Rajan", "Okafor", "Berg", "Silva", "Tanaka", "Haddad", "Kowalski", "Moreau"}
	titles     = []string{"Engineer", "Senior Engineer", "Manager", "Analyst", "Designer", "Director"}
)

// Seed adds n generated employees. The same n always yields the same names and salaries.
func (a *API) Seed(n int) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for i := range n {
		name := firstNames[i%len(firstNames)] + " " + lastNames[(i/len(firstNames))%len(lastNames)]

		a.employees = append(a.employees, newEmployee(
			name,
			30_000+a.rnd.IntN(270_000),
			18+a.rnd.IntN(43),
			titles[a.rnd.IntN(len(titles))],
		))
	}
}

// Add stores e as is, generating an id and email when they are empty.
func (a *API) Add(e Employee) Employee {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}

	if e.Email == "" {
		e.Email = emailFor(e.Name)
	}

	a.mu.Lock()
	a.employees = append(a.employees, e)
	a.mu.Unlock()

	return e
}

// Employees returns a snapshot of the stored employees in insertion order.
func (a *API) Employees() []Employee {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]Employee, len(a.employees))
	copy(out, a.employees)

	return out
}

// FailNext queues statuses returned, one per request, before normal handling resumes.
func (a *API) FailNext(statuses ...int) {
	a.mu.Lock()
	a.failures = append(a.failures, statuses...)
	a.mu.Unlock()
}

// Requests is the number of requests received so far.
func (a *API) Requests() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.requests
}

func (a *API) injectFailures(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a.mu.Lock()
		a.requests++

		status := 0
		switch {
		case len(a.failures) > 0:
			status = a.failures[0]
			a.failures = a.failures[1:]
		case a.opts.RateLimitRatio > 0 && a.rnd.Float64() < a.opts.RateLimitRatio:
			status = http.StatusTooManyRequests
		}
		a.mu.Unlock()

		if status == 0 {
			next.ServeHTTP(w, r)
			return
		}

		a.log.Debug("injected failure", zap.Int("status", status), zap.String("path", r.URL.Path))

		if status == http.StatusTooManyRequests && a.opts.RetryAfter > 0 {
			w.Header().Set("Retry-After", strconv.Itoa(int(a.opts.RetryAfter.Seconds())))
		}

		writeEnvelope(w, status, nil, statusFailed)
	})
}

func (a *API) list(w http.ResponseWriter, _ *http.Request) {
	writeEnvelope(w, http.StatusOK, a.Employees(), statusOK)
}

func (a *API) get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	a.mu.Lock()
	defer a.mu.Unlock()

	for _, e := range a.employees {
		if e.ID == id {
			writeEnvelope(w, http.StatusOK, e, statusOK)
			return
		}
	}

	writeEnvelope(w, http.StatusNotFound, nil, statusFailed)
}

func (a *API) create(w http.ResponseWriter, r *http.Request) {
	var in createInput

	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeEnvelope(w, http.StatusBadRequest, nil, statusFailed)
		return
	}

	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Title) == "" ||
		in.Salary == nil || *in.Salary < 1 || in.Age == nil || *in.Age < 16 || *in.Age > 75 {
		writeEnvelope(w, http.StatusBadRequest, nil, statusFailed)
		return
	}

	created := a.Add(newEmployee(in.Name, *in.Salary, *in.Age, in.Title))

	a.log.Debug("employee created", zap.String("id", created.ID))

	writeEnvelope(w, http.StatusOK, created, statusOK)
}

// deleteByName removes the first employee with the given name.
func (a *API) deleteByName(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	a.mu.Lock()
	defer a.mu.Unlock()

	for i, e := range a.employees {
		if e.Name == name {
			a.employees = append(a.employees[:i], a.employees[i+1:]...)
			writeEnvelope(w, http.StatusOK, true, statusOK)

			return
		}
	}

	writeEnvelope(w, http.StatusNotFound, false, statusFailed)
}

func newEmployee(name string, salary, age int, title string) Employee {
	return Employee{
		ID:     uuid.NewString(),
		Name:   name,
		Salary: salary,
		Age:    age,
		Title:  title,
		Email:  emailFor(name),
	}
}

func emailFor(name string) string {
	return fmt.Sprintf("%s@company.com", strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), " ", ".")))
}

func writeEnvelope(w http.ResponseWriter, status int, data any, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Data: data, Status: message})
}
