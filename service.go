package staffgate

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const (
	opSearchByName  = "search_by_name"
	opHighestSalary = "highest_salary"
	opTopEarners    = "top_earners"
	opDeleteByID    = "delete_by_id"
)

// Service is the employee façade. Every call fetches fresh data from the upstream;
// nothing is cached between calls.
type Service struct {
	upstream Upstream
	retrier  *Retrier
	log      *zap.Logger
}

func NewService(upstream Upstream, retrier *Retrier, log *zap.Logger) *Service {
	return &Service{
		upstream: upstream,
		retrier:  retrier,
		log:      log,
	}
}

// ListEmployees returns every upstream employee. The result is never nil.
func (s *Service) ListEmployees(ctx context.Context) ([]Employee, error) {
	env, err := Do(ctx, s.retrier, opListAll, s.upstream.ListAll)
	if err != nil {
		return nil, err
	}

	employees := NormalizeList(env)

	s.log.Info("fetched employees", zap.Int("count", len(employees)))

	return employees, nil
}

// SearchByName returns the employees whose name contains query, ignoring case.
func (s *Service) SearchByName(ctx context.Context, query string) ([]Employee, error) {
	if strings.TrimSpace(query) == "" {
		s.log.Warn("search rejected, blank search string")
		return nil, invalidInput(opSearchByName, msgInvalidSearchString)
	}

	employees, err := s.ListEmployees(ctx)
	if err != nil {
		return nil, err
	}

	matched := SearchByName(employees, query)

	s.log.Info("search completed",
		zap.String("query", query),
		zap.Int("matched", len(matched)),
		zap.Int("total", len(employees)),
	)

	return matched, nil
}

func (s *Service) GetEmployeeByID(ctx context.Context, id string) (Employee, error) {
	if strings.TrimSpace(id) == "" {
		s.log.Warn("lookup rejected, blank employee id")
		return Employee{}, invalidInput(opGetByID, msgInvalidEmployeeID)
	}

	env, err := Do(ctx, s.retrier, opGetByID, func(ctx context.Context) (*Envelope[*RawEmployee], error) {
		return s.upstream.GetByID(ctx, id)
	})
	if err != nil {
		return Employee{}, err
	}

	employee, err := NormalizeOne(opGetByID, env)
	if err != nil {
		s.log.Error("upstream returned no data for employee", zap.String("id", id))
		return Employee{}, err
	}

	return employee, nil
}

func (s *Service) HighestSalary(ctx context.Context) (int, error) {
	employees, err := s.ListEmployees(ctx)
	if err != nil {
		return 0, err
	}

	highest, err := HighestSalary(employees)
	if err != nil {
		s.log.Warn("no salary data available", zap.Int("employees", len(employees)))
		return 0, err
	}

	return highest, nil
}

// TopTenHighestEarningNames returns up to ten names ordered by salary, highest first.
func (s *Service) TopTenHighestEarningNames(ctx context.Context) ([]string, error) {
	employees, err := s.ListEmployees(ctx)
	if err != nil {
		return nil, err
	}

	names, err := TopEarners(employees, topEarnersLimit)
	if err != nil {
		s.log.Warn("no employee data available for top earners")
		return nil, err
	}

	return names, nil
}

func (s *Service) CreateEmployee(ctx context.Context, input CreateEmployeeInput) (Employee, error) {
	if fields := ValidateCreateEmployeeInput(input); fields != nil {
		s.log.Warn("create rejected, invalid input", zap.Any("fields", fields))

		return Employee{}, &Error{
			Kind:    KindInvalidInput,
			Op:      opCreate,
			Message: msgValidationFailed,
			Fields:  fields,
		}
	}

	env, err := Do(ctx, s.retrier, opCreate, func(ctx context.Context) (*Envelope[*RawEmployee], error) {
		return s.upstream.Create(ctx, input)
	})
	if err != nil {
		return Employee{}, err
	}

	employee, err := NormalizeOne(opCreate, env)
	if err != nil {
		s.log.Error("upstream returned no data for created employee", zap.String("name", input.Name))
		return Employee{}, err
	}

	s.log.Info("employee created", zap.String("id", employee.ID), zap.String("name", employee.Name))

	return employee, nil
}

// DeleteEmployeeByID resolves id to a name and deletes by that name, since the upstream
// keys deletion by name. It returns the deleted employee's name.
func (s *Service) DeleteEmployeeByID(ctx context.Context, id string) (string, error) {
	if strings.TrimSpace(id) == "" {
		s.log.Warn("delete rejected, blank employee id")
		return "", invalidInput(opDeleteByID, msgInvalidEmployeeID)
	}

	employee, err := s.GetEmployeeByID(ctx, id)
	if err != nil {
		return "", err
	}

	// A blank name would address the collection itself upstream.
	if strings.TrimSpace(employee.Name) == "" {
		s.log.Error("delete aborted, resolved employee has no name", zap.String("id", id))

		return "", &Error{
			Kind:    KindUnknown,
			Op:      opDeleteByID,
			Message: msgUnexpected,
			Err:     fmt.Errorf("employee %q has no name", id),
		}
	}

	_, err = Do(ctx, s.retrier, opDeleteByName, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.upstream.DeleteByName(ctx, employee.Name)
	})
	if err != nil {
		return "", err
	}

	s.log.Info("employee deleted", zap.String("id", id), zap.String("name", employee.Name))

	return employee.Name, nil
}
