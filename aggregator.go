package staffgate

import (
	"cmp"
	"slices"
	"strings"
)

// topEarnersLimit is the size of the top earners view.
const topEarnersLimit = 10

// SearchByName returns the employees whose name contains query, ignoring case.
// Upstream order is kept. An empty result is not an error.
func SearchByName(employees []Employee, query string) []Employee {
	needle := strings.ToLower(query)
	matched := make([]Employee, 0)

	for _, e := range employees {
		if strings.Contains(strings.ToLower(e.Name), needle) {
			matched = append(matched, e)
		}
	}

	return matched
}

// HighestSalary returns the maximum known salary. It fails with KindNoData when no
// employee has a salary, including when employees is empty.
func HighestSalary(employees []Employee) (int, error) {
	var (
		highest int
		found   bool
	)

	for _, e := range employees {
		if e.Salary == nil {
			continue
		}

		if !found || *e.Salary > highest {
			highest = *e.Salary
			found = true
		}
	}

	if !found {
		return 0, noData(opHighestSalary)
	}

	return highest, nil
}

// TopEarners returns the names of the n best paid employees, highest first.
// Ties keep their upstream order. Employees without a salary are skipped, so the
// result may be shorter than n or empty; only an empty input is KindNoData.
func TopEarners(employees []Employee, n int) ([]string, error) {
	if len(employees) == 0 {
		return nil, noData(opTopEarners)
	}

	paid := make([]Employee, 0, len(employees))
	for _, e := range employees {
		if e.Salary != nil {
			paid = append(paid, e)
		}
	}

	slices.SortStableFunc(paid, func(a, b Employee) int {
		return cmp.Compare(*b.Salary, *a.Salary)
	})

	if len(paid) > n {
		paid = paid[:max(n, 0)]
	}

	names := make([]string, 0, len(paid))
	for _, e := range paid {
		names = append(names, e.Name)
	}

	return names, nil
}
