package staffgate

// Employee is the façade's representation of an upstream record.
// A nil Salary, Age, Title or Email means unknown, not zero or empty.
type Employee struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Salary *int    `json:"salary"`
	Age    *int    `json:"age"`
	Title  *string `json:"title"`
	Email  *string `json:"email"`
}

// NormalizeList converts an upstream list response. A nil envelope or nil data yields
// an empty slice, nil records are dropped and the order of the rest is kept.
func NormalizeList(env *Envelope[[]*RawEmployee]) []Employee {
	if env == nil || env.Data == nil {
		return []Employee{}
	}

	employees := make([]Employee, 0, len(env.Data))

	for _, raw := range env.Data {
		if raw == nil {
			continue
		}

		employees = append(employees, normalize(raw))
	}

	return employees
}

// NormalizeOne converts a single-record response. Missing data is an upstream contract
// violation for get-by-id and create, reported as KindUnknown.
func NormalizeOne(op string, env *Envelope[*RawEmployee]) (Employee, error) {
	if env == nil || env.Data == nil {
		return Employee{}, &Error{
			Kind:    KindUnknown,
			Op:      op,
			Message: msgNoData,
		}
	}

	return normalize(env.Data), nil
}

func normalize(raw *RawEmployee) Employee {
	return Employee{
		ID:     raw.ID,
		Name:   deref(raw.Name),
		Salary: raw.Salary,
		Age:    raw.Age,
		Title:  raw.Title,
		Email:  raw.Email,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}

	return *s
}
