package staffgate

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestNormalizeList(t *testing.T) {
	env := &Envelope[[]*RawEmployee]{
		Data: []*RawEmployee{rawEmployee("a", "A", 1), nil, rawEmployee("b", "B", 2), nil},
	}

	got := NormalizeList(env)
	if len(got) != 2 {
		t.Fatalf("expected 2 employees, got %d", len(got))
	}

	if got[0].ID != "a" || got[1].ID != "b" {
		t.Errorf("expected order [a b], got [%s %s]", got[0].ID, got[1].ID)
	}
}

func TestNormalizeList_Empty(t *testing.T) {
	for name, env := range map[string]*Envelope[[]*RawEmployee]{
		"nil envelope": nil,
		"nil data":     {Status: "ok"},
		"empty data":   {Data: []*RawEmployee{}},
		"only nulls":   {Data: []*RawEmployee{nil, nil}},
	} {
		got := NormalizeList(env)
		if got == nil || len(got) != 0 {
			t.Errorf("%s: expected empty non-nil slice, got %#v", name, got)
		}
	}
}

func TestNormalizeOne_MapsFields(t *testing.T) {
	raw := &RawEmployee{
		ID:     "id-1",
		Name:   ptr("Raj Patel"),
		Salary: ptr(5000),
		Title:  ptr("Engineer"),
	}

	got, err := NormalizeOne(opGetByID, &Envelope[*RawEmployee]{Data: raw})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.ID != "id-1" || got.Name != "Raj Patel" || got.Title == nil || *got.Title != "Engineer" {
		t.Errorf("unexpected employee: %+v", got)
	}

	if got.Salary == nil || *got.Salary != 5000 {
		t.Errorf("expected salary 5000, got %v", got.Salary)
	}

	if got.Age != nil {
		t.Errorf("expected unknown age, got %d", *got.Age)
	}

	if got.Email != nil {
		t.Errorf("expected unknown email, got %q", *got.Email)
	}
}

func TestNormalizeOne_KeepsNullTitleAndEmail(t *testing.T) {
	got, err := NormalizeOne(opGetByID, &Envelope[*RawEmployee]{Data: &RawEmployee{ID: "7", Name: ptr("Anna Novak")}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	body, err := json.Marshal(got)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	for _, field := range []string{`"title":null`, `"email":null`} {
		if !strings.Contains(string(body), field) {
			t.Errorf("expected %s in %s", field, body)
		}
	}

	got.Title = ptr("")
	got.Email = ptr("")

	body, _ = json.Marshal(got)
	for _, field := range []string{`"title":""`, `"email":""`} {
		if !strings.Contains(string(body), field) {
			t.Errorf("expected %s in %s", field, body)
		}
	}
}

func TestNormalizeOne_NullData(t *testing.T) {
	for name, env := range map[string]*Envelope[*RawEmployee]{
		"nil envelope": nil,
		"nil data":     {Status: "ok"},
	} {
		_, err := NormalizeOne(opGetByID, env)
		if KindOf(err) != KindUnknown {
			t.Errorf("%s: expected unknown, got %v", name, err)
		}
	}
}
