package staffgate_test

import (
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/starwalkn/staffgate"
)

func employee(name string, salary int) staffgate.Employee {
	return staffgate.Employee{ID: name, Name: name, Salary: &salary}
}

func names(employees []staffgate.Employee) []string {
	out := make([]string, 0, len(employees))
	for _, e := range employees {
		out = append(out, e.Name)
	}

	return out
}

var _ = Describe("SearchByName", func() {
	employees := []staffgate.Employee{
		employee("Raj Patel", 100),
		employee("Anna Berg", 200),
		employee("Tom Rajan", 300),
		employee("RAJESH", 400),
	}

	It("matches substrings ignoring case and keeps order", func() {
		Expect(names(staffgate.SearchByName(employees, "raj"))).
			To(Equal([]string{"Raj Patel", "Tom Rajan", "RAJESH"}))
	})

	It("returns an empty slice when nothing matches", func() {
		got := staffgate.SearchByName(employees, "zed")
		Expect(got).NotTo(BeNil())
		Expect(got).To(BeEmpty())
	})

	It("returns an empty slice for no employees", func() {
		Expect(staffgate.SearchByName(nil, "raj")).To(BeEmpty())
	})
})

var _ = Describe("HighestSalary", func() {
	It("returns the maximum salary", func() {
		got, err := staffgate.HighestSalary([]staffgate.Employee{
			employee("A", 300), employee("B", 900), employee("C", 100),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(Equal(900))
	})

	It("skips employees with unknown salary", func() {
		got, err := staffgate.HighestSalary([]staffgate.Employee{
			{Name: "nobody"}, employee("A", 50),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(Equal(50))
	})

	It("fails with no data for an empty list", func() {
		_, err := staffgate.HighestSalary(nil)
		Expect(staffgate.KindOf(err)).To(Equal(staffgate.KindNoData))
	})

	It("fails with no data when no salary is known", func() {
		_, err := staffgate.HighestSalary([]staffgate.Employee{{Name: "A"}, {Name: "B"}})
		Expect(staffgate.KindOf(err)).To(Equal(staffgate.KindNoData))
	})
})

var _ = Describe("TopEarners", func() {
	It("returns the ten best paid names out of fifteen, highest first", func() {
		employees := make([]staffgate.Employee, 0, 15)
		for i := 1; i <= 15; i++ {
			employees = append(employees, employee(fmt.Sprintf("E%d", i), i*1000))
		}

		got, err := staffgate.TopEarners(employees, 10)
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(Equal([]string{"E15", "E14", "E13", "E12", "E11", "E10", "E9", "E8", "E7", "E6"}))
	})

	It("returns every name when fewer than n employees exist", func() {
		got, err := staffgate.TopEarners([]staffgate.Employee{employee("A", 1), employee("B", 2)}, 10)
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(Equal([]string{"B", "A"}))
	})

	It("keeps upstream order for equal salaries", func() {
		got, err := staffgate.TopEarners([]staffgate.Employee{
			employee("first", 500), employee("second", 500), employee("top", 900),
		}, 10)
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(Equal([]string{"top", "first", "second"}))
	})

	It("skips employees with unknown salary", func() {
		got, err := staffgate.TopEarners([]staffgate.Employee{{Name: "unknown"}, employee("A", 1)}, 10)
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(Equal([]string{"A"}))
	})

	It("fails with no data for an empty list", func() {
		_, err := staffgate.TopEarners(nil, 10)
		Expect(staffgate.KindOf(err)).To(Equal(staffgate.KindNoData))
	})
})
