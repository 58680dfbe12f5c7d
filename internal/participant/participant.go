// Package participant holds the read-only participant records and the
// category partitioning that splits them into independently matched cohorts.
package participant

import (
	"sort"
	"strings"
)

// Participant is one member of the exchange. ID is the unique key (an email
// address); Family is the exclusion group and Category the partition tag.
type Participant struct {
	ID        string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Family    string `json:"family"`
	Category  string `json:"category"`
}

// DisplayName joins the first and last name, falling back to the ID.
func (p Participant) DisplayName() string {
	name := strings.TrimSpace(p.FirstName + " " + p.LastName)
	if name == "" {
		return p.ID
	}
	return name
}

// Directory indexes participants by ID.
type Directory map[string]Participant

// IDs returns every participant ID in lexicographic order.
func (d Directory) IDs() []string {
	ids := make([]string, 0, len(d))
	for id := range d {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Cohort is the set of participants sharing one category.
type Cohort struct {
	Category string
	Members  []Participant
}

// Len reports the number of members.
func (c Cohort) Len() int {
	return len(c.Members)
}

// IDs returns the member IDs in the cohort's (sorted) member order.
func (c Cohort) IDs() []string {
	ids := make([]string, len(c.Members))
	for i, m := range c.Members {
		ids[i] = m.ID
	}
	return ids
}

// FamilySizes counts members per family.
func (c Cohort) FamilySizes() map[string]int {
	sizes := make(map[string]int)
	for _, m := range c.Members {
		sizes[m.Family]++
	}
	return sizes
}

// Cohorts maps a category to its cohort.
type Cohorts map[string]Cohort

// Categories returns the category tags in lexicographic order.
func (c Cohorts) Categories() []string {
	cats := make([]string, 0, len(c))
	for cat := range c {
		cats = append(cats, cat)
	}
	sort.Strings(cats)
	return cats
}

// Partition groups the directory by category. Members of each cohort are
// sorted by ID so the result does not depend on map iteration order. An
// empty directory yields zero cohorts.
func Partition(dir Directory) Cohorts {
	cohorts := make(Cohorts)
	for _, id := range dir.IDs() {
		p := dir[id]
		c := cohorts[p.Category]
		c.Category = p.Category
		c.Members = append(c.Members, p)
		cohorts[p.Category] = c
	}
	return cohorts
}
