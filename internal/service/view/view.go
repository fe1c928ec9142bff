package view

import (
	"strings"

	"uelco_jobs/internal/model"
)

// CategoryView is one tab's worth of data: the category's records after the
// search filter, split into active and completed.
type CategoryView struct {
	Category  model.Category `json:"category"`
	Search    string         `json:"search"`
	Active    []model.Record `json:"active"`
	Completed []model.Record `json:"completed"`
}

// Build filters records down to the category, applies the free-text search,
// and partitions by the completed flag. Pure function over a snapshot; the
// search string is the only state the caller carries.
func Build(records []model.Record, category model.Category, search string) CategoryView {
	v := CategoryView{
		Category:  category,
		Search:    search,
		Active:    []model.Record{},
		Completed: []model.Record{},
	}
	for i := range records {
		if records[i].Category != category {
			continue
		}
		if !Matches(&records[i], search) {
			continue
		}
		if records[i].Completed {
			v.Completed = append(v.Completed, records[i])
		} else {
			v.Active = append(v.Active, records[i])
		}
	}
	return v
}

// Matches reports whether the search term appears, case-insensitively, as a
// substring of any column's stringified value. An empty term matches all.
func Matches(r *model.Record, search string) bool {
	search = strings.ToLower(strings.TrimSpace(search))
	if search == "" {
		return true
	}
	for _, col := range model.Columns() {
		if strings.Contains(strings.ToLower(r.Value(col)), search) {
			return true
		}
	}
	return false
}
