package repositories

import (
	"strings"

	"gorm.io/gorm"

	"bookstore/internal/models/request_models"
)

// Languages probed on jsonb text fields such as product titles.
var searchLanguages = []string{"en", "ru", "kk"}

type SearchField struct {
	Column       string
	Multilingual bool // jsonb {"en": .., "ru": .., "kk": ..}
}

// QueryFilter is the search and sort part of a list request. Paging is
// applied by the caller.
type QueryFilter struct {
	Conditions []string
	Args       []interface{}
	Sort       string
}

// BuildQuery turns the description / order / orderColumn parameters into a
// filter. sortable maps public column names to SQL columns; anything not
// listed is ignored.
func BuildQuery(params request_models.ListQuery, searchable []SearchField, sortable map[string]string) QueryFilter {
	var f QueryFilter

	term := strings.TrimSpace(params.Description)
	if term != "" && len(searchable) > 0 {
		pattern := "%" + escapeLike(term) + "%"
		for _, field := range searchable {
			if field.Multilingual {
				for _, lang := range searchLanguages {
					f.Conditions = append(f.Conditions, field.Column+"->>'"+lang+"' ILIKE ?")
					f.Args = append(f.Args, pattern)
				}
				continue
			}
			f.Conditions = append(f.Conditions, field.Column+" ILIKE ?")
			f.Args = append(f.Args, pattern)
		}
	}

	if params.OrderColumn != "" {
		if column, ok := sortable[params.OrderColumn]; ok {
			direction := "DESC"
			if strings.EqualFold(params.Order, "asc") {
				direction = "ASC"
			}
			f.Sort = column + " " + direction
		}
	}

	return f
}

func (f QueryFilter) Where() string {
	if len(f.Conditions) == 0 {
		return ""
	}
	return "(" + strings.Join(f.Conditions, " OR ") + ")"
}

// FilterScope applies only the search conditions, for count queries.
func (f QueryFilter) FilterScope() func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if where := f.Where(); where != "" {
			db = db.Where(where, f.Args...)
		}
		return db
	}
}

// Scope applies the search conditions and the sort.
func (f QueryFilter) Scope() func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = f.FilterScope()(db)
		if f.Sort != "" {
			db = db.Order(f.Sort)
		}
		return db
	}
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
