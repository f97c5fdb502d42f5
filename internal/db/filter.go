package db

import (
	"fmt"
	"strings"
	"time"
)

// Predicate is one typed filter condition over the happy-hour join. Each
// variant reduces to a SQL fragment with fresh positional placeholders, so
// user input only ever travels as query parameters.
type Predicate interface {
	// appendTo adds the predicate's SQL fragment and arguments to the
	// growing conjunction. next is the first free placeholder index; the
	// returned value is the next free index after this predicate.
	appendTo(conds *[]string, args *[]any, next int) int
}

// TagEquals matches happy hours whose tag set contains the given tag.
type TagEquals struct {
	Tag string
}

func (p TagEquals) appendTo(conds *[]string, args *[]any, next int) int {
	*conds = append(*conds, fmt.Sprintf("$%d = ANY(hh.tags)", next))
	*args = append(*args, p.Tag)
	return next + 1
}

// DayEquals matches recurring happy hours on the given weekday (0=Sunday).
type DayEquals struct {
	Day int
}

func (p DayEquals) appendTo(conds *[]string, args *[]any, next int) int {
	*conds = append(*conds, fmt.Sprintf("hh.day_of_week = $%d", next))
	*args = append(*args, p.Day)
	return next + 1
}

// DateOrDay matches one-off happy hours on the given calendar date as well as
// recurring ones on that date's weekday. One input date yields two parameters
// inside a single OR group.
type DateOrDay struct {
	Date time.Time
}

func (p DateOrDay) appendTo(conds *[]string, args *[]any, next int) int {
	*conds = append(*conds, fmt.Sprintf("(hh.specific_date = $%d OR hh.day_of_week = $%d)", next, next+1))
	*args = append(*args, p.Date.Format("2006-01-02"), int(p.Date.Weekday()))
	return next + 2
}

// RestaurantEquals matches happy hours owned by the given restaurant.
type RestaurantEquals struct {
	RestaurantID int64
}

func (p RestaurantEquals) appendTo(conds *[]string, args *[]any, next int) int {
	*conds = append(*conds, fmt.Sprintf("hh.restaurant_id = $%d", next))
	*args = append(*args, p.RestaurantID)
	return next + 1
}

// Filters holds the optional browse filters. A nil field imposes no
// predicate; there is no implicit defaulting to today.
type Filters struct {
	Tag          string
	Day          *int
	Date         *time.Time
	RestaurantID *int64
}

// predicates reduces the present filters to typed predicates. A day outside
// 0-6 is dropped rather than rejected, degrading to "no day predicate".
func (f Filters) predicates() []Predicate {
	var preds []Predicate
	if f.Tag != "" {
		preds = append(preds, TagEquals{Tag: f.Tag})
	}
	if f.Day != nil && *f.Day >= 0 && *f.Day <= 6 {
		preds = append(preds, DayEquals{Day: *f.Day})
	}
	if f.Date != nil {
		preds = append(preds, DateOrDay{Date: *f.Date})
	}
	if f.RestaurantID != nil {
		preds = append(preds, RestaurantEquals{RestaurantID: *f.RestaurantID})
	}
	return preds
}

// buildWhere reduces predicates to a WHERE clause and its parameter list.
// With no predicates it returns an empty clause.
func buildWhere(preds []Predicate) (string, []any) {
	if len(preds) == 0 {
		return "", nil
	}

	conds := make([]string, 0, len(preds))
	args := make([]any, 0, len(preds))
	next := 1
	for _, p := range preds {
		next = p.appendTo(&conds, &args, next)
	}

	return " WHERE " + strings.Join(conds, " AND "), args
}
