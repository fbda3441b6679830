package sanitizer

import (
	"regexp"
	"strings"

	"schoolbook/pkg/model"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

var reWhitespace = regexp.MustCompile(`\s+`)

func collapseWhitespace(s string) string {
	return reWhitespace.ReplaceAllString(s, " ")
}

func SanitizeName(input string) string {
	p := Pipeline{
		strings.TrimSpace,
		collapseWhitespace,
	}
	return p.Apply(input)
}

func SanitizeID(input string) string {
	return strings.TrimSpace(input)
}

func SanitizeEmail(input string) string {
	p := Pipeline{
		strings.TrimSpace,
		strings.ToLower,
	}
	return p.Apply(input)
}

func SanitizeSlice(values []string, strategy Strategy) []string {
	seen := make(map[string]struct{})
	out := []string{}

	for _, v := range values {
		s := strategy(v)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}

	return out
}

func SanitizeUser(u *model.User) {
	u.ID = SanitizeID(u.ID)
	u.Name = SanitizeName(u.Name)
	u.Email = SanitizeEmail(u.Email)
	u.ClassID = SanitizeID(u.ClassID)
	if len(u.ChildIDs) > 0 {
		u.ChildIDs = SanitizeSlice(u.ChildIDs, SanitizeID)
	}
}

func SanitizeChild(c *model.Child) {
	c.ID = SanitizeID(c.ID)
	c.Name = SanitizeName(c.Name)
	c.ClassID = SanitizeID(c.ClassID)
}

func SanitizeEvent(e *model.Event) {
	e.ID = SanitizeID(e.ID)
	e.Title = SanitizeName(e.Title)
	e.Description = strings.TrimSpace(e.Description)
	for i := range e.Slots {
		e.Slots[i].TeacherID = SanitizeID(e.Slots[i].TeacherID)
	}
}

func SanitizeBookingRequest(req *model.BookingRequest) {
	req.EventID = SanitizeID(req.EventID)
	req.ChildID = SanitizeID(req.ChildID)
	req.TeacherID = SanitizeID(req.TeacherID)
}
