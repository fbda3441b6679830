package catalog

import (
	"time"

	"schoolbook/pkg/model"
)

// Builtin returns the sample school: two parents with three children, three
// teachers and an administrator, with an Open Day a week after base, the
// parent-teacher meetings a fortnight after and a science fair three weeks after.
func Builtin(base time.Time, loc *time.Location) (*Catalog, error) {
	today := StartOfDay(base, loc)
	openDay := today.AddDate(0, 0, 7)
	meetings := today.AddDate(0, 0, 14)
	scienceFair := today.AddDate(0, 0, 21)

	children := []model.Child{
		{ID: "child1", Name: "Alex Smith", ClassID: "classA"},
		{ID: "child2", Name: "Jamie Smith", ClassID: "classC"},
		{ID: "child3", Name: "Ben Johnson", ClassID: "classB"},
	}

	users := []model.User{
		{ID: "parent1", Name: "John Smith", Email: "john.smith@example.com", Role: model.RoleParent, ChildIDs: []string{"child1", "child2"}},
		{ID: "parent2", Name: "Emily Johnson", Email: "emily.j@example.com", Role: model.RoleParent, ChildIDs: []string{"child3"}},
		{ID: "teacher1", Name: "Mrs. Davis", Email: "davis@school.com", Role: model.RoleTeacher, ClassID: "classA"},
		{ID: "teacher2", Name: "Mr. Wilson", Email: "wilson@school.com", Role: model.RoleTeacher, ClassID: "classB"},
		{ID: "teacher3", Name: "Ms. Taylor", Email: "taylor@school.com", Role: model.RoleTeacher, ClassID: "classC"},
		{ID: "admin1", Name: "Principal Thompson", Email: "principal@school.com", Role: model.RoleAdmin},
	}

	events := []model.Event{
		{
			ID:          "event1",
			Title:       "Parent-Teacher Meetings",
			Description: "Discuss your child's progress with their teachers.",
			Date:        meetings,
			Type:        model.EventTypeParentTeacherMeeting,
			Slots:       GenerateSlots(meetings, []string{"teacher1", "teacher2", "teacher3"}, 9, 17, 30*time.Minute, loc),
		},
		{
			ID:          "event2",
			Title:       "Annual School Open Day",
			Description: "Explore our campus, meet the staff, and see student work.",
			Date:        openDay,
			Type:        model.EventTypeOpenDay,
			Slots:       GenerateSlots(openDay, []string{"teacher1", "teacher2"}, 10, 15, 60*time.Minute, loc),
		},
		{
			ID:          "event3",
			Title:       "Science Fair Showcase",
			Description: "A showcase of our students' innovative science projects.",
			Date:        scienceFair,
			Type:        model.EventTypeSpecialActivity,
			Slots:       GenerateSlots(scienceFair, []string{"teacher3"}, 11, 14, 45*time.Minute, loc),
		},
	}

	seeds := []model.Booking{
		{
			ID:        "booking1",
			EventID:   "event1",
			ParentID:  "parent1",
			ChildID:   "child1",
			TeacherID: "teacher1",
			StartTime: at(meetings, 10, 30),
			Status:    model.BookingStatusConfirmed,
			CreatedAt: today,
		},
		{
			ID:        "booking2",
			EventID:   "event1",
			ParentID:  "parent2",
			ChildID:   "child3",
			TeacherID: "teacher2",
			StartTime: at(meetings, 14, 0),
			Status:    model.BookingStatusConfirmed,
			CreatedAt: today,
		},
	}

	return New(users, children, events, seeds)
}
