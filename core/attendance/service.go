package attendance

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/lmsadmin/core"
	"github.com/trezcool/lmsadmin/core/crud"
	"github.com/trezcool/lmsadmin/core/perm"
)

var nowFunc = time.Now // mockable

type Service struct {
	*crud.Entity[Attendance]
	students crud.Checker
	subjects crud.Checker
}

var _ crud.Service[Attendance, NewAttendance, UpdateAttendance] = (*Service)(nil) // interface compliance check

func NewService(store crud.Store[Attendance], students, subjects crud.Checker, validate *core.Validator) *Service {
	e := &crud.Entity[Attendance]{
		Name:         perm.Attendance,
		Label:        "Attendance",
		Store:        store,
		Validator:    validate,
		SearchFields: []string{"student_name", "subject_name", "remarks"},
		SortFields:   []string{"student_name", "subject_name", "date", "status", "created_at"},
		FilterFields: []string{"student_id", "subject_id", "status"},
		DateField:    "date",
		DefaultOrder: []core.DBOrdering{{Field: "date", Ascending: false}, {Field: "student_name", Ascending: true}},
		OwnerField:   "student_id",
		OptionLabel: func(a Attendance) string {
			return fmt.Sprintf("%s - %s (%s)", a.StudentName, a.SubjectName, a.Date)
		},
	}
	e.SetSchema(NewAttendance{}, UpdateAttendance{})
	return &Service{Entity: e, students: students, subjects: subjects}
}

func (svc *Service) mutation(id string, in NewAttendance) crud.Mutation[Attendance] {
	return crud.Mutation[Attendance]{
		Input: in,
		Refs: []crud.Ref{
			{Field: "student_id", ID: in.StudentID, In: svc.students},
			{Field: "subject_id", ID: in.SubjectID, In: svc.subjects},
		},
		Build: func(a *Attendance) error {
			a.StudentID = in.StudentID
			a.SubjectID = in.SubjectID
			a.Date = in.Date
			a.Status = in.Status
			a.Remarks = in.Remarks
			return nil
		},
		Check: func(ctx context.Context, a Attendance) error {
			_, found, err := svc.find(ctx, a.StudentID, a.SubjectID, a.Date, id)
			if err != nil {
				return err
			}
			if found {
				return core.NewConflictError("attendance for this student, subject and date is already recorded")
			}
			return nil
		},
	}
}

// find returns the record of (student, subject, date), ignoring the row excluded.
func (svc *Service) find(ctx context.Context, studentID, subjectID string, date core.Date, excluded string) (Attendance, bool, error) {
	filters := []crud.Filter{
		crud.Eq("student_id", studentID),
		crud.Eq("subject_id", subjectID),
		crud.Eq("date", date),
	}
	if excluded != "" {
		filters = append(filters, crud.Ne("id", excluded))
	}
	page, err := svc.Store.Query(ctx, crud.Query{Filters: filters, Limit: 1})
	if err != nil {
		return Attendance{}, false, errors.Wrap(err, "finding attendance")
	}
	if len(page.Rows) == 0 {
		return Attendance{}, false, nil
	}
	return page.Rows[0], true, nil
}

func (svc *Service) Create(ctx context.Context, c crud.Caller, na NewAttendance) (Attendance, error) {
	na.Clean()
	return svc.Entity.Create(ctx, c, svc.mutation("", na))
}

func (svc *Service) Update(ctx context.Context, c crud.Caller, id string, ua UpdateAttendance) (Attendance, error) {
	ua.Clean()
	return svc.Entity.Update(ctx, c, id, svc.mutation(id, NewAttendance(ua)))
}

// BulkMark upserts one record per mark. Every mark is validated before the first write,
// but the writes are not transactional: a store failure midway keeps the marks written so far.
func (svc *Service) BulkMark(ctx context.Context, c crud.Caller, bm BulkMark) (BulkResult, error) {
	var res BulkResult
	if err := svc.Authorize(c, perm.Add); err != nil {
		return res, err
	}
	if err := svc.Authorize(c, perm.Edit); err != nil {
		return res, err
	}
	bm.Clean()
	if err := svc.Validator.Struct(bm); err != nil {
		return res, err
	}
	refs := []crud.Ref{{Field: "subject_id", ID: bm.SubjectID, In: svc.subjects}}
	seen := make(map[string]bool, len(bm.Marks))
	for _, m := range bm.Marks {
		if seen[m.StudentID] {
			return res, core.NewConflictError("student %s is marked more than once", m.StudentID)
		}
		seen[m.StudentID] = true
		refs = append(refs, crud.Ref{Field: "student_id", ID: m.StudentID, In: svc.students})
	}
	if err := crud.CheckRefs(ctx, refs...); err != nil {
		return res, err
	}

	for _, m := range bm.Marks {
		existing, found, err := svc.find(ctx, m.StudentID, bm.SubjectID, bm.Date, "")
		if err != nil {
			return res, err
		}
		if found {
			existing.Status = m.Status
			existing.Remarks = m.Remarks
			if _, err := svc.Store.Update(ctx, existing); err != nil {
				return res, errors.Wrap(err, "updating attendance")
			}
			res.Updated++
			continue
		}
		rec := Attendance{
			StudentID: m.StudentID,
			SubjectID: bm.SubjectID,
			Date:      bm.Date,
			Status:    m.Status,
			Remarks:   m.Remarks,
		}
		rec.ID = uuid.NewString()
		rec.CreatedAt = nowFunc().UTC()
		if _, err := svc.Store.Insert(ctx, rec); err != nil {
			return res, errors.Wrap(err, "inserting attendance")
		}
		res.Created++
	}
	return res, nil
}
