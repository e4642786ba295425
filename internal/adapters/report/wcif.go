package report

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/okian/heats/internal/domain/activity"
	"github.com/okian/heats/internal/domain/model"
	"github.com/okian/heats/internal/domain/wcif"
)

var assignmentCodes = map[string]string{
	activity.Competing.String():  wcif.AssignmentCompetitor,
	activity.Judging.String():    wcif.AssignmentJudge,
	activity.Scrambling.String(): wcif.AssignmentScrambler,
}

type groupKey struct {
	schedule int
	code     string
}

// Apply returns a copy of comp with one child activity per group under each
// expanded schedule activity and every placement written to the persons'
// assignments. Groups already present with the same code keep their id and
// lose their previous assignments.
func Apply(comp *wcif.Competition, r *model.Result) (*wcif.Competition, error) {
	doc, err := clone(comp)
	if err != nil {
		return nil, err
	}

	parents := map[int]*wcif.Activity{}
	for _, room := range doc.Rooms() {
		for i := range room.Activities {
			parents[room.Activities[i].ID] = &room.Activities[i]
		}
	}

	next := doc.MaxActivityID()
	groups := map[groupKey]int{}
	replaced := map[int]bool{}
	for i := range r.Activities {
		a := &r.Activities[i]
		key := groupKey{a.ScheduleID, a.Code}
		if _, ok := groups[key]; ok {
			continue
		}
		parent, ok := parents[a.ScheduleID]
		if !ok {
			return nil, fmt.Errorf("%w: %d", ErrUnknownActivity, a.ScheduleID)
		}
		if id, ok := existing(parent, a.Code); ok {
			groups[key] = id
			replaced[id] = true
			continue
		}
		next++
		groups[key] = next
		parent.ChildActivities = append(parent.ChildActivities, wcif.Activity{
			ID:              next,
			Name:            fmt.Sprintf("%s, Group %d", a.Label(), a.Group),
			ActivityCode:    a.Code,
			StartTime:       a.Start,
			EndTime:         a.End,
			ChildActivities: []wcif.Activity{},
			Extensions:      []json.RawMessage{},
		})
	}

	for i := range doc.Persons {
		p := &doc.Persons[i]
		kept := p.Assignments[:0]
		for _, as := range p.Assignments {
			if !replaced[as.ActivityID] {
				kept = append(kept, as)
			}
		}
		p.Assignments = kept
	}

	for i := range r.Activities {
		a := &r.Activities[i]
		id := groups[groupKey{a.ScheduleID, a.Code}]
		for _, who := range a.Assigned {
			p, ok := doc.Person(who.RegistrantID)
			if !ok {
				return nil, fmt.Errorf("%w: registrant %d", ErrUnknownPerson, who.RegistrantID)
			}
			p.Assignments = append(p.Assignments, wcif.Assignment{
				ActivityID:     id,
				AssignmentCode: assignmentCodes[a.Role],
			})
		}
	}
	return doc, nil
}

func existing(parent *wcif.Activity, code string) (int, bool) {
	for _, child := range parent.ChildActivities {
		if child.ActivityCode == code {
			return child.ID, true
		}
	}
	return 0, false
}

func clone(comp *wcif.Competition) (*wcif.Competition, error) {
	var buf bytes.Buffer
	if err := wcif.Encode(&buf, comp); err != nil {
		return nil, err
	}
	return wcif.Decode(&buf)
}
