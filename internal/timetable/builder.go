package timetable

import (
	"fmt"
	"sort"
	"time"

	"github.com/noah-isme/school-timetable-api/internal/models"
)

// Lesson is a subject that needs Hours weekly placements with one teacher.
type Lesson struct {
	SubjectID   string
	SubjectName string
	TeacherID   string
	TeacherName string
	RoomID      *string
	Score       int
	Hours       int
}

// Cell addresses one weekday/lesson position in the weekly grid.
type Cell struct {
	Day  int `json:"day_of_week"`
	Slot int `json:"lesson_number"`
}

// Placement is a lesson unit fixed to a cell.
type Placement struct {
	Cell
	SubjectID   string  `json:"subject_id"`
	SubjectName string  `json:"subject_name"`
	TeacherID   string  `json:"teacher_id"`
	TeacherName string  `json:"teacher_name"`
	RoomID      *string `json:"room_id,omitempty"`
	Score       int     `json:"complexity"`
}

// Grid is an immutable weekly grid of five days by MaxSlots lessons.
type Grid struct {
	maxSlots int
	cells    map[Cell]Placement
}

// NewGrid returns an empty grid.
func NewGrid(maxSlots int) Grid {
	return Grid{maxSlots: maxSlots, cells: map[Cell]Placement{}}
}

// MaxSlots is the number of lessons per day the grid holds.
func (g Grid) MaxSlots() int { return g.maxSlots }

// At returns the placement in a cell.
func (g Grid) At(c Cell) (Placement, bool) {
	p, ok := g.cells[c]
	return p, ok
}

// SubjectCount counts placements of subjectID on day.
func (g Grid) SubjectCount(day int, subjectID string) int {
	n := 0
	for slot := 1; slot <= g.maxSlots; slot++ {
		if p, ok := g.cells[Cell{Day: day, Slot: slot}]; ok && p.SubjectID == subjectID {
			n++
		}
	}
	return n
}

// With returns a copy of g holding p. The receiver is left untouched.
func (g Grid) With(p Placement) Grid {
	cells := make(map[Cell]Placement, len(g.cells)+1)
	for k, v := range g.cells {
		cells[k] = v
	}
	cells[p.Cell] = p
	return Grid{maxSlots: g.maxSlots, cells: cells}
}

// Placements lists every placement ordered by day then lesson.
func (g Grid) Placements() []Placement {
	out := make([]Placement, 0, len(g.cells))
	for _, p := range g.cells {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Day == out[j].Day {
			return out[i].Slot < out[j].Slot
		}
		return out[i].Day < out[j].Day
	})
	return out
}

// Busy records cells already claimed outside the grid being built: teachers and
// rooms used by other classes of the period, and this class's own kept entries.
type Busy struct {
	teachers map[string]map[Cell]struct{}
	rooms    map[string]map[Cell]struct{}
	class    map[Cell]struct{}
}

// NewBusy indexes occupied cells of other classes.
func NewBusy(occupied []models.Occupancy) *Busy {
	b := &Busy{
		teachers: map[string]map[Cell]struct{}{},
		rooms:    map[string]map[Cell]struct{}{},
		class:    map[Cell]struct{}{},
	}
	for _, o := range occupied {
		cell := Cell{Day: o.DayOfWeek, Slot: o.Lesson}
		mark(b.teachers, o.TeacherID, cell)
		if o.RoomID != nil {
			mark(b.rooms, *o.RoomID, cell)
		}
	}
	return b
}

// BlockClassCell marks a cell the class itself already uses.
func (b *Busy) BlockClassCell(c Cell) {
	b.class[c] = struct{}{}
}

func mark(index map[string]map[Cell]struct{}, id string, c Cell) {
	if index[id] == nil {
		index[id] = map[Cell]struct{}{}
	}
	index[id][c] = struct{}{}
}

func (b *Busy) free(c Cell, teacherID string, roomID *string) bool {
	if b == nil {
		return true
	}
	if _, ok := b.class[c]; ok {
		return false
	}
	if _, ok := b.teachers[teacherID][c]; ok {
		return false
	}
	if roomID != nil {
		if _, ok := b.rooms[*roomID][c]; ok {
			return false
		}
	}
	return true
}

// WeekInput configures one BuildWeek run.
type WeekInput struct {
	MaxSlots int
	Lessons  []Lesson
	Busy     *Busy
	// HardestFirst orders subject groups by descending complexity instead of curriculum order.
	HardestFirst bool
}

// WeekResult is the built grid plus placement diagnostics.
type WeekResult struct {
	Grid     Grid
	Errors   []string
	Warnings []string
}

// Success reports whether every lesson unit was placed.
func (r WeekResult) Success() bool { return len(r.Errors) == 0 }

// BuildWeek spreads every lesson unit over the grid. Each unit first tries its
// preferred lessons on a day the subject is not yet taught; failing that it takes
// the first free cell, accepting a repeat within the day.
func BuildWeek(in WeekInput) WeekResult {
	res := WeekResult{Grid: NewGrid(in.MaxSlots)}
	seen := map[string]struct{}{}
	warn := func(msg string) {
		if _, dup := seen[msg]; dup || msg == "" {
			return
		}
		seen[msg] = struct{}{}
		res.Warnings = append(res.Warnings, msg)
	}

	for _, group := range groupBySubject(in.Lessons, in.HardestFirst) {
		preferred := PreferredSlots(group[0].Score, in.MaxSlots)
		for _, unit := range group {
			if grid, ok := placePreferred(res.Grid, unit, preferred, in.Busy); ok {
				res.Grid = grid
				continue
			}
			grid, cell, ok := placeAnywhere(res.Grid, unit, in.Busy)
			if !ok {
				res.Errors = append(res.Errors, fmt.Sprintf("could not place lesson: %s", unit.SubjectName))
				continue
			}
			res.Grid = grid
			if grid.SubjectCount(cell.Day, unit.SubjectID) > 1 {
				warn(fmt.Sprintf("%s appears more than once on %s", unit.SubjectName, WeekdayName(cell.Day)))
			}
			if unit.Score >= 10 {
				warn(PlacementWarning(unit.SubjectName, unit.Score, cell.Slot))
			}
		}
	}
	return res
}

func placePreferred(g Grid, unit Lesson, preferred []int, busy *Busy) (Grid, bool) {
	for _, slot := range preferred {
		for day := models.FirstWeekday; day <= models.LastWeekday; day++ {
			cell := Cell{Day: day, Slot: slot}
			if _, taken := g.At(cell); taken {
				continue
			}
			if g.SubjectCount(day, unit.SubjectID) > 0 || !busy.free(cell, unit.TeacherID, unit.RoomID) {
				continue
			}
			return g.With(place(cell, unit)), true
		}
	}
	return g, false
}

func placeAnywhere(g Grid, unit Lesson, busy *Busy) (Grid, Cell, bool) {
	for day := models.FirstWeekday; day <= models.LastWeekday; day++ {
		for slot := 1; slot <= g.MaxSlots(); slot++ {
			cell := Cell{Day: day, Slot: slot}
			if _, taken := g.At(cell); taken || !busy.free(cell, unit.TeacherID, unit.RoomID) {
				continue
			}
			return g.With(place(cell, unit)), cell, true
		}
	}
	return g, Cell{}, false
}

func place(cell Cell, unit Lesson) Placement {
	return Placement{
		Cell:        cell,
		SubjectID:   unit.SubjectID,
		SubjectName: unit.SubjectName,
		TeacherID:   unit.TeacherID,
		TeacherName: unit.TeacherName,
		RoomID:      unit.RoomID,
		Score:       unit.Score,
	}
}

// groupBySubject expands lessons into units and groups them by subject in first-seen order.
func groupBySubject(lessons []Lesson, hardestFirst bool) [][]Lesson {
	var order []string
	groups := map[string][]Lesson{}
	for _, l := range lessons {
		if _, ok := groups[l.SubjectID]; !ok {
			order = append(order, l.SubjectID)
		}
		for i := 0; i < l.Hours; i++ {
			groups[l.SubjectID] = append(groups[l.SubjectID], l)
		}
	}
	out := make([][]Lesson, 0, len(order))
	for _, id := range order {
		if len(groups[id]) > 0 {
			out = append(out, groups[id])
		}
	}
	if hardestFirst {
		sort.SliceStable(out, func(i, j int) bool { return out[i][0].Score > out[j][0].Score })
	}
	return out
}

// WeekdayName renders 1..7 as Monday..Sunday.
func WeekdayName(day int) string {
	return time.Weekday(day % 7).String()
}
