// Package grid maps UTC slots into viewer-local (row, column) positions
// and assembles the paged view structure the presentation layer renders.
package grid

import (
	"time"

	"github.com/samber/mo"

	"github.com/whenworks/whenworks/pkg/core/expand"
	"github.com/whenworks/whenworks/pkg/core/model"
)

// Cell is a 1-based grid position. Row counts quarter hours from the
// grid's start hour; column counts visible days. 1-based indices match
// the sparse, placeholder-friendly convention of the rendering layer.
type Cell struct {
	Row    int
	Column int
}

// MapToGrid places a UTC slot on the viewer's grid. The slot is
// converted into the viewer's timezone, its local civil day looked up
// among the visible day keys, and None returned when the day is not on
// the current page.
func MapToGrid(slot time.Time, visibleDayKeys []string, viewerTimezone string, gridStartHour int) (mo.Option[Cell], error) {
	loc, err := time.LoadLocation(viewerTimezone)
	if err != nil {
		return mo.None[Cell](), err
	}

	local := slot.In(loc)
	dayKey := local.Format("2006-01-02")

	column := -1
	for i, key := range visibleDayKeys {
		if key == dayKey {
			column = i
			break
		}
	}
	if column == -1 {
		return mo.None[Cell](), nil
	}

	return mo.Some(Cell{
		Row:    1 + (local.Hour()-gridStartHour)*4 + local.Minute()/model.SlotMinutes,
		Column: 1 + column,
	}), nil
}

// PlacedSlot is a slot identifier with its resolved grid position.
type PlacedSlot struct {
	ID   string
	Cell Cell
}

// Block is a contiguous run of display hours. An expanded range that
// crosses local midnight splits into two blocks, one ending at 23 and
// one starting at 0, so each renders as an unbroken band.
type Block struct {
	StartHour       int
	EndHour         int
	NumQuarterHours int
	Slots           []PlacedSlot
}

// Day is one visible column.
type Day struct {
	Key   string
	Label string
}

// View is everything the grid needs for one page.
type View struct {
	Blocks      []Block
	VisibleDays []Day
	TotalPages  int
	Page        int
	Empty       bool
}

// BuildView flattens the expanded day groups into the viewer's
// timezone, splits the display hours into blocks, pages the days, and
// places every visible slot. An expansion with no slots yields an
// Empty view rather than an error so callers can show an empty state.
func BuildView(groups []expand.DayGroup, viewerTimezone string, page, daysPerPage int) (*View, error) {
	loc, err := time.LoadLocation(viewerTimezone)
	if err != nil {
		return nil, err
	}
	if daysPerPage < 1 {
		daysPerPage = 1
	}

	var flat []time.Time
	for _, g := range groups {
		flat = append(flat, g.Slots...)
	}
	if len(flat) == 0 {
		return &View{TotalPages: 1, Empty: true}, nil
	}

	// Group by viewer-local civil day, preserving first-seen order.
	type localDay struct {
		day   Day
		slots []time.Time
	}
	var days []*localDay
	byKey := make(map[string]*localDay)
	for _, slot := range flat {
		local := slot.In(loc)
		key := local.Format("2006-01-02")
		d, ok := byKey[key]
		if !ok {
			d = &localDay{day: Day{Key: key, Label: local.Format("Mon Jan 02")}}
			byKey[key] = d
			days = append(days, d)
		}
		d.slots = append(d.slots, slot)
	}

	totalPages := (len(days) + daysPerPage - 1) / daysPerPage
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 0 {
		page = 0
	}
	if page > totalPages-1 {
		page = totalPages - 1
	}

	start := page * daysPerPage
	end := start + daysPerPage
	if end > len(days) {
		end = len(days)
	}
	visible := days[start:end]

	visibleDays := make([]Day, len(visible))
	for i, d := range visible {
		visibleDays[i] = d.day
	}

	blocks := hourBlocks(flat[0].In(loc), flat[len(flat)-1].In(loc))
	for bi := range blocks {
		b := &blocks[bi]
		b.NumQuarterHours = (b.EndHour - b.StartHour + 1) * 4
		for di, d := range visible {
			for _, slot := range d.slots {
				local := slot.In(loc)
				h := local.Hour()
				if h < b.StartHour || h > b.EndHour {
					continue
				}
				b.Slots = append(b.Slots, PlacedSlot{
					ID: model.SlotID(slot),
					Cell: Cell{
						Row:    1 + (h-b.StartHour)*4 + local.Minute()/model.SlotMinutes,
						Column: 1 + di,
					},
				})
			}
		}
	}

	return &View{
		Blocks:      blocks,
		VisibleDays: visibleDays,
		TotalPages:  totalPages,
		Page:        page,
	}, nil
}

// hourBlocks derives the display hour bands from the first and last
// local slot. A last hour below the first means the range runs
// overnight and splits at midnight.
func hourBlocks(first, last time.Time) []Block {
	startHour, endHour := first.Hour(), last.Hour()
	if endHour < startHour {
		return []Block{
			{StartHour: 0, EndHour: endHour},
			{StartHour: startHour, EndHour: 23},
		}
	}
	return []Block{{StartHour: startHour, EndHour: endHour}}
}
