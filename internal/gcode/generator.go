// Package gcode writes CNC cutting programs for strip layouts and parses
// programs back into moves for inspection.
//
// Every part is cut along its rectangular perimeter, offset outwards by the
// tool radius, in as many passes as CutDepth / PassDepth requires. The last
// pass can leave holding tabs, and passes can start and end with tangent
// arcs.
package gcode

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/piwi3910/packbench/internal/model"
)

// Part is one rectangle of a layout.
type Part struct {
	Label         string
	X, Y          float64
	Width, Height float64
}

// Layout is a strip section of Width x Height holding Parts.
type Layout struct {
	Title  string
	Width  float64
	Height float64
	Parts  []Part
}

// Efficiency returns the part area as a percentage of the layout area.
func (l Layout) Efficiency() float64 {
	if l.Width <= 0 || l.Height <= 0 {
		return 0
	}
	area := 0.0
	for _, p := range l.Parts {
		area += p.Width * p.Height
	}
	return area / (l.Width * l.Height) * 100
}

// LayoutOf converts a packing into a layout. Parts are ordered for cutting:
// from the bottom of the strip upwards, left to right within a row.
func LayoutOf(title string, out *model.Output, label func(i int) string) Layout {
	parts := make([]Part, len(out.Placements))
	for i, p := range out.Placements {
		it := out.Instance.Items[i]
		parts[i] = Part{
			Label:  label(i),
			X:      float64(p.X),
			Y:      float64(p.Y),
			Width:  float64(it.Width),
			Height: float64(it.Height),
		}
	}
	sort.SliceStable(parts, func(i, j int) bool {
		if parts[i].Y != parts[j].Y {
			return parts[i].Y < parts[j].Y
		}
		return parts[i].X < parts[j].X
	})
	return Layout{
		Title:  title,
		Width:  float64(out.Instance.StripWidth),
		Height: float64(out.Objective()),
		Parts:  parts,
	}
}

// Validate rejects settings that cannot produce a program.
func Validate(s model.CutSettings) error {
	var errs []error
	if s.ToolDiameter < 0 {
		errs = append(errs, fmt.Errorf("tool diameter must not be negative, got %g", s.ToolDiameter))
	}
	if s.FeedRate <= 0 || s.PlungeRate <= 0 {
		errs = append(errs, fmt.Errorf("feed and plunge rates must be positive, got %g and %g", s.FeedRate, s.PlungeRate))
	}
	if s.CutDepth <= 0 || s.PassDepth <= 0 {
		errs = append(errs, fmt.Errorf("cut and pass depths must be positive, got %g and %g", s.CutDepth, s.PassDepth))
	}
	if s.SafeZ <= 0 {
		errs = append(errs, fmt.Errorf("safe z must be above the material, got %g", s.SafeZ))
	}
	if s.TabsPerSide < 0 || s.TabWidth < 0 || s.TabHeight < 0 {
		errs = append(errs, errors.New("tab settings must not be negative"))
	}
	if s.LeadInRadius < 0 || s.LeadOutRadius < 0 {
		errs = append(errs, errors.New("lead radii must not be negative"))
	}
	return errors.Join(errs...)
}

// Generator produces cutting programs.
type Generator struct {
	Settings model.CutSettings
	profile  Profile
}

// New creates a generator for the settings and their controller profile.
func New(settings model.CutSettings) (*Generator, error) {
	if err := Validate(settings); err != nil {
		return nil, err
	}
	p, err := GetProfile(settings.Profile)
	if err != nil {
		return nil, err
	}
	return &Generator{Settings: settings, profile: p}, nil
}

// Passes returns the number of depth passes per part.
func (g *Generator) Passes() int {
	return int(math.Ceil(g.Settings.CutDepth/g.Settings.PassDepth - 1e-9))
}

// Generate writes the program cutting every part of l.
func (g *Generator) Generate(l Layout) string {
	w := &program{profile: g.profile}
	g.writeHeader(w, l)
	for i, part := range l.Parts {
		g.writePart(w, i+1, part)
	}
	g.writeFooter(w)
	return w.String()
}

func (g *Generator) writeHeader(w *program, l Layout) {
	s := g.Settings
	w.comment("packbench cutting program: " + l.Title)
	w.comment(fmt.Sprintf("Strip %s x %s, %d parts, efficiency %.1f%%", w.num(l.Width), w.num(l.Height), len(l.Parts), l.Efficiency()))
	w.comment(fmt.Sprintf("Tool %s, feed %s, plunge %s", w.num(s.ToolDiameter), w.num(s.FeedRate), w.num(s.PlungeRate)))
	w.comment(fmt.Sprintf("Depth %s in %d passes", w.num(s.CutDepth), g.Passes()))
	w.comment("Profile " + g.profile.Name)
	w.blank()

	for _, code := range g.profile.StartCode {
		w.line(code)
	}
	w.rapidZ(s.SafeZ)
	if g.profile.SpindleStart != "" {
		w.line(fmt.Sprintf(g.profile.SpindleStart, s.SpindleSpeed))
	}
	w.rapidXY(0, 0)
	w.blank()
}

func (g *Generator) writeFooter(w *program) {
	w.comment("End of program")
	if g.profile.SpindleStop != "" {
		w.line(g.profile.SpindleStop)
	}
	for _, code := range g.profile.EndCode {
		w.line(strings.ReplaceAll(code, "[SafeZ]", w.num(g.Settings.SafeZ)))
	}
}

// corner is a point of the tool path.
type corner struct{ x, y float64 }

// perimeter returns the tool path around part starting and ending at its
// lower left corner: clockwise when climb milling, counter-clockwise
// otherwise.
func (g *Generator) perimeter(part Part) []corner {
	r := g.Settings.ToolDiameter / 2
	x0, y0 := part.X-r, part.Y-r
	x1, y1 := part.X+part.Width+r, part.Y+part.Height+r
	if g.Settings.UseClimb {
		return []corner{{x0, y0}, {x0, y1}, {x1, y1}, {x1, y0}, {x0, y0}}
	}
	return []corner{{x0, y0}, {x1, y0}, {x1, y1}, {x0, y1}, {x0, y0}}
}

func (g *Generator) writePart(w *program, n int, part Part) {
	s := g.Settings
	path := g.perimeter(part)
	start := path[0]
	passes := g.Passes()

	w.comment(fmt.Sprintf("Part %d: %s (%s x %s)", n, part.Label, w.num(part.Width), w.num(part.Height)))
	for pass := 1; pass <= passes; pass++ {
		depth := math.Min(float64(pass)*s.PassDepth, s.CutDepth)
		w.comment(fmt.Sprintf("Pass %d/%d, depth %s", pass, passes, w.num(depth)))

		if s.LeadInRadius > 0 {
			g.writeLeadIn(w, start, depth)
		} else {
			w.rapidXY(start.x, start.y)
			w.feedZ(-depth, s.PlungeRate)
		}

		tabs := pass == passes && s.TabsPerSide > 0 && s.TabWidth > 0
		for i := 1; i < len(path); i++ {
			if tabs {
				g.writeEdgeWithTabs(w, path[i-1], path[i], depth)
			} else {
				w.feedXY(path[i].x, path[i].y, s.FeedRate)
			}
		}

		if s.LeadOutRadius > 0 {
			g.writeLeadOut(w, start)
		}
		w.rapidZ(s.SafeZ)
	}
	w.blank()
}

// writeLeadIn plunges outside the part, below and left of start, and joins
// the first edge with a quarter arc tangent to it.
func (g *Generator) writeLeadIn(w *program, start corner, depth float64) {
	r := g.Settings.LeadInRadius
	w.comment("Lead-in")
	w.rapidXY(start.x-r, start.y-r)
	w.feedZ(-depth, g.Settings.PlungeRate)
	if g.Settings.UseClimb {
		// first edge runs up, arc centre left of start
		w.arc("G3", start.x, start.y, 0, r, g.Settings.FeedRate)
		return
	}
	// first edge runs right, arc centre below start
	w.arc("G2", start.x, start.y, r, 0, g.Settings.FeedRate)
}

// writeLeadOut leaves start along the direction of the last edge with a
// quarter arc curving away from the part.
func (g *Generator) writeLeadOut(w *program, start corner) {
	r := g.Settings.LeadOutRadius
	w.comment("Lead-out")
	if g.Settings.UseClimb {
		w.arc("G3", start.x-r, start.y-r, 0, -r, g.Settings.FeedRate)
		return
	}
	w.arc("G2", start.x-r, start.y-r, -r, 0, g.Settings.FeedRate)
}

// writeEdgeWithTabs cuts from a to b, lifting to leave TabsPerSide evenly
// spaced tabs of TabWidth standing TabHeight above the cut bottom.
func (g *Generator) writeEdgeWithTabs(w *program, a, b corner, depth float64) {
	s := g.Settings
	dx, dy := b.x-a.x, b.y-a.y
	length := math.Hypot(dx, dy)
	spacing := length / float64(s.TabsPerSide+1)
	if length < 1e-9 || s.TabWidth >= spacing {
		w.feedXY(b.x, b.y, s.FeedRate)
		return
	}
	ux, uy := dx/length, dy/length
	tabDepth := math.Max(depth-s.TabHeight, 0)

	for t := 1; t <= s.TabsPerSide; t++ {
		mid := spacing * float64(t)
		from, to := mid-s.TabWidth/2, mid+s.TabWidth/2
		w.feedXY(a.x+ux*from, a.y+uy*from, s.FeedRate)
		w.feedZ(-tabDepth, s.PlungeRate)
		w.feedXY(a.x+ux*to, a.y+uy*to, s.FeedRate)
		w.feedZ(-depth, s.PlungeRate)
	}
	w.feedXY(b.x, b.y, s.FeedRate)
}

// program accumulates the lines of a program in one profile's dialect.
type program struct {
	b       strings.Builder
	profile Profile
}

func (w *program) String() string { return w.b.String() }

func (w *program) line(s string) {
	w.b.WriteString(s)
	w.b.WriteByte('\n')
}

func (w *program) blank() { w.b.WriteByte('\n') }

func (w *program) comment(text string) {
	w.line(w.profile.CommentPrefix + " " + text + w.profile.CommentSuffix)
}

// num formats v with the profile's decimal places.
func (w *program) num(v float64) string {
	s := fmt.Sprintf("%.*f", w.profile.DecimalPlaces, v)
	if s == "-"+fmt.Sprintf("%.*f", w.profile.DecimalPlaces, 0.0) {
		s = s[1:]
	}
	return s
}

func (w *program) rapidXY(x, y float64) {
	w.line(fmt.Sprintf("%s X%s Y%s", w.profile.RapidMove, w.num(x), w.num(y)))
}

func (w *program) rapidZ(z float64) {
	w.line(fmt.Sprintf("%s Z%s", w.profile.RapidMove, w.num(z)))
}

func (w *program) feedXY(x, y, feed float64) {
	w.line(fmt.Sprintf("%s X%s Y%s F%s", w.profile.FeedMove, w.num(x), w.num(y), w.num(feed)))
}

func (w *program) feedZ(z, feed float64) {
	w.line(fmt.Sprintf("%s Z%s F%s", w.profile.FeedMove, w.num(z), w.num(feed)))
}

// arc writes a G2/G3 move to (x, y) with the centre at offset (i, j) from
// the current position.
func (w *program) arc(cmd string, x, y, i, j, feed float64) {
	w.line(fmt.Sprintf("%s X%s Y%s I%s J%s F%s", cmd, w.num(x), w.num(y), w.num(i), w.num(j), w.num(feed)))
}
