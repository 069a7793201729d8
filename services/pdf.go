package services

import (
	"bytes"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/jung-kurt/gofpdf"
)

type PlanPDF struct {
	TravelerName string
	Trip         TripRequest
	Itinerary    []ItineraryDay
	Packing      []PackingCategory
	// GeneratedAt defaults to the current time.
	GeneratedAt time.Time
}

// PlanPDFFilename is the attachment name for a destination, e.g. roamlist-new-york.pdf.
func PlanPDFFilename(destination string) string {
	slug := strings.Map(func(r rune) rune {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			return unicode.ToLower(r)
		case unicode.IsSpace(r) || r == '-' || r == '_':
			return '-'
		default:
			return -1
		}
	}, strings.TrimSpace(destination))
	slug = strings.Join(strings.FieldsFunc(slug, func(r rune) bool { return r == '-' }), "-")
	if slug == "" {
		slug = "trip"
	}
	return "roamlist-" + slug + ".pdf"
}

// RenderPlanPDF lays out the trip plan on A4 pages and returns the raw bytes (no filesystem needed).
func RenderPlanPDF(data PlanPDF) ([]byte, error) {
	generated := data.GeneratedAt
	if generated.IsZero() {
		generated = time.Now().UTC()
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 34, 20)
	pdf.SetAutoPageBreak(true, 25)
	pdf.SetCreationDate(generated)
	pdf.SetTitle("Roamlist trip plan: "+data.Trip.Destination, true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	// ── Header Bar ───────────────────────────────────────────
	pdf.SetHeaderFunc(func() {
		pdf.SetFillColor(30, 64, 175)
		pdf.Rect(0, 0, 210, 26, "F")
		pdf.SetTextColor(255, 255, 255)
		pdf.SetFont("Helvetica", "B", 18)
		pdf.SetXY(20, 6)
		pdf.CellFormat(100, 10, "Roamlist", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.SetTextColor(191, 219, 254)
		pdf.SetXY(20, 16)
		pdf.CellFormat(170, 6, tr("Trip plan for "+data.Trip.Destination), "", 1, "L", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
		pdf.SetY(34)
	})

	// ── Footer ────────────────────────────────────────────────
	pdf.SetFooterFunc(func() {
		pdf.SetY(-18)
		pdf.SetDrawColor(200, 200, 200)
		pdf.SetLineWidth(0.3)
		pdf.Line(20, pdf.GetY(), 190, pdf.GetY())
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(150, 150, 150)
		pdf.CellFormat(0, 8,
			fmt.Sprintf("Generated by Roamlist on %s - page %d", generated.Format("02 Jan 2006"), pdf.PageNo()),
			"", 0, "C", false, 0, "")
	})

	pdf.AddPage()

	sectionHeader := func(title string) {
		pdf.SetFillColor(30, 64, 175)
		pdf.SetTextColor(255, 255, 255)
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(170, 8, "  "+tr(title), "", 1, "L", true, 0, "")
		pdf.SetTextColor(0, 0, 0)
		pdf.Ln(2)
	}

	row := func(label, value string) {
		pdf.SetFont("Helvetica", "", 10)
		pdf.SetTextColor(100, 100, 100)
		pdf.CellFormat(45, 7, tr(label), "", 0, "L", false, 0, "")
		pdf.SetTextColor(20, 20, 20)
		pdf.SetFont("Helvetica", "B", 10)
		pdf.MultiCell(125, 7, tr(value), "", "L", false)
	}

	// ── Trip Overview ─────────────────────────────────────────
	sectionHeader("Trip Overview")
	name := strings.TrimSpace(data.TravelerName)
	if name == "" {
		name = "Guest Traveler"
	}
	row("Traveler", name)
	row("Destination", data.Trip.Destination)
	row("Dates", fmt.Sprintf("%s to %s", fmtDateReadable(data.Trip.StartString()), fmtDateReadable(data.Trip.EndString())))
	days := data.Trip.DayCount()
	if days == 1 {
		row("Duration", "1 day")
	} else {
		row("Duration", fmt.Sprintf("%d days", days))
	}
	pdf.Ln(4)

	// ── Day-by-day Itinerary ──────────────────────────────────
	sectionHeader("Itinerary")
	for _, d := range data.Itinerary {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.SetTextColor(30, 64, 175)
		pdf.MultiCell(170, 7, tr(fmt.Sprintf("Day %d - %s", d.Day, fmtDateReadable(d.Date))), "", "L", false)

		for _, slot := range []struct {
			label string
			a     Activity
		}{{"Morning", d.Morning}, {"Afternoon", d.Afternoon}, {"Evening", d.Evening}} {
			pdf.SetFont("Helvetica", "B", 10)
			pdf.SetTextColor(20, 20, 20)
			pdf.MultiCell(170, 6, tr(fmt.Sprintf("%s: %s (%s)", slot.label, slot.a.Place, slot.a.Time)), "", "L", false)
			pdf.SetFont("Helvetica", "", 9)
			pdf.SetTextColor(70, 70, 70)
			desc := slot.a.Description
			if slot.a.Duration != "" {
				desc += " Duration: " + slot.a.Duration + "."
			}
			pdf.SetX(25)
			pdf.MultiCell(165, 4.5, tr(desc), "", "L", false)
		}

		if len(d.LocalTips) > 0 {
			pdf.SetFont("Helvetica", "I", 9)
			pdf.SetTextColor(110, 90, 20)
			for _, tip := range d.LocalTips {
				pdf.SetX(25)
				pdf.MultiCell(165, 4.5, tr("Tip: "+tip), "", "L", false)
			}
		}
		pdf.Ln(3)
	}
	pdf.Ln(2)

	// ── Packing Checklist ─────────────────────────────────────
	sectionHeader("Packing Checklist")
	for _, c := range data.Packing {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetTextColor(20, 20, 20)
		pdf.MultiCell(170, 7, tr(c.Name), "", "L", false)
		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(60, 60, 60)
		for _, item := range c.Items {
			pdf.SetX(25)
			pdf.SetDrawColor(120, 120, 120)
			pdf.Rect(25, pdf.GetY()+1, 3, 3, "D")
			pdf.SetX(30)
			pdf.MultiCell(160, 5, tr(item), "", "L", false)
		}
		pdf.Ln(2)
	}

	// ── Write to buffer ───────────────────────────────────────
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("PDF output failed: %w", err)
	}
	return buf.Bytes(), nil
}

func fmtDateReadable(iso string) string {
	t, err := time.Parse(dateLayout, iso)
	if err != nil {
		return iso
	}
	return t.Format("02 Jan 2006 (Mon)")
}
