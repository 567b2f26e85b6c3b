package report

import (
	"fmt"
	"html/template"
	"sort"
	"strings"
	"time"
)

// categoryView is one row of the category breakdown, pre-sorted and
// pre-colored for the template.
type categoryView struct {
	Name          string
	Spent         float64
	Target        float64
	Percentage    float64
	ProgressWidth float64
	CardBG        string
	BorderColor   string
	ProgressBG    string
	TextColor     string
	TrendNote     string
	TrendColor    string
}

type alertView struct {
	Category string
	Message  string
	Overage  float64
}

type emailView struct {
	MonthName    string
	Day          int
	Year         int
	TestMode     bool
	TotalBudget  float64
	TotalSpent   float64
	Remaining    float64
	RemainBG     string
	RemainColor  string
	Overall      float64
	Alerts       []alertView
	Categories   []categoryView
	GoodPacing   bool
	RisingNames  string
	GeneratedAt  string
	DashboardURL string
}

// RenderEmail produces the HTML report body for a run bundle.
func RenderEmail(b *Bundle, dashboardURL string) (string, error) {
	view := buildEmailView(b, dashboardURL)

	var sb strings.Builder
	if err := emailTemplate.Execute(&sb, view); err != nil {
		return "", fmt.Errorf("render email template: %w", err)
	}
	return sb.String(), nil
}

// Subject returns the email subject line for the given date, with a test
// marker when running in test mode.
func Subject(now time.Time, testMode bool) string {
	subject := fmt.Sprintf("🏠 Weekly Budget Report - %s", now.Format("January 2, 2006"))
	if testMode {
		return "[TEST] " + subject
	}
	return subject
}

func buildEmailView(b *Bundle, dashboardURL string) emailView {
	view := emailView{
		MonthName:    b.Timestamp.Format("January"),
		Day:          b.Timestamp.Day(),
		Year:         b.Timestamp.Year(),
		TestMode:     b.TestMode,
		TotalBudget:  b.Totals.Budget,
		TotalSpent:   b.Totals.Spent,
		Remaining:    b.Totals.Remaining,
		Overall:      b.Totals.Percentage,
		GeneratedAt:  b.Timestamp.Format("January 2, 2006 at 3:04 PM"),
		DashboardURL: dashboardURL,
	}

	if view.Remaining > 0 {
		view.RemainBG, view.RemainColor = "#f0fdf4", "#166534"
	} else {
		view.RemainBG, view.RemainColor = "#fef2f2", "#991b1b"
	}

	// Pacing heuristic: spent share vs elapsed share of a 30-day month,
	// with a small grace margin.
	view.GoodPacing = view.Overall <= float64(view.Day)/30*100+5

	for _, a := range b.Alerts {
		av := alertView{Category: a.Category, Message: a.Message}
		if m, ok := b.Metrics[a.Category]; ok && m.Spent > m.Target {
			av.Overage = m.Spent - m.Target
		}
		view.Alerts = append(view.Alerts, av)
	}

	names := make([]string, 0, len(b.Metrics))
	for name := range b.Metrics {
		names = append(names, name)
	}
	// Highest pressure first; ties break on name so rendering is stable.
	sort.Slice(names, func(i, j int) bool {
		pi, pj := b.Metrics[names[i]].Percentage, b.Metrics[names[j]].Percentage
		if pi != pj {
			return pi > pj
		}
		return names[i] < names[j]
	})

	var rising []string
	for _, name := range names {
		m := b.Metrics[name]
		cv := categoryView{
			Name:          name,
			Spent:         m.Spent,
			Target:        m.Target,
			Percentage:    m.Percentage,
			ProgressWidth: m.Percentage,
		}
		if cv.ProgressWidth > 100 {
			cv.ProgressWidth = 100
		}

		switch {
		case m.Percentage > 100:
			cv.CardBG, cv.BorderColor, cv.ProgressBG, cv.TextColor = "#fef2f2", "#dc2626", "#fee2e2", "#dc2626"
		case m.Percentage > 90:
			cv.CardBG, cv.BorderColor, cv.ProgressBG, cv.TextColor = "#fffbeb", "#d97706", "#fef3c7", "#d97706"
		default:
			cv.CardBG, cv.BorderColor, cv.ProgressBG, cv.TextColor = "#f0fdf4", "#059669", "#dcfce7", "#059669"
		}

		if t, ok := b.Trends[name]; ok {
			if t.Slope > 5 {
				cv.TrendNote, cv.TrendColor = "📈 Trending up", "#dc2626"
				rising = append(rising, name)
			} else if t.Slope < -5 {
				cv.TrendNote, cv.TrendColor = "📉 Trending down", "#059669"
			}
		}

		view.Categories = append(view.Categories, cv)
	}
	view.RisingNames = strings.Join(rising, ", ")

	return view
}

var emailTemplate = template.Must(template.New("email").Funcs(template.FuncMap{
	"amount": func(v float64) string { return fmt.Sprintf("$%.0f", v) },
	"pct":    func(v float64) string { return fmt.Sprintf("%.0f", v) },
	"pct1":   func(v float64) string { return fmt.Sprintf("%.1f", v) },
}).Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Weekly Budget Report</title>
</head>
<body style="margin: 0; padding: 20px; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; background: #f5f5f5; line-height: 1.4;">
  <div style="max-width: 650px; margin: 0 auto; background: white; border-radius: 8px; box-shadow: 0 2px 10px rgba(0,0,0,0.1); overflow: hidden;">

    <div style="background: linear-gradient(135deg, #4f46e5 0%, #7c3aed 100%); color: white; padding: 32px; text-align: center;">
      <h1 style="margin: 0; font-size: 28px; font-weight: 700;">🏠 Weekly Budget Report</h1>
      <p style="margin: 8px 0 0 0; font-size: 16px; opacity: 0.9;">{{.MonthName}} {{.Day}}, {{.Year}} • Day {{.Day}}</p>
    </div>

    <div style="padding: 32px;">
{{- if .TestMode}}
      <div style="background: #fef3c7; border-radius: 8px; padding: 12px; margin-bottom: 24px; text-align: center;">
        <span style="color: #92400e; font-weight: 600;">🧪 TEST MODE</span>
      </div>
{{- end}}

      <div style="display: grid; grid-template-columns: 1fr 1fr 1fr; gap: 16px; margin-bottom: 32px;">
        <div style="text-align: center; padding: 20px; background: #f0fdf4; border-radius: 8px;">
          <div style="font-size: 24px; font-weight: 800; color: #166534;">{{amount .TotalBudget}}</div>
          <div style="font-size: 12px; color: #166534; font-weight: 600;">BUDGET</div>
        </div>
        <div style="text-align: center; padding: 20px; background: #fffbeb; border-radius: 8px;">
          <div style="font-size: 24px; font-weight: 800; color: #92400e;">{{amount .TotalSpent}}</div>
          <div style="font-size: 12px; color: #92400e; font-weight: 600;">SPENT</div>
        </div>
        <div style="text-align: center; padding: 20px; background: {{.RemainBG}}; border-radius: 8px;">
          <div style="font-size: 24px; font-weight: 800; color: {{.RemainColor}};">{{amount .Remaining}}</div>
          <div style="font-size: 12px; color: {{.RemainColor}}; font-weight: 600;">REMAINING</div>
        </div>
      </div>

{{- if .Alerts}}
      <div style="margin-bottom: 32px;">
        <h3 style="color: #1f2937; font-size: 18px; font-weight: 700; margin-bottom: 16px; text-align: center;">⚠️ Budget Alerts</h3>
        <div style="display: grid; gap: 8px;">
{{- range .Alerts}}
          <div style="background: #f9fafb; border-radius: 6px; padding: 12px 16px; border-left: 4px solid #dc2626;">
            <table style="width: 100%; border-collapse: collapse;"><tr>
              <td style="vertical-align: middle;"><span style="color: #1f2937; font-weight: 600;">{{.Category}}</span></td>
              <td style="text-align: right; vertical-align: middle;"><span style="color: #dc2626; font-weight: 700; font-size: 14px;">+{{amount .Overage}}</span></td>
            </tr></table>
          </div>
{{- end}}
        </div>
      </div>
{{- end}}

      <div style="margin-bottom: 32px;">
        <h3 style="color: #1f2937; font-size: 18px; font-weight: 700; margin-bottom: 16px; text-align: center;">📋 Category Breakdown</h3>
{{- range .Categories}}
        <div style="background: {{.CardBG}}; border-radius: 8px; padding: 20px; margin-bottom: 12px; border-left: 4px solid {{.BorderColor}};">
          <table style="width: 100%; border-collapse: collapse;"><tr>
            <td style="vertical-align: middle; width: 70%;">
              <div style="font-weight: 700; color: #1f2937; font-size: 16px; margin-bottom: 4px;">{{.Name}}</div>
              <div style="color: #6b7280; font-size: 14px;">{{amount .Spent}} of {{amount .Target}}{{if .TrendNote}} <span style="color: {{.TrendColor}}; font-size: 12px;">{{.TrendNote}}</span>{{end}}</div>
            </td>
            <td style="text-align: right; vertical-align: middle; width: 30%;">
              <div style="font-size: 24px; font-weight: 800; color: {{.TextColor}}; margin-bottom: 6px;">{{pct .Percentage}}%</div>
              <div style="width: 80px; height: 6px; background: {{.ProgressBG}}; border-radius: 3px; margin-left: auto;">
                <div style="width: {{pct .ProgressWidth}}%; height: 100%; background: {{.TextColor}}; border-radius: 3px;"></div>
              </div>
            </td>
          </tr></table>
        </div>
{{- end}}
      </div>

      <div style="background: #eff6ff; border-radius: 8px; border-left: 4px solid #3b82f6; padding: 20px;">
        <div style="color: #1e40af; font-weight: 700; margin-bottom: 8px;">📊 Budget Status</div>
        <div style="color: #4b5563; line-height: 1.5;">
          You're <strong>{{pct1 .Overall}}%</strong> through your monthly budget on day <strong>{{.Day}}</strong> of {{.MonthName}}.
          {{if .GoodPacing}}🎯 Great pacing!{{else}}⚠️ Consider reviewing spending in over-budget categories.{{end}}
        </div>
{{- if .RisingNames}}
        <div style="margin-top: 12px; padding-top: 12px; border-top: 1px solid rgba(59, 130, 246, 0.2);">
          <div style="color: #dc2626; font-weight: 600; margin-bottom: 6px;">📈 Spending Trends</div>
          <div style="color: #4b5563; line-height: 1.5;">
            Categories with increasing spending: <strong style="color: #dc2626;">{{.RisingNames}}</strong>
          </div>
        </div>
{{- end}}
      </div>
    </div>

    <div style="background: #374151; color: white; padding: 20px; text-align: center;">
      <p style="margin: 0 0 12px 0; font-size: 12px; opacity: 0.9;">Generated {{.GeneratedAt}}{{if .TestMode}}  •  TEST MODE{{end}}</p>
{{- if .DashboardURL}}
      <a href="{{.DashboardURL}}" style="display: inline-block; background: #4f46e5; color: white; text-decoration: none; padding: 10px 20px; border-radius: 6px; font-weight: 600; font-size: 12px;">🚀 View Dashboard</a>
{{- end}}
    </div>

  </div>
</body>
</html>
`))
