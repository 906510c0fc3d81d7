package server

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"

	"go.uber.org/zap"

	"github.com/hypotest/hypotest/internal/dashboard"
	"github.com/hypotest/hypotest/internal/render"
	"github.com/hypotest/hypotest/internal/stats"
	"github.com/hypotest/hypotest/internal/store"
)

// Dashboard template data structures
type layoutData struct {
	Title   string
	CSS     template.CSS
	Content template.HTML
}

type listData struct {
	Runs  []runListItem
	Total int
}

type runListItem struct {
	ID          string
	ShortID     string
	Name        string
	Kind        string
	Tail        string
	Samples     string
	Statistic   string
	PValue      string
	Significant bool
	CreatedAt   string
}

type detailData struct {
	Run     runListItem
	Alpha   string
	DoF     string
	SE      string
	Inputs  []detailInput
	Plot    template.HTML
	PlotErr string
}

type detailInput struct {
	Label string
	Value string
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	// Handle logout
	if r.URL.Query().Get("logout") == "1" {
		http.SetCookie(w, &http.Cookie{
			Name:   tokenCookieName,
			Value:  "",
			Path:   "/",
			MaxAge: -1,
		})
		http.Redirect(w, r, "/dashboard", http.StatusFound)
		return
	}

	ctx := r.Context()

	total, err := s.store.CountRuns(ctx)
	if err != nil {
		s.logger.Error("failed to count runs", zap.Error(err))
		http.Error(w, "Failed to load runs", http.StatusInternalServerError)
		return
	}
	runs, err := s.store.ListRuns(ctx, 100)
	if err != nil {
		s.logger.Error("failed to load runs", zap.Error(err))
		http.Error(w, "Failed to load runs", http.StatusInternalServerError)
		return
	}

	items := make([]runListItem, len(runs))
	for i, run := range runs {
		items[i] = listItem(run)
	}

	s.renderDashboard(w, "Runs", "list.html", listData{Runs: items, Total: total})
}

func (s *Server) handleDashboardRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.store.GetRun(r.Context(), r.PathValue("id"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	data := detailData{
		Run:    listItem(run),
		Alpha:  fmt.Sprintf("%g", run.Alpha),
		SE:     fmt.Sprintf("%.6g", run.StandardError),
		Inputs: runInputs(run),
	}
	if run.Kind == stats.KindT {
		data.DoF = fmt.Sprintf("%.4g", run.DegreesOfFreedom)
	}

	var svg bytes.Buffer
	fig, err := render.Build(run.Result(), render.DefaultOptions())
	if err == nil {
		err = render.WriteSVG(&svg, fig, 720, 400)
	}
	if err != nil {
		data.PlotErr = err.Error()
	} else {
		data.Plot = template.HTML(svg.String())
	}

	title := run.Name
	if title == "" {
		title = shortID(run.ID)
	}
	s.renderDashboard(w, title, "detail.html", data)
}

func listItem(run *store.Run) runListItem {
	samples := fmt.Sprintf("n=%d", len(run.Sample1))
	if run.Sample2 != nil {
		samples = fmt.Sprintf("n₁=%d, n₂=%d", len(run.Sample1), len(run.Sample2))
	}
	return runListItem{
		ID:          run.ID,
		ShortID:     shortID(run.ID),
		Name:        run.Name,
		Kind:        kindLabel(run.Kind),
		Tail:        string(run.Tail),
		Samples:     samples,
		Statistic:   fmt.Sprintf("%.4f", run.Statistic),
		PValue:      formatPValue(run.PValue),
		Significant: run.Result().Significant(),
		CreatedAt:   run.CreatedAt.Format("Jan 2, 2006 15:04"),
	}
}

func runInputs(run *store.Run) []detailInput {
	var inputs []detailInput
	if run.PopulationMean != nil && run.Sample2 == nil {
		inputs = append(inputs, detailInput{"Population mean", fmt.Sprintf("%g", *run.PopulationMean)})
	}
	if run.Sigma1 != nil {
		inputs = append(inputs, detailInput{"σ₁", fmt.Sprintf("%g", *run.Sigma1)})
	}
	if run.Sigma2 != nil {
		inputs = append(inputs, detailInput{"σ₂", fmt.Sprintf("%g", *run.Sigma2)})
	}
	inputs = append(inputs, detailInput{"Sample 1", formatSample(run.Sample1)})
	if run.Sample2 != nil {
		inputs = append(inputs, detailInput{"Sample 2", formatSample(run.Sample2)})
	}
	return inputs
}

func (s *Server) renderDashboard(w http.ResponseWriter, title, contentTemplate string, data interface{}) {
	// Load CSS
	cssBytes, err := dashboard.Assets.ReadFile("assets/style.css")
	if err != nil {
		http.Error(w, "Failed to load styles", http.StatusInternalServerError)
		return
	}

	// Load and execute content template
	contentTmplBytes, err := dashboard.Templates.ReadFile("templates/" + contentTemplate)
	if err != nil {
		http.Error(w, "Failed to load template", http.StatusInternalServerError)
		return
	}

	contentTmpl, err := template.New("content").Parse(string(contentTmplBytes))
	if err != nil {
		http.Error(w, "Failed to parse template", http.StatusInternalServerError)
		return
	}

	var contentBuf bytes.Buffer
	if err := contentTmpl.Execute(&contentBuf, data); err != nil {
		s.logger.Error("failed to render template", zap.String("template", contentTemplate), zap.Error(err))
		http.Error(w, fmt.Sprintf("Failed to render template: %v", err), http.StatusInternalServerError)
		return
	}

	// Load and execute layout template
	layoutTmplBytes, err := dashboard.Templates.ReadFile("templates/layout.html")
	if err != nil {
		http.Error(w, "Failed to load layout", http.StatusInternalServerError)
		return
	}

	layoutTmpl, err := template.New("layout").Parse(string(layoutTmplBytes))
	if err != nil {
		http.Error(w, "Failed to parse layout", http.StatusInternalServerError)
		return
	}

	layoutData := layoutData{
		Title:   title,
		CSS:     template.CSS(cssBytes),
		Content: template.HTML(contentBuf.String()),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := layoutTmpl.Execute(w, layoutData); err != nil {
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}
}

func kindLabel(k stats.Kind) string {
	if k == stats.KindT {
		return "T-test"
	}
	return "Z-test"
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func formatPValue(p float64) string {
	if p < 0.0001 {
		return "< 0.0001"
	}
	return fmt.Sprintf("%.4f", p)
}

func formatSample(xs []float64) string {
	const max = 20
	var buf bytes.Buffer
	for i, x := range xs {
		if i == max {
			fmt.Fprintf(&buf, ", … (%d more)", len(xs)-max)
			break
		}
		if i > 0 {
			buf.WriteString(", ")
		}
		fmt.Fprintf(&buf, "%g", x)
	}
	return buf.String()
}
